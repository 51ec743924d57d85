// Package sentiment labels scores, summarizes batches and scores free text.
//
// Classify maps a score to Positive, Neutral or Negative under the rule of its Kind.
// Summarize renders the fixed narrative for a batch mean. An Analyzer ties these
// together with the lexicon scorer, column detection, rescaling, numeric statistics
// and word frequencies. It holds no mutable state and is safe for concurrent use.
package sentiment
