package sentiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTopWords = 20
	scoreChunkSize  = 256
)

// Analyzer scores, labels and summarizes batches. Callers construct one and share it;
// it carries the lexicon and options and nothing else.
type Analyzer struct {
	lexicon  *Lexicon
	topWords int
	workers  int
}

type Option func(*Analyzer)

// WithTopWords sets how many words per label WordFrequencies keeps.
func WithTopWords(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topWords = n
		}
	}
}

// WithWorkers bounds the number of goroutines scoring text in parallel.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func NewAnalyzer(lexicon *Lexicon, opts ...Option) *Analyzer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	a := &Analyzer{
		lexicon:  lexicon,
		topWords: defaultTopWords,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ScoreText returns the lexicon polarity of a single text.
func (a *Analyzer) ScoreText(text string) Polarity {
	return a.lexicon.Score(text)
}

// Score derives the score of every record under kind. Records without a usable score
// get a nil Score; nothing is labelled yet.
func (a *Analyzer) Score(ctx context.Context, records []domain.Record, kind domain.Kind) ([]domain.ScoredRecord, error) {
	scored := make([]domain.ScoredRecord, len(records))
	for i, r := range records {
		scored[i].Record = r
	}

	switch kind {
	case domain.KindPolarity:
		if err := a.scorePolarity(ctx, scored); err != nil {
			return nil, err
		}
	case domain.KindRating:
		for i := range scored {
			if v, ok := numericValue(&scored[i].Record); ok {
				scored[i].Score = &v
			}
		}
	case domain.KindRescaled:
		raw := make([]float64, len(scored))
		for i := range scored {
			v, ok := numericValue(&scored[i].Record)
			if !ok {
				v = math.NaN()
			}
			raw[i] = v
		}
		for i, v := range Rescale(raw) {
			if finite(v) {
				scored[i].Score = &v
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	return scored, nil
}

func (a *Analyzer) scorePolarity(ctx context.Context, scored []domain.ScoredRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for start := 0; start < len(scored); start += scoreChunkSize {
		end := min(start+scoreChunkSize, len(scored))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				text := scored[i].Raw
				if strings.TrimSpace(text) == "" {
					continue
				}
				p := a.lexicon.Score(text).Score
				scored[i].Score = &p
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to score text: %w", err)
	}
	return nil
}

// Classify scores and labels records without aggregating them.
func (a *Analyzer) Classify(ctx context.Context, records []domain.Record, kind domain.Kind) ([]domain.ScoredRecord, error) {
	scored, err := a.Score(ctx, records, kind)
	if err != nil {
		return nil, err
	}
	return Label(scored, kind), nil
}

// Analyze runs the full pipeline over a batch: score, label, summarize, and attach
// numeric statistics or word frequencies depending on kind.
func (a *Analyzer) Analyze(ctx context.Context, records []domain.Record, kind domain.Kind) (*domain.Report, error) {
	scored, err := a.Classify(ctx, records, kind)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Summary: SummarizeBatch(scored, kind),
		Records: scored,
	}

	if kind.Numeric() {
		raw := make([]float64, 0, len(scored))
		for _, r := range scored {
			if r.Valid && r.Value != nil {
				raw = append(raw, *r.Value)
			}
		}
		report.Stats = Describe(raw)
	} else {
		report.Words = WordFrequencies(scored, a.topWords)
	}

	return report, nil
}

// numericValue returns the record's value, parsing Raw when no value was supplied.
// A value parsed from Raw is stored back on the record.
func numericValue(r *domain.Record) (float64, bool) {
	if r.Value != nil {
		if !finite(*r.Value) {
			r.Value = nil
			return 0, false
		}
		return *r.Value, true
	}
	v, ok := ParseNumber(r.Raw)
	if !ok {
		return 0, false
	}
	r.Value = &v
	return v, true
}
