package app

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
	"github.com/pscheid92/reviewpulse/internal/sentiment"
)

// ClassifyItem is one input to Classify: free text, a numeric score, or both.
type ClassifyItem struct {
	Text  *string  `json:"text,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

type ClassifyRequest struct {
	// Kind defaults to polarity.
	Kind  string         `json:"kind"`
	Items []ClassifyItem `json:"items"`
}

type ClassifyResult struct {
	Kind    domain.Kind           `json:"kind"`
	Records []domain.ScoredRecord `json:"records"`
	Counts  domain.Counts         `json:"counts"`
}

// Classify labels ad-hoc inputs without storing anything. Items that cannot be
// scored under the kind come back with valid=false.
func (s *Service) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error) {
	kind, err := parseKindOr(req.Kind, domain.KindPolarity)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("items must not be empty")
	}
	if err := s.checkRecordLimit(len(req.Items)); err != nil {
		return nil, err
	}

	records := make([]domain.Record, len(req.Items))
	for i, item := range req.Items {
		records[i] = item.record()
	}

	scored, err := s.analyzer.Classify(ctx, records, kind)
	if err != nil {
		return nil, err
	}

	var counts domain.Counts
	for _, r := range scored {
		if r.Valid {
			counts.Add(r.Label)
		}
	}
	s.observer.LabelsClassified(kind, counts)

	return &ClassifyResult{Kind: kind, Records: scored, Counts: counts}, nil
}

func (item ClassifyItem) record() domain.Record {
	var r domain.Record
	if item.Text != nil {
		r.Raw = *item.Text
	}
	if item.Score != nil {
		v := *item.Score
		r.Value = &v
		if r.Raw == "" {
			r.Raw = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return r
}

// TextAnalysis is the lexicon breakdown of a single review.
type TextAnalysis struct {
	Text     string       `json:"text"`
	Polarity float64      `json:"polarity"`
	Label    domain.Label `json:"label"`
	Positive int          `json:"positive_words"`
	Negative int          `json:"negative_words"`
	Matched  int          `json:"matched_words"`
	Total    int          `json:"total_words"`
}

// AnalyzeText scores one free-text review.
func (s *Service) AnalyzeText(_ context.Context, text string) (*TextAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("text must not be empty")
	}

	p := s.analyzer.ScoreText(text)
	label := sentiment.Classify(p.Score, domain.KindPolarity)

	counts := domain.Counts{}
	counts.Add(label)
	s.observer.LabelsClassified(domain.KindPolarity, counts)

	return &TextAnalysis{
		Text:     text,
		Polarity: p.Score,
		Label:    label,
		Positive: p.Positive,
		Negative: p.Negative,
		Matched:  p.Matched,
		Total:    p.Total,
	}, nil
}

type SummarizeRequest struct {
	// Kind is "numeric", "text" or a score kind name.
	Kind     string  `json:"kind"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
	Mean     float64 `json:"mean"`
}

type Narrative struct {
	Tier domain.Tier `json:"tier"`
	Text string      `json:"narrative"`
}

// Summarize renders the narrative for precomputed percentages and mean.
func (s *Service) Summarize(_ context.Context, req SummarizeRequest) (*Narrative, error) {
	kind, err := domain.ParseNarrativeKind(req.Kind)
	if err != nil {
		return nil, apperrors.Validationf("unknown narrative kind %q", req.Kind).
			WithField("allowed", []string{string(domain.NarrativeNumeric), string(domain.NarrativeText)}).
			WithCause(err)
	}

	for name, v := range map[string]float64{
		"positive": req.Positive, "neutral": req.Neutral, "negative": req.Negative, "mean": req.Mean,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperrors.Validationf("%s must be a finite number", name).WithField("field", name)
		}
	}

	p := domain.Percentages{Positive: req.Positive, Neutral: req.Neutral, Negative: req.Negative}
	return &Narrative{
		Tier: sentiment.SelectTier(req.Mean, kind),
		Text: sentiment.Summarize(p, req.Mean, kind),
	}, nil
}

func parseKindOr(name string, fallback domain.Kind) (domain.Kind, error) {
	if strings.TrimSpace(name) == "" {
		return fallback, nil
	}
	kind, err := domain.ParseKind(name)
	if err != nil {
		return "", apperrors.Validationf("unknown kind %q", name).
			WithField("allowed", kindNames()).
			WithCause(err)
	}
	return kind, nil
}

func kindNames() []string {
	return []string{string(domain.KindPolarity), string(domain.KindRating), string(domain.KindRescaled)}
}

func (s *Service) checkRecordLimit(n int) error {
	if s.opts.MaxRecords > 0 && n > s.opts.MaxRecords {
		return apperrors.Validationf("too many records: %d exceeds the limit of %d", n, s.opts.MaxRecords).
			WithField("limit", s.opts.MaxRecords).
			WithCause(domain.ErrTooManyRecords)
	}
	return nil
}
