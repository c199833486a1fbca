package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fairFin/business/artifact"
	"fairFin/business/scoring"
	"fairFin/pkg/logger"
	"fairFin/pkg/metrics"
)

type ExplainerMode string

const (
	// ModePrecomputed only uses the explainer shipped with the bundle.
	ModePrecomputed ExplainerMode = "precomputed"
	// ModeOnDemand always builds a baseline explainer from the schema.
	ModeOnDemand ExplainerMode = "on_demand"
	// ModeAuto prefers the shipped explainer and falls back to on demand.
	ModeAuto ExplainerMode = "auto"
)

const (
	UnavailablePrediction = "Prediction unavailable."

	defaultTopN = 3
)

var ErrInvalidMode = errors.New("invalid explainer mode")

func ParseExplainerMode(s string) (ExplainerMode, error) {
	switch m := ExplainerMode(s); m {
	case ModePrecomputed, ModeOnDemand, ModeAuto:
		return m, nil
	case "":
		return ModePrecomputed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ---- Repository interfaces ----

type BundleProvider interface {
	Get(ctx context.Context, version string) (*artifact.Bundle, error)
	Reload(ctx context.Context, version string) (*artifact.Bundle, error)
	Loaded() []*artifact.Bundle
}

// Invalidator drops stale copies of a version below the process cache.
type Invalidator interface {
	Invalidate(ctx context.Context, version string) error
}

type Config struct {
	Version     string
	Mode        ExplainerMode
	DefaultTopN int
}

// ---- Outcomes ----

type ScoreOutcome struct {
	Available  bool                `json:"available"`
	Prediction *scoring.Prediction `json:"prediction,omitempty"`
	Message    string              `json:"message,omitempty"`
	Aligned    bool                `json:"aligned"`
	Version    string              `json:"version"`
	Err        error               `json:"-"`
}

type ExplainOutcome struct {
	Available   bool                 `json:"available"`
	Explanation *scoring.Explanation `json:"explanation,omitempty"`
	Text        string               `json:"text"`
	Explainer   string               `json:"explainer,omitempty"`
	Version     string               `json:"version"`
	Err         error                `json:"-"`
}

type Outcome struct {
	Score       ScoreOutcome   `json:"score"`
	Explanation ExplainOutcome `json:"explanation"`
}

// ---- Usecase / Service ----

type ReviewService struct {
	bundles     BundleProvider
	invalidator Invalidator
	cfg         Config

	mu        sync.Mutex
	baselines map[string]*scoring.BaselineExplainer
}

func NewReviewService(bundles BundleProvider, invalidator Invalidator, cfg Config) *ReviewService {
	if cfg.Mode == "" {
		cfg.Mode = ModePrecomputed
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = defaultTopN
	}
	return &ReviewService{
		bundles:     bundles,
		invalidator: invalidator,
		cfg:         cfg,
		baselines:   make(map[string]*scoring.BaselineExplainer),
	}
}

// Score aligns and scores one record. A model failure is reported in the
// outcome; the error return is reserved for a canceled request or a bundle
// that cannot be loaded.
func (s *ReviewService) Score(ctx context.Context, rec scoring.Record) (ScoreOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ScoreOutcome{}, fmt.Errorf("context error: %w", err)
	}
	defer observe("score", time.Now())

	b, err := s.bundle(ctx, "score")
	if err != nil {
		return ScoreOutcome{}, err
	}
	return s.score(ctx, b, s.align(ctx, b, rec)), nil
}

// Explain attributes one record and renders its top n contributors. n <= 0
// uses the configured default.
func (s *ReviewService) Explain(ctx context.Context, rec scoring.Record, n int) (ExplainOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ExplainOutcome{}, fmt.Errorf("context error: %w", err)
	}
	defer observe("explain", time.Now())

	b, err := s.bundle(ctx, "explain")
	if err != nil {
		return ExplainOutcome{}, err
	}
	return s.explain(ctx, b, s.align(ctx, b, rec), n), nil
}

// Review runs both stages against the same bundle. Either stage may be
// unavailable while the other succeeds.
func (s *ReviewService) Review(ctx context.Context, rec scoring.Record, n int) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("context error: %w", err)
	}
	defer observe("review", time.Now())

	b, err := s.bundle(ctx, "review")
	if err != nil {
		return Outcome{}, err
	}
	aligned := s.align(ctx, b, rec)
	return Outcome{
		Score:       s.score(ctx, b, aligned),
		Explanation: s.explain(ctx, b, aligned, n),
	}, nil
}

func (s *ReviewService) Info(ctx context.Context) (artifact.Info, error) {
	if err := ctx.Err(); err != nil {
		return artifact.Info{}, fmt.Errorf("context error: %w", err)
	}
	b, err := s.bundles.Get(ctx, s.cfg.Version)
	if err != nil {
		return artifact.Info{}, err
	}
	return b.Info(), nil
}

// Loaded lists every bundle held by the process.
func (s *ReviewService) Loaded() []artifact.Info {
	bundles := s.bundles.Loaded()
	out := make([]artifact.Info, len(bundles))
	for i, b := range bundles {
		out[i] = b.Info()
	}
	return out
}

// Reload refetches the configured version. The current bundle keeps serving
// if the new one fails to load.
func (s *ReviewService) Reload(ctx context.Context) (artifact.Info, error) {
	if err := ctx.Err(); err != nil {
		return artifact.Info{}, fmt.Errorf("context error: %w", err)
	}
	log := logger.FromContext(ctx).With("version", s.cfg.Version)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, s.cfg.Version); err != nil {
			log.Warn("failed to invalidate artifact tier", "error", err)
		}
	}

	b, err := s.bundles.Reload(ctx, s.cfg.Version)
	if err != nil {
		log.Error("artifact reload failed", "error", err)
		return artifact.Info{}, err
	}
	s.pruneBaselines()

	log.Info("artifact bundle reloaded", "token", b.Token)
	return b.Info(), nil
}

func (s *ReviewService) bundle(ctx context.Context, op string) (*artifact.Bundle, error) {
	b, err := s.bundles.Get(ctx, s.cfg.Version)
	if err != nil {
		metrics.ReviewOutcomes.WithLabelValues(op, "bundle_error").Inc()
		logger.FromContext(ctx).Error("failed to load artifact bundle", "version", s.cfg.Version, "error", err)
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	return b, nil
}

func (s *ReviewService) align(ctx context.Context, b *artifact.Bundle, rec scoring.Record) scoring.AlignedRecord {
	aligned := scoring.Align(rec, b.Schema)
	if !aligned.Aligned {
		metrics.DegradedTotal.WithLabelValues("unaligned").Inc()
		logger.FromContext(ctx).Warn("running unaligned", "version", b.Version, "reason", scoring.ErrSchemaMissing)
	}
	return aligned
}

func (s *ReviewService) score(ctx context.Context, b *artifact.Bundle, rec scoring.AlignedRecord) ScoreOutcome {
	out := ScoreOutcome{Aligned: rec.Aligned, Version: b.Version}

	pred, err := scoring.Score(b.Model, rec)
	if err != nil {
		metrics.ReviewOutcomes.WithLabelValues("score", "unavailable").Inc()
		logger.FromContext(ctx).Warn("prediction unavailable", "version", b.Version, "error", err)
		out.Message = UnavailablePrediction
		out.Err = err
		return out
	}

	metrics.ReviewOutcomes.WithLabelValues("score", "ok").Inc()
	out.Available = true
	out.Prediction = &pred
	return out
}

func (s *ReviewService) explain(ctx context.Context, b *artifact.Bundle, rec scoring.AlignedRecord, n int) ExplainOutcome {
	if n <= 0 {
		n = s.cfg.DefaultTopN
	}
	out := ExplainOutcome{Version: b.Version}
	log := logger.FromContext(ctx).With("version", b.Version)

	explainer, name, err := s.explainer(b)
	if err == nil {
		out.Explainer = name
		out.Explanation, err = scoring.Explain(explainer, b.Model, rec, n)
	}
	if err != nil {
		var attrErr *scoring.AttributionError
		if !errors.As(err, &attrErr) {
			err = &scoring.AttributionError{Op: "load", Err: err}
		}
		metrics.ReviewOutcomes.WithLabelValues("explain", "unavailable").Inc()
		log.Warn("explanation unavailable", "explainer", name, "error", err)
		out.Text = scoring.UnavailableText
		out.Err = err
		return out
	}

	if out.Explanation.Space == scoring.SpaceTransformed && b.Model.FeatureNames() == nil {
		metrics.DegradedTotal.WithLabelValues("synthetic_names").Inc()
		log.Warn("feature names missing, using synthetic labels")
	}

	metrics.ReviewOutcomes.WithLabelValues("explain", "ok").Inc()
	out.Available = true
	out.Text = out.Explanation.Text
	return out
}

// explainer picks the attribution engine for b according to the mode.
func (s *ReviewService) explainer(b *artifact.Bundle) (scoring.Explainer, string, error) {
	switch s.cfg.Mode {
	case ModeOnDemand:
		e, err := s.baseline(b)
		return e, string(ModeOnDemand), err
	case ModeAuto:
		if b.Explainer != nil {
			return b.Explainer, string(ModePrecomputed), nil
		}
		e, err := s.baseline(b)
		return e, string(ModeOnDemand), err
	default:
		if b.Explainer == nil {
			return nil, string(ModePrecomputed), scoring.ErrExplainerUnavailable
		}
		return b.Explainer, string(ModePrecomputed), nil
	}
}

// baseline returns the on-demand explainer for b's schema, built once per
// bundle token. Concurrent first calls may both build; the last one stored
// wins.
func (s *ReviewService) baseline(b *artifact.Bundle) (*scoring.BaselineExplainer, error) {
	s.mu.Lock()
	e, ok := s.baselines[b.Token]
	s.mu.Unlock()
	if ok {
		return e, nil
	}

	e, err := scoring.NewBaselineExplainer(b.Schema)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.baselines[b.Token] = e
	s.mu.Unlock()
	return e, nil
}

func (s *ReviewService) pruneBaselines() {
	live := make(map[string]struct{})
	for _, b := range s.bundles.Loaded() {
		live[b.Token] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.baselines {
		if _, ok := live[token]; !ok {
			delete(s.baselines, token)
		}
	}
}

func observe(op string, start time.Time) {
	metrics.ReviewLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
