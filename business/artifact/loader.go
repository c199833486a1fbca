package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fairFin/business/scoring"
	"fairFin/pkg/logger"
	"fairFin/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Loader assembles bundles from a Store.
type Loader struct {
	store Store
	now   func() time.Time
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store, now: time.Now}
}

// Load fetches every artifact of version concurrently and validates them as
// one unit. The model is required. Optional artifacts that are absent or
// unreadable are dropped with a warning; optional artifacts that belong to a
// different model fail the whole load.
func (l *Loader) Load(ctx context.Context, version string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	raw := make([][]byte, len(Names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Names {
		g.Go(func() error {
			data, err := l.store.Get(gctx, version, name)
			switch {
			case errors.Is(err, ErrNotFound):
				return nil
			case err != nil:
				return fmt.Errorf("fetch %s: %w", name, err)
			}
			raw[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.ArtifactLoads.WithLabelValues("error").Inc()
		return nil, err
	}

	b, err := l.assemble(ctx, version, raw)
	if err != nil {
		metrics.ArtifactLoads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.ArtifactLoads.WithLabelValues("ok").Inc()
	return b, nil
}

func (l *Loader) assemble(ctx context.Context, version string, raw [][]byte) (*Bundle, error) {
	log := logger.FromContext(ctx).With("version", version)

	if raw[0] == nil {
		return nil, fmt.Errorf("%w: %s missing for version %q", scoring.ErrModelUnavailable, NameModel, version)
	}
	model, err := DecodeModel(raw[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrModelUnavailable, err)
	}
	token, err := Fingerprint(model)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Version: version, Token: token, Model: model, LoadedAt: l.now()}
	warn := func(msg string, args ...any) {
		log.Warn(msg, args...)
		b.Warnings = append(b.Warnings, msg)
	}

	if data := raw[1]; data == nil {
		warn("explainer artifact missing, precomputed explanations unavailable")
	} else if e, fitToken, err := DecodeExplainer(data); err != nil {
		warn("explainer artifact unreadable, precomputed explanations unavailable", "error", err)
	} else if err := b.checkExplainer(e, fitToken); err != nil {
		return nil, err
	} else {
		b.Explainer = e
	}

	if data := raw[2]; data == nil {
		warn("feature names missing, using synthetic labels")
	} else if names, err := DecodeFeatureNames(data); err != nil {
		warn("feature names unreadable, using synthetic labels", "error", err)
	} else if err := b.checkFeatureNames(names); err != nil {
		return nil, err
	} else {
		b.FeatureNames = names
	}
	model.SetFeatureNames(b.FeatureNames)

	if data := raw[3]; data == nil {
		warn("feature schema missing, records will not be aligned")
	} else if s, err := DecodeSchema(data); err != nil {
		warn("feature schema unreadable, records will not be aligned", "error", err)
	} else if !s.Known() {
		warn("feature schema empty, records will not be aligned")
	} else if err := b.checkSchema(s); err != nil {
		return nil, err
	} else {
		b.Schema = s
	}

	log.Info("artifact bundle loaded",
		"token", short(token),
		"width", model.Width(),
		"explainer", b.Explainer != nil,
		"schema", b.Schema.Known(),
	)
	return b, nil
}
