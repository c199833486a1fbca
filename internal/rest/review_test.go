package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fairFin/business/artifact"
	"fairFin/business/review"
	"fairFin/business/scoring"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewService struct {
	score   func(ctx context.Context, rec scoring.Record) (review.ScoreOutcome, error)
	explain func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error)
	review  func(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error)
}

func (f *fakeReviewService) Score(ctx context.Context, rec scoring.Record) (review.ScoreOutcome, error) {
	return f.score(ctx, rec)
}

func (f *fakeReviewService) Explain(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
	return f.explain(ctx, rec, n)
}

func (f *fakeReviewService) Review(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error) {
	return f.review(ctx, rec, n)
}

const recordBody = `{"record":{"Annual_Income":52000,"Employment_Status":"Employed"},"top_n":2}`

func post(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func approved() review.ScoreOutcome {
	return review.ScoreOutcome{
		Available:  true,
		Prediction: &scoring.Prediction{Probability: 0.81, Class: 1},
		Aligned:    true,
		Version:    "v1",
	}
}

func explained() review.ExplainOutcome {
	ranked := []scoring.Ranked{
		{Name: "Annual_Income", Value: 0.9, Index: 0},
		{Name: "Existing_Loans", Value: -0.4, Index: 2},
	}
	return review.ExplainOutcome{
		Available: true,
		Explanation: &scoring.Explanation{
			Entries: ranked,
			Space:   scoring.SpaceTransformed,
			Text:    scoring.ToText(ranked),
			Chart:   scoring.ToChart(ranked),
		},
		Text:      scoring.ToText(ranked),
		Explainer: "precomputed",
		Version:   "v1",
	}
}

func unavailableExplanation() review.ExplainOutcome {
	return review.ExplainOutcome{
		Text:    scoring.UnavailableText,
		Version: "v1",
		Err:     &scoring.AttributionError{Op: "load", Err: scoring.ErrExplainerUnavailable},
	}
}

func TestReviewHandler_Score(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		outcome  review.ScoreOutcome
		err      error
		wantCode int
		wantBody []string
	}{
		{
			name:     "approved",
			body:     recordBody,
			outcome:  approved(),
			wantCode: http.StatusOK,
			wantBody: []string{`"probability":0.81`, `"decision":"approve"`, `"degraded":false`},
		},
		{
			name: "denied and unaligned",
			body: recordBody,
			outcome: review.ScoreOutcome{
				Available:  true,
				Prediction: &scoring.Prediction{Probability: 0.2, Class: 0},
				Version:    "v1",
			},
			wantCode: http.StatusOK,
			wantBody: []string{`"decision":"deny"`, `"degraded":true`, `"aligned":false`},
		},
		{
			name: "prediction unavailable",
			body: recordBody,
			outcome: review.ScoreOutcome{
				Message: review.UnavailablePrediction,
				Err:     &scoring.ScoringError{Op: "transform", Err: scoring.ErrUntransformable},
			},
			wantCode: http.StatusUnprocessableEntity,
			wantBody: []string{review.UnavailablePrediction},
		},
		{
			name:     "bundle unavailable",
			body:     recordBody,
			err:      fmt.Errorf("load bundle: %w", scoring.ErrModelUnavailable),
			wantCode: http.StatusServiceUnavailable,
			wantBody: []string{"model artifacts unavailable"},
		},
		{
			name:     "deadline",
			body:     recordBody,
			err:      fmt.Errorf("context error: %w", context.DeadlineExceeded),
			wantCode: http.StatusGatewayTimeout,
		},
		{
			name:     "missing record",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty record",
			body:     `{"record":{}}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{"record":`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := NewReviewHandler(&fakeReviewService{
				score: func(ctx context.Context, rec scoring.Record) (review.ScoreOutcome, error) {
					called = true
					assert.Equal(t, "Employed", rec["Employment_Status"])
					return tt.outcome, tt.err
				},
			})

			rec := post(h.Score, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			if tt.wantCode == http.StatusBadRequest {
				assert.False(t, called)
			}
		})
	}
}

func TestReviewHandler_Explain(t *testing.T) {
	var gotN int
	h := NewReviewHandler(&fakeReviewService{
		explain: func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
			gotN = n
			return explained(), nil
		},
	})

	rec := post(h.Explain, recordBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotN)

	body := rec.Body.String()
	assert.Contains(t, body, `"feature":"Annual_Income"`)
	assert.Contains(t, body, `"space":"transformed"`)
	assert.Contains(t, body, `"chart_svg_data_uri":"data:image/svg+xml;base64,`)
}

func TestReviewHandler_ExplainUnavailable(t *testing.T) {
	h := NewReviewHandler(&fakeReviewService{
		explain: func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
			return unavailableExplanation(), nil
		},
	})

	rec := post(h.Explain, recordBody)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"available":false`)
	assert.Contains(t, body, scoring.UnavailableText)
	assert.Contains(t, body, `"entries":[]`)
	assert.NotContains(t, body, "chart_svg_data_uri")
}

func TestReviewHandler_TopNBounds(t *testing.T) {
	h := NewReviewHandler(&fakeReviewService{})

	rec := post(h.Explain, `{"record":{"a":1},"top_n":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h.Explain, `{"record":{"a":1},"top_n":51}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_ExplainChart(t *testing.T) {
	t.Run("svg", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			explain: func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
				return explained(), nil
			},
		})

		rec := post(h.ExplainChart, recordBody)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Body.String(), "<?xml")
		assert.Contains(t, rec.Body.String(), "Annual_Income")
	})

	t.Run("unavailable", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			explain: func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
				return unavailableExplanation(), nil
			},
		})

		rec := post(h.ExplainChart, recordBody)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), scoring.UnavailableText)
	})

	t.Run("nothing to draw", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			explain: func(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error) {
				return review.ExplainOutcome{
					Available:   true,
					Explanation: &scoring.Explanation{Text: scoring.NoExplanationText},
					Text:        scoring.NoExplanationText,
				}, nil
			},
		})

		rec := post(h.ExplainChart, recordBody)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReviewHandler_Review(t *testing.T) {
	t.Run("both stages", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			review: func(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error) {
				return review.Outcome{Score: approved(), Explanation: explained()}, nil
			},
		})

		rec := post(h.Review, recordBody)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"decision":"approve"`)
		assert.Contains(t, body, `"feature":"Annual_Income"`)
		assert.NotContains(t, body, "score_message")
	})

	t.Run("score fails, explanation stands", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			review: func(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error) {
				return review.Outcome{
					Score: review.ScoreOutcome{
						Message: review.UnavailablePrediction,
						Err:     &scoring.ScoringError{Op: "predict", Err: errors.New("bad")},
					},
					Explanation: explained(),
				}, nil
			},
		})

		rec := post(h.Review, recordBody)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"score":null`)
		assert.Contains(t, body, review.UnavailablePrediction)
		assert.Contains(t, body, `"feature":"Annual_Income"`)
	})

	t.Run("explanation fails, score stands", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			review: func(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error) {
				return review.Outcome{Score: approved(), Explanation: unavailableExplanation()}, nil
			},
		})

		rec := post(h.Review, recordBody)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"decision":"approve"`)
		assert.Contains(t, body, scoring.UnavailableText)
	})

	t.Run("bundle error", func(t *testing.T) {
		h := NewReviewHandler(&fakeReviewService{
			review: func(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error) {
				return review.Outcome{}, &artifact.IncompatibleArtifactsError{Version: "v1", Reason: "width"}
			},
		})

		rec := post(h.Review, recordBody)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
