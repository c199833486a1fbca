package rest

import (
	"context"
	"net/http"
	"time"

	"fairFin/business/review"
	"fairFin/business/scoring"
	"fairFin/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ReviewHandler struct {
		validate      *validator.Validate
		reviewService ReviewService
		timeout       time.Duration
	}

	ReviewService interface {
		Score(ctx context.Context, rec scoring.Record) (review.ScoreOutcome, error)
		Explain(ctx context.Context, rec scoring.Record, n int) (review.ExplainOutcome, error)
		Review(ctx context.Context, rec scoring.Record, n int) (review.Outcome, error)
	}

	ScoreRequest struct {
		Record map[string]any `json:"record" validate:"required,min=1"`
	}

	ReviewRequest struct {
		Record map[string]any `json:"record" validate:"required,min=1"`
		TopN   int            `json:"top_n" validate:"gte=0,lte=50"`
	}

	ScoreResponse struct {
		Probability float64 `json:"probability"`
		Class       int     `json:"class"`
		Decision    string  `json:"decision"`
		Aligned     bool    `json:"aligned"`
		Degraded    bool    `json:"degraded"`
		Version     string  `json:"version"`
	}

	ExplainResponse struct {
		Available       bool             `json:"available"`
		Text            string           `json:"text"`
		Entries         []scoring.Ranked `json:"entries"`
		Space           scoring.Space    `json:"space,omitempty"`
		Explainer       string           `json:"explainer,omitempty"`
		ChartSVGDataURI string           `json:"chart_svg_data_uri,omitempty"`
		Version         string           `json:"version"`
	}

	ReviewResponse struct {
		Score        *ScoreResponse  `json:"score"`
		ScoreMessage string          `json:"score_message,omitempty"`
		Explanation  ExplainResponse `json:"explanation"`
	}
)

const (
	decisionApprove = "approve"
	decisionDeny    = "deny"
)

func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{
		validate:      validator.New(),
		reviewService: svc,
		timeout:       10 * time.Second,
	}
}

// POST /api/v1/reviews/score
func (h *ReviewHandler) Score(c echo.Context) error {
	var req ScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.reviewService.Score(ctx, req.Record)
	if err != nil {
		return serviceError(ctx, c, "score", err)
	}
	if !out.Available {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: out.Message})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(toScoreResponse(out)))
}

// POST /api/v1/reviews/explain
func (h *ReviewHandler) Explain(c echo.Context) error {
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.reviewService.Explain(ctx, req.Record, req.TopN)
	if err != nil {
		return serviceError(ctx, c, "explain", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(toExplainResponse(ctx, out)))
}

// POST /api/v1/reviews/explain/chart
func (h *ReviewHandler) ExplainChart(c echo.Context) error {
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.reviewService.Explain(ctx, req.Record, req.TopN)
	if err != nil {
		return serviceError(ctx, c, "explain_chart", err)
	}
	if !out.Available {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: out.Text})
	}
	if out.Explanation.Chart == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: out.Text})
	}

	svg, err := out.Explanation.Chart.SVG()
	if err != nil {
		logger.FromContext(ctx).Error("failed to render chart", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.Blob(http.StatusOK, "image/svg+xml", svg)
}

// POST /api/v1/reviews
func (h *ReviewHandler) Review(c echo.Context) error {
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.reviewService.Review(ctx, req.Record, req.TopN)
	if err != nil {
		return serviceError(ctx, c, "review", err)
	}

	resp := ReviewResponse{Explanation: toExplainResponse(ctx, out.Explanation)}
	if out.Score.Available {
		score := toScoreResponse(out.Score)
		resp.Score = &score
	} else {
		resp.ScoreMessage = out.Score.Message
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

func toScoreResponse(out review.ScoreOutcome) ScoreResponse {
	decision := decisionDeny
	if out.Prediction.Approved() {
		decision = decisionApprove
	}
	return ScoreResponse{
		Probability: out.Prediction.Probability,
		Class:       out.Prediction.Class,
		Decision:    decision,
		Aligned:     out.Aligned,
		Degraded:    !out.Aligned,
		Version:     out.Version,
	}
}

// toExplainResponse embeds the chart when one was drawn. A chart that fails
// to encode is dropped; the text still stands on its own.
func toExplainResponse(ctx context.Context, out review.ExplainOutcome) ExplainResponse {
	resp := ExplainResponse{
		Available: out.Available,
		Text:      out.Text,
		Entries:   []scoring.Ranked{},
		Explainer: out.Explainer,
		Version:   out.Version,
	}
	if !out.Available || out.Explanation == nil {
		return resp
	}

	resp.Space = out.Explanation.Space
	if out.Explanation.Entries != nil {
		resp.Entries = out.Explanation.Entries
	}
	if out.Explanation.Chart != nil {
		uri, err := out.Explanation.Chart.DataURI()
		if err != nil {
			logger.FromContext(ctx).Warn("failed to embed chart", "error", err)
		} else {
			resp.ChartSVGDataURI = uri
		}
	}
	return resp
}
