package rest

import (
	"context"
	"net/http"
	"time"

	"fairFin/business/artifact"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	ArtifactAdminHandler struct {
		artifactService ArtifactService
		timeout         time.Duration
	}

	ArtifactService interface {
		Info(ctx context.Context) (artifact.Info, error)
		Loaded() []artifact.Info
		Reload(ctx context.Context) (artifact.Info, error)
	}

	ArtifactsResponse struct {
		Active *artifact.Info  `json:"active"`
		Loaded []artifact.Info `json:"loaded"`
		Error  string          `json:"error,omitempty"`
	}
)

func NewArtifactAdminHandler(svc ArtifactService) *ArtifactAdminHandler {
	return &ArtifactAdminHandler{
		artifactService: svc,
		timeout:         30 * time.Second,
	}
}

// GET /api/v1/admin/artifacts
func (h *ArtifactAdminHandler) GetArtifacts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := ArtifactsResponse{Loaded: h.artifactService.Loaded()}
	info, err := h.artifactService.Info(ctx)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Active = &info
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// POST /api/v1/admin/artifacts/reload
func (h *ArtifactAdminHandler) Reload(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	info, err := h.artifactService.Reload(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(info))
}
