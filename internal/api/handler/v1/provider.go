package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/api/handler/v1/response"
	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/service"
)

type ProviderService interface {
	GetProviders(ctx context.Context) ([]domain.Provider, error)
	GetProviderBySlug(ctx context.Context, slug string) (domain.Provider, error)
}

type ProviderHandler struct {
	svc ProviderService
}

func NewProviderHandler(svc ProviderService) *ProviderHandler {
	return &ProviderHandler{
		svc: svc,
	}
}

// HandleGetProviders godoc
// @Summary      List providers
// @Description  Retrieves the public provider directory
// @Tags         providers
// @Produce      json
// @Success      200  {array}   domain.Provider
// @Failure      500  {object}  response.Err
// @Router       /providers [get]
func (h *ProviderHandler) HandleGetProviders(ctx *gin.Context) {
	providers, err := h.svc.GetProviders(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetProviders -> h.svc.GetProviders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, providers)
}

// HandleGetProviderBySlug godoc
// @Summary      Get a provider by slug
// @Tags         providers
// @Produce      json
// @Param        slug   path      string true "provider slug"
// @Success      200  {object}  domain.Provider
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /providers/{slug} [get]
func (h *ProviderHandler) HandleGetProviderBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	provider, err := h.svc.GetProviderBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("provider", "slug", slug))

			return
		}

		err = fmt.Errorf("v1.HandleGetProviderBySlug -> h.svc.GetProviderBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, provider)
}
