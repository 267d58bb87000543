package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/api/handler/v1/request"
	"github.com/centralevents/central-events-api/internal/api/handler/v1/response"
	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/service"
)

type FavoriteService interface {
	Toggle(ctx context.Context, userID, providerID uint) (string, error)
	ListFavorites(ctx context.Context, userID uint) ([]domain.Provider, error)
}

type FavoriteHandler struct {
	svc  FavoriteService
	uSvc UserService
}

func NewFavoriteHandler(svc FavoriteService, uSvc UserService) *FavoriteHandler {
	return &FavoriteHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListFavorites godoc
// @Summary      List the caller's bookmarked providers
// @Tags         favorites
// @Produce      json
// @Success      200  {array}   domain.Provider
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /favorites [get]
func (h *FavoriteHandler) HandleListFavorites(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	providers, err := h.svc.ListFavorites(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListFavorites -> h.svc.ListFavorites -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, providers)
}

// HandleToggleFavorite godoc
// @Summary      Bookmark or unbookmark a provider
// @Description  Toggles the favorite and reports which way it went
// @Tags         favorites
// @Produce      json
// @Param        request   body      request.ToggleFavoriteRequest true "request body"
// @Success      200  {object}  response.FavoriteToggleResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /favorites [post]
func (h *FavoriteHandler) HandleToggleFavorite(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.ToggleFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	action, err := h.svc.Toggle(ctx.Request.Context(), user.ID, req.ProviderID)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("provider", "providerID", req.ProviderID))

			return
		}

		err = fmt.Errorf("v1.HandleToggleFavorite -> h.svc.Toggle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.FavoriteToggleResponse{Action: action})
}
