package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/api/handler/v1/request"
	"github.com/centralevents/central-events-api/internal/api/handler/v1/response"
	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/service"
)

type ReviewService interface {
	CreateReview(ctx context.Context, user domain.User, review domain.Review) (domain.Review, error)
	GetProviderReviews(ctx context.Context, providerID uint) ([]domain.Review, error)
	GetRatingSummary(ctx context.Context, providerID uint) (domain.RatingSummary, error)
	ReplyToReview(ctx context.Context, providerID, reviewID uint, reply string) (domain.Review, error)
}

type ReviewProviderService interface {
	GetProviderBySlug(ctx context.Context, slug string) (domain.Provider, error)
	GetProviderByUserID(ctx context.Context, userID uint) (domain.Provider, error)
}

type ReviewHandler struct {
	svc  ReviewService
	pSvc ReviewProviderService
	uSvc UserService
}

func NewReviewHandler(svc ReviewService, pSvc ReviewProviderService, uSvc UserService) *ReviewHandler {
	return &ReviewHandler{
		svc:  svc,
		pSvc: pSvc,
		uSvc: uSvc,
	}
}

// HandleGetProviderReviews godoc
// @Summary      List a provider's reviews
// @Description  Public review listing with the aggregated star rating
// @Tags         reviews
// @Produce      json
// @Param        slug   path      string true "provider slug"
// @Success      200  {object}  response.ProviderReviewsResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /providers/{slug}/reviews [get]
func (h *ReviewHandler) HandleGetProviderReviews(ctx *gin.Context) {
	slug := ctx.Param("slug")

	provider, err := h.pSvc.GetProviderBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("provider", "slug", slug))

			return
		}

		err = fmt.Errorf("v1.HandleGetProviderReviews -> h.pSvc.GetProviderBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	reviews, err := h.svc.GetProviderReviews(ctx.Request.Context(), provider.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetProviderReviews -> h.svc.GetProviderReviews -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	summary, err := h.svc.GetRatingSummary(ctx.Request.Context(), provider.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetProviderReviews -> h.svc.GetRatingSummary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ProviderReviewsResponse{
		Reviews: reviews,
		Summary: summary,
	})
}

// HandleCreateReview godoc
// @Summary      Review a provider
// @Description  Organizers that submitted a quote request to the provider can leave one review
// @Tags         reviews
// @Produce      json
// @Param        request   body      request.CreateReviewRequest true "request body"
// @Success      201  {object}  domain.Review
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reviews [post]
func (h *ReviewHandler) HandleCreateReview(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	created, err := h.svc.CreateReview(ctx.Request.Context(), user, domain.Review{
		ProviderID: req.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProviderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("provider", "providerID", req.ProviderID))

		case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrReviewExists):
			response.RenderErr(ctx, response.ErrBadRequest(err))

		case errors.Is(err, service.ErrNotReviewable):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))

		default:
			err = fmt.Errorf("v1.HandleCreateReview -> h.svc.CreateReview -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleReplyToReview godoc
// @Summary      Reply to a review
// @Description  The reviewed provider answers publicly under the review
// @Tags         reviews
// @Produce      json
// @Param        reviewID   path      int true "review ID"
// @Param        request    body      request.ReplyReviewRequest true "request body"
// @Success      200  {object}  domain.Review
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reviews/{reviewID}/reply [post]
func (h *ReviewHandler) HandleReplyToReview(ctx *gin.Context) {
	provider, respErr := h.callerProvider(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	reviewID, err := strconv.ParseUint(ctx.Param("reviewID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid review ID")))

		return
	}

	var req request.ReplyReviewRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.ReplyToReview(ctx.Request.Context(), provider.ID, uint(reviewID), req.Reply)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("review", "reviewID", reviewID))

			return
		}

		err = fmt.Errorf("v1.HandleReplyToReview -> h.svc.ReplyToReview -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *ReviewHandler) callerProvider(ctx *gin.Context) (domain.Provider, *response.Err) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return domain.Provider{}, respErr
	}

	provider, err := h.pSvc.GetProviderByUserID(ctx.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			return domain.Provider{}, response.ErrPermissionDenied(fmt.Errorf("user %v is not a provider", user.ID))
		}

		return domain.Provider{}, response.ErrInternalServerError(fmt.Errorf("v1.callerProvider -> h.pSvc.GetProviderByUserID -> %w", err))
	}

	return provider, nil
}
