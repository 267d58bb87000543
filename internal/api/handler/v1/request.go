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
	"github.com/centralevents/central-events-api/internal/api/middleware"
	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/service"
)

type RequestService interface {
	CreateRequest(ctx context.Context, req domain.QuoteRequest) (domain.QuoteRequest, error)
	GetRequestsForUser(ctx context.Context, user domain.User) ([]domain.QuoteRequest, error)
	GetRequest(ctx context.Context, user domain.User, requestID uint) (domain.QuoteRequest, error)
	UpdateStatus(ctx context.Context, user domain.User, requestID uint, status domain.RequestStatus) (domain.QuoteRequest, error)
	PostMessage(ctx context.Context, user domain.User, requestID uint, content string) (domain.Message, error)
}

// RequestUserService resolves both authenticated callers and anonymous
// organizer submissions.
type RequestUserService interface {
	UserService
	ResolveOrganizer(ctx context.Context, email, name string) (domain.User, error)
}

type RequestHandler struct {
	svc  RequestService
	uSvc RequestUserService
}

func NewRequestHandler(svc RequestService, uSvc RequestUserService) *RequestHandler {
	return &RequestHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateRequest godoc
// @Summary      Submit a quote request to a provider
// @Description  Open to anonymous organizers; a bearer token attributes the request to the caller instead
// @Tags         requests
// @Produce      json
// @Param        request   body      request.CreateRequestRequest true "request body"
// @Success      201      {object}   domain.QuoteRequest
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /requests [post]
func (h *RequestHandler) HandleCreateRequest(ctx *gin.Context) {
	var req request.CreateRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	organizer, respErr := h.resolveOrganizer(ctx, req.Email, req.ContactName)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	created, err := h.svc.CreateRequest(ctx.Request.Context(), domain.QuoteRequest{
		OrganizerID: organizer.ID,
		ProviderID:  req.ProviderID,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		EventType:   req.EventType,
		EventDate:   req.ParsedEventDate(),
		GuestCount:  req.GuestCount,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Message:     req.Message,
	})
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("provider", "providerID", req.ProviderID))

			return
		}

		err = fmt.Errorf("v1.HandleCreateRequest -> h.svc.CreateRequest -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetRequests godoc
// @Summary      List the caller's quote requests
// @Description  Providers see requests addressed to them, organizers their own submissions
// @Tags         requests
// @Produce      json
// @Success      200  {array}   domain.QuoteRequest
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /requests [get]
func (h *RequestHandler) HandleGetRequests(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requests, err := h.svc.GetRequestsForUser(ctx.Request.Context(), user)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRequests -> h.svc.GetRequestsForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, requests)
}

// HandleGetRequest godoc
// @Summary      Get one quote request with its message thread
// @Tags         requests
// @Produce      json
// @Param        requestID   path      int true "request ID"
// @Success      200  {object}  domain.QuoteRequest
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /requests/{requestID} [get]
func (h *RequestHandler) HandleGetRequest(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requestID, err := strconv.ParseUint(ctx.Param("requestID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid request ID")))

		return
	}

	found, err := h.svc.GetRequest(ctx.Request.Context(), user, uint(requestID))
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("request", "requestID", requestID))

			return
		}

		err = fmt.Errorf("v1.HandleGetRequest -> h.svc.GetRequest -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, found)
}

// HandleUpdateRequestStatus godoc
// @Summary      Update a request's status
// @Description  Provider decision on a request. RESPONDED and ACCEPTED charge a token the first time the pair is engaged; REFUSED and ARCHIVED are free
// @Tags         requests
// @Produce      json
// @Param        requestID   path      int true "request ID"
// @Param        request     body      request.UpdateStatusRequest true "request body"
// @Success      200  {object}  domain.QuoteRequest
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      402  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /requests/{requestID}/status [patch]
func (h *RequestHandler) HandleUpdateRequestStatus(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requestID, err := strconv.ParseUint(ctx.Param("requestID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid request ID")))

		return
	}

	var req request.UpdateStatusRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.UpdateStatus(ctx.Request.Context(), user, uint(requestID), domain.RequestStatus(req.Status))
	if err != nil {
		h.renderMutationErr(ctx, "v1.HandleUpdateRequestStatus -> h.svc.UpdateStatus", requestID, err)

		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandlePostMessage godoc
// @Summary      Post a message on a request thread
// @Description  A provider's first message on a request charges a token and marks the request RESPONDED; organizer messages are free
// @Tags         requests
// @Produce      json
// @Param        requestID   path      int true "request ID"
// @Param        request     body      request.PostMessageRequest true "request body"
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      402  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /requests/{requestID}/messages [post]
func (h *RequestHandler) HandlePostMessage(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requestID, err := strconv.ParseUint(ctx.Param("requestID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid request ID")))

		return
	}

	var req request.PostMessageRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	created, err := h.svc.PostMessage(ctx.Request.Context(), user, uint(requestID), req.Content)
	if err != nil {
		h.renderMutationErr(ctx, "v1.HandlePostMessage -> h.svc.PostMessage", requestID, err)

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// renderMutationErr maps the shared failure modes of request mutations.
// An insufficient balance renders as 402 with the current balance attached.
func (h *RequestHandler) renderMutationErr(ctx *gin.Context, op string, requestID uint64, err error) {
	var insufficientErr *service.InsufficientTokensError
	if errors.As(err, &insufficientErr) {
		response.RenderErr(ctx, response.ErrInsufficientTokens(insufficientErr.Balance))

		return
	}

	switch {
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrNotRequestParty):
		response.RenderErr(ctx, response.ErrNotFound("request", "requestID", requestID))

	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrRequestArchived):
		response.RenderErr(ctx, response.ErrBadRequest(err))

	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func (h *RequestHandler) resolveOrganizer(ctx *gin.Context, email, name string) (domain.User, *response.Err) {
	if userID := ctx.GetUint(middleware.ContextKeyUserID); userID != 0 {
		return getUserFromContext(ctx, h.uSvc)
	}

	organizer, err := h.uSvc.ResolveOrganizer(ctx.Request.Context(), email, name)
	if err != nil {
		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("v1.resolveOrganizer -> h.uSvc.ResolveOrganizer -> %w", err))
	}

	return organizer, nil
}
