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

type TokenService interface {
	Grant(ctx context.Context, providerID uint, amount int, reason string) (int, error)
	Purchase(ctx context.Context, providerID uint, packageKey string) (int, error)
	GetBalance(ctx context.Context, providerID uint) (int, error)
	GetTransactions(ctx context.Context, providerID uint, limit int) ([]domain.TokenTransaction, error)
	ListBalances(ctx context.Context) ([]domain.ProviderBalance, error)
	IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error)
}

type TokenProviderService interface {
	GetProviderByUserID(ctx context.Context, userID uint) (domain.Provider, error)
}

type TokenHandler struct {
	svc  TokenService
	pSvc TokenProviderService
	uSvc UserService
}

func NewTokenHandler(svc TokenService, pSvc TokenProviderService, uSvc UserService) *TokenHandler {
	return &TokenHandler{
		svc:  svc,
		pSvc: pSvc,
		uSvc: uSvc,
	}
}

// HandleGetTokenStatus godoc
// @Summary      Get the caller's token balance and transaction history
// @Tags         tokens
// @Produce      json
// @Param        limit   query     int false "max transactions returned"
// @Success      200  {object}  response.TokenStatusResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tokens [get]
func (h *TokenHandler) HandleGetTokenStatus(ctx *gin.Context) {
	provider, respErr := h.callerProvider(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))

	balance, err := h.svc.GetBalance(ctx.Request.Context(), provider.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTokenStatus -> h.svc.GetBalance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	transactions, err := h.svc.GetTransactions(ctx.Request.Context(), provider.ID, limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTokenStatus -> h.svc.GetTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.TokenStatusResponse{
		Balance:      balance,
		Transactions: transactions,
	})
}

// HandlePurchaseTokens godoc
// @Summary      Purchase a token package
// @Description  Credits the package's tokens to the caller's balance; payment is settled upstream
// @Tags         tokens
// @Produce      json
// @Param        request   body      request.PurchaseTokensRequest true "request body"
// @Success      200  {object}  response.BalanceResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tokens/purchase [post]
func (h *TokenHandler) HandlePurchaseTokens(ctx *gin.Context) {
	provider, respErr := h.callerProvider(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.PurchaseTokensRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	balance, err := h.svc.Purchase(ctx.Request.Context(), provider.ID, req.Package)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPackage) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandlePurchaseTokens -> h.svc.Purchase -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.BalanceResponse{Balance: balance})
}

// HandleGetUnlockStatus godoc
// @Summary      Check whether the caller has unlocked a request
// @Tags         tokens
// @Produce      json
// @Param        requestID   path      int true "request ID"
// @Success      200  {object}  response.UnlockStatusResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /requests/{requestID}/unlock [get]
func (h *TokenHandler) HandleGetUnlockStatus(ctx *gin.Context) {
	provider, respErr := h.callerProvider(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requestID, err := strconv.ParseUint(ctx.Param("requestID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid request ID")))

		return
	}

	unlocked, err := h.svc.IsUnlocked(ctx.Request.Context(), provider.ID, uint(requestID))
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUnlockStatus -> h.svc.IsUnlocked -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.UnlockStatusResponse{Unlocked: unlocked})
}

// HandleGrantTokens godoc
// @Summary      Grant tokens to a provider
// @Description  Admin only. Credits tokens without payment and records the reason in the ledger
// @Tags         admin
// @Produce      json
// @Param        request   body      request.GrantTokensRequest true "request body"
// @Success      200  {object}  response.BalanceResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/tokens/grant [post]
func (h *TokenHandler) HandleGrantTokens(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))

		return
	}

	var req request.GrantTokensRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	balance, err := h.svc.Grant(ctx.Request.Context(), req.ProviderID, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidGrantAmount):
			response.RenderErr(ctx, response.ErrBadRequest(err))

		case errors.Is(err, service.ErrProviderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("provider", "providerID", req.ProviderID))

		default:
			err = fmt.Errorf("v1.HandleGrantTokens -> h.svc.Grant -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.BalanceResponse{Balance: balance})
}

// HandleListBalances godoc
// @Summary      List all provider balances
// @Description  Admin only
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.ProviderBalance
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/tokens/balances [get]
func (h *TokenHandler) HandleListBalances(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))

		return
	}

	balances, err := h.svc.ListBalances(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListBalances -> h.svc.ListBalances -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, balances)
}

// callerProvider loads the provider profile behind the authenticated user.
// Non-provider callers get a permission error.
func (h *TokenHandler) callerProvider(ctx *gin.Context) (domain.Provider, *response.Err) {
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
