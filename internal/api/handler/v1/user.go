package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/api/handler/v1/request"
	"github.com/centralevents/central-events-api/internal/api/handler/v1/response"
	"github.com/centralevents/central-events-api/internal/domain"
)

// ProfileService extends the user lookup with the self-service mutations.
type ProfileService interface {
	UserService
	UpdateProfile(ctx context.Context, userID uint, name string) (domain.User, error)
	ChangePassword(ctx context.Context, userID uint, password string) error
}

type UserHandler struct {
	svc ProfileService
}

func NewUserHandler(svc ProfileService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetProfile godoc
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.ProfileResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me [get]
func (h *UserHandler) HandleGetProfile(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	ctx.JSON(http.StatusOK, profileResponse(user))
}

// HandleUpdateProfile godoc
// @Summary      Update the caller's profile
// @Tags         users
// @Produce      json
// @Param        request   body      request.UpdateProfileRequest true "request body"
// @Success      200  {object}  response.ProfileResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me [patch]
func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.UpdateProfile(ctx.Request.Context(), user.ID, req.Name)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateProfile -> h.svc.UpdateProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, profileResponse(updated))
}

// HandleChangePassword godoc
// @Summary      Change the caller's password
// @Description  Also lets an organizer created from an anonymous quote submission set a first password
// @Tags         users
// @Produce      json
// @Param        request   body      request.ChangePasswordRequest true "request body"
// @Success      204  "no content"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me/password [patch]
func (h *UserHandler) HandleChangePassword(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.ChangePassword(ctx.Request.Context(), user.ID, req.Password); err != nil {
		err = fmt.Errorf("v1.HandleChangePassword -> h.svc.ChangePassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

func profileResponse(user domain.User) response.ProfileResponse {
	return response.ProfileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
