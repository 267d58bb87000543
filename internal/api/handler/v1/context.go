package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/api/handler/v1/response"
	"github.com/centralevents/central-events-api/internal/api/middleware"
	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext loads the authenticated user placed on the context by
// the JWT middleware.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	userID := ctx.GetUint(middleware.ContextKeyUserID)
	if userID == 0 {
		return domain.User{}, response.ErrUnauthorized(errors.New("not authenticated"))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(errors.New("unknown user"))
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("v1.getUserFromContext -> svc.GetUser -> %w", err))
	}

	return user, nil
}
