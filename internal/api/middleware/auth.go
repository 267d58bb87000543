package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/centralevents/central-events-api/internal/pkg/jwthelper"
)

// ContextKeyUserID is where the authenticator stores the caller's user ID.
const ContextKeyUserID = "userID"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := a.claimsFromHeader(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "invalid or missing bearer token",
			})
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Next()
	}
}

// VerifyJWTOptional attaches the caller's identity when a valid bearer token
// is present and passes anonymous requests through untouched. Used on routes
// open to anonymous organizers (quote submission).
func (a *Authenticator) VerifyJWTOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := a.claimsFromHeader(ctx)
		if err == nil {
			ctx.Set(ContextKeyUserID, claims.UserID)
		}

		ctx.Next()
	}
}

var errNoBearerToken = errors.New("no bearer token")

func (a *Authenticator) claimsFromHeader(ctx *gin.Context) (*jwthelper.UserClaims, error) {
	header := ctx.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, errNoBearerToken
	}

	return jwthelper.ParseToken(a.signingKey, token)
}
