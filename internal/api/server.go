package api

import (
	"net/smtp"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/centralevents/central-events-api/docs"
	v1 "github.com/centralevents/central-events-api/internal/api/handler/v1"
	"github.com/centralevents/central-events-api/internal/api/middleware"
	"github.com/centralevents/central-events-api/internal/config"
	"github.com/centralevents/central-events-api/internal/notification"
	"github.com/centralevents/central-events-api/internal/repository"
	"github.com/centralevents/central-events-api/internal/repository/dao"
	"github.com/centralevents/central-events-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	providerHandler := s.initProviderHandler(db)
	requestHandler := s.initRequestHandler(db)
	tokenHandler := s.initTokenHandler(db)
	reviewHandler := s.initReviewHandler(db)
	favoriteHandler := s.initFavoriteHandler(db)
	userHandler := s.initUserHandler(db)
	s.MountHandlers(authHandler, providerHandler, requestHandler, tokenHandler, reviewHandler, favoriteHandler, userHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	providerRepo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	svc := service.NewAuthService(userRepo, providerRepo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initProviderHandler(db *gorm.DB) *v1.ProviderHandler {
	repo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	svc := service.NewProviderService(repo)
	handler := v1.NewProviderHandler(svc)

	return handler
}

func (s *Server) initRequestHandler(db *gorm.DB) *v1.RequestHandler {
	repo := repository.NewRequestRepository(dao.NewRequestDAO(db))
	providerRepo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewRequestService(repo, providerRepo, userRepo, s.newNotifier())
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewRequestHandler(svc, uSvc)

	return handler
}

func (s *Server) initTokenHandler(db *gorm.DB) *v1.TokenHandler {
	repo := repository.NewTokenRepository(dao.NewTokenDAO(db))
	providerRepo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	svc := service.NewTokenService(repo, providerRepo)
	pSvc := service.NewProviderService(providerRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewTokenHandler(svc, pSvc, uSvc)

	return handler
}

func (s *Server) initReviewHandler(db *gorm.DB) *v1.ReviewHandler {
	repo := repository.NewReviewRepository(dao.NewReviewDAO(db))
	requestRepo := repository.NewRequestRepository(dao.NewRequestDAO(db))
	providerRepo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	svc := service.NewReviewService(repo, requestRepo, providerRepo)
	pSvc := service.NewProviderService(providerRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewReviewHandler(svc, pSvc, uSvc)

	return handler
}

func (s *Server) initFavoriteHandler(db *gorm.DB) *v1.FavoriteHandler {
	repo := repository.NewFavoriteRepository(dao.NewFavoriteDAO(db))
	providerRepo := repository.NewProviderRepository(dao.NewProviderDAO(db))
	svc := service.NewFavoriteService(repo, providerRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewFavoriteHandler(svc, uSvc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	svc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) newNotifier() notification.Notifier {
	if s.Config.SMTP != nil && s.Config.SMTP.Addr != "" {
		var auth smtp.Auth
		if s.Config.SMTP.Username != "" {
			host, _, _ := strings.Cut(s.Config.SMTP.Addr, ":")
			auth = smtp.PlainAuth("", s.Config.SMTP.Username, s.Config.SMTP.Password, host)
		}

		return notification.NewSMTPNotifier(s.Config.SMTP.Addr, s.Config.SMTP.From, auth)
	}

	return notification.NewLogNotifier()
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, providerHandler *v1.ProviderHandler, requestHandler *v1.RequestHandler, tokenHandler *v1.TokenHandler, reviewHandler *v1.ReviewHandler, favoriteHandler *v1.FavoriteHandler, userHandler *v1.UserHandler) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/providers", providerHandler.HandleGetProviders)
		public.GET("/providers/:slug", providerHandler.HandleGetProviderBySlug)
		public.GET("/providers/:slug/reviews", reviewHandler.HandleGetProviderReviews)

		// Quote submission is open to anonymous organizers.
		public.POST("/requests", authenticator.VerifyJWTOptional(), requestHandler.HandleCreateRequest)
	}

	authed := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		authed.GET("/requests", requestHandler.HandleGetRequests)
		authed.GET("/requests/:requestID", requestHandler.HandleGetRequest)
		authed.PATCH("/requests/:requestID/status", requestHandler.HandleUpdateRequestStatus)
		authed.POST("/requests/:requestID/messages", requestHandler.HandlePostMessage)
		authed.GET("/requests/:requestID/unlock", tokenHandler.HandleGetUnlockStatus)

		authed.GET("/tokens", tokenHandler.HandleGetTokenStatus)
		authed.POST("/tokens/purchase", tokenHandler.HandlePurchaseTokens)

		authed.POST("/reviews", reviewHandler.HandleCreateReview)
		authed.POST("/reviews/:reviewID/reply", reviewHandler.HandleReplyToReview)

		authed.GET("/favorites", favoriteHandler.HandleListFavorites)
		authed.POST("/favorites", favoriteHandler.HandleToggleFavorite)

		authed.GET("/users/me", userHandler.HandleGetProfile)
		authed.PATCH("/users/me", userHandler.HandleUpdateProfile)
		authed.PATCH("/users/me/password", userHandler.HandleChangePassword)

		authed.POST("/admin/tokens/grant", tokenHandler.HandleGrantTokens)
		authed.GET("/admin/tokens/balances", tokenHandler.HandleListBalances)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Central Events API"
	docs.SwaggerInfo.Description = "Event marketplace API with a token-gated quote request workflow."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
