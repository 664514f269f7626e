package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"perplexacare/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	chatH *ChatHandler,
	profileH *ProfileHandler,
	sessionH *SessionHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging y recovery. La identidad es opcional
	// en casi todas las rutas: sin token se resuelve el usuario guest.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), OptionalJWTMiddleware(jwtSvc))

	api := r.Group("/api")
	api.POST("/chat", chatH.PostMessage)
	api.GET("/profile", profileH.GetProfile)
	api.PUT("/profile", profileH.PutProfile)
	api.GET("/session-status", sessionH.SessionStatus)
	api.GET("/conversation-history", sessionH.ConversationHistory)

	auth := api.Group("/auth")
	auth.POST("/signup", JWTAuthMiddleware(jwtSvc), authH.Signup)
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/oauth", authH.OAuthLogin)
	auth.POST("/password-reset", authH.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authH.ConfirmPasswordReset)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
