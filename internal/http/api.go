package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"elite-app/internal/auth"
	"elite-app/internal/service"
	"elite-app/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	activities service.ActivityService
	status     *service.StatusService
	storage    storage.Service
	tokens     *auth.TokenIssuer
	revoker    auth.Revoker
	logger     *logrus.Logger
}

func NewHandler(
	users service.UserService,
	activities service.ActivityService,
	status *service.StatusService,
	store storage.Service,
	tokens *auth.TokenIssuer,
	revoker auth.Revoker,
	logger *logrus.Logger,
) *Handler {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:      users,
		activities: activities,
		status:     status,
		storage:    store,
		tokens:     tokens,
		revoker:    revoker,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.GET("/users", h.listUsers)
	router.GET("/activities", h.listActivities)
	router.GET("/status", h.getStatus)
	router.POST("/status/update", h.updateStatus)
	router.GET("/uploads/:name", h.serveUpload)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	authed := router.Group("/", h.requireAuth())
	{
		authed.POST("/logout", h.logout)
		authed.GET("/user/me", h.me)
		authed.PUT("/user/update", h.updateProfile)
		authed.PUT("/users/:id", h.adminUpdate)
		authed.DELETE("/users/:id", h.deleteUser)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request")
	}
}

// respondError maps service errors to status codes. Anything unrecognised is
// logged and reported as a generic server error.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"msg": verr.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"msg": "User already exists"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
	case errors.Is(err, service.ErrIncorrectPassword):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Incorrect current password"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"msg": "Not allowed to modify this user"})
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": fallback})
	}
}
