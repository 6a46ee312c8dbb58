package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"calendarapi/middlewares"
	"calendarapi/models"
	"calendarapi/services"
	"calendarapi/utils"
)

type deps struct {
	users  models.UserRepository
	events *services.EventService
	admin  *services.AdminService
	inv    *utils.CacheInvalidator
}

// RegisterRoutes wires the HTTP surface: login, event CRUD, join/leave,
// user listing and the admin operations, behind rate limits and a daily
// per-user quota.
func RegisterRoutes(
	server *gin.Engine,
	users models.UserRepository,
	events *services.EventService,
	admin *services.AdminService,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
) {
	d := &deps{users: users, events: events, admin: admin, inv: inv}

	// Global IP limiter.
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// Stricter limit on credential guessing.
	loginLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/login",
		loginLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)

	// Everything else requires a verified identity.
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate)

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + c.GetString("username")
	}))

	auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  2000,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			username := c.GetString("username")
			if username == "" {
				return ""
			}
			return "quota:user:" + username + ":day"
		},
	}))

	// The cache sits behind Authenticate so a cached public listing is
	// never served to an unauthenticated caller.
	auth.Use(middlewares.ResponseCache(rdb, 30*time.Second))

	auth.GET("/events", d.getEvents)
	auth.GET("/events/public", d.getPublicEvents)
	auth.POST("/events", d.createEvent)
	auth.PUT("/events/:id", d.updateEvent)
	auth.DELETE("/events/:id", d.deleteEvent)
	auth.POST("/events/:id/join", d.joinEvent)
	auth.DELETE("/events/:id/join", d.leaveEvent)

	auth.GET("/users", d.listUsers)
	auth.POST("/users", d.createUser)
	auth.PUT("/users/:username/password", d.changePassword)
	auth.POST("/admin/reset", d.resetAll)
}

// identity rebuilds the caller's identity from the values the Authenticate
// middleware stored.
func identity(c *gin.Context) models.Identity {
	return models.Identity{
		Username: c.GetString("username"),
		Role:     models.Role(c.GetString("role")),
	}
}

func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized for this operation."})
	case errors.Is(err, models.ErrInvalidRange), errors.Is(err, models.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"message": "This username already exists."})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Try again later."})
	}
}
