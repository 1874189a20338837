package http

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ginzap "github.com/gin-contrib/zap"

	"github.com/flarexio/social"
	"github.com/flarexio/social/conf"
)

func NewRouter(endpoints social.EndpointSet, log *zap.Logger, cfg conf.CORS) *gin.Engine {
	r := gin.New()
	r.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		corsMiddleware(cfg),
	)

	// GET /health
	r.GET("/health", HealthHandler)

	// GET /metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		users := api.Group("/User")

		// POST /api/User/AddUser
		users.POST("/AddUser", AddUserHandler(endpoints.AddUser))

		// GET /api/User/:id
		users.GET("/:id", UserHandler(endpoints.User))

		friends := api.Group("/Friend")

		// POST /api/Friend/AddFriend
		friends.POST("/AddFriend", AddFriendHandler(endpoints.AddFriend))

		// GET /api/Friend/:userId
		friends.GET("/:userId", FriendsHandler(endpoints.Friends))
	}

	return r
}

func corsMiddleware(cfg conf.CORS) gin.HandlerFunc {
	c := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}

	return cors.New(c)
}
