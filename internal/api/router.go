package api

import (
	"net/http" // HTTP status codes

	"travel_risk/internal/domain"     // Roles
	"travel_risk/internal/middleware" // Custom middleware
	"travel_risk/internal/risk"       // Risk provider
	"travel_risk/internal/utils"      // Cache

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps are the collaborators the handlers need
type Deps struct {
	DB     *gorm.DB      // Database
	Cache  *utils.Cache  // Redis cache, may be disabled
	Risk   risk.Provider // External risk assessment
	Tokens TokenSettings // JWT settings
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method \"" + c.Request.Method + "\" not allowed."})
	})

	r.GET("/healthz", HealthHandler(d.DB, d.Cache))  // Liveness and dependencies
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus exposition

	auth := middleware.JWTAuthMiddleware(d.Tokens.Secret, d.DB)

	// Identity routes
	userGroup := r.Group("/user")
	userGroup.POST("/register", RegisterHandler(d.DB, d.Cache))      // Registration endpoint
	userGroup.POST("/login", LoginHandler(d.DB, d.Tokens))           // Login endpoint
	userGroup.POST("/token/refresh", RefreshHandler(d.DB, d.Tokens)) // Access token refresh
	userGroup.GET("/me", auth, MeHandler())                          // Current user
	userGroup.GET("/users", auth, middleware.RequireRoles(domain.RoleHRManager, domain.RoleAdmin), ListUsersHandler(d.DB, d.Cache))

	// Traveler and trip routes (protected by JWT)
	core := r.Group("/core", auth)
	core.GET("/travelers/", ListTravelersHandler(d.DB, d.Cache))
	core.POST("/travelers/", CreateTravelerHandler(d.DB, d.Cache))
	core.GET("/travelers/:id/", GetTravelerHandler(d.DB))
	core.PUT("/travelers/:id/", UpdateTravelerHandler(d.DB, d.Cache, false))
	core.PATCH("/travelers/:id/", UpdateTravelerHandler(d.DB, d.Cache, true))
	core.DELETE("/travelers/:id/", DeleteTravelerHandler(d.DB, d.Cache))

	core.GET("/trips/", ListTripsHandler(d.DB, d.Cache))
	core.POST("/trips/", CreateTripHandler(d.DB, d.Cache))
	core.GET("/trips/:id/", GetTripHandler(d.DB))
	core.PUT("/trips/:id/", UpdateTripHandler(d.DB, d.Cache, false))
	core.PATCH("/trips/:id/", UpdateTripHandler(d.DB, d.Cache, true))
	core.DELETE("/trips/:id/", DeleteTripHandler(d.DB, d.Cache))
	core.POST("/trips/:id/analyze-risk/", AnalyzeRiskHandler(d.DB, d.Risk))

	return r
}
