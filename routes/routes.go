package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-mess-api/handlers"
	"student-mess-api/metrics"
	"student-mess-api/middleware"
	"student-mess-api/models"
)

// Deps is everything the router needs from the composition root.
type Deps struct {
	Handler     *handlers.Handler
	Sessions    middleware.SessionResolver
	Limiter     *middleware.RateLimiter
	CORSOrigins string
	ErrorDetail bool
	Log         *zap.Logger
}

// NewRouter builds the engine with the global middleware chain and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.Recovery(d.Log),
		metrics.Instrument(),
		middleware.CORS(splitOrigins(d.CORSOrigins)),
		middleware.ErrorHandler(d.Log, d.ErrorDetail),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Student Mess Delivery API is running")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, d)
	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func SetupRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	authRequired := middleware.AuthRequired(d.Sessions)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/health", handlers.Health)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Auth ───────────────────────────────────────────────────────
	authGroup := r.Group("/api/auth")
	{
		authGroup.GET("/health", handlers.Health)
		credentials := authGroup.Group("")
		if d.Limiter != nil {
			credentials.Use(d.Limiter.Handler())
		}
		credentials.POST("/register", h.Register)
		credentials.POST("/login", h.Login)

		authGroup.GET("/me", authRequired, h.Me)
		authGroup.GET("/logout", authRequired, h.Logout)
	}

	// ── Student routes ─────────────────────────────────────────────
	student := r.Group("/api/students")
	student.Use(authRequired, middleware.RoleRequired(models.RoleStudent))
	{
		student.GET("/providers", h.ListProviders)
		student.GET("/providers/:id", h.GetProviderDetails)
		student.POST("/subscribe", h.Subscribe)
		student.GET("/subscriptions", h.GetSubscriptions)
		student.POST("/reviews/:providerId", h.CreateReview)
		student.POST("/menu-items/:id/reviews", h.CreateMenuItemReview)

		student.POST("/orders", h.PlaceOrder)
		student.GET("/orders", h.GetMyOrders)
		student.GET("/orders/:id", h.GetOrderDetail)
		student.PUT("/orders/:id/cancel", h.CancelOrder)
		student.PUT("/orders/:id/rate", h.RateOrder)
	}

	// ── Provider routes ────────────────────────────────────────────
	provider := r.Group("/api/providers")
	provider.Use(authRequired, middleware.RoleRequired(models.RoleProvider))
	{
		provider.GET("/profile", h.GetProviderProfile)
		provider.PUT("/profile", h.UpdateProviderProfile)

		provider.POST("/meal-plans", h.CreateMealPlan)
		provider.GET("/meal-plans", h.GetMealPlans)

		provider.POST("/menu-items", h.CreateMenuItem)
		provider.GET("/menu-items", h.GetMenuItems)
		provider.PUT("/menu-items/:id/availability", h.SetMenuItemAvailability)
		provider.DELETE("/menu-items/:id", h.DeleteMenuItem)

		provider.GET("/subscribers", h.GetSubscribers)
		provider.GET("/orders", h.GetProviderOrders)
		provider.PUT("/orders/:id/status", h.UpdateOrderStatus)
		provider.GET("/stats", h.GetProviderStats)
	}

	// ── User routes (any role) ─────────────────────────────────────
	user := r.Group("/api/user")
	user.Use(authRequired)
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.PUT("/password", h.UpdatePassword)
	}
}
