package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/auth"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking"
	bookingHttp "github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking/http"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
	userHttp "github.com/sat-paing-thu-168/meeting-booking-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	UserService    user.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for the
// user and booking modules under /v1.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8081"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware gates account administration; managerMiddleware gates
	// the reporting endpoints (admins and owners).
	adminMiddleware := RequireRoles(user.RoleAdmin)
	managerMiddleware := RequireRoles(user.RoleAdmin, user.RoleOwner)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.BookingService, cfg.JWTManager)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, managerMiddleware)
	}

	return r
}
