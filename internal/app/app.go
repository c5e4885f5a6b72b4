// Package app wires repositories, services and HTTP handlers into a router.
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"societyhub/internal/config"
	"societyhub/internal/middleware"
	"societyhub/internal/modules/booking"
	"societyhub/internal/modules/directory"
	"societyhub/internal/modules/preapproval"
	"societyhub/internal/modules/visitor"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/pkg/jwt"
	"societyhub/internal/pkg/response"
	"societyhub/internal/repository"
)

type App struct {
	Router *gin.Engine
	JWT    *jwt.Service

	Bookings     *booking.Service
	PreApprovals *preapproval.Service
	Visitors     *visitor.Service
	Directory    *directory.Service
}

func New(cfg *config.Config, db *gorm.DB, clk clock.Clock) *App {
	if clk == nil {
		clk = clock.NewSystem()
	}
	loc := cfg.Society.Location

	userRepo := repository.NewUserRepository(db)
	apartmentRepo := repository.NewApartmentRepository(db)
	amenityRepo := repository.NewAmenityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	preApprovalRepo := repository.NewPreApprovalRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	txManager := repository.NewTxManager(db)

	a := &App{JWT: jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)}
	a.Directory = directory.NewService(userRepo, apartmentRepo, amenityRepo)
	a.Bookings = booking.NewService(bookingRepo, amenityRepo, userRepo, txManager, clk, loc)
	a.PreApprovals = preapproval.NewService(preApprovalRepo, visitorRepo, apartmentRepo, txManager, clk, loc)
	a.Visitors = visitor.NewService(visitorRepo, apartmentRepo, a.PreApprovals, txManager, clk, loc)

	a.Router = a.routes(cfg)
	return a
}

func (a *App) routes(cfg *config.Config) *gin.Engine {
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.HTTP.CORSAllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(a.JWT))
	{
		directory.NewHandler(a.Directory).RegisterRoutes(v1)
		booking.NewHandler(a.Bookings).RegisterRoutes(v1)
		preapproval.NewHandler(a.PreApprovals).RegisterRoutes(v1)
		visitor.NewHandler(a.Visitors).RegisterRoutes(v1)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}
