package httpapi

import (
	"net/http"
	"time"

	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

func NewRouter(cfg *config.Config, svc *stats.Service) *gin.Engine {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// The query API is unauthenticated and read-only; any origin may read it.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	h := NewHandler(svc)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/today-usage", h.TodayUsage)
	api.GET("/weekly-usage", h.WeeklyUsage)
	api.GET("/total-usage", h.TotalUsage)
	api.GET("/ranking", h.Ranking)
	api.GET("/ranking/users", h.UserRanking)
	api.GET("/monthly-report", h.MonthlyReport)
	return r
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
