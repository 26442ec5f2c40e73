package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	ginCors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/bizdir-ops/internal/api/handlers"
	"github.com/andresuchdata/bizdir-ops/internal/api/middleware"
	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

type Services struct {
	CORSService    *service.CORSService
	UploadService  *service.UploadService
	RecordsService *service.RecordsService
	PolicyPath     string
	UploadTempDir  string
}

// NewRouter builds the ops API. policy drives the API's own CORS headers so
// the browser sees the same rules the bucket does.
func NewRouter(services *Services, policy cors.Policy) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		ginCors.New(corsConfig(policy)),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.CORSService != nil {
			corsHandler := handlers.NewCORSHandler(services.CORSService, services.PolicyPath)
			apiGroup.GET("/cors", corsHandler.GetCORS)
			apiGroup.PUT("/cors", corsHandler.PutCORS)
		}

		if services.UploadService != nil {
			objectHandler := handlers.NewObjectHandler(services.UploadService, services.UploadTempDir)
			apiGroup.POST("/objects", objectHandler.UploadObject)
		}

		if services.RecordsService != nil {
			recordsHandler := handlers.NewRecordsHandler(services.RecordsService)
			recordsGroup := apiGroup.Group("/records/:collection")
			{
				recordsGroup.GET("", recordsHandler.FindRecords)
				recordsGroup.GET("/:id", recordsHandler.GetRecord)
			}
		}
	}

	return router
}

// corsConfig merges every rule of policy into one middleware config. An
// empty policy falls back to the local web app dev origins.
func corsConfig(policy cors.Policy) ginCors.Config {
	cfg := ginCors.Config{
		AllowOrigins:  []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		AllowWildcard: true,
		MaxAge:        12 * time.Hour,
	}
	if len(policy) == 0 {
		return cfg
	}

	var (
		origins, methods, expose []string
		allowAll                 bool
		maxAge                   int
	)
	for _, rule := range policy {
		for _, origin := range rule.Origins {
			origin = strings.TrimSpace(origin)
			switch {
			case origin == "*":
				allowAll = true
			case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
				origins = appendUnique(origins, origin)
			}
		}
		for _, method := range rule.Methods {
			methods = appendUnique(methods, strings.ToUpper(strings.TrimSpace(method)))
		}
		for _, header := range rule.ResponseHeaders {
			expose = appendUnique(expose, strings.TrimSpace(header))
		}
		maxAge = max(maxAge, rule.MaxAgeSeconds)
	}

	switch {
	case allowAll:
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	}
	if len(methods) > 0 {
		cfg.AllowMethods = appendUnique(methods, "OPTIONS")
	}
	for _, header := range expose {
		cfg.ExposeHeaders = appendUnique(cfg.ExposeHeaders, header)
	}
	if maxAge > 0 {
		cfg.MaxAge = time.Duration(maxAge) * time.Second
	}
	return cfg
}

func appendUnique(values []string, v string) []string {
	if v == "" || slices.Contains(values, v) {
		return values
	}
	return append(values, v)
}
