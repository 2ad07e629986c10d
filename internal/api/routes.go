package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"site_crawler/internal/logger"
)

const corsMaxAge = 12 * time.Hour

// NewRouter builds the gin engine with every route of the service.
func NewRouter(handler *Handler, log logger.Interface) *gin.Engine {
	router := gin.New()
	router.Use(recoveryMiddleware(log), loggerMiddleware(log), corsMiddleware())

	router.GET("/", handler.Index)
	router.GET("/health", handler.HealthCheck)
	router.POST("/crawl", handler.Crawl)
	router.GET("/crawls/:id/documents", handler.CrawlDocuments)

	return router
}

// corsMiddleware allows any origin, without credentials.
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length", crawlIDHeader},
		MaxAge:          corsMaxAge,
	})
}

func loggerMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"crawl_id", c.Writer.Header().Get(crawlIDHeader),
		)
	}
}

func recoveryMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()
	}
}
