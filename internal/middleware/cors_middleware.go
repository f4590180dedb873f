package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the dashboard origins. An empty list allows any
// origin without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()

	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}

	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	config.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept",
		"Origin", "Cache-Control", "X-Requested-With", RequestIDHeader,
	}
	config.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader}
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}
