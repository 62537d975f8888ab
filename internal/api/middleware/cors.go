package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ConfigCORS builds the CORS policy from the comma-separated domain list
// in config. An empty list allows nothing besides same-origin requests.
func ConfigCORS(allowedDomains string) gin.HandlerFunc {
	var origins []string
	for _, domain := range strings.Split(allowedDomains, ",") {
		if trimmed := strings.TrimSpace(domain); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
