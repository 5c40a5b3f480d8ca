package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds the cross-origin policy of the API.
type CORSConfig struct {
	// AllowedOrigins lists exact origins. Empty or "*" allows any origin,
	// which also disables credentials.
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORS builds the gin-contrib/cors handler. It returns an error instead of
// panicking when an origin is malformed.
func CORS(cfg CORSConfig) (gin.HandlerFunc, error) {
	cc := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader, PatientHeader, DoctorHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        cfg.MaxAge,
	}
	if cc.MaxAge <= 0 {
		cc.MaxAge = 12 * time.Hour
	}

	if allowAll(cfg.AllowedOrigins) {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return cors.New(cc), nil
}

func allowAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
