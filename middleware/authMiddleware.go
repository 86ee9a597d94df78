package middleware

import (
	"strings"

	"crm/models"
	"crm/utils"

	"github.com/gin-gonic/gin"
)

const RoleAdmin = "admin"

// AuthConfig enables credential checks when either field is set.
type AuthConfig struct {
	JWTSecret  []byte
	APIKeyHash string
}

func (a AuthConfig) enabled() bool {
	return len(a.JWTSecret) > 0 || a.APIKeyHash != ""
}

// AuthMiddleware guards write routes. A request passes with a bearer token
// carrying role, or with an X-API-Key matching the configured hash.
func AuthMiddleware(cfg AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.enabled() {
			c.Next()
			return
		}

		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" && cfg.APIKeyHash != "" {
			if utils.VerifyAPIKey(cfg.APIKeyHash, apiKey) != nil {
				abortWithError(c, models.Unauthorized("Invalid API key"))
				return
			}
			c.Set("role", role)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(cfg.JWTSecret) == 0 {
			abortWithError(c, models.Unauthorized("Authorization token not provided"))
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, models.Unauthorized("Invalid Authorization header format"))
			return
		}

		claims, err := utils.ValidateToken(cfg.JWTSecret, parts[1])
		if err != nil || claims.Role != role {
			abortWithError(c, models.Unauthorized("Invalid authorization token"))
			return
		}

		c.Set("clientID", claims.ID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// WriteGuard applies AuthMiddleware to mutating methods only.
func WriteGuard(cfg AuthConfig) gin.HandlerFunc {
	auth := AuthMiddleware(cfg, RoleAdmin)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
			auth(c)
		default:
			c.Next()
		}
	}
}
