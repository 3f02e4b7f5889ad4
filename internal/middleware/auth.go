package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
)

// AuthConfig contém a configuração do token de operador
type AuthConfig struct {
	// TokenAPI vazio deixa as rotas abertas
	TokenAPI string
}

// BearerAuth retorna um middleware que valida um token estático de operador,
// usado nas rotas de métricas
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TokenAPI == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "Missing Authorization header",
				Code:  "TOKEN_MISSING",
			})
			return
		}

		// Extrai o token do formato "Bearer {token}"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "Invalid format, expected: Bearer {token}",
				Code:  "TOKEN_FORMAT",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.TokenAPI)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "Invalid token",
				Code:  "TOKEN_INVALID",
			})
			return
		}

		c.Next()
	}
}
