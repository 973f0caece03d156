package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/auth"
	"github.com/samu777684/financial360/config"
)

// AuthMiddleware valida el bearer token y adjunta la identidad al contexto.
// Faltante, expirado e inválido se reportan como condiciones distintas.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Acceso denegado: token no proporcionado",
				"code":    "TOKEN_MISSING",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "bearer")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Formato de autorización inválido",
				"code":    "TOKEN_MISSING",
			})
			return
		}

		claims, err := auth.ValidateAccessToken(cfg, parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Sesión expirada. Por favor inicia sesión nuevamente.",
					"code":    "TOKEN_EXPIRED",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Token inválido",
				"code":    "TOKEN_INVALID",
			})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// AdminMiddleware exige rol admin sobre la identidad ya adjunta.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Autenticación requerida",
			})
			return
		}
		if role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Acceso denegado: requiere permisos de administrador",
			})
			return
		}
		c.Next()
	}
}

// UserID devuelve la identidad adjunta por AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
