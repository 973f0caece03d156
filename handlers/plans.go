package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/models"
)

// GetPlansHandler lista el catálogo activo ordenado por precio.
func GetPlansHandler(c *gin.Context) {
	planes, err := models.GetActivePlans(c.Request.Context())
	if err != nil {
		logging.Sugar().Errorw("plan catalog query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error cargando planes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"planes":  planes,
	})
}
