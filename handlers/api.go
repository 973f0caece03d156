package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/database"
)

var startTime = time.Now()

// HealthHandler responde el estado del servicio y de la base de datos.
func HealthHandler(c *gin.Context) {
	dbStatus := "ok"
	if err := database.Pool.Ping(c.Request.Context()); err != nil {
		dbStatus = "error"
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    dbStatus,
		"service":   "financial360-backend",
		"uptime":    time.Since(startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
