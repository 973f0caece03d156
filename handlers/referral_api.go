package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/middleware"
	"github.com/samu777684/financial360/models"
)

// ReferralSummaryHandler devuelve el resumen de referidos del usuario
// autenticado: código, totales y desglose pendiente/pagado.
func ReferralSummaryHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	summary, err := models.GetReferralSummary(c.Request.Context(), userID)
	if err != nil {
		if models.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
			return
		}
		logging.Sugar().Errorw("referral summary failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resumen": summary})
}

// ReferralHistoryHandler devuelve el historial de comisiones del usuario
// autenticado, más recientes primero. Acepta ?limit=N.
func ReferralHistoryHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := models.GetLedgerEntries(c.Request.Context(), userID, limit)
	if err != nil {
		logging.Sugar().Errorw("referral history failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}

	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "historial": entries, "total": len(entries)})
}
