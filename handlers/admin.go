package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/models"
)

// PendingCommissionsHandler lista las comisiones por pagar con los
// datos de contacto del referidor.
func PendingCommissionsHandler(c *gin.Context) {
	pending, err := models.GetPendingCommissions(c.Request.Context())
	if err != nil {
		logging.Sugar().Errorw("pending commissions query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if pending == nil {
		pending = []models.PendingCommission{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comisiones": pending, "total": len(pending)})
}

// PayCommissionHandler marca una comisión pendiente como pagada.
func PayCommissionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "id inválido"})
		return
	}

	updated, err := models.MarkCommissionPaid(c.Request.Context(), id)
	if err != nil {
		logging.Sugar().Errorw("commission payout failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comisión no encontrada o ya procesada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comisión marcada como pagada"})
}

// RejectCommissionHandler cancela una comisión pendiente y descuenta el
// agregado del referidor.
func RejectCommissionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "id inválido"})
		return
	}

	cancelled, err := models.CancelCommission(c.Request.Context(), id)
	if err != nil {
		logging.Sugar().Errorw("commission cancellation failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if !cancelled {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comisión no encontrada o ya procesada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comisión cancelada"})
}

// AdminReferralsHandler es la vista de conciliación: el agregado
// incremental de cada referidor contra la suma derivada del historial.
func AdminReferralsHandler(c *gin.Context) {
	overviews, err := models.GetReferrerOverviews(c.Request.Context())
	if err != nil {
		logging.Sugar().Errorw("referrer overview query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if overviews == nil {
		overviews = []models.ReferrerOverview{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "referidores": overviews})
}

// AdminPaymentsHandler lista las comisiones ya pagadas con los datos
// bancarios del referidor, para verificar los desembolsos.
func AdminPaymentsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	pagos, err := models.GetPaidCommissions(c.Request.Context(), limit)
	if err != nil {
		logging.Sugar().Errorw("paid commissions query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if pagos == nil {
		pagos = []models.PaidCommission{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pagos": pagos, "total": len(pagos)})
}

// RecentUsersHandler lista los últimos registros con su referidor.
func RecentUsersHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	usuarios, err := models.GetRecentUsers(c.Request.Context(), limit)
	if err != nil {
		logging.Sugar().Errorw("recent users query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}
	if usuarios == nil {
		usuarios = []models.RecentUser{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usuarios": usuarios})
}
