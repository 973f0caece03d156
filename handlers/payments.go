package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/mercadopago"
	"github.com/samu777684/financial360/models"
)

// CreatePreferenceHandler crea la preferencia de pago y registra la
// transacción pendiente con su external_reference. Permite checkout de
// invitado (user_id opcional).
func CreatePreferenceHandler(c *gin.Context) {
	var req struct {
		PlanID         int    `json:"plan_id" binding:"required"`
		UserID         *int64 `json:"user_id"`
		Correo         string `json:"correo"`
		Nombre         string `json:"nombre"`
		CodigoReferido string `json:"codigo_referido"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Plan requerido"})
		return
	}

	plan, err := models.GetActivePlanByID(c.Request.Context(), req.PlanID)
	if err != nil {
		if models.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Plan no encontrado o inactivo"})
			return
		}
		logging.Sugar().Errorw("plan lookup failed", "plan", req.PlanID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}

	if req.UserID != nil {
		if _, err := models.GetUserByID(c.Request.Context(), *req.UserID); err != nil {
			if models.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no existe"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
			return
		}
	}

	correo := req.Correo
	if correo == "" {
		correo = "cliente@financial360.com"
	}
	nombre := req.Nombre
	if nombre == "" {
		nombre = "Cliente Financial360"
	}

	externalReference := models.NewExternalReference()
	pref := &mercadopago.PreferenceRequest{
		Items: []mercadopago.PreferenceItem{{
			ID:          strconv.Itoa(plan.ID),
			Title:       "Financial360 - " + plan.Nombre,
			Description: plan.Descripcion,
			Quantity:    1,
			CurrencyID:  plan.Moneda,
			UnitPrice:   float64(plan.PrecioCentavos) / 100,
		}},
		Payer:             mercadopago.PreferencePayer{Email: correo, Name: nombre},
		ExternalReference: externalReference,
		BackURLs: mercadopago.BackURLs{
			Success: cfg.FrontendURL + "/pago-exitoso",
			Failure: cfg.FrontendURL + "/pago-fallido",
			Pending: cfg.FrontendURL + "/pago-pendiente",
		},
		AutoReturn:      "approved",
		NotificationURL: cfg.BackendURL + "/api/webhooks/mercadopago",
	}

	resp, err := mpClient.CreatePreference(c.Request.Context(), pref)
	if err != nil {
		logging.Sugar().Errorw("preference creation failed", "plan", plan.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error con Mercado Pago"})
		return
	}

	var codigo *string
	if req.CodigoReferido != "" {
		codigo = &req.CodigoReferido
	}
	if _, err := models.CreatePendingTransaction(c.Request.Context(),
		req.UserID, plan.ID, resp.ID, externalReference, plan.PrecioCentavos, plan.Moneda, codigo); err != nil {
		logging.Sugar().Errorw("pending transaction not recorded", "external_reference", externalReference, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"id":                 resp.ID,
		"init_point":         resp.InitPoint,
		"sandbox_init_point": resp.SandboxInitPoint,
		"external_reference": externalReference,
	})
}

// VerifyPaymentHandler consulta el estado autoritativo de un pago.
func VerifyPaymentHandler(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("paymentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "paymentId inválido"})
		return
	}

	payment, err := mpClient.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		logging.Sugar().Errorw("payment verification failed", "payment_id", paymentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error verificando pago"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"status":             payment.Status,
		"status_detail":      payment.StatusDetail,
		"transaction_amount": payment.TransactionAmount,
		"date_approved":      payment.DateApproved,
	})
}

// MembershipHandler reporta la membresía del usuario. Una membresía
// vencida se apaga como efecto del read y responde expirada=true.
func MembershipHandler(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId inválido"})
		return
	}

	status, err := models.GetMembershipStatus(c.Request.Context(), userID)
	if err != nil {
		logging.Sugar().Errorw("membership query failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error obteniendo membresía"})
		return
	}

	if status.Expirada {
		c.JSON(http.StatusOK, gin.H{"success": true, "activa": false, "expirada": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"activa":    status.Activa,
		"membresia": status.Membresia,
	})
}
