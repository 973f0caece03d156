package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/monitoring"
	"github.com/samu777684/financial360/payments"
)

// MercadoPagoWebhookHandler recibe las notificaciones del proveedor.
// Siempre responde 200 salvo error interno: un 500 le pide al proveedor
// que reintente la entrega.
func MercadoPagoWebhookHandler(c *gin.Context) {
	var body struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		// Cuerpo malformado: reconocer para que no reintente eternamente.
		monitoring.WebhooksReceived.WithLabelValues("malformed", "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	paymentID, err := strconv.ParseInt(body.Data.ID, 10, 64)
	if err != nil && body.Type == "payment" {
		monitoring.WebhooksReceived.WithLabelValues(body.Type, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	result, err := processor.HandleNotification(c.Request.Context(), payments.Notification{
		Type:      body.Type,
		PaymentID: paymentID,
	})
	if err != nil {
		monitoring.WebhooksReceived.WithLabelValues(body.Type, "error").Inc()
		logging.Sugar().Errorw("webhook no procesado", "type", body.Type, "payment_id", paymentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	monitoring.WebhooksReceived.WithLabelValues(body.Type, string(result)).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "result": string(result)})
}
