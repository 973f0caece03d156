package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"

	"github.com/samu777684/financial360/database"
	"github.com/samu777684/financial360/middleware"
)

// SetupTwoFAHandler genera el secreto TOTP del usuario autenticado y
// devuelve el QR para Google Authenticator. El secreto queda guardado
// deshabilitado hasta que se verifique el primer código.
func SetupTwoFAHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	var correo string
	err := database.Pool.QueryRow(c.Request.Context(),
		`SELECT correo FROM usuarios WHERE id = $1`, userID).Scan(&correo)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Financial360",
		AccountName: correo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generando secreto"})
		return
	}

	_, err = database.Pool.Exec(c.Request.Context(), `
        INSERT INTO twofa (user_id, secret, enabled)
        VALUES ($1, $2, false)
        ON CONFLICT (user_id)
        DO UPDATE SET secret = $2, enabled = false, updated_at = NOW()
    `, userID, key.Secret())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error guardando secreto"})
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generando QR"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"secret":  key.Secret(),
		"qr":      base64.StdEncoding.EncodeToString(png),
		"url":     key.URL(),
	})
}

// VerifyTwoFAHandler valida el primer código y habilita 2FA.
func VerifyTwoFAHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Código de 6 dígitos requerido"})
		return
	}

	var secret string
	err := database.Pool.QueryRow(c.Request.Context(),
		`SELECT secret FROM twofa WHERE user_id = $1`, userID).Scan(&secret)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "2FA no configurado"})
		return
	}

	if !totp.Validate(req.Code, secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Código inválido"})
		return
	}

	_, err = database.Pool.Exec(c.Request.Context(),
		`UPDATE twofa SET enabled = true, updated_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error habilitando 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "2FA habilitado"})
}

// DisableTwoFAHandler apaga 2FA previa verificación de un código vigente.
func DisableTwoFAHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Código de 6 dígitos requerido"})
		return
	}

	var secret string
	err := database.Pool.QueryRow(c.Request.Context(),
		`SELECT secret FROM twofa WHERE user_id = $1`, userID).Scan(&secret)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "2FA no configurado"})
		return
	}

	if !totp.Validate(req.Code, secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Código inválido"})
		return
	}

	_, err = database.Pool.Exec(c.Request.Context(),
		`UPDATE twofa SET enabled = false, updated_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error deshabilitando 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "2FA deshabilitado"})
}

// TwoFAStatusHandler reporta si el usuario tiene 2FA configurado.
func TwoFAStatusHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No autenticado"})
		return
	}

	var enabled bool
	err := database.Pool.QueryRow(c.Request.Context(),
		`SELECT enabled FROM twofa WHERE user_id = $1`, userID).Scan(&enabled)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false, "configurado": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": enabled, "configurado": true})
}
