package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/auth"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/models"
)

// LoginHandler valida credenciales y emite el par de tokens.
func LoginHandler(c *gin.Context) {
	var req struct {
		Correo     string `json:"correo" binding:"required,email"`
		Contrasena string `json:"contrasena" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Faltan correo o contraseña"})
		return
	}

	user, err := models.FindUserByEmail(c.Request.Context(), req.Correo)
	if err != nil {
		if models.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Correo o contraseña incorrectos"})
			return
		}
		logging.Sugar().Errorw("login query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}

	if !models.CheckPasswordHash(req.Contrasena, user.Contrasena) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Correo o contraseña incorrectos"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(cfg, user.ID, user.Correo, user.Rol)
	if err != nil {
		logging.Sugar().Errorw("token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Login exitoso",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"usuario": gin.H{
			"id":              user.ID,
			"nombre":          user.Nombre,
			"correo":          user.Correo,
			"rol":             user.Rol,
			"codigo_referido": user.CodigoReferido,
		},
	})
}

// RegisterHandler crea la cuenta; un código de referido opcional ata el
// referidor directo.
func RegisterHandler(c *gin.Context) {
	var req struct {
		Nombre         string `json:"nombre" binding:"required"`
		Correo         string `json:"correo" binding:"required,email"`
		Contrasena     string `json:"contrasena" binding:"required,min=6"`
		CodigoReferido string `json:"codigo_referido"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Todos los campos son obligatorios (contraseña mínimo 6 caracteres)"})
		return
	}

	exists, err := models.EmailExists(c.Request.Context(), req.Correo)
	if err != nil {
		logging.Sugar().Errorw("register lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error al crear cuenta"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Este correo ya está registrado"})
		return
	}

	var referidoPor *int64
	if req.CodigoReferido != "" {
		referrer, err := models.FindUserByReferralCode(c.Request.Context(), req.CodigoReferido)
		if err == nil {
			referidoPor = &referrer.ID
		}
		// Código inválido no bloquea el registro.
	}

	user, err := models.CreateUser(c.Request.Context(), req.Nombre, req.Correo, req.Contrasena, referidoPor)
	if err != nil {
		logging.Sugar().Errorw("register insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error al crear cuenta"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(cfg, user.ID, user.Correo, user.Rol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Cuenta creada correctamente",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"usuario": gin.H{
			"id":              user.ID,
			"nombre":          user.Nombre,
			"correo":          user.Correo,
			"rol":             user.Rol,
			"codigo_referido": user.CodigoReferido,
		},
	})
}

// ResetPasswordHandler restablece la contraseña por correo normalizado.
func ResetPasswordHandler(c *gin.Context) {
	var req struct {
		Correo          string `json:"correo" binding:"required,email"`
		NuevaContrasena string `json:"nueva_contrasena" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos inválidos"})
		return
	}

	updated, err := models.UpdatePassword(c.Request.Context(), req.Correo, req.NuevaContrasena)
	if err != nil {
		logging.Sugar().Errorw("password reset failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Correo no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contraseña actualizada"})
}

// RefreshHandler renueva el par de tokens a partir del refresh token.
func RefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "refresh_token requerido"})
		return
	}

	accessToken, refreshToken, err := auth.RefreshTokens(cfg, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Refresh token inválido"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}
