package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/middleware"
	"github.com/samu777684/financial360/models"
)

// GetProfileHandler devuelve el perfil; si todavía no existe, campos
// vacíos (el frontend los usa para prellenar el formulario).
func GetProfileHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Autenticación requerida"})
		return
	}

	profile, err := models.GetProfile(c.Request.Context(), userID)
	if err != nil {
		logging.Sugar().Errorw("profile query failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, models.Profile{})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// CompleteProfileHandler crea o actualiza el perfil completo.
func CompleteProfileHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Autenticación requerida"})
		return
	}

	var req models.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cuerpo de la petición inválido"})
		return
	}

	if req.NombreCompleto == "" || req.Cedula == "" || req.Banco == "" ||
		req.TipoCuenta == "" || req.NumeroCuenta == "" || req.TitularCuenta == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Todos los campos marcados con * son obligatorios"})
		return
	}

	existed, err := models.UpsertProfile(c.Request.Context(), userID, &req)
	if err != nil {
		logging.Sugar().Errorw("profile upsert failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error al guardar el perfil"})
		return
	}

	message := "Perfil creado correctamente"
	if existed {
		message = "Perfil actualizado correctamente"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// HasProfileHandler responde si el usuario ya completó su perfil.
func HasProfileHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Autenticación requerida"})
		return
	}

	has, err := models.HasProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error del servidor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tienePerfil": has})
}
