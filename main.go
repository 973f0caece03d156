package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samu777684/financial360/config"
	"github.com/samu777684/financial360/database"
	"github.com/samu777684/financial360/handlers"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Archivo .env no encontrado, usando variables del sistema")
	}
	cfg := config.Load()

	if err := logging.InitLogger(cfg.Env == "release"); err != nil {
		log.Fatalf("❌ Error inicializando logger: %v", err)
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("❌ Error conectando a PostgreSQL: %v", err)
	}
	defer database.CloseDB()

	// Job único: rehashear credenciales en texto plano y salir. Nunca
	// corre en el path de login.
	if cfg.MigratePlaintextPasswords {
		n, err := database.MigratePlaintextCredentials(context.Background())
		if err != nil {
			log.Fatalf("❌ Migración de contraseñas falló: %v", err)
		}
		log.Printf("✅ Migración completada: %d contraseñas rehasheadas", n)
		return
	}

	handlers.Init(cfg)

	if cfg.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.SetTrustedProxies(cfg.TrustedProxies)
	r.Use(middleware.SetupCORS(cfg))

	r.GET("/api/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimit(loginLimiter), handlers.LoginHandler)
			auth.POST("/registro", handlers.RegisterHandler)
			auth.POST("/reset-password", handlers.ResetPasswordHandler)
			auth.POST("/refresh", handlers.RefreshHandler)
		}

		api.GET("/planes", handlers.GetPlansHandler)

		pagos := api.Group("/pagos")
		{
			pagos.POST("/crear-preferencia", handlers.CreatePreferenceHandler)
			pagos.GET("/verificar-pago/:paymentId", handlers.VerifyPaymentHandler)
			pagos.GET("/membresia/:userId", handlers.MembershipHandler)
		}

		api.POST("/webhooks/mercadopago", handlers.MercadoPagoWebhookHandler)

		usuario := api.Group("/usuario", middleware.AuthMiddleware(cfg))
		{
			usuario.GET("/perfil", handlers.GetProfileHandler)
			usuario.POST("/completar-perfil", handlers.CompleteProfileHandler)
			usuario.GET("/tiene-perfil", handlers.HasProfileHandler)
		}

		referidos := api.Group("/referidos", middleware.AuthMiddleware(cfg))
		{
			referidos.GET("/resumen", handlers.ReferralSummaryHandler)
			referidos.GET("/historial", handlers.ReferralHistoryHandler)
		}

		twofa := api.Group("/2fa", middleware.AuthMiddleware(cfg))
		{
			twofa.POST("/setup", handlers.SetupTwoFAHandler)
			twofa.POST("/verificar", handlers.VerifyTwoFAHandler)
			twofa.POST("/deshabilitar", handlers.DisableTwoFAHandler)
			twofa.GET("/estado", handlers.TwoFAStatusHandler)
		}

		admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
		{
			admin.GET("/estadisticas", handlers.AdminStatsHandler)
			admin.GET("/comisiones-pendientes", handlers.PendingCommissionsHandler)
			admin.POST("/comisiones/:id/pagar", handlers.PayCommissionHandler)
			admin.POST("/comisiones/:id/rechazar", handlers.RejectCommissionHandler)
			admin.GET("/referidos", handlers.AdminReferralsHandler)
			admin.GET("/pagos", handlers.AdminPaymentsHandler)
			admin.GET("/usuarios-recientes", handlers.RecentUsersHandler)
		}
	}

	log.Printf("🚀 Servidor Financial360 escuchando en el puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Error iniciando servidor: %v", err)
	}
}
