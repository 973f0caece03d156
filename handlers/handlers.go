package handlers

import (
	"log"

	"github.com/samu777684/financial360/config"
	"github.com/samu777684/financial360/mercadopago"
	"github.com/samu777684/financial360/payments"
	"github.com/samu777684/financial360/referral"
)

var (
	cfg       *config.Config
	mpClient  *mercadopago.Client
	processor *payments.Processor
)

// Init cablea la configuración, el cliente de Mercado Pago y el
// procesador de webhooks. Debe llamarse después de InitDB.
func Init(c *config.Config) {
	cfg = c
	mpClient = mercadopago.NewClient(c.MPAccessToken, c.MPBaseURL)
	processor = payments.NewProcessor(mpClient, payments.NewPGStore(), referral.NewPGStore())
	log.Println("✅ Handlers inicializados")
}
