package payments

import (
	"context"
	"fmt"

	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/mercadopago"
	"github.com/samu777684/financial360/monitoring"
	"github.com/samu777684/financial360/referral"
)

// Provider es la vista del procesador sobre la API de pagos: solo la
// consulta autoritativa por id.
type Provider interface {
	GetPayment(ctx context.Context, paymentID int64) (*mercadopago.Payment, error)
}

// ClaimedTransaction es la transacción pendiente reclamada atómicamente
// por el webhook.
type ClaimedTransaction struct {
	ID             int64
	IDUsuario      *int64
	PlanID         int
	MontoCentavos  int64
	Moneda         string
	CodigoReferido *string
}

// Store son las escrituras durables del flujo de webhook.
type Store interface {
	// ClaimApproved mueve la transacción pending→approved en un solo
	// UPDATE condicionado. Devuelve (nil, nil) si no había fila pendiente:
	// entrega repetida o referencia desconocida.
	ClaimApproved(ctx context.Context, externalReference string, paymentID int64, metodoPago string) (*ClaimedTransaction, error)
	// MarkStatus actualiza una transacción pendiente a rejected/pending.
	MarkStatus(ctx context.Context, externalReference, estado string, paymentID int64) error
	// RevertClaim devuelve una transacción reclamada a pending, para que
	// el reintento del proveedor vuelva a encontrarla.
	RevertClaim(ctx context.Context, transactionID int64) error
	// CreateGuestUser materializa el usuario placeholder de un checkout
	// de invitado.
	CreateGuestUser(ctx context.Context, referidoPor *int64) (int64, error)
	AttachUser(ctx context.Context, transactionID, userID int64) error
	// PlanInfo devuelve nombre y duración en días del plan comprado.
	PlanInfo(ctx context.Context, planID int) (nombre string, duracionDias int, err error)
	// ActivatePlan desactiva las membresías previas e inserta la nueva,
	// todo en una transacción.
	ActivatePlan(ctx context.Context, userID int64, planID int, montoCentavos int64, metodoPago string, duracionDias int) error
	// ResolveReferralCode devuelve el dueño de un código, o nil.
	ResolveReferralCode(ctx context.Context, codigo string) (*int64, error)
}

type Notification struct {
	Type      string
	PaymentID int64
}

type Result string

const (
	ResultIgnored   Result = "ignored"
	ResultDuplicate Result = "duplicate"
	ResultProcessed Result = "processed"
	ResultUpdated   Result = "updated"
)

// Processor implementa la máquina de estados del webhook de pagos.
type Processor struct {
	provider Provider
	store    Store
	refStore referral.Store
}

func NewProcessor(provider Provider, store Store, refStore referral.Store) *Processor {
	return &Processor{provider: provider, store: store, refStore: refStore}
}

// HandleNotification procesa una notificación. El cuerpo del webhook es
// solo un disparador: el estado se vuelve a leer del proveedor. Un error
// devuelto significa "responder 500 para que el proveedor reintente".
func (p *Processor) HandleNotification(ctx context.Context, n Notification) (Result, error) {
	log := logging.Sugar()

	if n.Type != "payment" {
		log.Infow("webhook ignorado", "type", n.Type)
		return ResultIgnored, nil
	}

	payment, err := p.provider.GetPayment(ctx, n.PaymentID)
	if err != nil {
		return ResultIgnored, fmt.Errorf("fetching payment %d: %w", n.PaymentID, err)
	}

	switch payment.Status {
	case "approved":
		return p.processApproved(ctx, payment)
	case "rejected":
		if err := p.store.MarkStatus(ctx, payment.ExternalReference, "rejected", payment.ID); err != nil {
			return ResultIgnored, fmt.Errorf("marking rejected: %w", err)
		}
		return ResultUpdated, nil
	case "in_process", "pending":
		if err := p.store.MarkStatus(ctx, payment.ExternalReference, "pending", payment.ID); err != nil {
			return ResultIgnored, fmt.Errorf("marking pending: %w", err)
		}
		return ResultUpdated, nil
	default:
		log.Infow("estado de pago no manejado", "payment_id", payment.ID, "status", payment.Status)
		return ResultIgnored, nil
	}
}

func (p *Processor) processApproved(ctx context.Context, payment *mercadopago.Payment) (Result, error) {
	log := logging.Sugar()

	claimed, err := p.store.ClaimApproved(ctx, payment.ExternalReference, payment.ID, payment.PaymentMethodID)
	if err != nil {
		return ResultIgnored, fmt.Errorf("claiming transaction %q: %w", payment.ExternalReference, err)
	}
	if claimed == nil {
		// Entrega repetida o referencia desconocida: reconocer y no tocar nada.
		log.Infow("pago ya procesado", "payment_id", payment.ID, "external_reference", payment.ExternalReference)
		return ResultDuplicate, nil
	}

	// A partir de acá el reclamo ya está cometido. Si cualquier paso
	// falla, hay que devolver la transacción a pending antes del 500:
	// de lo contrario el reintento del proveedor la vería como
	// duplicada y el pago quedaría aprobado sin membresía ni comisiones.
	fail := func(err error) (Result, error) {
		if rerr := p.store.RevertClaim(ctx, claimed.ID); rerr != nil {
			log.Errorw("reclamo no revertido, requiere intervención manual",
				"transaccion", claimed.ID, "payment_id", payment.ID, "error", rerr)
		}
		return ResultIgnored, err
	}

	// Código explícito de checkout gana sobre el referidor guardado.
	var override *int64
	if claimed.CodigoReferido != nil && *claimed.CodigoReferido != "" {
		override, err = p.store.ResolveReferralCode(ctx, *claimed.CodigoReferido)
		if err != nil {
			log.Errorw("código de referido no resuelto", "codigo", *claimed.CodigoReferido, "error", err)
			override = nil
		}
	}

	userID := claimed.IDUsuario
	if userID == nil {
		guestID, err := p.store.CreateGuestUser(ctx, override)
		if err != nil {
			return fail(fmt.Errorf("creating guest user: %w", err))
		}
		if err := p.store.AttachUser(ctx, claimed.ID, guestID); err != nil {
			return fail(fmt.Errorf("attaching guest user: %w", err))
		}
		userID = &guestID
	}

	planNombre, duracionDias, err := p.store.PlanInfo(ctx, claimed.PlanID)
	if err != nil {
		return fail(fmt.Errorf("loading plan %d: %w", claimed.PlanID, err))
	}

	if err := p.store.ActivatePlan(ctx, *userID, claimed.PlanID, claimed.MontoCentavos, payment.PaymentMethodID, duracionDias); err != nil {
		return fail(fmt.Errorf("activating plan for user %d: %w", *userID, err))
	}

	// El comprador no puede ser su propio referidor.
	if override != nil && *override == *userID {
		override = nil
	}

	// Las comisiones nunca tumban el webhook: se registran y se
	// reconcilian fuera de banda.
	chain, err := referral.ResolveChain(ctx, p.refStore, userID, override)
	if err != nil {
		monitoring.CommissionFailures.Inc()
		log.Errorw("cadena de referidos no resuelta", "payment_id", payment.ID, "error", err)
		return ResultProcessed, nil
	}
	if _, err := referral.Allocate(ctx, p.refStore, chain, payment.ID, claimed.MontoCentavos, claimed.Moneda, planNombre, userID); err != nil {
		monitoring.CommissionFailures.Inc()
		log.Errorw("asignación de comisiones incompleta", "payment_id", payment.ID, "error", err)
	}

	log.Infow("pago aprobado y procesado", "payment_id", payment.ID, "usuario", *userID, "plan", claimed.PlanID)
	return ResultProcessed, nil
}
