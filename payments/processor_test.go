package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samu777684/financial360/mercadopago"
	"github.com/samu777684/financial360/referral"
)

type fakeProvider struct {
	payments map[int64]*mercadopago.Payment
	err      error
}

func (f *fakeProvider) GetPayment(ctx context.Context, paymentID int64) (*mercadopago.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return p, nil
}

type activation struct {
	userID        int64
	planID        int
	montoCentavos int64
}

type fakeStore struct {
	pending map[string]*ClaimedTransaction
	claimed map[string]bool
	codes   map[string]int64

	statuses    map[string]string
	activations []activation
	guests      []int64
	attached    map[int64]int64
	nextGuestID int64

	failActivations int
	reverted        []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:     map[string]*ClaimedTransaction{},
		claimed:     map[string]bool{},
		codes:       map[string]int64{},
		statuses:    map[string]string{},
		attached:    map[int64]int64{},
		nextGuestID: 9000,
	}
}

func (f *fakeStore) ClaimApproved(ctx context.Context, ref string, paymentID int64, metodo string) (*ClaimedTransaction, error) {
	if f.claimed[ref] {
		return nil, nil
	}
	tx, ok := f.pending[ref]
	if !ok {
		return nil, nil
	}
	f.claimed[ref] = true
	return tx, nil
}

func (f *fakeStore) MarkStatus(ctx context.Context, ref, estado string, paymentID int64) error {
	f.statuses[ref] = estado
	return nil
}

func (f *fakeStore) RevertClaim(ctx context.Context, transactionID int64) error {
	for ref, tx := range f.pending {
		if tx.ID == transactionID {
			f.claimed[ref] = false
		}
	}
	f.reverted = append(f.reverted, transactionID)
	return nil
}

func (f *fakeStore) CreateGuestUser(ctx context.Context, referidoPor *int64) (int64, error) {
	f.nextGuestID++
	f.guests = append(f.guests, f.nextGuestID)
	return f.nextGuestID, nil
}

func (f *fakeStore) AttachUser(ctx context.Context, transactionID, userID int64) error {
	f.attached[transactionID] = userID
	return nil
}

func (f *fakeStore) PlanInfo(ctx context.Context, planID int) (string, int, error) {
	return "Plan Premium", 30, nil
}

func (f *fakeStore) ActivatePlan(ctx context.Context, userID int64, planID int, montoCentavos int64, metodo string, dias int) error {
	if f.failActivations > 0 {
		f.failActivations--
		return errors.New("activation failed")
	}
	f.activations = append(f.activations, activation{userID, planID, montoCentavos})
	return nil
}

func (f *fakeStore) ResolveReferralCode(ctx context.Context, codigo string) (*int64, error) {
	if id, ok := f.codes[codigo]; ok {
		return &id, nil
	}
	return nil, nil
}

type fakeRefStore struct {
	parents     map[int64]int64
	commissions []referral.Entry
	seen        map[string]bool
}

func newFakeRefStore(parents map[int64]int64) *fakeRefStore {
	return &fakeRefStore{parents: parents, seen: map[string]bool{}}
}

func (f *fakeRefStore) ReferrerOf(ctx context.Context, userID int64) (*int64, error) {
	if p, ok := f.parents[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeRefStore) InsertCommission(ctx context.Context, e referral.Entry) (bool, error) {
	k := fmt.Sprintf("%d/%d", e.PaymentID, e.Nivel)
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	f.commissions = append(f.commissions, e)
	return true, nil
}

func ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func approvedPayment(id int64, ref string) *mercadopago.Payment {
	return &mercadopago.Payment{
		ID:                id,
		Status:            "approved",
		PaymentMethodID:   "credit_card",
		ExternalReference: ref,
		// El monto del proveedor no se usa para comisiones: manda el
		// registrado al crear la preferencia.
		TransactionAmount: 999999.99,
	}
}

func TestHandleNotificationIgnoresNonPayment(t *testing.T) {
	store := newFakeStore()
	p := NewProcessor(&fakeProvider{}, store, newFakeRefStore(nil))

	result, err := p.HandleNotification(context.Background(), Notification{Type: "merchant_order", PaymentID: 1})
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, result)
	assert.Empty(t, store.activations)
}

func TestHandleNotificationProviderErrorPropagates(t *testing.T) {
	p := NewProcessor(&fakeProvider{err: errors.New("timeout")}, newFakeStore(), newFakeRefStore(nil))

	_, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 1})
	require.Error(t, err)
}

func TestApprovedPaymentActivatesPlanAndCommissions(t *testing.T) {
	store := newFakeStore()
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: ptr(10), PlanID: 2, MontoCentavos: 100000, Moneda: "COP",
	}
	refStore := newFakeRefStore(map[int64]int64{10: 20, 20: 30})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}

	p := NewProcessor(provider, store, refStore)
	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)

	require.Len(t, store.activations, 1)
	assert.Equal(t, activation{userID: 10, planID: 2, montoCentavos: 100000}, store.activations[0])

	// Monto registrado, no el del cuerpo del proveedor.
	require.Len(t, refStore.commissions, 2)
	assert.Equal(t, int64(20000), refStore.commissions[0].MontoCentavos)
	assert.Equal(t, int64(20), refStore.commissions[0].ReferrerID)
	assert.Equal(t, int64(10000), refStore.commissions[1].MontoCentavos)
	assert.Equal(t, int64(30), refStore.commissions[1].ReferrerID)
}

func TestDuplicateDeliveryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: ptr(10), PlanID: 2, MontoCentavos: 100000, Moneda: "COP",
	}
	refStore := newFakeRefStore(map[int64]int64{10: 20})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}
	p := NewProcessor(provider, store, refStore)

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)

	result, err = p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, result)

	assert.Len(t, store.activations, 1)
	assert.Len(t, refStore.commissions, 1)
}

func TestTransientActivationFailureIsRetryable(t *testing.T) {
	// La activación falla una vez (error transitorio de BD). El reclamo
	// tiene que volver a pending para que el reintento del proveedor
	// procese el pago; sin el revert, el reintento lo vería como
	// duplicado y el pago quedaría sin membresía ni comisiones.
	store := newFakeStore()
	store.failActivations = 1
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: ptr(10), PlanID: 2, MontoCentavos: 100000, Moneda: "COP",
	}
	refStore := newFakeRefStore(map[int64]int64{10: 20})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}
	p := NewProcessor(provider, store, refStore)

	_, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.Error(t, err)
	assert.Equal(t, []int64{1}, store.reverted)
	assert.Empty(t, store.activations)

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)
	require.Len(t, store.activations, 1)
	require.Len(t, refStore.commissions, 1)
	assert.Equal(t, int64(20), refStore.commissions[0].ReferrerID)
}

func TestRejectedPaymentMarksStatus(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: {ID: 555, Status: "rejected", ExternalReference: "F360-abc"},
	}}
	p := NewProcessor(provider, store, newFakeRefStore(nil))

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultUpdated, result)
	assert.Equal(t, "rejected", store.statuses["F360-abc"])
	assert.Empty(t, store.activations)
}

func TestGuestCheckoutMaterializesUser(t *testing.T) {
	store := newFakeStore()
	store.codes["CODIGO-77"] = 77
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: nil, PlanID: 2, MontoCentavos: 50000, Moneda: "COP",
		CodigoReferido: strPtr("CODIGO-77"),
	}
	refStore := newFakeRefStore(map[int64]int64{77: 88})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}
	p := NewProcessor(provider, store, refStore)

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)

	require.Len(t, store.guests, 1)
	guestID := store.guests[0]
	assert.Equal(t, guestID, store.attached[1])
	require.Len(t, store.activations, 1)
	assert.Equal(t, guestID, store.activations[0].userID)

	// El dueño del código es el nivel 1; su referidor el nivel 2.
	require.Len(t, refStore.commissions, 2)
	assert.Equal(t, int64(77), refStore.commissions[0].ReferrerID)
	assert.Equal(t, int64(88), refStore.commissions[1].ReferrerID)
}

func TestSelfReferralCodeIsDropped(t *testing.T) {
	store := newFakeStore()
	store.codes["MI-CODIGO"] = 10
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: ptr(10), PlanID: 2, MontoCentavos: 50000, Moneda: "COP",
		CodigoReferido: strPtr("MI-CODIGO"),
	}
	refStore := newFakeRefStore(map[int64]int64{10: 20})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}
	p := NewProcessor(provider, store, refStore)

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)

	// Sin el código propio, cae al referidor guardado.
	require.Len(t, refStore.commissions, 1)
	assert.Equal(t, int64(20), refStore.commissions[0].ReferrerID)
}

func TestUnknownReferralCodeFallsBack(t *testing.T) {
	store := newFakeStore()
	store.pending["F360-abc"] = &ClaimedTransaction{
		ID: 1, IDUsuario: ptr(10), PlanID: 2, MontoCentavos: 50000, Moneda: "COP",
		CodigoReferido: strPtr("NO-EXISTE"),
	}
	refStore := newFakeRefStore(map[int64]int64{10: 20})
	provider := &fakeProvider{payments: map[int64]*mercadopago.Payment{
		555: approvedPayment(555, "F360-abc"),
	}}
	p := NewProcessor(provider, store, refStore)

	result, err := p.HandleNotification(context.Background(), Notification{Type: "payment", PaymentID: 555})
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, result)
	require.Len(t, refStore.commissions, 1)
	assert.Equal(t, int64(20), refStore.commissions[0].ReferrerID)
}
