package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreference(t *testing.T) {
	var gotAuth string
	var gotBody PreferenceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PreferenceResponse{
			ID:        "pref-123",
			InitPoint: "https://mp.example/checkout/pref-123",
		})
	}))
	defer srv.Close()

	client := NewClient("test-token", srv.URL)
	resp, err := client.CreatePreference(context.Background(), &PreferenceRequest{
		Items: []PreferenceItem{{
			Title: "Financial360 - Premium", Quantity: 1, CurrencyID: "COP", UnitPrice: 1000,
		}},
		ExternalReference: "F360-abc",
		NotificationURL:   "https://backend.example/api/webhooks/mercadopago",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "F360-abc", gotBody.ExternalReference)
	assert.Equal(t, "pref-123", resp.ID)
	assert.Equal(t, "https://mp.example/checkout/pref-123", resp.InitPoint)
}

func TestCreatePreferenceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid items"}`))
	}))
	defer srv.Close()

	client := NewClient("test-token", srv.URL)
	_, err := client.CreatePreference(context.Background(), &PreferenceRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GET", r.Method)
		require.Equal(t, "/v1/payments/555", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(Payment{
			ID:                555,
			Status:            "approved",
			PaymentMethodID:   "credit_card",
			ExternalReference: "F360-abc",
			TransactionAmount: 1000,
		})
	}))
	defer srv.Close()

	client := NewClient("test-token", srv.URL)
	payment, err := client.GetPayment(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, int64(555), payment.ID)
	assert.Equal(t, "approved", payment.Status)
	assert.Equal(t, "F360-abc", payment.ExternalReference)
}

func TestGetPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-token", srv.URL)
	_, err := client.GetPayment(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDefaultBaseURL(t *testing.T) {
	client := NewClient("tok", "")
	assert.Equal(t, "https://api.mercadopago.com", client.baseURL)
}
