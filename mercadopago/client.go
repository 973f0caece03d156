package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client habla con la API HTTP de Mercado Pago: crear preferencias y
// consultar el estado autoritativo de un pago.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type PreferenceItem struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type PreferencePayer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             PreferencePayer  `json:"payer"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url"`
}

type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
	PaymentMethodID   string  `json:"payment_method_id"`
	ExternalReference string  `json:"external_reference"`
	DateApproved      string  `json:"date_approved"`
}

func (c *Client) CreatePreference(ctx context.Context, pref *PreferenceRequest) (*PreferenceResponse, error) {
	jsonBody, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}

	url := c.baseURL + "/checkout/preferences"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create preference failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var prefResp PreferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&prefResp); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}
	return &prefResp, nil
}

// GetPayment consulta el estado real de un pago por id. El webhook nunca
// confía en el cuerpo de la notificación: siempre pasa por acá.
func (c *Client) GetPayment(ctx context.Context, paymentID int64) (*Payment, error) {
	url := fmt.Sprintf("%s/v1/payments/%d", c.baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get payment failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}
	return &payment, nil
}
