// Package payment integrates the Chapa payment gateway: transaction
// initialization, the hosted checkout handoff, and verify-by-reference.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/config"
	"github.com/visitamhara/tourapp/pkg/validator"
)

// ChapaEnvironmentURLs maps environment names to API endpoints. Chapa uses
// one host for both; sandbox behavior comes from using a test key.
var ChapaEnvironmentURLs = map[string]string{
	"sandbox":    "https://api.chapa.co/v1",
	"production": "https://api.chapa.co/v1",
}

// ChapaService handles payment gateway integration with Chapa
type ChapaService struct {
	config  *config.PaymentConfig
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
}

// ChapaInitRequest is the transaction initialization payload
type ChapaInitRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url"`
}

// ChapaInitResponse is the response to an initialization request
type ChapaInitResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// ChapaVerifyResponse is the response to a verify-by-reference call
type ChapaVerifyResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"` // "success", "pending", "failed"
	} `json:"data"`
}

// InitializePaymentParams contains everything needed to start a payment
type InitializePaymentParams struct {
	TxRef      string
	Amount     float64
	Currency   string
	PayerName  string // split into first/last name for the gateway
	PayerEmail string
	PayerPhone string
}

// InitializeResult is the outcome of a successful initialization
type InitializeResult struct {
	CheckoutURL string
}

// VerifyResult is the gateway's final word on a transaction
type VerifyResult struct {
	TxRef  string
	Status string // "success", "pending", "failed"
	Amount float64
}

// Gateway is the payment gateway surface the orchestrator depends on
type Gateway interface {
	InitializePayment(ctx context.Context, params *InitializePaymentParams) (*InitializeResult, error)
	VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error)
}

// NewChapaService creates a new Chapa payment service
func NewChapaService(cfg *config.PaymentConfig, logger *logrus.Logger) *ChapaService {
	baseURL, ok := ChapaEnvironmentURLs[cfg.Environment]
	if !ok {
		baseURL = ChapaEnvironmentURLs["sandbox"]
	}
	return &ChapaService{
		config:  cfg,
		logger:  logger,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURL overrides the gateway endpoint (used by tests).
func (s *ChapaService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimRight(baseURL, "/")
}

// IsConfigured returns true if the gateway is properly configured
func (s *ChapaService) IsConfigured() bool {
	return s.config.PublicKey != "" && s.config.ReturnURLPrefix != ""
}

// InitializePayment creates a transaction and returns the hosted checkout URL
func (s *ChapaService) InitializePayment(ctx context.Context, params *InitializePaymentParams) (*InitializeResult, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("payment gateway not configured: missing key or return URL")
	}

	firstName, lastName := validator.SplitName(params.PayerName)
	if lastName == "" {
		lastName = "." // Chapa requires a last name
	}

	currency := params.Currency
	if currency == "" {
		currency = s.config.Currency
	}

	request := &ChapaInitRequest{
		Amount:      fmt.Sprintf("%.2f", params.Amount),
		Currency:    currency,
		Email:       params.PayerEmail,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: params.PayerPhone,
		TxRef:       params.TxRef,
		CallbackURL: s.config.CallbackURL,
		ReturnURL:   s.config.ReturnURLPrefix,
	}

	s.logger.WithFields(logrus.Fields{
		"tx_ref":   params.TxRef,
		"amount":   request.Amount,
		"currency": currency,
	}).Info("Initializing Chapa payment")

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transaction/initialize", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.PublicKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Failed to call Chapa endpoint")
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var initResp ChapaInitResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		s.logger.WithFields(logrus.Fields{
			"body":  string(body),
			"error": err.Error(),
		}).Error("Failed to parse Chapa response")
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || initResp.Status != "success" {
		errMsg := initResp.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("status=%d, raw=%s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("payment initialization failed: %s", errMsg)
	}

	if initResp.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("payment initialization failed: no checkout URL returned")
	}

	s.logger.WithFields(logrus.Fields{
		"tx_ref":       params.TxRef,
		"checkout_url": initResp.Data.CheckoutURL,
	}).Info("Chapa payment initialized")

	return &InitializeResult{CheckoutURL: initResp.Data.CheckoutURL}, nil
}

// VerifyTransaction queries the final status of a transaction by reference.
// Verification is idempotent on the gateway side; repeating it returns the
// same terminal status.
func (s *ChapaService) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error) {
	verifyURL := fmt.Sprintf("%s/transaction/verify/%s", s.baseURL, url.PathEscape(txRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.PublicKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var verifyResp ChapaVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || verifyResp.Status != "success" {
		errMsg := verifyResp.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("status=%d", resp.StatusCode)
		}
		return nil, fmt.Errorf("verification failed: %s", errMsg)
	}

	s.logger.WithFields(logrus.Fields{
		"tx_ref": txRef,
		"status": verifyResp.Data.Status,
	}).Info("Chapa transaction verified")

	return &VerifyResult{
		TxRef:  verifyResp.Data.TxRef,
		Status: strings.ToLower(verifyResp.Data.Status),
		Amount: verifyResp.Data.Amount,
	}, nil
}
