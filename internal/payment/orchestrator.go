package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/pkg/validator"
)

// State is the orchestrator's position in the payment flow.
type State string

const (
	StateIdle             State = "idle"
	StateInitializing     State = "initializing"
	StateAwaitingCheckout State = "awaiting-checkout"
	StateVerifying        State = "verifying"
	StateSuccess          State = "success"
	StatePending          State = "pending"
	StateFailed           State = "failed"
)

// PayerInfo is the payer data submitted to the gateway. Validated locally
// before any network call.
type PayerInfo struct {
	FullName string
	Email    string
	Phone    string
}

// SuccessFunc is invoked exactly once when a transaction verifies as
// successful, even if verify is called again for the same reference.
type SuccessFunc func(ctx context.Context, tx *models.Transaction) error

// Orchestrator drives one payment attempt through
// idle -> initializing -> awaiting-checkout -> verifying -> terminal.
// Pending is terminal for the session; the user checks back later.
type Orchestrator struct {
	gateway         Gateway
	phones          *validator.PhoneValidator
	logger          *logrus.Logger
	returnURLPrefix string
	onSuccess       SuccessFunc

	mu       sync.Mutex
	state    State
	tx       *models.Transaction
	recorded bool
}

// NewOrchestrator creates a payment orchestrator. onSuccess may be nil.
func NewOrchestrator(gateway Gateway, returnURLPrefix string, onSuccess SuccessFunc, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:         gateway,
		phones:          validator.NewPhoneValidator(),
		logger:          logger,
		returnURLPrefix: returnURLPrefix,
		onSuccess:       onSuccess,
		state:           StateIdle,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transaction returns a copy of the current transaction, or nil before
// initialization.
func (o *Orchestrator) Transaction() *models.Transaction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tx == nil {
		return nil
	}
	copied := *o.tx
	return &copied
}

// Start validates the payer, initializes the transaction with the gateway,
// and returns the hosted checkout URL. On gateway failure the orchestrator
// returns to idle so the user can retry.
func (o *Orchestrator) Start(ctx context.Context, amount float64, currency string, payer PayerInfo) (string, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		state := o.state
		o.mu.Unlock()
		return "", fmt.Errorf("cannot start payment from state %q", state)
	}
	o.state = StateInitializing
	o.mu.Unlock()

	phone, name, err := o.validatePayer(payer)
	if err != nil {
		o.setState(StateIdle)
		return "", err
	}

	txRef := NewTxRef("tour")
	result, err := o.gateway.InitializePayment(ctx, &InitializePaymentParams{
		TxRef:      txRef,
		Amount:     amount,
		Currency:   currency,
		PayerName:  name,
		PayerEmail: payer.Email,
		PayerPhone: phone,
	})
	if err != nil {
		o.setState(StateIdle)
		return "", fmt.Errorf("payment initialization failed: %w", err)
	}

	o.mu.Lock()
	o.tx = &models.Transaction{
		TxRef:    txRef,
		Amount:   amount,
		Currency: currency,
		Status:   models.TransactionInitialized,
	}
	o.recorded = false
	o.state = StateAwaitingCheckout
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"tx_ref": txRef,
		"amount": amount,
	}).Info("Payment started, awaiting hosted checkout")

	return result.CheckoutURL, nil
}

// validatePayer checks payer fields before any network call.
func (o *Orchestrator) validatePayer(payer PayerInfo) (phone, name string, err error) {
	name, err = validator.ValidateFullName(payer.FullName)
	if err != nil {
		return "", "", &api.ValidationError{Field: "fullName", Message: err.Error()}
	}
	phone, err = o.phones.Validate(payer.Phone)
	if err != nil {
		return "", "", &api.ValidationError{Field: "phone", Message: err.Error()}
	}
	return phone, name, nil
}

// ObserveNavigation inspects a checkout navigation URL. Only a URL matching
// the configured return-URL prefix moves the flow to verifying; anything
// else is ignored. Returns true when the transition happened.
func (o *Orchestrator) ObserveNavigation(navURL string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingCheckout {
		return false
	}
	if o.returnURLPrefix == "" || !strings.HasPrefix(navURL, o.returnURLPrefix) {
		return false
	}

	o.state = StateVerifying
	o.logger.WithField("tx_ref", o.tx.TxRef).Info("Checkout returned, verifying payment")
	return true
}

// Abort cancels the flow from awaiting-checkout and returns to idle. No
// network call is in flight during checkout, so nothing needs cancelling.
func (o *Orchestrator) Abort() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingCheckout {
		return fmt.Errorf("cannot abort from state %q", o.state)
	}

	o.logger.WithField("tx_ref", o.tx.TxRef).Info("Payment aborted by user")
	o.state = StateIdle
	o.tx = nil
	return nil
}

// Verify asks the gateway for the transaction's status and moves to the
// matching terminal state. Safe to call repeatedly: the success callback
// fires at most once per reference.
func (o *Orchestrator) Verify(ctx context.Context) (models.TransactionStatus, error) {
	o.mu.Lock()
	switch o.state {
	case StateVerifying, StateSuccess, StatePending, StateFailed:
		// re-verify is allowed
	default:
		state := o.state
		o.mu.Unlock()
		return "", fmt.Errorf("cannot verify from state %q", state)
	}
	tx := o.tx
	o.mu.Unlock()

	result, err := o.gateway.VerifyTransaction(ctx, tx.TxRef)
	if err != nil {
		return "", fmt.Errorf("payment verification failed: %w", err)
	}

	var status models.TransactionStatus
	var state State
	switch result.Status {
	case "success":
		status, state = models.TransactionSuccess, StateSuccess
	case "pending":
		status, state = models.TransactionPending, StatePending
	default:
		status, state = models.TransactionFailed, StateFailed
	}

	o.mu.Lock()
	o.tx.Status = status
	o.state = state
	fireSuccess := status == models.TransactionSuccess && !o.recorded && o.onSuccess != nil
	if fireSuccess {
		o.recorded = true
	}
	txCopy := *o.tx
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"tx_ref": txCopy.TxRef,
		"status": status,
	}).Info("Payment verification completed")

	if fireSuccess {
		if err := o.onSuccess(ctx, &txCopy); err != nil {
			// The payment itself succeeded; no record was created, so a
			// later verify may retry the recording without re-charging.
			o.mu.Lock()
			o.recorded = false
			o.mu.Unlock()
			return status, fmt.Errorf("payment succeeded but booking record failed: %w", err)
		}
	}

	return status, nil
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}
