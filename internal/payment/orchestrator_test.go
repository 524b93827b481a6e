package payment

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeGateway is a scriptable Gateway for orchestrator tests.
type fakeGateway struct {
	initErr      error
	verifyStatus string
	verifyErr    error
	initCalls    int32
	verifyCalls  int32
	lastParams   *InitializePaymentParams
}

func (g *fakeGateway) InitializePayment(ctx context.Context, params *InitializePaymentParams) (*InitializeResult, error) {
	atomic.AddInt32(&g.initCalls, 1)
	g.lastParams = params
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &InitializeResult{CheckoutURL: "https://checkout.chapa.co/" + params.TxRef}, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error) {
	atomic.AddInt32(&g.verifyCalls, 1)
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &VerifyResult{TxRef: txRef, Status: g.verifyStatus}, nil
}

const returnPrefix = "https://visitamhara.travel/payment/return"

func validPayer() PayerInfo {
	return PayerInfo{
		FullName: "Abebe Kebede",
		Email:    "abebe@example.et",
		Phone:    "0912345678",
	}
}

func TestStart_HappyPath(t *testing.T) {
	gateway := &fakeGateway{}
	o := NewOrchestrator(gateway, returnPrefix, nil, newTestLogger())

	assert.Equal(t, StateIdle, o.State())

	checkoutURL, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)
	assert.Contains(t, checkoutURL, "https://checkout.chapa.co/")
	assert.Equal(t, StateAwaitingCheckout, o.State())

	tx := o.Transaction()
	require.NotNil(t, tx)
	assert.Equal(t, models.TransactionInitialized, tx.Status)
	assert.Equal(t, 150.0, tx.Amount)
	assert.NotEmpty(t, tx.TxRef)

	// Sanitized phone reaches the gateway
	assert.Equal(t, "0912345678", gateway.lastParams.PayerPhone)
}

func TestStart_InvalidPayerNeverReachesGateway(t *testing.T) {
	tests := []struct {
		name  string
		payer PayerInfo
	}{
		{"Bad phone", PayerInfo{FullName: "Abebe Kebede", Phone: "12345"}},
		{"Missing name", PayerInfo{FullName: "", Phone: "0912345678"}},
		{"Single name", PayerInfo{FullName: "Abebe", Phone: "0912345678"}},
		{"Wrong prefix", PayerInfo{FullName: "Abebe Kebede", Phone: "0812345678"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			o := NewOrchestrator(gateway, returnPrefix, nil, newTestLogger())

			_, err := o.Start(context.Background(), 150, "ETB", tc.payer)
			assert.True(t, api.IsValidation(err))
			assert.Equal(t, int32(0), gateway.initCalls, "validation failures must not reach the gateway")
			assert.Equal(t, StateIdle, o.State(), "orchestrator returns to idle for retry")
		})
	}
}

func TestStart_GatewayFailureReturnsToIdle(t *testing.T) {
	gateway := &fakeGateway{initErr: errors.New("gateway down")}
	o := NewOrchestrator(gateway, returnPrefix, nil, newTestLogger())

	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	assert.Error(t, err)
	assert.Equal(t, StateIdle, o.State())

	// Retry works after the failure
	gateway.initErr = nil
	_, err = o.Start(context.Background(), 150, "ETB", validPayer())
	assert.NoError(t, err)
}

func TestStart_RejectedOutsideIdle(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, returnPrefix, nil, newTestLogger())
	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)

	_, err = o.Start(context.Background(), 150, "ETB", validPayer())
	assert.Error(t, err)
}

func TestObserveNavigation(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, returnPrefix, nil, newTestLogger())
	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)

	// Unrelated navigation is ignored
	assert.False(t, o.ObserveNavigation("https://checkout.chapa.co/pay/xyz"))
	assert.Equal(t, StateAwaitingCheckout, o.State())

	// Return-URL prefix match transitions to verifying
	assert.True(t, o.ObserveNavigation(returnPrefix+"?tx_ref=abc&status=success"))
	assert.Equal(t, StateVerifying, o.State())

	// Further navigations are ignored once verifying
	assert.False(t, o.ObserveNavigation(returnPrefix))
}

func TestAbort(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, returnPrefix, nil, newTestLogger())

	// Abort only makes sense during checkout
	assert.Error(t, o.Abort())

	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)

	require.NoError(t, o.Abort())
	assert.Equal(t, StateIdle, o.State())
	assert.Nil(t, o.Transaction())
}

func driveToVerifying(t *testing.T, o *Orchestrator) {
	t.Helper()
	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)
	require.True(t, o.ObserveNavigation(returnPrefix))
}

func TestVerify_Success(t *testing.T) {
	var recorded int32
	gateway := &fakeGateway{verifyStatus: "success"}
	o := NewOrchestrator(gateway, returnPrefix, func(ctx context.Context, tx *models.Transaction) error {
		atomic.AddInt32(&recorded, 1)
		return nil
	}, newTestLogger())
	driveToVerifying(t, o)

	status, err := o.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TransactionSuccess, status)
	assert.Equal(t, StateSuccess, o.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&recorded))
}

func TestVerify_RepeatedSuccessRecordsOnce(t *testing.T) {
	var recorded int32
	gateway := &fakeGateway{verifyStatus: "success"}
	o := NewOrchestrator(gateway, returnPrefix, func(ctx context.Context, tx *models.Transaction) error {
		atomic.AddInt32(&recorded, 1)
		return nil
	}, newTestLogger())
	driveToVerifying(t, o)

	for i := 0; i < 3; i++ {
		status, err := o.Verify(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.TransactionSuccess, status)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&recorded), "repeated verify must not duplicate the booking record")
}

func TestVerify_Pending(t *testing.T) {
	var recorded int32
	gateway := &fakeGateway{verifyStatus: "pending"}
	o := NewOrchestrator(gateway, returnPrefix, func(ctx context.Context, tx *models.Transaction) error {
		atomic.AddInt32(&recorded, 1)
		return nil
	}, newTestLogger())
	driveToVerifying(t, o)

	status, err := o.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPending, status)
	assert.Equal(t, StatePending, o.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&recorded), "pending must not create a booking record")
}

func TestVerify_Failed(t *testing.T) {
	gateway := &fakeGateway{verifyStatus: "failed"}
	o := NewOrchestrator(gateway, returnPrefix, nil, newTestLogger())
	driveToVerifying(t, o)

	status, err := o.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFailed, status)
	assert.Equal(t, StateFailed, o.State())
}

func TestVerify_RecorderFailureAllowsRetry(t *testing.T) {
	var calls int32
	gateway := &fakeGateway{verifyStatus: "success"}
	o := NewOrchestrator(gateway, returnPrefix, func(ctx context.Context, tx *models.Transaction) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("booking create failed")
		}
		return nil
	}, newTestLogger())
	driveToVerifying(t, o)

	_, err := o.Verify(context.Background())
	assert.Error(t, err, "first verify surfaces the recording failure")

	_, err = o.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "retry records without re-charging")
}

func TestVerify_RejectedBeforeCheckoutReturn(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{verifyStatus: "success"}, returnPrefix, nil, newTestLogger())
	_, err := o.Start(context.Background(), 150, "ETB", validPayer())
	require.NoError(t, err)

	_, err = o.Verify(context.Background())
	assert.Error(t, err, "verify is only reachable through the return URL")
}
