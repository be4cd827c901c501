package services

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MockCharge is one charge recorded by the mock gateway
type MockCharge struct {
	ChargeID     string
	AmountCents  int64
	SourceToken  string
	Description  string
	ReceiptEmail string
	Refunded     bool
}

// MockPaymentGateway is an in-memory PaymentGateway for testing
type MockPaymentGateway struct {
	mu      sync.Mutex
	charges map[string]*MockCharge

	// When set, the next Charge/Refund call fails with this error
	ChargeErr error
	RefundErr error
}

// NewMockPaymentGateway creates a new mock gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{charges: make(map[string]*MockCharge)}
}

// SetAsMockForTesting sets this mock as the global gateway instance
func (m *MockPaymentGateway) SetAsMockForTesting() {
	SetPaymentGateway(m)
}

// Charge records a charge and returns a generated charge id
func (m *MockPaymentGateway) Charge(amountCents int64, sourceToken, description, receiptEmail string) (*ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ChargeErr != nil {
		err := m.ChargeErr
		m.ChargeErr = nil
		return nil, err
	}
	mockCharge := &MockCharge{
		ChargeID:     "ch_" + uuid.NewString(),
		AmountCents:  amountCents,
		SourceToken:  sourceToken,
		Description:  description,
		ReceiptEmail: receiptEmail,
	}
	m.charges[mockCharge.ChargeID] = mockCharge
	return &ChargeResult{ChargeID: mockCharge.ChargeID, AmountCents: amountCents}, nil
}

// Refund marks a previously recorded charge refunded
func (m *MockPaymentGateway) Refund(chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RefundErr != nil {
		err := m.RefundErr
		m.RefundErr = nil
		return err
	}
	mockCharge, ok := m.charges[chargeID]
	if !ok {
		return errors.New("no such charge: " + chargeID)
	}
	mockCharge.Refunded = true
	return nil
}

// ChargeByID returns a recorded charge for assertions
func (m *MockPaymentGateway) ChargeByID(chargeID string) (*MockCharge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mockCharge, ok := m.charges[chargeID]
	return mockCharge, ok
}

// ChargeCount returns the number of charges recorded
func (m *MockPaymentGateway) ChargeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.charges)
}
