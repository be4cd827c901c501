package services

import (
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/charge"
	"github.com/stripe/stripe-go/v76/refund"

	"github.com/gabbymorgan/drivefair.api/config"
)

// ChargeResult is the gateway's record of a successful charge
type ChargeResult struct {
	ChargeID    string
	AmountCents int64
}

// PaymentGateway wraps the external payment processor. Charge and refund
// failures are returned untouched so callers can surface the gateway's
// message.
type PaymentGateway interface {
	Charge(amountCents int64, sourceToken, description, receiptEmail string) (*ChargeResult, error)
	Refund(chargeID string) error
}

var paymentGatewayInstance PaymentGateway

// InitPaymentGateway initializes the Stripe-backed gateway
func InitPaymentGateway() PaymentGateway {
	cfg := config.GetConfig()
	stripe.Key = cfg.StripeSecretKey
	paymentGatewayInstance = &StripeGateway{}
	return paymentGatewayInstance
}

// GetPaymentGateway returns the initialized gateway instance
func GetPaymentGateway() PaymentGateway {
	return paymentGatewayInstance
}

// SetPaymentGateway sets the gateway instance (primarily for testing)
func SetPaymentGateway(gateway PaymentGateway) {
	paymentGatewayInstance = gateway
}

// StripeGateway implements PaymentGateway with Stripe charges and refunds
type StripeGateway struct{}

// Charge creates a Stripe charge against a tokenized card source
func (g *StripeGateway) Charge(amountCents int64, sourceToken, description, receiptEmail string) (*ChargeResult, error) {
	params := &stripe.ChargeParams{
		Amount:                    stripe.Int64(amountCents),
		Currency:                  stripe.String(string(stripe.CurrencyUSD)),
		Description:               stripe.String(description),
		ReceiptEmail:              stripe.String(receiptEmail),
		StatementDescriptorSuffix: stripe.String(StatementDescriptor(description)),
	}
	if err := params.SetSource(sourceToken); err != nil {
		return nil, err
	}
	created, err := charge.New(params)
	if err != nil {
		return nil, err
	}
	return &ChargeResult{ChargeID: created.ID, AmountCents: created.Amount}, nil
}

// Refund refunds a previously created charge in full
func (g *StripeGateway) Refund(chargeID string) error {
	_, err := refund.New(&stripe.RefundParams{Charge: stripe.String(chargeID)})
	return err
}

// StatementDescriptor strips characters Stripe rejects and trims to the
// 22-character statement descriptor limit
func StatementDescriptor(s string) string {
	replacer := strings.NewReplacer(`\`, "", "<", "", ">", "", "'", "", `"`, "", "*", "")
	cleaned := replacer.Replace(s)
	if len(cleaned) > 22 {
		cleaned = cleaned[:22]
	}
	return cleaned
}
