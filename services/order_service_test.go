package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabbymorgan/drivefair.api/models"
)

func TestPayChargesExactCents(t *testing.T) {
	db, mocks := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "payer@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	_, err := SetTip(customer, 3.00)
	require.NoError(t, err)

	order, err := Pay(customer, "tok_visa")
	require.NoError(t, err)

	assert.Equal(t, models.DispositionPaid, order.Disposition)
	assert.InDelta(t, 12.50, order.Total, 0.001)
	assert.InDelta(t, 12.50, order.AmountPaid, 0.001)
	require.NotNil(t, order.ChargeID)
	charge, ok := mocks.Gateway.ChargeByID(*order.ChargeID)
	require.True(t, ok)
	assert.Equal(t, int64(1250), charge.AmountCents)
	assert.Equal(t, "tok_visa", charge.SourceToken)
	assert.Equal(t, customer.Email, charge.ReceiptEmail)

	// Cart is detached from the customer
	assert.Nil(t, customer.CartID)

	// Both parties get an email
	assert.Len(t, mocks.Email.SentTo(customer.Email), 1)
	assert.Len(t, mocks.Email.SentTo(vendor.Email), 1)
}

func TestPayEmptyCart(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "nocart@example.com")

	_, err := Pay(customer, "tok_visa")
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodePrecondition, serviceErr.Code)
}

func TestPayDeliveryRequiresAddress(t *testing.T) {
	db, mocks := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "noaddress@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	_, err := SetOrderMethod(customer, models.MethodDelivery)
	require.NoError(t, err)

	_, err = Pay(customer, "tok_visa")
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodePrecondition, serviceErr.Code)

	// The gateway was never touched
	assert.Equal(t, 0, mocks.Gateway.ChargeCount())
}

func TestPayGatewayFailureLeavesCartUntouched(t *testing.T) {
	db, mocks := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "declined@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cart := cartWithItem(t, customer, item)
	mocks.Gateway.ChargeErr = errors.New("card declined")

	_, err := Pay(customer, "tok_declined")
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeGateway, serviceErr.Code)

	reloaded, err := loadOrder(db, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionNew, reloaded.Disposition)
	require.NotNil(t, customer.CartID)
}

func payTestOrder(t *testing.T, customer *models.Customer) *models.Order {
	t.Helper()
	order, err := Pay(customer, "tok_visa")
	require.NoError(t, err)
	return order
}

func TestVendorAcceptOrder(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "accept@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	other := createTestVendor(t, db, "Pizza Palace")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	order := payTestOrder(t, customer)

	_, err := VendorAcceptOrder(other, order.ID, 20)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeForbidden, serviceErr.Code)

	_, err = VendorAcceptOrder(vendor, order.ID, 0)
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeValidation, serviceErr.Code)

	accepted, err := VendorAcceptOrder(vendor, order.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionAcceptedByVendor, accepted.Disposition)
	assert.NotNil(t, accepted.EstimatedReadyTime)

	// Accepting twice fails: the order is no longer PAID
	_, err = VendorAcceptOrder(vendor, order.ID, 20)
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodePrecondition, serviceErr.Code)
}

func TestReadyAndCustomerPickUp(t *testing.T) {
	db, mocks := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "pickup@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	order := payTestOrder(t, customer)

	_, err := VendorAcceptOrder(vendor, order.ID, 15)
	require.NoError(t, err)

	// Not ready yet
	_, err = CustomerPickUpOrder(customer, order.ID)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodePrecondition, serviceErr.Code)

	ready, err := ReadyOrder(vendor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionReady, ready.Disposition)
	assert.NotNil(t, ready.ActualReadyTime)

	done, err := CustomerPickUpOrder(customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionDelivered, done.Disposition)
	assert.NotNil(t, done.ActualDeliveryTime)
	assert.NotEmpty(t, mocks.Email.SentTo(customer.Email))
}

func TestRefundOrder(t *testing.T) {
	db, mocks := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "refund@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	order := payTestOrder(t, customer)

	_, err := RefundOrder(vendor, "wrong-password", order.ID)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeUnauthorized, serviceErr.Code)

	refunded, err := RefundOrder(vendor, "hunter2hunter2", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionCanceled, refunded.Disposition)

	charge, ok := mocks.Gateway.ChargeByID(*order.ChargeID)
	require.True(t, ok)
	assert.True(t, charge.Refunded)

	// Canceled orders cannot be refunded again
	_, err = RefundOrder(vendor, "hunter2hunter2", order.ID)
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodePrecondition, serviceErr.Code)
}

func TestOrderListsFollowDisposition(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "lists@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)
	order := payTestOrder(t, customer)

	active, err := models.CustomerActiveOrders(db, customer.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, order.ID, active[0].ID)

	vendorActive, err := models.VendorActiveOrders(db, vendor.ID)
	require.NoError(t, err)
	require.Len(t, vendorActive, 1)

	_, err = VendorAcceptOrder(vendor, order.ID, 10)
	require.NoError(t, err)
	_, err = ReadyOrder(vendor, order.ID)
	require.NoError(t, err)

	active, err = models.CustomerActiveOrders(db, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
	ready, err := models.CustomerReadyOrders(db, customer.ID)
	require.NoError(t, err)
	require.Len(t, ready, 1)

	_, err = CustomerPickUpOrder(customer, order.ID)
	require.NoError(t, err)

	ready, err = models.CustomerReadyOrders(db, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, ready)
	history, err := models.CustomerOrderHistory(db, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.DispositionDelivered, history[0].Disposition)
}
