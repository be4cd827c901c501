package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabbymorgan/drivefair.api/models"
)

func TestGetCartWithoutCart(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "empty@example.com")

	cart, err := GetCart(customer)
	require.NoError(t, err)
	assert.Equal(t, uint(0), cart.ID)
	assert.Equal(t, models.DispositionNew, cart.Disposition)
	assert.Empty(t, cart.OrderItems)
}

func TestAddToCartCreatesCart(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "cart@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)

	cart, err := AddToCart(customer, item.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, customer.CartID)
	assert.Equal(t, vendor.ID, cart.VendorID)
	assert.Equal(t, models.DispositionNew, cart.Disposition)
	require.Len(t, cart.OrderItems, 1)
	assert.Equal(t, "Taco Plate", cart.OrderItems[0].Name)
	assert.InDelta(t, 9.50, cart.Subtotal, 0.001)
	assert.InDelta(t, 9.50, cart.Total, 0.001)
}

func TestAddToCartWithModifications(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "mods@example.com")
	vendor := createTestVendor(t, db, "Burger Barn")

	size := sizeModification()
	size.ID = 0
	size.VendorID = vendor.ID
	require.NoError(t, db.Create(&size).Error)
	item := createTestMenuItem(t, db, vendor.ID, "Burger", 8.00, size)

	cart, err := AddToCart(customer, item.ID, []models.ModificationSelection{
		{ModificationID: size.ID, OptionIDs: []uint{11}},
	})
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 1)
	assert.InDelta(t, 10.50, cart.OrderItems[0].Price, 0.001)
	assert.InDelta(t, 10.50, cart.Subtotal, 0.001)
}

func TestAddToCartUnknownMenuItem(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "missing@example.com")

	_, err := AddToCart(customer, 12345, nil)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeNotFound, serviceErr.Code)
}

func TestAddToCartSwitchesVendor(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "switch@example.com")
	tacos := createTestVendor(t, db, "Tulsa Tacos")
	pizza := createTestVendor(t, db, "Pizza Palace")
	tacoPlate := createTestMenuItem(t, db, tacos.ID, "Taco Plate", 9.50)
	slice := createTestMenuItem(t, db, pizza.ID, "Slice", 4.00)

	first, err := AddToCart(customer, tacoPlate.ID, nil)
	require.NoError(t, err)

	cart, err := AddToCart(customer, slice.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, cart.ID)
	assert.Equal(t, pizza.ID, cart.VendorID)
	require.Len(t, cart.OrderItems, 1)
	assert.InDelta(t, 4.00, cart.Subtotal, 0.001)

	// Old cart is gone
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRemoveFromCart(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "remove@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	tacoPlate := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	drink := createTestMenuItem(t, db, vendor.ID, "Agua Fresca", 3.00)

	cartWithItem(t, customer, tacoPlate)
	cart, err := AddToCart(customer, drink.ID, nil)
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 2)

	cart, err = RemoveFromCart(customer, cart.OrderItems[0].ID)
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 1)
	assert.InDelta(t, 3.00, cart.Subtotal, 0.001)
}

func TestRemoveFromCartMissingItem(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "removemissing@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)

	_, err := RemoveFromCart(customer, 9999)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeNotFound, serviceErr.Code)
}

func TestSetTip(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "tip@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)

	cart, err := SetTip(customer, 2.00)
	require.NoError(t, err)
	assert.InDelta(t, 2.00, cart.Tip, 0.001)
	assert.InDelta(t, 11.50, cart.Total, 0.001)

	_, err = SetTip(customer, -1.00)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeValidation, serviceErr.Code)
}

func TestSetOrderMethod(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "method@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)

	cart, err := SetOrderMethod(customer, models.MethodDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.MethodDelivery, cart.Method)

	_, err = SetOrderMethod(customer, "CARRIER_PIGEON")
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeValidation, serviceErr.Code)
}

func TestSelectAddress(t *testing.T) {
	db, _ := setupTestServicesDB(t)
	customer := createTestCustomer(t, db, "addr@example.com")
	stranger := createTestCustomer(t, db, "stranger@example.com")
	vendor := createTestVendor(t, db, "Tulsa Tacos")
	item := createTestMenuItem(t, db, vendor.ID, "Taco Plate", 9.50)
	cartWithItem(t, customer, item)

	mine := createTestAddress(t, db, customer.ID)
	theirs := createTestAddress(t, db, stranger.ID)

	cart, err := SelectAddress(customer, mine.ID)
	require.NoError(t, err)
	require.NotNil(t, cart.AddressID)
	assert.Equal(t, mine.ID, *cart.AddressID)

	_, err = SelectAddress(customer, theirs.ID)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, CodeForbidden, serviceErr.Code)
}
