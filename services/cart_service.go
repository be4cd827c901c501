package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
)

// loadCart fetches the customer's cart with its items, or nil when the
// customer has no cart
func loadCart(db *gorm.DB, customer *models.Customer) (*models.Order, error) {
	if customer.CartID == nil {
		return nil, nil
	}
	var cart models.Order
	err := db.Preload("OrderItems").First(&cart, *customer.CartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrDatabase(err).In("loadCart")
	}
	return &cart, nil
}

// GetCart returns the customer's current cart. When the customer has none, a
// transient empty order is returned without being persisted, representing
// "no vendor selected yet".
func GetCart(customer *models.Customer) (*models.Order, error) {
	db := config.GetDB()
	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.Order{
			CustomerID:  customer.ID,
			Method:      models.MethodPickup,
			Disposition: models.DispositionNew,
			OrderItems:  []models.OrderItem{},
		}, nil
	}
	return cart, nil
}

// AddToCart prices the menu item with the selected modifications and appends
// it to the customer's cart. A cart is created on first add; adding an item
// from a different vendor abandons the old cart and starts a new one.
func AddToCart(customer *models.Customer, menuItemID uint, selections []models.ModificationSelection) (*models.Order, error) {
	db := config.GetDB()

	var menuItem models.MenuItem
	if err := db.Preload("Modifications").First(&menuItem, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Menu item not found.").In("AddToCart")
		}
		return nil, ErrDatabase(err).In("AddToCart")
	}

	price, err := PriceOrderItem(&menuItem, selections)
	if err != nil {
		return nil, err
	}

	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if cart != nil && cart.VendorID != menuItem.VendorID {
			// Starting an order with another vendor abandons the old cart
			if err := tx.Delete(cart).Error; err != nil {
				return err
			}
			cart = nil
		}
		if cart == nil {
			cart = &models.Order{
				CustomerID:  customer.ID,
				VendorID:    menuItem.VendorID,
				Method:      models.MethodPickup,
				Disposition: models.DispositionNew,
			}
			if err := tx.Create(cart).Error; err != nil {
				return err
			}
			customer.CartID = &cart.ID
			if err := tx.Model(customer).Update("cart_id", cart.ID).Error; err != nil {
				return err
			}
		}

		item := models.OrderItem{
			OrderID:       cart.ID,
			MenuItemID:    menuItem.ID,
			Name:          menuItem.Name,
			Price:         price,
			Modifications: selections,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		cart.Subtotal += price
		cart.Total = cart.Subtotal + cart.Tip
		return tx.Model(cart).Updates(map[string]interface{}{
			"subtotal": cart.Subtotal,
			"total":    cart.Total,
		}).Error
	})
	if txErr != nil {
		return nil, ErrDatabase(txErr).In("AddToCart")
	}

	return loadCart(db, customer)
}

// RemoveFromCart removes an item and decrements the subtotal by the item's
// stored price
func RemoveFromCart(customer *models.Customer, orderItemID uint) (*models.Order, error) {
	db := config.GetDB()
	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound("You have no cart.").In("RemoveFromCart")
	}

	var item *models.OrderItem
	for i := range cart.OrderItems {
		if cart.OrderItems[i].ID == orderItemID {
			item = &cart.OrderItems[i]
			break
		}
	}
	if item == nil {
		return nil, ErrNotFound("Item is not in your cart.").In("RemoveFromCart")
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(item).Error; err != nil {
			return err
		}
		cart.Subtotal -= item.Price
		cart.Total = cart.Subtotal + cart.Tip
		return tx.Model(cart).Updates(map[string]interface{}{
			"subtotal": cart.Subtotal,
			"total":    cart.Total,
		}).Error
	})
	if txErr != nil {
		return nil, ErrDatabase(txErr).In("RemoveFromCart")
	}

	return loadCart(db, customer)
}

// SetTip sets the cart's tip amount
func SetTip(customer *models.Customer, amount float64) (*models.Order, error) {
	if amount < 0 {
		return nil, ErrValidation("Tip cannot be negative.").In("SetTip")
	}
	db := config.GetDB()
	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound("You have no cart.").In("SetTip")
	}

	cart.Tip = amount
	cart.Total = cart.Subtotal + amount
	if err := db.Model(cart).Updates(map[string]interface{}{
		"tip":   cart.Tip,
		"total": cart.Total,
	}).Error; err != nil {
		return nil, ErrDatabase(err).In("SetTip")
	}
	return cart, nil
}

// SetOrderMethod switches the cart between pickup and delivery. The method
// is fixed once the order is paid.
func SetOrderMethod(customer *models.Customer, method models.OrderMethod) (*models.Order, error) {
	if method != models.MethodPickup && method != models.MethodDelivery {
		return nil, ErrValidation("Order method must be PICKUP or DELIVERY.").In("SetOrderMethod")
	}
	db := config.GetDB()
	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound("You have no cart.").In("SetOrderMethod")
	}
	if cart.Disposition != models.DispositionNew {
		return nil, ErrPrecondition("Order method cannot change after payment.").In("SetOrderMethod")
	}

	cart.Method = method
	if err := db.Model(cart).Update("method", method).Error; err != nil {
		return nil, ErrDatabase(err).In("SetOrderMethod")
	}
	return cart, nil
}

// SelectAddress attaches one of the customer's saved addresses to the cart
func SelectAddress(customer *models.Customer, addressID uint) (*models.Order, error) {
	db := config.GetDB()
	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound("You have no cart.").In("SelectAddress")
	}

	var address models.Address
	if err := db.First(&address, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Address not found.").In("SelectAddress")
		}
		return nil, ErrDatabase(err).In("SelectAddress")
	}
	if address.CustomerID == nil || *address.CustomerID != customer.ID {
		return nil, ErrForbidden("Address does not belong to you.").In("SelectAddress")
	}

	cart.AddressID = &address.ID
	cart.Address = &address
	if err := db.Model(cart).Update("address_id", address.ID).Error; err != nil {
		return nil, ErrDatabase(err).In("SelectAddress")
	}
	return cart, nil
}
