package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
)

func loadOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("OrderItems").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("Order not found.")
	}
	if err != nil {
		return nil, ErrDatabase(err)
	}
	return &order, nil
}

func sendEmail(email Email, functionName string) {
	if err := GetEmailSender().Send(email); err != nil {
		GetActivitySink().Record(err, RequestInfo{}, functionName)
	}
}

// Pay charges the customer's cart to the payment gateway and promotes it to
// a live order. Gateway failures pass through untouched with no mutation;
// a delivery cart with no address never reaches the gateway.
func Pay(customer *models.Customer, paymentToken string) (*models.Order, error) {
	db := config.GetDB()

	cart, err := loadCart(db, customer)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.OrderItems) == 0 {
		return nil, ErrPrecondition("Your cart is empty.").In("Pay")
	}
	if cart.Method == models.MethodDelivery && cart.AddressID == nil {
		return nil, ErrPrecondition("A delivery address is required for delivery orders.").In("Pay")
	}

	var vendor models.Vendor
	if err := db.First(&vendor, cart.VendorID).Error; err != nil {
		return nil, ErrDatabase(err).In("Pay")
	}

	total := cart.Subtotal + cart.Tip
	amountCents := int64(math.Round(total * 100))
	description := fmt.Sprintf("%s to %s - order #%d", customer.FullName(), vendor.BusinessName, cart.ID)

	result, chargeErr := GetPaymentGateway().Charge(amountCents, paymentToken, description, customer.Email)
	if chargeErr != nil {
		return nil, ErrGateway(chargeErr).In("Pay")
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		cart.Disposition = models.DispositionPaid
		cart.Total = total
		cart.AmountPaid = float64(result.AmountCents) / 100
		cart.ChargeID = &result.ChargeID
		if err := tx.Model(cart).Updates(map[string]interface{}{
			"disposition": cart.Disposition,
			"total":       cart.Total,
			"amount_paid": cart.AmountPaid,
			"charge_id":   cart.ChargeID,
		}).Error; err != nil {
			return err
		}
		customer.CartID = nil
		return tx.Model(customer).Update("cart_id", nil).Error
	})
	if txErr != nil {
		return nil, ErrDatabase(txErr).In("Pay")
	}

	sendEmail(Email{
		To:      customer.Email,
		Subject: fmt.Sprintf("Your order with %s", vendor.BusinessName),
		Text:    fmt.Sprintf("Order #%d has been placed. Total: $%.2f.", cart.ID, cart.Total),
	}, "Pay")
	sendEmail(Email{
		To:      vendor.Email,
		Subject: "New order!",
		Text:    fmt.Sprintf("%s placed order #%d for $%.2f.", customer.FullName(), cart.ID, cart.Total),
	}, "Pay")

	return cart, nil
}

// VendorAcceptOrder acknowledges a paid order and estimates when it will be
// ready, in minutes from now
func VendorAcceptOrder(vendor *models.Vendor, orderID uint, timeToReady int) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.VendorID != vendor.ID {
		return nil, ErrForbidden("This order belongs to another vendor.").In("VendorAcceptOrder")
	}
	if order.Disposition != models.DispositionPaid {
		return nil, ErrPrecondition("Only paid orders can be accepted.").In("VendorAcceptOrder")
	}
	if timeToReady <= 0 {
		return nil, ErrValidation("Time to ready must be positive.").In("VendorAcceptOrder")
	}

	estimatedReady := time.Now().Add(time.Duration(timeToReady) * time.Minute)
	order.Disposition = models.DispositionAcceptedByVendor
	order.EstimatedReadyTime = &estimatedReady
	if err := db.Model(order).Updates(map[string]interface{}{
		"disposition":          order.Disposition,
		"estimated_ready_time": order.EstimatedReadyTime,
	}).Error; err != nil {
		return nil, ErrDatabase(err).In("VendorAcceptOrder")
	}
	return order, nil
}

// ReadyOrder marks the order ready for pickup or handoff and notifies the
// assigned driver if there is one
func ReadyOrder(vendor *models.Vendor, orderID uint) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.VendorID != vendor.ID {
		return nil, ErrForbidden("This order belongs to another vendor.").In("ReadyOrder")
	}
	switch order.Disposition {
	case models.DispositionAcceptedByVendor, models.DispositionWaitingForDriver, models.DispositionAcceptedByDriver:
	default:
		return nil, ErrPrecondition("Order cannot be readied from its current state.").In("ReadyOrder")
	}

	now := time.Now()
	order.Disposition = models.DispositionReady
	order.ActualReadyTime = &now
	if err := db.Model(order).Updates(map[string]interface{}{
		"disposition":       order.Disposition,
		"actual_ready_time": order.ActualReadyTime,
	}).Error; err != nil {
		return nil, ErrDatabase(err).In("ReadyOrder")
	}

	if order.DriverID != nil {
		_, pushErr := GetPushNotifier().Push(*order.DriverID, "Order up!",
			fmt.Sprintf("The order at %s is ready.", vendor.BusinessName),
			PushData{
				"order_id":     fmt.Sprint(order.ID),
				"message_type": "ORDER_READY",
			})
		if pushErr != nil {
			GetActivitySink().Record(pushErr, RequestInfo{}, "ReadyOrder")
		}
	}
	return order, nil
}

// CustomerPickUpOrder completes a pickup-method order handed directly to the
// customer
func CustomerPickUpOrder(customer *models.Customer, orderID uint) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, ErrForbidden("This order belongs to another customer.").In("CustomerPickUpOrder")
	}
	if order.Method != models.MethodPickup {
		return nil, ErrPrecondition("Delivery orders are completed by their driver.").In("CustomerPickUpOrder")
	}
	if order.Disposition != models.DispositionReady {
		return nil, ErrPrecondition("Order is not ready for pickup.").In("CustomerPickUpOrder")
	}

	now := time.Now()
	order.Disposition = models.DispositionDelivered
	order.ActualDeliveryTime = &now
	if err := db.Model(order).Updates(map[string]interface{}{
		"disposition":          order.Disposition,
		"actual_delivery_time": order.ActualDeliveryTime,
	}).Error; err != nil {
		return nil, ErrDatabase(err).In("CustomerPickUpOrder")
	}

	sendEmail(Email{
		To:      customer.Email,
		Subject: "Enjoy your order!",
		Text:    fmt.Sprintf("Order #%d is complete. Thanks for ordering with us.", order.ID),
	}, "CustomerPickUpOrder")
	return order, nil
}

// RefundOrder refunds a paid order after revalidating the vendor's password.
// On success the order is canceled, any pending driver requests are
// withdrawn, and the customer and assigned driver are notified.
func RefundOrder(vendor *models.Vendor, password string, orderID uint) (*models.Order, error) {
	if !vendor.ValidatePassword(password) {
		return nil, ErrUnauthorized("Incorrect password.").In("RefundOrder")
	}

	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.VendorID != vendor.ID {
		return nil, ErrForbidden("This order belongs to another vendor.").In("RefundOrder")
	}
	if order.ChargeID == nil {
		return nil, ErrPrecondition("Order has not been paid.").In("RefundOrder")
	}
	if order.Disposition.IsTerminal() {
		return nil, ErrPrecondition("Order is already completed or canceled.").In("RefundOrder")
	}

	if refundErr := GetPaymentGateway().Refund(*order.ChargeID); refundErr != nil {
		return nil, ErrGateway(refundErr).In("RefundOrder")
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.DriverRequest{}).Error; err != nil {
			return err
		}
		order.Disposition = models.DispositionCanceled
		return tx.Model(order).Update("disposition", order.Disposition).Error
	})
	if txErr != nil {
		return nil, ErrDatabase(txErr).In("RefundOrder")
	}

	if dispatch := GetDispatchService(); dispatch != nil {
		dispatch.CancelOrderTimers(order.ID)
	}

	if order.DriverID != nil {
		_, pushErr := GetPushNotifier().Push(*order.DriverID, "Order canceled.",
			fmt.Sprintf("The order for %s has been canceled.", vendor.BusinessName),
			PushData{
				"order_id":     fmt.Sprint(order.ID),
				"message_type": "ORDER_CANCELED",
			})
		if pushErr != nil {
			GetActivitySink().Record(pushErr, RequestInfo{}, "RefundOrder")
		}
	}

	var customer models.Customer
	if err := db.First(&customer, order.CustomerID).Error; err == nil {
		sendEmail(Email{
			To:      customer.Email,
			Subject: "Your order has been refunded",
			Text:    fmt.Sprintf("Order #%d was canceled and $%.2f has been refunded.", order.ID, order.AmountPaid),
		}, "RefundOrder")
	}
	sendEmail(Email{
		To:      vendor.Email,
		Subject: fmt.Sprintf("Refund issued for order #%d", order.ID),
		Text:    fmt.Sprintf("$%.2f was refunded to the customer.", order.AmountPaid),
	}, "RefundOrder")

	return order, nil
}
