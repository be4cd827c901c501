package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
)

type requestKey struct {
	orderID  uint
	driverID uint
}

// DispatchService broadcasts delivery offers to drivers and runs the
// accept/reject/pickup/deliver flow. Offers expire after requestTTL; expiry
// timers are cancellable and keyed by (order, driver) so that acceptance or
// rejection cancels the pending cleanup.
type DispatchService struct {
	requestTTL time.Duration

	mu     sync.Mutex
	timers map[requestKey]*time.Timer
}

var dispatchServiceInstance *DispatchService

// InitDispatchService initializes the dispatch service
func InitDispatchService(requestTTL time.Duration) *DispatchService {
	dispatchServiceInstance = &DispatchService{
		requestTTL: requestTTL,
		timers:     make(map[requestKey]*time.Timer),
	}
	return dispatchServiceInstance
}

// GetDispatchService returns the dispatch service instance
func GetDispatchService() *DispatchService {
	return dispatchServiceInstance
}

// SetDispatchService sets the dispatch service instance (primarily for testing)
func SetDispatchService(s *DispatchService) {
	dispatchServiceInstance = s
}

// DriverRequestResult is the per-driver outcome of a broadcast
type DriverRequestResult struct {
	DriverID uint   `json:"driver_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *DispatchService) scheduleExpiry(orderID, driverID uint) {
	key := requestKey{orderID: orderID, driverID: driverID}
	s.mu.Lock()
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	s.timers[key] = time.AfterFunc(s.requestTTL, func() {
		s.expireRequest(orderID, driverID)
	})
	s.mu.Unlock()
}

func (s *DispatchService) cancelTimer(orderID, driverID uint) {
	key := requestKey{orderID: orderID, driverID: driverID}
	s.mu.Lock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
}

// CancelOrderTimers cancels every pending expiry timer for an order
func (s *DispatchService) CancelOrderTimers(orderID uint) {
	s.mu.Lock()
	for key, timer := range s.timers {
		if key.orderID == orderID {
			timer.Stop()
			delete(s.timers, key)
		}
	}
	s.mu.Unlock()
}

// expireRequest fires when a driver has not answered an offer in time. The
// offer is withdrawn; when it was the last one and nobody claimed the order,
// the order returns to the vendor-accepted pool.
func (s *DispatchService) expireRequest(orderID, driverID uint) {
	s.mu.Lock()
	delete(s.timers, requestKey{orderID: orderID, driverID: driverID})
	s.mu.Unlock()

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ? AND driver_id = ?", orderID, driverID).
			Delete(&models.DriverRequest{}).Error; err != nil {
			return err
		}
		var remaining int64
		if err := tx.Model(&models.DriverRequest{}).
			Where("order_id = ?", orderID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		// Revert only if nobody claimed the order in the meantime
		return tx.Model(&models.Order{}).
			Where("id = ? AND driver_id IS NULL AND disposition = ?", orderID, models.DispositionWaitingForDriver).
			Update("disposition", models.DispositionAcceptedByVendor).Error
	})
	if err != nil {
		log.Printf("Failed to expire driver request (order %d, driver %d): %v", orderID, driverID, err)
	}
}

// requestDriver runs the per-driver guards and sends the offer notification
func (s *DispatchService) requestDriver(db *gorm.DB, order *models.Order, vendor *models.Vendor, driverID uint) error {
	var driver models.Driver
	if err := db.First(&driver, driverID).Error; err != nil {
		return ErrNotFound("Driver not found.")
	}
	if driver.Status != models.DriverActive {
		return ErrPrecondition("Driver is offline.")
	}

	route, err := models.DriverRoute(db, driver.ID)
	if err != nil {
		return ErrDatabase(err)
	}
	for _, assigned := range route {
		if assigned.VendorID != order.VendorID {
			return ErrPrecondition("Driver is currently delivering for another vendor.")
		}
	}

	var pending int64
	if err := db.Model(&models.DriverRequest{}).
		Where("order_id = ? AND driver_id = ?", order.ID, driver.ID).
		Count(&pending).Error; err != nil {
		return ErrDatabase(err)
	}
	if pending > 0 {
		return ErrPrecondition("Driver has already been requested.")
	}

	customerName := ""
	if order.Customer != nil {
		customerName = order.Customer.FirstName
		if order.Customer.LastName != "" {
			customerName += " " + order.Customer.LastName[:1]
		}
	}
	data := PushData{
		"order_id":         fmt.Sprint(order.ID),
		"message_type":     "REQUEST_DRIVER",
		"business_name":    vendor.BusinessName,
		"business_address": vendor.Address.String(),
		"customer_name":    customerName,
		"customer_address": order.Address.String(),
		"tip":              fmt.Sprintf("%.2f", order.Tip),
	}
	if _, err := GetPushNotifier().Push(driver.ID, "Incoming Order!",
		fmt.Sprintf("New order from %s.", vendor.BusinessName), data); err != nil {
		return ErrGateway(err)
	}

	request := models.DriverRequest{
		OrderID:   order.ID,
		DriverID:  driver.ID,
		ExpiresAt: time.Now().Add(s.requestTTL),
	}
	if err := db.Create(&request).Error; err != nil {
		return ErrDatabase(err)
	}
	s.scheduleExpiry(order.ID, driver.ID)
	return nil
}

// RequestDrivers broadcasts a delivery offer to the candidate drivers.
// First accept wins; unanswered offers expire. The first successful request
// moves the order to WAITING_FOR_DRIVER.
func (s *DispatchService) RequestDrivers(vendor *models.Vendor, orderID uint, driverIDs []uint) (*models.Order, []DriverRequestResult, error) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Customer").Preload("Address").First(&order, orderID).Error; err != nil {
		return nil, nil, ErrNotFound("Order not found.").In("RequestDrivers")
	}
	if order.VendorID != vendor.ID {
		return nil, nil, ErrForbidden("This order belongs to another vendor.").In("RequestDrivers")
	}
	if order.Method != models.MethodDelivery {
		return nil, nil, ErrPrecondition("Drivers can only be requested for delivery orders.").In("RequestDrivers")
	}
	if order.DriverID != nil {
		return nil, nil, ErrPrecondition("Order already has a driver assigned.").In("RequestDrivers")
	}
	switch order.Disposition {
	case models.DispositionAcceptedByVendor, models.DispositionWaitingForDriver:
	default:
		return nil, nil, ErrPrecondition("Order is not awaiting a driver.").In("RequestDrivers")
	}
	if len(driverIDs) == 0 {
		return nil, nil, ErrValidation("At least one driver is required.").In("RequestDrivers")
	}

	if vendor.Address == nil && vendor.AddressID != nil {
		var address models.Address
		if err := db.First(&address, *vendor.AddressID).Error; err == nil {
			vendor.Address = &address
		}
	}

	results := make([]DriverRequestResult, 0, len(driverIDs))
	anySuccess := false
	for _, driverID := range driverIDs {
		if err := s.requestDriver(db, &order, vendor, driverID); err != nil {
			results = append(results, DriverRequestResult{DriverID: driverID, Success: false, Error: err.Error()})
			continue
		}
		anySuccess = true
		results = append(results, DriverRequestResult{DriverID: driverID, Success: true})
	}

	if anySuccess && order.Disposition == models.DispositionAcceptedByVendor {
		order.Disposition = models.DispositionWaitingForDriver
		if err := db.Model(&order).Update("disposition", order.Disposition).Error; err != nil {
			return nil, results, ErrDatabase(err).In("RequestDrivers")
		}
	}
	return &order, results, nil
}

// AcceptOrder claims the order for the driver. The claim is a single
// conditional update so that concurrent accepts cannot double-assign: the
// losing driver sees a precondition failure.
func (s *DispatchService) AcceptOrder(driver *models.Driver, orderID uint) (*models.Order, error) {
	db := config.GetDB()

	result := db.Model(&models.Order{}).
		Where("id = ? AND driver_id IS NULL AND disposition = ?", orderID, models.DispositionWaitingForDriver).
		Updates(map[string]interface{}{
			"driver_id":   driver.ID,
			"disposition": models.DispositionAcceptedByDriver,
		})
	if result.Error != nil {
		return nil, ErrDatabase(result.Error).In("AcceptOrder")
	}
	if result.RowsAffected == 0 {
		return nil, ErrPrecondition("Order is no longer available.").In("AcceptOrder")
	}

	s.CancelOrderTimers(orderID)
	if err := db.Where("order_id = ?", orderID).Delete(&models.DriverRequest{}).Error; err != nil {
		log.Printf("Failed to clear driver requests for order %d: %v", orderID, err)
	}

	return loadOrder(db, orderID)
}

// RejectOrder declines a pending offer, or backs out of a claimed order
// before it is en route. Either way the order returns to the pool.
func (s *DispatchService) RejectOrder(driver *models.Driver, orderID uint) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}

	if order.DriverID != nil && *order.DriverID == driver.ID {
		switch order.Disposition {
		case models.DispositionAcceptedByDriver, models.DispositionReady:
		default:
			return nil, ErrPrecondition("Order cannot be rejected once en route.").In("RejectOrder")
		}
		order.DriverID = nil
		order.Disposition = models.DispositionAcceptedByVendor
		if err := db.Model(order).Updates(map[string]interface{}{
			"driver_id":   nil,
			"disposition": order.Disposition,
		}).Error; err != nil {
			return nil, ErrDatabase(err).In("RejectOrder")
		}
		return order, nil
	}

	// Declining a pending offer
	deleted := db.Where("order_id = ? AND driver_id = ?", orderID, driver.ID).Delete(&models.DriverRequest{})
	if deleted.Error != nil {
		return nil, ErrDatabase(deleted.Error).In("RejectOrder")
	}
	if deleted.RowsAffected == 0 {
		return nil, ErrNotFound("You have no request for this order.").In("RejectOrder")
	}
	s.cancelTimer(orderID, driver.ID)

	var remaining int64
	if err := db.Model(&models.DriverRequest{}).Where("order_id = ?", orderID).Count(&remaining).Error; err != nil {
		return nil, ErrDatabase(err).In("RejectOrder")
	}
	if remaining == 0 && order.DriverID == nil && order.Disposition == models.DispositionWaitingForDriver {
		order.Disposition = models.DispositionAcceptedByVendor
		if err := db.Model(order).Update("disposition", order.Disposition).Error; err != nil {
			return nil, ErrDatabase(err).In("RejectOrder")
		}
	}
	return order, nil
}

// PickUpOrder marks a ready order picked up by its assigned driver
func (s *DispatchService) PickUpOrder(driver *models.Driver, orderID uint) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.DriverID == nil || *order.DriverID != driver.ID {
		return nil, ErrForbidden("You are not assigned to this order.").In("PickUpOrder")
	}
	if order.Disposition != models.DispositionReady {
		return nil, ErrPrecondition("Order is not ready for pickup.").In("PickUpOrder")
	}

	order.Disposition = models.DispositionEnRoute
	if err := db.Model(order).Update("disposition", order.Disposition).Error; err != nil {
		return nil, ErrDatabase(err).In("PickUpOrder")
	}
	return order, nil
}

// DeliverOrder completes a delivery and notifies the customer
func (s *DispatchService) DeliverOrder(driver *models.Driver, orderID uint) (*models.Order, error) {
	db := config.GetDB()
	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.DriverID == nil || *order.DriverID != driver.ID {
		return nil, ErrForbidden("You are not assigned to this order.").In("DeliverOrder")
	}
	if order.Disposition != models.DispositionEnRoute {
		return nil, ErrPrecondition("Order is not en route.").In("DeliverOrder")
	}

	now := time.Now()
	order.Disposition = models.DispositionDelivered
	order.ActualDeliveryTime = &now
	if err := db.Model(order).Updates(map[string]interface{}{
		"disposition":          order.Disposition,
		"actual_delivery_time": order.ActualDeliveryTime,
	}).Error; err != nil {
		return nil, ErrDatabase(err).In("DeliverOrder")
	}

	var customer models.Customer
	if err := db.First(&customer, order.CustomerID).Error; err == nil {
		sendEmail(Email{
			To:      customer.Email,
			Subject: "Your order has arrived!",
			Text:    fmt.Sprintf("Order #%d was delivered. Enjoy!", order.ID),
		}, "DeliverOrder")
	}
	return order, nil
}

// ToggleStatus flips a driver between ACTIVE and INACTIVE. Going inactive is
// refused while the driver still has orders on their route.
func (s *DispatchService) ToggleStatus(driver *models.Driver, status models.DriverStatus) (models.DriverStatus, error) {
	previous := driver.Status
	if status != models.DriverActive && status != models.DriverInactive {
		return previous, ErrValidation("Status must be ACTIVE or INACTIVE.").In("ToggleStatus")
	}
	db := config.GetDB()

	if status == models.DriverInactive {
		route, err := models.DriverRoute(db, driver.ID)
		if err != nil {
			return previous, ErrDatabase(err).In("ToggleStatus")
		}
		if len(route) > 0 {
			return previous, ErrPrecondition("There are still active orders on your route!").In("ToggleStatus")
		}
	}

	if err := db.Model(&models.Driver{}).Where("id = ?", driver.ID).Update("status", status).Error; err != nil {
		return previous, ErrDatabase(err).In("ToggleStatus")
	}
	driver.Status = status
	return status, nil
}

// SetLocation updates the driver's position on their row and in the live
// location cache
func (s *DispatchService) SetLocation(driver *models.Driver, latitude, longitude float64) error {
	db := config.GetDB()
	driver.Latitude = latitude
	driver.Longitude = longitude
	if err := db.Model(driver).Updates(map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	}).Error; err != nil {
		return ErrDatabase(err).In("SetLocation")
	}
	if cache := GetLocationCache(); cache != nil {
		if err := cache.Set(context.Background(), driver.ID, latitude, longitude); err != nil {
			log.Printf("Failed to update live location for driver %d: %v", driver.ID, err)
		}
	}
	return nil
}

// TrackOrder returns the assigned driver's last known position for an order
// the customer owns. The live cache is consulted first; if the driver has not
// reported there yet, the position stored on the driver row is used.
func (s *DispatchService) TrackOrder(customer *models.Customer, orderID uint) (*DriverLocation, error) {
	db := config.GetDB()

	order, err := loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, ErrForbidden("This order belongs to another customer.").In("TrackOrder")
	}
	if order.DriverID == nil {
		return nil, ErrPrecondition("No driver has been assigned to this order yet.").In("TrackOrder")
	}
	if order.Disposition == models.DispositionDelivered || order.Disposition == models.DispositionCanceled {
		return nil, ErrPrecondition("This order is no longer in transit.").In("TrackOrder")
	}

	if cache := GetLocationCache(); cache != nil {
		location, err := cache.Get(context.Background(), *order.DriverID)
		if err != nil {
			log.Printf("Failed to read live location for driver %d: %v", *order.DriverID, err)
		} else if location != nil {
			return location, nil
		}
	}

	var driver models.Driver
	if err := db.First(&driver, *order.DriverID).Error; err != nil {
		return nil, ErrDatabase(err).In("TrackOrder")
	}
	return &DriverLocation{
		Latitude:  driver.Latitude,
		Longitude: driver.Longitude,
		UpdatedAt: driver.UpdatedAt.Unix(),
	}, nil
}
