package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

// AddToCartRequest represents the request body for adding a menu item to
// the cart
type AddToCartRequest struct {
	MenuItemID    uint                           `json:"menu_item_id" binding:"required"`
	Modifications []models.ModificationSelection `json:"modifications"`
}

// RemoveFromCartRequest represents the request body for removing a cart line
type RemoveFromCartRequest struct {
	OrderItemID uint `json:"order_item_id" binding:"required"`
}

// SetTipRequest represents the request body for setting the cart tip
type SetTipRequest struct {
	Tip *float64 `json:"tip" binding:"required"`
}

// SetOrderMethodRequest represents the request body for choosing pickup or
// delivery
type SetOrderMethodRequest struct {
	Method models.OrderMethod `json:"method" binding:"required"`
}

// PayRequest represents the request body for paying for the cart
type PayRequest struct {
	PaymentDetails struct {
		Token string `json:"token" binding:"required"`
	} `json:"payment_details" binding:"required"`
}

// VendorAcceptOrderRequest represents the request body for a vendor accepting
// a paid order
type VendorAcceptOrderRequest struct {
	OrderID     uint `json:"order_id" binding:"required"`
	TimeToReady int  `json:"time_to_ready" binding:"required,gt=0"` // minutes
}

// OrderActionRequest represents the request body for order actions that only
// need the order id
type OrderActionRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// RefundOrderRequest represents the request body for refunding an order. The
// vendor re-enters their password to authorize the refund.
type RefundOrderRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RequestDriversRequest represents the request body for broadcasting a
// delivery offer
type RequestDriversRequest struct {
	OrderID   uint   `json:"order_id" binding:"required"`
	DriverIDs []uint `json:"driver_ids" binding:"required"`
}

// GetCart handles GET /orders/cart
func GetCart(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetCart"), "GetCart")
		return
	}

	cart, err := services.GetCart(customer)
	if err != nil {
		respondError(c, err, "GetCart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// AddToCart handles POST /orders/addToCart
func AddToCart(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AddToCart"), "AddToCart")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := services.AddToCart(customer, req.MenuItemID, req.Modifications)
	if err != nil {
		respondError(c, err, "AddToCart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RemoveFromCart handles POST /orders/removeFromCart
func RemoveFromCart(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RemoveFromCart"), "RemoveFromCart")
		return
	}

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := services.RemoveFromCart(customer, req.OrderItemID)
	if err != nil {
		respondError(c, err, "RemoveFromCart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// SetTip handles POST /orders/setTip
func SetTip(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("SetTip"), "SetTip")
		return
	}

	var req SetTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := services.SetTip(customer, *req.Tip)
	if err != nil {
		respondError(c, err, "SetTip")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// CustomerSetOrderMethod handles POST /orders/customerSetOrderMethod
func CustomerSetOrderMethod(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("CustomerSetOrderMethod"), "CustomerSetOrderMethod")
		return
	}

	var req SetOrderMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := services.SetOrderMethod(customer, req.Method)
	if err != nil {
		respondError(c, err, "CustomerSetOrderMethod")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// Pay handles POST /orders/pay
func Pay(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("Pay"), "Pay")
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.Pay(customer, req.PaymentDetails.Token)
	if err != nil {
		respondError(c, err, "Pay")
		return
	}
	respondData(c, http.StatusOK, order)
}

// ActiveOrders handles GET /orders/active for customers and vendors
func ActiveOrders(c *gin.Context) {
	db := config.GetDB()
	if customer, err := middleware.GetCustomer(c); err == nil {
		orders, err := models.CustomerActiveOrders(db, customer.ID)
		if err != nil {
			respondError(c, services.ErrDatabase(err).In("ActiveOrders"), "ActiveOrders")
			return
		}
		respondData(c, http.StatusOK, orders)
		return
	}
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("ActiveOrders"), "ActiveOrders")
		return
	}
	orders, err := models.VendorActiveOrders(db, vendor.ID)
	if err != nil {
		respondError(c, services.ErrDatabase(err).In("ActiveOrders"), "ActiveOrders")
		return
	}
	respondData(c, http.StatusOK, orders)
}

// ReadyOrders handles GET /orders/ready for customers and vendors
func ReadyOrders(c *gin.Context) {
	db := config.GetDB()
	if customer, err := middleware.GetCustomer(c); err == nil {
		orders, err := models.CustomerReadyOrders(db, customer.ID)
		if err != nil {
			respondError(c, services.ErrDatabase(err).In("ReadyOrders"), "ReadyOrders")
			return
		}
		respondData(c, http.StatusOK, orders)
		return
	}
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("ReadyOrders"), "ReadyOrders")
		return
	}
	orders, err := models.VendorReadyOrders(db, vendor.ID)
	if err != nil {
		respondError(c, services.ErrDatabase(err).In("ReadyOrders"), "ReadyOrders")
		return
	}
	respondData(c, http.StatusOK, orders)
}

// OrderHistory handles GET /orders/history for customers, vendors and drivers
func OrderHistory(c *gin.Context) {
	db := config.GetDB()
	if customer, err := middleware.GetCustomer(c); err == nil {
		orders, err := models.CustomerOrderHistory(db, customer.ID)
		if err != nil {
			respondError(c, services.ErrDatabase(err).In("OrderHistory"), "OrderHistory")
			return
		}
		respondData(c, http.StatusOK, orders)
		return
	}
	if vendor, err := middleware.GetVendor(c); err == nil {
		orders, err := models.VendorOrderHistory(db, vendor.ID)
		if err != nil {
			respondError(c, services.ErrDatabase(err).In("OrderHistory"), "OrderHistory")
			return
		}
		respondData(c, http.StatusOK, orders)
		return
	}
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("OrderHistory"), "OrderHistory")
		return
	}
	orders, err := models.DriverOrderHistory(db, driver.ID)
	if err != nil {
		respondError(c, services.ErrDatabase(err).In("OrderHistory"), "OrderHistory")
		return
	}
	respondData(c, http.StatusOK, orders)
}

// VendorAcceptOrder handles POST /orders/vendorAcceptOrder
func VendorAcceptOrder(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("VendorAcceptOrder"), "VendorAcceptOrder")
		return
	}

	var req VendorAcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.VendorAcceptOrder(vendor, req.OrderID, req.TimeToReady)
	if err != nil {
		respondError(c, err, "VendorAcceptOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// ReadyOrder handles POST /orders/readyOrder
func ReadyOrder(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("ReadyOrder"), "ReadyOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.ReadyOrder(vendor, req.OrderID)
	if err != nil {
		respondError(c, err, "ReadyOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// CustomerPickUpOrder handles POST /orders/customerPickUpOrder
func CustomerPickUpOrder(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("CustomerPickUpOrder"), "CustomerPickUpOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.CustomerPickUpOrder(customer, req.OrderID)
	if err != nil {
		respondError(c, err, "CustomerPickUpOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// RefundOrder handles POST /orders/refundOrder
func RefundOrder(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RefundOrder"), "RefundOrder")
		return
	}

	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.RefundOrder(vendor, req.Password, req.OrderID)
	if err != nil {
		respondError(c, err, "RefundOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// RequestDrivers handles POST /orders/requestDrivers
func RequestDrivers(c *gin.Context) {
	vendor, err := middleware.GetVendor(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RequestDrivers"), "RequestDrivers")
		return
	}

	var req RequestDriversRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, results, err := services.GetDispatchService().RequestDrivers(vendor, req.OrderID, req.DriverIDs)
	if err != nil {
		respondError(c, err, "RequestDrivers")
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"order":    order,
		"requests": results,
	})
}

// TrackOrder handles GET /orders/track/:orderId - the assigned driver's last
// known position for an order in transit
func TrackOrder(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("TrackOrder"), "TrackOrder")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 64)
	if err != nil {
		respondError(c, services.ErrValidation("Order id must be a number.").In("TrackOrder"), "TrackOrder")
		return
	}

	location, err := services.GetDispatchService().TrackOrder(customer, uint(orderID))
	if err != nil {
		respondError(c, err, "TrackOrder")
		return
	}
	respondData(c, http.StatusOK, location)
}
