package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

// GetRoute handles GET /route - the driver's assigned, undelivered orders
func GetRoute(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetRoute"), "GetRoute")
		return
	}

	route, err := models.DriverRoute(config.GetDB(), driver.ID)
	if err != nil {
		respondError(c, services.ErrDatabase(err).In("GetRoute"), "GetRoute")
		return
	}
	respondData(c, http.StatusOK, route)
}

// AcceptOrder handles POST /route/acceptOrder
func AcceptOrder(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AcceptOrder"), "AcceptOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.GetDispatchService().AcceptOrder(driver, req.OrderID)
	if err != nil {
		respondError(c, err, "AcceptOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// PickUpOrder handles POST /route/pickUpOrder
func PickUpOrder(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("PickUpOrder"), "PickUpOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.GetDispatchService().PickUpOrder(driver, req.OrderID)
	if err != nil {
		respondError(c, err, "PickUpOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// DeliverOrder handles POST /route/deliverOrder
func DeliverOrder(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("DeliverOrder"), "DeliverOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.GetDispatchService().DeliverOrder(driver, req.OrderID)
	if err != nil {
		respondError(c, err, "DeliverOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}

// RejectOrder handles POST /route/rejectOrder
func RejectOrder(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("RejectOrder"), "RejectOrder")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := services.GetDispatchService().RejectOrder(driver, req.OrderID)
	if err != nil {
		respondError(c, err, "RejectOrder")
		return
	}
	respondData(c, http.StatusOK, order)
}
