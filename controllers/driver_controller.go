package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

// RegisterDriverRequest represents the request body for driver signup
type RegisterDriverRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// ToggleStatusRequest represents the request body for going on or off duty
type ToggleStatusRequest struct {
	Status models.DriverStatus `json:"status" binding:"required"`
}

// SetLocationRequest represents the request body for a driver location ping
type SetLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// AddDeviceTokenRequest represents the request body for registering a push
// device token
type AddDeviceTokenRequest struct {
	DeviceToken string `json:"device_token" binding:"required"`
}

// RegisterDriver handles POST /drivers/register
func RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var existing int64
	if err := db.Model(&models.Driver{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterDriver"), "RegisterDriver")
		return
	}
	if existing > 0 {
		respondError(c, services.ErrValidation("Email is already registered.").In("RegisterDriver"), "RegisterDriver")
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "RegisterDriver")
		return
	}

	driver := models.Driver{
		Email:       req.Email,
		Password:    hash,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Status:      models.DriverInactive,
	}
	if err := db.Create(&driver).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterDriver"), "RegisterDriver")
		return
	}

	sendConfirmationEmail(driver.Email, services.RoleDriver, driver.ID)

	token, err := services.GetAuthService().IssueSessionToken(driver.ID, services.RoleDriver)
	if err != nil {
		respondError(c, err, "RegisterDriver")
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"token":     token,
		"profile":   driver,
		"user_type": services.RoleDriver,
	})
}

// LoginDriver handles POST /drivers/login
func LoginDriver(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var driver models.Driver
	if err := db.Where("email = ?", req.Email).First(&driver).Error; err != nil {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginDriver"), "LoginDriver")
		return
	}
	if !driver.ValidatePassword(req.Password) {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginDriver"), "LoginDriver")
		return
	}

	token, err := services.GetAuthService().IssueSessionToken(driver.ID, services.RoleDriver)
	if err != nil {
		respondError(c, err, "LoginDriver")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token":     token,
		"profile":   driver,
		"user_type": services.RoleDriver,
	})
}

// GetDriverProfile handles GET /drivers/me
func GetDriverProfile(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetDriverProfile"), "GetDriverProfile")
		return
	}

	route, err := models.DriverRoute(config.GetDB(), driver.ID)
	if err != nil {
		respondError(c, services.ErrDatabase(err).In("GetDriverProfile"), "GetDriverProfile")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"profile": driver,
		"route":   route,
	})
}

// ListActiveDrivers handles GET /drivers/active - the drivers a vendor can
// broadcast a delivery offer to
func ListActiveDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := config.GetDB().Where("status = ?", models.DriverActive).
		Find(&drivers).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("ListActiveDrivers"), "ListActiveDrivers")
		return
	}
	respondData(c, http.StatusOK, drivers)
}

// ToggleStatus handles POST /drivers/toggleStatus
func ToggleStatus(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("ToggleStatus"), "ToggleStatus")
		return
	}

	var req ToggleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	status, err := services.GetDispatchService().ToggleStatus(driver, req.Status)
	if err != nil {
		respondError(c, err, "ToggleStatus")
		return
	}
	respondData(c, http.StatusOK, gin.H{"status": status})
}

// SetLocation handles POST /drivers/setLocation
func SetLocation(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("SetLocation"), "SetLocation")
		return
	}

	var req SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := services.GetDispatchService().SetLocation(driver, *req.Latitude, *req.Longitude); err != nil {
		respondError(c, err, "SetLocation")
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"latitude":  driver.Latitude,
		"longitude": driver.Longitude,
	})
}

// AddDeviceToken handles POST /drivers/addDeviceToken
func AddDeviceToken(c *gin.Context) {
	driver, err := middleware.GetDriver(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AddDeviceToken"), "AddDeviceToken")
		return
	}

	var req AddDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	for _, token := range driver.DeviceTokens {
		if token == req.DeviceToken {
			respondData(c, http.StatusOK, gin.H{"device_tokens": driver.DeviceTokens})
			return
		}
	}
	driver.DeviceTokens = append(driver.DeviceTokens, req.DeviceToken)
	if err := config.GetDB().Model(driver).Update("device_tokens", driver.DeviceTokens).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("AddDeviceToken"), "AddDeviceToken")
		return
	}

	respondData(c, http.StatusOK, gin.H{"device_tokens": driver.DeviceTokens})
}

var driverSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DriverSocket handles GET /ws/drivers - upgrades the driver's connection and
// registers it with the push hub. The connection is held open until the
// driver disconnects.
func DriverSocket(hub *services.PushHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driver, err := middleware.GetDriver(c)
		if err != nil {
			respondError(c, services.ErrUnauthorized(err.Error()).In("DriverSocket"), "DriverSocket")
			return
		}

		conn, err := driverSocketUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade driver %d websocket: %v", driver.ID, err)
			return
		}
		hub.Register(driver.ID, conn)

		go func() {
			defer func() {
				hub.Unregister(driver.ID, conn)
				conn.Close()
			}()
			for {
				// Drain control and client frames; the server only pushes.
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
