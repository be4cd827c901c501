package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

// RegisterCustomerRequest represents the request body for customer signup
type RegisterCustomerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// LoginRequest represents the request body for any actor login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AddAddressRequest represents the request body for saving a delivery address
type AddAddressRequest struct {
	Street    string  `json:"street" binding:"required"`
	Unit      string  `json:"unit"`
	City      string  `json:"city" binding:"required"`
	State     string  `json:"state" binding:"required"`
	Zip       string  `json:"zip" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Note      string  `json:"note"`
}

func sendConfirmationEmail(email, role string, actorID uint) {
	token, err := services.GetAuthService().IssueEmailToken(actorID, role)
	if err != nil {
		return
	}
	if sender := services.GetEmailSender(); sender != nil {
		sender.Send(services.Email{
			To:      email,
			Subject: "Confirm your DriveFair email",
			Text:    fmt.Sprintf("Welcome to DriveFair! Confirm your email with this token: %s", token),
		})
	}
}

// RegisterCustomer handles POST /customers/register
func RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var existing int64
	if err := db.Model(&models.Customer{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterCustomer"), "RegisterCustomer")
		return
	}
	if existing > 0 {
		respondError(c, services.ErrValidation("Email is already registered.").In("RegisterCustomer"), "RegisterCustomer")
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "RegisterCustomer")
		return
	}

	customer := models.Customer{
		Email:       req.Email,
		Password:    hash,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	if err := db.Create(&customer).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("RegisterCustomer"), "RegisterCustomer")
		return
	}

	sendConfirmationEmail(customer.Email, services.RoleCustomer, customer.ID)

	token, err := services.GetAuthService().IssueSessionToken(customer.ID, services.RoleCustomer)
	if err != nil {
		respondError(c, err, "RegisterCustomer")
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"token":     token,
		"profile":   customer,
		"user_type": services.RoleCustomer,
	})
}

// LoginCustomer handles POST /customers/login
func LoginCustomer(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginCustomer"), "LoginCustomer")
		return
	}
	if !customer.ValidatePassword(req.Password) {
		respondError(c, services.ErrUnauthorized("Invalid email or password.").In("LoginCustomer"), "LoginCustomer")
		return
	}

	token, err := services.GetAuthService().IssueSessionToken(customer.ID, services.RoleCustomer)
	if err != nil {
		respondError(c, err, "LoginCustomer")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token":     token,
		"profile":   customer,
		"user_type": services.RoleCustomer,
	})
}

// ConfirmCustomerEmail handles GET /customers/confirmEmail?token=...
func ConfirmCustomerEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, services.ErrValidation("A confirmation token is required.").In("ConfirmCustomerEmail"), "ConfirmCustomerEmail")
		return
	}

	actorID, role, err := services.GetAuthService().VerifyEmailToken(token)
	if err != nil || role != services.RoleCustomer {
		respondError(c, services.ErrUnauthorized("Invalid or expired confirmation token.").In("ConfirmCustomerEmail"), "ConfirmCustomerEmail")
		return
	}

	db := config.GetDB()
	if err := db.Model(&models.Customer{}).Where("id = ?", actorID).
		Update("email_is_confirmed", true).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("ConfirmCustomerEmail"), "ConfirmCustomerEmail")
		return
	}

	respondData(c, http.StatusOK, gin.H{"email_is_confirmed": true})
}

// GetCustomerProfile handles GET /customers/me
func GetCustomerProfile(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetCustomerProfile"), "GetCustomerProfile")
		return
	}

	db := config.GetDB()
	if err := db.Preload("Addresses").First(customer, customer.ID).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("GetCustomerProfile"), "GetCustomerProfile")
		return
	}
	cart, err := services.GetCart(customer)
	if err != nil {
		respondError(c, err, "GetCustomerProfile")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"profile": customer,
		"cart":    cart,
	})
}

// AddAddress handles POST /customers/addresses
func AddAddress(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("AddAddress"), "AddAddress")
		return
	}

	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	address := models.Address{
		CustomerID: &customer.ID,
		Street:     req.Street,
		Unit:       req.Unit,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Note:       req.Note,
	}
	if err := config.GetDB().Create(&address).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("AddAddress"), "AddAddress")
		return
	}

	respondData(c, http.StatusCreated, address)
}

// SelectAddressRequest represents the request body for choosing the cart's
// delivery address
type SelectAddressRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

// SelectAddress handles POST /customers/selectAddress
func SelectAddress(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("SelectAddress"), "SelectAddress")
		return
	}

	var req SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cart, err := services.SelectAddress(customer, req.AddressID)
	if err != nil {
		respondError(c, err, "SelectAddress")
		return
	}

	respondData(c, http.StatusOK, cart)
}

// GetAddresses handles GET /customers/addresses
func GetAddresses(c *gin.Context) {
	customer, err := middleware.GetCustomer(c)
	if err != nil {
		respondError(c, services.ErrUnauthorized(err.Error()).In("GetAddresses"), "GetAddresses")
		return
	}

	var addresses []models.Address
	if err := config.GetDB().Where("customer_id = ?", customer.ID).
		Order("created_at DESC").Find(&addresses).Error; err != nil {
		respondError(c, services.ErrDatabase(err).In("GetAddresses"), "GetAddresses")
		return
	}

	respondData(c, http.StatusOK, addresses)
}
