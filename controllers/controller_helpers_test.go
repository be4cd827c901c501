package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

type controllerMocks struct {
	Gateway *services.MockPaymentGateway
	Email   *services.MockEmailSender
	Push    *services.MockPushNotifier
	Sink    *services.MockActivitySink
}

func setupControllerTest(t *testing.T) (*gorm.DB, *controllerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.SetConfig(&config.Config{
		GoEnv:            "test",
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		DriverRequestTTL: 60 * time.Second,
	})
	services.InitAuthService()
	services.InitDispatchService(60 * time.Second)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Vendor{},
		&models.Driver{},
		&models.Address{},
		&models.Modification{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.DriverRequest{},
	))
	config.SetDB(db)

	mocks := &controllerMocks{
		Gateway: services.NewMockPaymentGateway(),
		Email:   services.NewMockEmailSender(),
		Push:    services.NewMockPushNotifier(),
		Sink:    services.NewMockActivitySink(),
	}
	mocks.Gateway.SetAsMockForTesting()
	mocks.Email.SetAsMockForTesting()
	mocks.Push.SetAsMockForTesting()
	mocks.Sink.SetAsMockForTesting()
	services.NewMockLocationCache().SetAsMockForTesting()
	services.NewMockImageService().SetAsMockForTesting()

	return db, mocks
}

func orderTestRouter() *gin.Engine {
	router := gin.New()
	customerOnly := middleware.RequireActor(services.RoleCustomer)
	vendorOnly := middleware.RequireActor(services.RoleVendor)

	router.GET("/orders/cart", customerOnly, GetCart)
	router.POST("/orders/addToCart", customerOnly, AddToCart)
	router.POST("/orders/pay", customerOnly, Pay)
	router.GET("/orders/active", middleware.RequireActor(services.RoleCustomer, services.RoleVendor), ActiveOrders)
	router.POST("/orders/vendorAcceptOrder", vendorOnly, VendorAcceptOrder)
	router.POST("/orders/refundOrder", vendorOnly, RefundOrder)
	router.POST("/orders/requestDrivers", vendorOnly, RequestDrivers)
	return router
}

func sessionToken(t *testing.T, actorID uint, role string) string {
	t.Helper()
	token, err := services.GetAuthService().IssueSessionToken(actorID, role)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *models.Customer {
	t.Helper()
	hash, err := models.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	customer := &models.Customer{Email: email, Password: hash, FirstName: "Pat", LastName: "Doe"}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedVendor(t *testing.T, db *gorm.DB, businessName string) *models.Vendor {
	t.Helper()
	hash, err := models.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	address := models.Address{Street: "12 Main St", City: "Tulsa", State: "OK", Zip: "74103"}
	require.NoError(t, db.Create(&address).Error)
	vendor := &models.Vendor{
		Email:            businessName + "@example.com",
		Password:         hash,
		BusinessName:     businessName,
		EmailIsConfirmed: true,
		AddressID:        &address.ID,
		Address:          &address,
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func seedMenuItem(t *testing.T, db *gorm.DB, vendorID uint, name string, price float64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{VendorID: vendorID, Name: name, Price: price}
	require.NoError(t, db.Create(item).Error)
	return item
}
