package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
)

// serviceMocks bundles the mock collaborators installed for a test
type serviceMocks struct {
	Gateway  *MockPaymentGateway
	Email    *MockEmailSender
	Push     *MockPushNotifier
	Sink     *MockActivitySink
	Location *MockLocationCache
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Vendor{},
		&models.Driver{},
		&models.Address{},
		&models.Modification{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.DriverRequest{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	return db
}

func setupTestServices(t *testing.T) *serviceMocks {
	t.Helper()

	config.SetConfig(&config.Config{
		GoEnv:            "test",
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		DriverRequestTTL: 60 * time.Second,
	})
	InitAuthService()
	InitDispatchService(60 * time.Second)

	mocks := &serviceMocks{
		Gateway:  NewMockPaymentGateway(),
		Email:    NewMockEmailSender(),
		Push:     NewMockPushNotifier(),
		Sink:     NewMockActivitySink(),
		Location: NewMockLocationCache(),
	}
	mocks.Gateway.SetAsMockForTesting()
	mocks.Email.SetAsMockForTesting()
	mocks.Push.SetAsMockForTesting()
	mocks.Sink.SetAsMockForTesting()
	mocks.Location.SetAsMockForTesting()
	NewMockImageService().SetAsMockForTesting()

	return mocks
}

// setupTestServicesDB installs the mock collaborators and a fresh in-memory
// database in one call
func setupTestServicesDB(t *testing.T) (*gorm.DB, *serviceMocks) {
	t.Helper()
	mocks := setupTestServices(t)
	return setupTestDB(t), mocks
}

func createTestCustomer(t *testing.T, db *gorm.DB, email string) *models.Customer {
	t.Helper()

	hash, err := models.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	customer := &models.Customer{
		Email:     email,
		Password:  hash,
		FirstName: "Pat",
		LastName:  "Doe",
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return customer
}

func createTestVendor(t *testing.T, db *gorm.DB, businessName string) *models.Vendor {
	t.Helper()

	hash, err := models.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	address := models.Address{Street: "12 Main St", City: "Tulsa", State: "OK", Zip: "74103"}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("Failed to create vendor address: %v", err)
	}
	vendor := &models.Vendor{
		Email:        businessName + "@example.com",
		Password:     hash,
		BusinessName: businessName,
		AddressID:    &address.ID,
		Address:      &address,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("Failed to create vendor: %v", err)
	}
	return vendor
}

func createTestDriver(t *testing.T, db *gorm.DB, email string, status models.DriverStatus) *models.Driver {
	t.Helper()

	hash, err := models.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	driver := &models.Driver{
		Email:     email,
		Password:  hash,
		FirstName: "Devin",
		LastName:  "Driver",
		Status:    status,
	}
	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	return driver
}

func createTestMenuItem(t *testing.T, db *gorm.DB, vendorID uint, name string, price float64, modifications ...models.Modification) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{
		VendorID:      vendorID,
		Name:          name,
		Price:         price,
		Modifications: modifications,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create menu item: %v", err)
	}
	return item
}

func createTestAddress(t *testing.T, db *gorm.DB, customerID uint) *models.Address {
	t.Helper()

	address := &models.Address{
		CustomerID: &customerID,
		Street:     "400 Elm St",
		Unit:       "2B",
		City:       "Tulsa",
		State:      "OK",
		Zip:        "74104",
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("Failed to create address: %v", err)
	}
	return address
}

// cartWithItem starts a cart containing one menu item so lifecycle tests can
// begin from a populated cart
func cartWithItem(t *testing.T, customer *models.Customer, item *models.MenuItem) *models.Order {
	t.Helper()

	cart, err := AddToCart(customer, item.ID, nil)
	if err != nil {
		t.Fatalf("Failed to add to cart: %v", err)
	}
	return cart
}
