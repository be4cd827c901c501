package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.SetConfig(&config.Config{
		GoEnv:     "test",
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	services.InitAuthService()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Vendor{}, &models.Driver{}, &models.Address{}))
	config.SetDB(db)
	return db
}

func protectedRouter(roles ...string) *gin.Engine {
	router := gin.New()
	router.GET("/protected", RequireActor(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestRequireActorMissingHeader(t *testing.T) {
	setupAuthTest(t)
	router := protectedRouter(services.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActorBadToken(t *testing.T) {
	setupAuthTest(t)
	router := protectedRouter(services.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActorLoadsCustomer(t *testing.T) {
	db := setupAuthTest(t)
	customer := &models.Customer{Email: "mw@example.com", Password: "x", FirstName: "Pat", LastName: "Doe"}
	require.NoError(t, db.Create(customer).Error)

	token, err := services.GetAuthService().IssueSessionToken(customer.ID, services.RoleCustomer)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", RequireActor(services.RoleCustomer), func(c *gin.Context) {
		loaded, err := GetCustomer(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"success": true, "email": loaded.Email})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mw@example.com")
}

func TestRequireActorRejectsWrongRole(t *testing.T) {
	db := setupAuthTest(t)
	customer := &models.Customer{Email: "wrongrole@example.com", Password: "x", FirstName: "Pat", LastName: "Doe"}
	require.NoError(t, db.Create(customer).Error)

	token, err := services.GetAuthService().IssueSessionToken(customer.ID, services.RoleCustomer)
	require.NoError(t, err)

	router := protectedRouter(services.RoleVendor)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireActorMultipleRoles(t *testing.T) {
	db := setupAuthTest(t)
	customer := &models.Customer{Email: "multi@example.com", Password: "x", FirstName: "Pat", LastName: "Doe"}
	require.NoError(t, db.Create(customer).Error)

	token, err := services.GetAuthService().IssueSessionToken(customer.ID, services.RoleCustomer)
	require.NoError(t, err)

	router := protectedRouter(services.RoleVendor, services.RoleCustomer)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireActorGoneAccount(t *testing.T) {
	setupAuthTest(t)

	// Token for an actor that does not exist in the database
	token, err := services.GetAuthService().IssueSessionToken(9999, services.RoleDriver)
	require.NoError(t, err)

	router := protectedRouter(services.RoleDriver)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEmailTokenRejectedForSession(t *testing.T) {
	db := setupAuthTest(t)
	customer := &models.Customer{Email: "purpose@example.com", Password: "x", FirstName: "Pat", LastName: "Doe"}
	require.NoError(t, db.Create(customer).Error)

	// Email confirmation tokens must not open sessions
	token, err := services.GetAuthService().IssueEmailToken(customer.ID, services.RoleCustomer)
	require.NoError(t, err)

	router := protectedRouter(services.RoleCustomer)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
