package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

const (
	contextKeyCustomer = "customer"
	contextKeyVendor   = "vendor"
	contextKeyDriver   = "driver"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_TOKEN",
			"message": message,
		},
	})
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireActor validates the bearer token, checks the actor's role against
// the route's allowed roles, and loads the actor's row into the Gin context.
func RequireActor(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or malformed Authorization header.")
			return
		}

		actorID, role, err := services.GetAuthService().VerifySessionToken(token)
		if err != nil {
			abortUnauthorized(c, "Failed to validate token.")
			return
		}
		allowed := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "This endpoint is not available for your account type.",
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		switch role {
		case services.RoleCustomer:
			var customer models.Customer
			if err := db.First(&customer, actorID).Error; err != nil {
				abortUnauthorized(c, "Account no longer exists.")
				return
			}
			c.Set(contextKeyCustomer, &customer)
		case services.RoleVendor:
			var vendor models.Vendor
			if err := db.Preload("Address").First(&vendor, actorID).Error; err != nil {
				abortUnauthorized(c, "Account no longer exists.")
				return
			}
			c.Set(contextKeyVendor, &vendor)
		case services.RoleDriver:
			var driver models.Driver
			if err := db.First(&driver, actorID).Error; err != nil {
				abortUnauthorized(c, "Account no longer exists.")
				return
			}
			c.Set(contextKeyDriver, &driver)
		default:
			abortUnauthorized(c, "Unknown account type.")
			return
		}

		c.Next()
	}
}

// GetCustomer extracts the authenticated customer from the Gin context
func GetCustomer(c *gin.Context) (*models.Customer, error) {
	value, exists := c.Get(contextKeyCustomer)
	if !exists {
		return nil, &AuthError{Code: "MISSING_ACTOR", Message: "Customer not found in context"}
	}
	customer, ok := value.(*models.Customer)
	if !ok {
		return nil, &AuthError{Code: "INVALID_ACTOR", Message: "Context actor is not a customer"}
	}
	return customer, nil
}

// GetVendor extracts the authenticated vendor from the Gin context
func GetVendor(c *gin.Context) (*models.Vendor, error) {
	value, exists := c.Get(contextKeyVendor)
	if !exists {
		return nil, &AuthError{Code: "MISSING_ACTOR", Message: "Vendor not found in context"}
	}
	vendor, ok := value.(*models.Vendor)
	if !ok {
		return nil, &AuthError{Code: "INVALID_ACTOR", Message: "Context actor is not a vendor"}
	}
	return vendor, nil
}

// GetDriver extracts the authenticated driver from the Gin context
func GetDriver(c *gin.Context) (*models.Driver, error) {
	value, exists := c.Get(contextKeyDriver)
	if !exists {
		return nil, &AuthError{Code: "MISSING_ACTOR", Message: "Driver not found in context"}
	}
	driver, ok := value.(*models.Driver)
	if !ok {
		return nil, &AuthError{Code: "INVALID_ACTOR", Message: "Context actor is not a driver"}
	}
	return driver, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
