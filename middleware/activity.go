package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/services"
)

// RequestInfo builds the activity record for the current request, including
// the authenticated actor when one has been loaded into the context.
func RequestInfo(c *gin.Context) services.RequestInfo {
	info := services.RequestInfo{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		Hostname: c.Request.Host,
	}
	if customer, err := GetCustomer(c); err == nil {
		info.ActorID = customer.ID
		info.ActorRole = services.RoleCustomer
	} else if vendor, err := GetVendor(c); err == nil {
		info.ActorID = vendor.ID
		info.ActorRole = services.RoleVendor
	} else if driver, err := GetDriver(c); err == nil {
		info.ActorID = driver.ID
		info.ActorRole = services.RoleDriver
	}
	return info
}

// RecordActivity publishes an activity record for every request after the
// handler chain runs
func RecordActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if sink := services.GetActivitySink(); sink != nil {
			sink.RecordActivity(RequestInfo(c))
		}
	}
}
