package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/services"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps service errors onto the JSON error envelope and records
// them in the activity sink. Anything that is not a ServiceError is treated
// as an internal failure.
func respondError(c *gin.Context, err error, functionName string) {
	if sink := services.GetActivitySink(); sink != nil {
		sink.Record(err, middleware.RequestInfo(c), functionName)
	}

	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		c.JSON(serviceErr.Status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    serviceErr.Code,
				"message": serviceErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Something went wrong.",
		},
	})
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}
