package middleware

import (
	"fmt"      // Panic formatting
	"net/http" // HTTP status codes
	"time"     // Latency measurement

	"learnshop/internal/utils" // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request IDs
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequestIDKey is the context key holding the request ID
const RequestIDKey = "requestID"

// RequestID assigns a unique ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String() // Generate when the client sent none
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger logs every request once it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logrus.Fields{
			"request_id": c.GetString(RequestIDKey), // Request ID
			"method":     c.Request.Method,          // HTTP method
			"path":       c.Request.URL.Path,        // Request path
			"status":     c.Writer.Status(),         // Response status
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(), // Client address
		}
		if userID, ok := CurrentUserID(c); ok {
			fields["user_id"] = userID
		}
		entry := logrus.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// ErrorHandler turns errors attached with c.Error into a generic 500 envelope
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey), // Request ID
				"path":       c.Request.URL.Path,        // Request path
				"error":      e.Error(),                 // Error message
			}).Error("Unhandled error")
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, utils.Envelope{Success: false, Message: "Internal server error"})
		}
	}
}

// Recovery converts panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
		}).Error("Recovered from panic")
		utils.Fail(c, http.StatusInternalServerError, "Internal server error")
	})
}
