package middleware

import (
	"math"     // Rounding up retry seconds
	"net/http" // HTTP status codes
	"strconv"  // Header values
	"time"     // Warning interval

	"learnshop/internal/ratelimit" // Limiter stores and tiers
	"learnshop/internal/utils"     // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/time/rate"     // Warning throttle
)

// RateLimit counts requests per client IP against the tier's store.
// Store failures let the request through and warn at most once a minute.
func RateLimit(store ratelimit.Store, tier ratelimit.Tier) gin.HandlerFunc {
	warn := &rate.Sometimes{First: 1, Interval: time.Minute}
	return func(c *gin.Context) {
		key := c.ClientIP() // Limit per client address
		dec, err := store.Take(c.Request.Context(), key)
		if err != nil {
			warn.Do(func() {
				logrus.WithFields(logrus.Fields{
					"tier":  tier.Name,   // Limiter tier
					"error": err.Error(), // Error message
				}).Warn("Rate limiter unavailable")
			})
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
		if !dec.Allowed {
			retry := int(math.Ceil(dec.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(retry, 1)))
			logrus.WithFields(logrus.Fields{
				"tier":      tier.Name, // Limiter tier
				"client_ip": key,       // Client address
				"path":      c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			utils.Fail(c, http.StatusTooManyRequests, tier.Message)
			return
		}
		c.Next()
	}
}
