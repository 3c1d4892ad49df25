package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error matching
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes
	"sync"     // One-time validator registration
	"time"     // Cache TTL

	"learnshop/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Binding validator engine
	"github.com/go-playground/validator/v10" // Validation library
	"github.com/redis/go-redis/v9"           // Redis client
	"github.com/sirupsen/logrus"             // Logrus for structured logging
	"gorm.io/gorm"                           // GORM ORM library
)

// Cache bundles the optional Redis client with the list TTL
type Cache struct {
	Client *redis.Client // Nil disables caching
	TTL    time.Duration // Lifetime of cached list pages
}

// list is the cached shape of a paginated response
type list[T any] struct {
	Items      []T              `json:"items"`
	Pagination utils.Pagination `json:"pagination"`
}

// get reads a cached list page
func (c Cache) get(ctx context.Context, key string, dest any) bool {
	found, err := utils.GetCache(ctx, c.Client, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	return found
}

// set stores a list page, failures only log
func (c Cache) set(ctx context.Context, key string, value any) {
	if err := utils.SetCache(ctx, c.Client, key, value, c.TTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

// invalidate drops every cached page under prefix
func (c Cache) invalidate(ctx context.Context, prefix string) {
	if err := utils.DeleteCachePrefix(ctx, c.Client, prefix); err != nil {
		logrus.WithFields(logrus.Fields{"prefix": prefix, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return utils.IsSlug(fl.Field().String())
		})
		_ = v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
			return utils.IsSKU(utils.NormalizeSKU(fl.Field().String()))
		})
	})
}

// bindJSON binds the body and writes a 400 envelope on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BindError(c, err)
		return false
	}
	return true
}

// pathID reads the :id parameter and writes a 404 envelope when it is not numeric
func pathID(c *gin.Context, resource string) (uint, bool) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		utils.Fail(c, http.StatusNotFound, resource+" not found")
	}
	return id, ok
}

// serverError forwards err to the error handling middleware
func serverError(c *gin.Context, action string, err error) {
	_ = c.Error(fmt.Errorf("%s: %w", action, err))
	c.Abort()
}

// isNotFound reports whether err is gorm's record not found
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// findPage counts and loads one page of query results
func findPage(query *gorm.DB, page utils.PageParams, order string, dest any, preloads ...string) (int64, error) {
	base := query.Session(&gorm.Session{}) // Reusable statement for count and find
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	find := base.Order(order).Offset(page.Offset()).Limit(page.Limit)
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if err := find.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// exists reports whether any row of model matches the condition
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	err := db.Model(model).Where(query, args...).Count(&n).Error
	return n > 0, err
}
