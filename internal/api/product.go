package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

const productCachePrefix = "products:" // Cache namespace for product lists

// ProductRequest is the body of POST /api/products
type ProductRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=200"`
	Slug         string   `json:"slug" binding:"omitempty,max=180,slug"`
	SKU          string   `json:"sku" binding:"required,max=64,sku"`
	Description  string   `json:"description" binding:"max=20000"`
	Price        *float64 `json:"price" binding:"required,gte=0"`
	ComparePrice *float64 `json:"comparePrice" binding:"omitempty,gte=0"`
	Stock        int      `json:"stock" binding:"gte=0"`
	Category     string   `json:"category" binding:"max=100"`
	Images       []string `json:"images" binding:"omitempty,max=20,dive,max=500"`
	IsActive     *bool    `json:"isActive"`
}

// ProductUpdateRequest is the body of PUT /api/products/:id, absent fields are kept
type ProductUpdateRequest struct {
	Name         *string   `json:"name" binding:"omitempty,min=2,max=200"`
	Slug         *string   `json:"slug" binding:"omitempty,max=180,slug"`
	SKU          *string   `json:"sku" binding:"omitempty,max=64,sku"`
	Description  *string   `json:"description" binding:"omitempty,max=20000"`
	Price        *float64  `json:"price" binding:"omitempty,gte=0"`
	ComparePrice *float64  `json:"comparePrice" binding:"omitempty,gte=0"`
	Stock        *int      `json:"stock" binding:"omitempty,gte=0"`
	Category     *string   `json:"category" binding:"omitempty,max=100"`
	Images       *[]string `json:"images" binding:"omitempty,max=20,dive,max=500"`
	IsActive     *bool     `json:"isActive"`
}

// productSorts maps the sort query value to an ORDER BY clause
var productSorts = map[string]string{
	"newest":     "created_at desc, id desc",
	"price_asc":  "price asc, id asc",
	"price_desc": "price desc, id desc",
	"rating":     "average_rating desc, review_count desc, id desc",
	"name":       "name asc, id asc",
}

// ListProductsHandler returns a filtered page of products
func ListProductsHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		admin := middleware.IsAdmin(c)
		cacheKey := productCachePrefix + "list:" + c.Request.URL.Query().Encode() // Canonical query as key
		// Public listings are served from cache when possible
		if !admin {
			var cached list[domain.Product]
			if cache.get(ctx, cacheKey, &cached) {
				utils.Paginated(c, cached.Items, cached.Pagination)
				return
			}
		}

		page := utils.ParsePagination(c)
		query := db.WithContext(ctx).Model(&domain.Product{}) // Start building the query
		if !admin || c.Query("includeInactive") != "true" {
			query = query.Where("is_active = ?", true) // Only active products
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category) // Filter by category
		}
		if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
			query = query.Where("price >= ?", v) // Lower price bound
		}
		if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
			query = query.Where("price <= ?", v) // Upper price bound
		}
		if c.Query("inStock") == "true" {
			query = query.Where("stock > 0")
		}
		if search := c.Query("search"); search != "" {
			clause, args := utils.LikeClause(search, "name", "description")
			query = query.Where(clause, args...) // Substring search
		}
		order, ok := productSorts[c.Query("sort")]
		if !ok {
			order = productSorts["newest"]
		}

		var products []domain.Product
		total, err := findPage(query, page, order, &products)
		if err != nil {
			serverError(c, "list products", err)
			return
		}
		result := list[domain.Product]{Items: products, Pagination: page.Result(total)}
		if !admin {
			cache.set(ctx, cacheKey, result) // Cache the public page
		}
		utils.Paginated(c, result.Items, result.Pagination)
	}
}

// GetProductHandler returns one product, by ID or slug, with its reviews
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Preload("Reviews", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc")
		}).Preload("Reviews.User")
		key := c.Param("id")
		if id, err := strconv.ParseUint(key, 10, 64); err == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("slug = ?", key)
		}
		if !middleware.IsAdmin(c) {
			query = query.Where("is_active = ?", true)
		}
		var product domain.Product
		if err := query.First(&product).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			serverError(c, "load product", err)
			return
		}
		utils.OK(c, http.StatusOK, product, "")
	}
}

// CreateProductHandler creates a product after checking slug and SKU uniqueness
func CreateProductHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if !bindJSON(c, &req) {
			return
		}
		product := domain.Product{
			Name:         utils.SanitizeLine(req.Name),
			Slug:         req.Slug,
			SKU:          utils.NormalizeSKU(req.SKU),
			Description:  utils.SanitizeText(req.Description),
			Price:        *req.Price,
			ComparePrice: req.ComparePrice,
			Stock:        req.Stock,
			Category:     utils.SanitizeLine(req.Category),
			Images:       req.Images,
			IsActive:     req.IsActive == nil || *req.IsActive,
		}
		if product.Slug == "" {
			product.Slug = utils.Slugify(product.Name) // Derive slug from the name
		}
		if product.Slug == "" {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "could not be derived from name"}})
			return
		}
		db := db.WithContext(c.Request.Context())
		// Duplicate slug or SKU is rejected before any write
		if errs, err := productConflicts(db, product.Slug, product.SKU, 0); err != nil {
			serverError(c, "check product uniqueness", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		if err := db.Create(&product).Error; err != nil {
			serverError(c, "create product", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix)
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,  // Product ID
			"sku":        product.SKU, // SKU
		}).Info("Product created")
		utils.OK(c, http.StatusCreated, product, "Product created")
	}
}

// UpdateProductHandler applies a partial update to a product
func UpdateProductHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Product")
		if !ok {
			return
		}
		var req ProductUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		db := db.WithContext(c.Request.Context())
		var product domain.Product
		if err := db.First(&product, id).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			serverError(c, "load product", err)
			return
		}
		// Apply provided fields
		if req.Name != nil {
			product.Name = utils.SanitizeLine(*req.Name)
		}
		if req.Slug != nil {
			product.Slug = *req.Slug
		}
		if req.SKU != nil {
			product.SKU = utils.NormalizeSKU(*req.SKU)
		}
		if req.Description != nil {
			product.Description = utils.SanitizeText(*req.Description)
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.ComparePrice != nil {
			product.ComparePrice = req.ComparePrice
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if req.Category != nil {
			product.Category = utils.SanitizeLine(*req.Category)
		}
		if req.Images != nil {
			product.Images = *req.Images
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}
		if errs, err := productConflicts(db, product.Slug, product.SKU, product.ID); err != nil {
			serverError(c, "check product uniqueness", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		if err := db.Save(&product).Error; err != nil {
			serverError(c, "update product", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix)
		utils.OK(c, http.StatusOK, product, "Product updated")
	}
}

// DeleteProductHandler deletes a product that no order references
func DeleteProductHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Product")
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())
		var product domain.Product
		if err := db.First(&product, id).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			serverError(c, "load product", err)
			return
		}
		// Products with order history must be deactivated instead
		ordered, err := exists(db, &domain.OrderItem{}, "product_id = ?", product.ID)
		if err != nil {
			serverError(c, "check order items", err)
			return
		}
		if ordered {
			utils.Fail(c, http.StatusBadRequest, "Cannot delete a product that has existing orders, deactivate it instead")
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", product.ID).Delete(&domain.Review{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			serverError(c, "delete product", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix)
		logrus.WithField("product_id", product.ID).Info("Product deleted")
		utils.OK(c, http.StatusOK, nil, "Product deleted")
	}
}

// productConflicts returns field errors for a slug or SKU used by another product
func productConflicts(db *gorm.DB, slug, sku string, selfID uint) ([]utils.FieldError, error) {
	var errs []utils.FieldError
	taken, err := exists(db, &domain.Product{}, "slug = ? AND id <> ?", slug, selfID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs = append(errs, utils.FieldError{Field: "slug", Message: "is already in use"})
	}
	taken, err = exists(db, &domain.Product{}, "sku = ? AND id <> ?", sku, selfID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs = append(errs, utils.FieldError{Field: "sku", Message: "is already in use"})
	}
	return errs, nil
}
