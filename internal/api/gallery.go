package api

import (
	"net/http"      // HTTP status codes
	"os"            // Removing stored images
	"path/filepath" // Path handling
	"strings"       // String manipulation

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth and upload context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/datatypes"          // JSON column queries
	"gorm.io/gorm"               // GORM ORM library
)

const galleryCachePrefix = "gallery:" // Cache namespace for gallery lists

// GalleryRequest is the body for creating a gallery item, JSON or multipart
type GalleryRequest struct {
	Title       string   `json:"title" form:"title" binding:"required,min=2,max=200"`
	Description string   `json:"description" form:"description" binding:"max=5000"`
	ImageURL    string   `json:"imageUrl" form:"imageUrl" binding:"omitempty,max=500"`
	Category    string   `json:"category" form:"category" binding:"max=100"`
	Tags        []string `json:"tags" form:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// GalleryUpdateRequest is the body for editing a gallery item
type GalleryUpdateRequest struct {
	Title       *string  `json:"title" form:"title" binding:"omitempty,min=2,max=200"`
	Description *string  `json:"description" form:"description" binding:"omitempty,max=5000"`
	ImageURL    *string  `json:"imageUrl" form:"imageUrl" binding:"omitempty,max=500"`
	Category    *string  `json:"category" form:"category" binding:"omitempty,max=100"`
	Tags        []string `json:"tags" form:"tags" binding:"omitempty,max=20,dive,max=50"`
	Status      *string  `json:"status" form:"status" binding:"omitempty,oneof=active inactive"`
}

// ListGalleryHandler returns a page of gallery items
func ListGalleryHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		admin := middleware.IsAdmin(c)
		cacheKey := galleryCachePrefix + "list:" + c.Request.URL.Query().Encode()
		if !admin {
			var cached list[domain.GalleryItem]
			if cache.get(ctx, cacheKey, &cached) {
				utils.Paginated(c, cached.Items, cached.Pagination)
				return
			}
		}

		page := utils.ParsePagination(c)
		query := db.WithContext(ctx).Model(&domain.GalleryItem{})
		if status := c.Query("status"); admin && status != "" {
			query = query.Where("status = ?", status) // Admins may browse inactive items
		} else {
			query = query.Where("status = ?", domain.GalleryActive)
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if tag := c.Query("tag"); tag != "" {
			query = query.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
		}
		if search := c.Query("search"); search != "" {
			clause, args := utils.LikeClause(search, "title", "description")
			query = query.Where(clause, args...)
		}

		var items []domain.GalleryItem
		total, err := findPage(query, page, "created_at desc, id desc", &items)
		if err != nil {
			serverError(c, "list gallery", err)
			return
		}
		result := list[domain.GalleryItem]{Items: items, Pagination: page.Result(total)}
		if !admin {
			cache.set(ctx, cacheKey, result)
		}
		utils.Paginated(c, result.Items, result.Pagination)
	}
}

// GalleryCategoriesHandler returns the distinct categories of active items
func GalleryCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := []string{}
		err := db.WithContext(c.Request.Context()).Model(&domain.GalleryItem{}).
			Where("status = ? AND category <> ''", domain.GalleryActive).
			Distinct("category").Order("category").
			Pluck("category", &categories).Error
		if err != nil {
			serverError(c, "list gallery categories", err)
			return
		}
		utils.OK(c, http.StatusOK, categories, "")
	}
}

// GetGalleryHandler returns one gallery item
func GetGalleryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := loadGalleryItem(c, db)
		if !ok {
			return
		}
		if item.Status != domain.GalleryActive && !middleware.IsAdmin(c) {
			utils.Fail(c, http.StatusNotFound, "Gallery item not found")
			return
		}
		utils.OK(c, http.StatusOK, item, "")
	}
}

// CreateGalleryHandler stores a gallery item from an uploaded file or an image URL
func CreateGalleryHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GalleryRequest
		if err := c.ShouldBind(&req); err != nil {
			middleware.DiscardUpload(c)
			utils.BindError(c, err)
			return
		}
		imageURL := strings.TrimSpace(req.ImageURL)
		if uploaded, ok := middleware.UploadedURL(c); ok {
			imageURL = uploaded // Uploaded file wins over a URL
		}
		if imageURL == "" {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "image", Message: "an image file or imageUrl is required"}})
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		item := domain.GalleryItem{
			Title:        utils.SanitizeLine(req.Title),
			Description:  utils.SanitizeText(req.Description),
			ImageURL:     imageURL,
			Category:     utils.SanitizeLine(req.Category),
			Tags:         cleanTags(req.Tags),
			Status:       domain.GalleryActive,
			UploadedByID: userID,
		}
		if err := db.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
			middleware.DiscardUpload(c)
			serverError(c, "create gallery item", err)
			return
		}
		cache.invalidate(c.Request.Context(), galleryCachePrefix)
		logrus.WithFields(logrus.Fields{
			"gallery_id": item.ID,       // Item ID
			"image":      item.ImageURL, // Image URL
		}).Info("Gallery item created")
		utils.OK(c, http.StatusCreated, item, "Gallery item created")
	}
}

// UpdateGalleryHandler edits a gallery item, optionally replacing its image
func UpdateGalleryHandler(db *gorm.DB, cache Cache, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := loadGalleryItem(c, db)
		if !ok {
			middleware.DiscardUpload(c)
			return
		}
		var req GalleryUpdateRequest
		if err := c.ShouldBind(&req); err != nil {
			middleware.DiscardUpload(c)
			utils.BindError(c, err)
			return
		}
		previous := item.ImageURL
		if req.Title != nil {
			item.Title = utils.SanitizeLine(*req.Title)
		}
		if req.Description != nil {
			item.Description = utils.SanitizeText(*req.Description)
		}
		if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) != "" {
			item.ImageURL = strings.TrimSpace(*req.ImageURL)
		}
		if uploaded, ok := middleware.UploadedURL(c); ok {
			item.ImageURL = uploaded
		}
		if req.Category != nil {
			item.Category = utils.SanitizeLine(*req.Category)
		}
		if req.Tags != nil {
			item.Tags = cleanTags(req.Tags)
		}
		if req.Status != nil {
			item.Status = *req.Status
		}
		if err := db.WithContext(c.Request.Context()).Save(&item).Error; err != nil {
			middleware.DiscardUpload(c)
			serverError(c, "update gallery item", err)
			return
		}
		if previous != item.ImageURL {
			removeUpload(uploadDir, previous) // Old file is no longer referenced
		}
		cache.invalidate(c.Request.Context(), galleryCachePrefix)
		utils.OK(c, http.StatusOK, item, "Gallery item updated")
	}
}

// DeleteGalleryHandler deactivates a gallery item, or removes it with ?hard=true
func DeleteGalleryHandler(db *gorm.DB, cache Cache, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := loadGalleryItem(c, db)
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())
		if c.Query("hard") == "true" {
			if err := db.Delete(&item).Error; err != nil {
				serverError(c, "delete gallery item", err)
				return
			}
			removeUpload(uploadDir, item.ImageURL)
		} else if err := db.Model(&item).Update("status", domain.GalleryInactive).Error; err != nil {
			serverError(c, "deactivate gallery item", err)
			return
		}
		cache.invalidate(c.Request.Context(), galleryCachePrefix)
		utils.OK(c, http.StatusOK, nil, "Gallery item deleted")
	}
}

func loadGalleryItem(c *gin.Context, db *gorm.DB) (domain.GalleryItem, bool) {
	var item domain.GalleryItem
	id, ok := pathID(c, "Gallery item")
	if !ok {
		return item, false
	}
	if err := db.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Gallery item not found")
			return item, false
		}
		serverError(c, "load gallery item", err)
		return item, false
	}
	return item, true
}

// cleanTags sanitizes, lower-cases and deduplicates tags
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(utils.SanitizeLine(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// removeUpload deletes a locally stored image referenced by url
func removeUpload(dir, url string) {
	if !strings.HasPrefix(url, middleware.UploadURLPrefix) {
		return // External image
	}
	name := filepath.Base(strings.TrimPrefix(url, middleware.UploadURLPrefix))
	if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
		logrus.WithFields(logrus.Fields{"file": name, "error": err.Error()}).Warn("Failed to remove uploaded image")
	}
}
