package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Publish timestamps

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/datatypes"          // JSON column queries
	"gorm.io/gorm"               // GORM ORM library
)

// BlogRequest is the body of POST /api/blogs
type BlogRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Slug       string   `json:"slug" binding:"omitempty,max=180,slug"`
	Excerpt    string   `json:"excerpt" binding:"max=500"`
	Content    string   `json:"content" binding:"required,min=10"`
	CoverImage string   `json:"coverImage" binding:"omitempty,max=500"`
	Tags       []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// BlogUpdateRequest is the body of PUT /api/blogs/:id
type BlogUpdateRequest struct {
	Title      *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Slug       *string  `json:"slug" binding:"omitempty,max=180,slug"`
	Excerpt    *string  `json:"excerpt" binding:"omitempty,max=500"`
	Content    *string  `json:"content" binding:"omitempty,min=10"`
	CoverImage *string  `json:"coverImage" binding:"omitempty,max=500"`
	Tags       []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Status     *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// ListBlogsHandler returns a page of posts, published only for the public
func ListBlogsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Blog{})
		if status := c.Query("status"); middleware.IsAdmin(c) && status != "" {
			query = query.Where("status = ?", status)
		} else if !middleware.IsAdmin(c) {
			query = query.Where("status = ?", domain.BlogPublished) // Public sees published posts
		}
		if tag := c.Query("tag"); tag != "" {
			query = query.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
		}
		if search := c.Query("search"); search != "" {
			clause, args := utils.LikeClause(search, "title", "excerpt", "content")
			query = query.Where(clause, args...)
		}
		var blogs []domain.Blog
		total, err := findPage(query.Omit("content"), page, "published_at desc, created_at desc, id desc", &blogs, "Author")
		if err != nil {
			serverError(c, "list blogs", err)
			return
		}
		utils.Paginated(c, blogs, page.Result(total))
	}
}

// GetBlogHandler returns a post by slug and counts the view
func GetBlogHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		var blog domain.Blog
		if err := db.Preload("Author").Where("slug = ?", c.Param("id")).First(&blog).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Blog not found")
				return
			}
			serverError(c, "load blog", err)
			return
		}
		if blog.Status != domain.BlogPublished {
			// Drafts are visible to their author and admins only
			if !middleware.CanModify(c, blog.AuthorID) {
				utils.Fail(c, http.StatusNotFound, "Blog not found")
				return
			}
			utils.OK(c, http.StatusOK, blog, "")
			return
		}
		if err := db.Model(&blog).UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			serverError(c, "count blog view", err)
			return
		}
		blog.ViewCount++
		utils.OK(c, http.StatusOK, blog, "")
	}
}

// CreateBlogHandler creates a post authored by the caller
func CreateBlogHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BlogRequest
		if !bindJSON(c, &req) {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		blog := domain.Blog{
			Title:      utils.SanitizeLine(req.Title),
			Slug:       req.Slug,
			Excerpt:    utils.SanitizeText(req.Excerpt),
			Content:    req.Content,
			CoverImage: req.CoverImage,
			Tags:       cleanTags(req.Tags),
			Status:     req.Status,
			AuthorID:   userID,
		}
		if blog.Slug == "" {
			blog.Slug = utils.Slugify(blog.Title)
		}
		if blog.Slug == "" {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "could not be derived from title"}})
			return
		}
		if blog.Status == "" {
			blog.Status = domain.BlogDraft
		}
		markPublished(&blog)
		db := db.WithContext(c.Request.Context())
		taken, err := exists(db, &domain.Blog{}, "slug = ?", blog.Slug)
		if err != nil {
			serverError(c, "check blog slug", err)
			return
		}
		if taken {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "is already in use"}})
			return
		}
		if err := db.Create(&blog).Error; err != nil {
			serverError(c, "create blog", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"blog_id": blog.ID,     // Blog ID
			"status":  blog.Status, // Initial status
		}).Info("Blog created")
		utils.OK(c, http.StatusCreated, blog, "Blog created")
	}
}

// UpdateBlogHandler edits a post, allowed for its author and admins
func UpdateBlogHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		blog, ok := loadBlog(c, db)
		if !ok {
			return
		}
		if !middleware.CanModify(c, blog.AuthorID) {
			utils.Fail(c, http.StatusForbidden, "You can only edit your own posts")
			return
		}
		var req BlogUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Title != nil {
			blog.Title = utils.SanitizeLine(*req.Title)
		}
		if req.Slug != nil {
			blog.Slug = *req.Slug
		}
		if req.Excerpt != nil {
			blog.Excerpt = utils.SanitizeText(*req.Excerpt)
		}
		if req.Content != nil {
			blog.Content = *req.Content
		}
		if req.CoverImage != nil {
			blog.CoverImage = *req.CoverImage
		}
		if req.Tags != nil {
			blog.Tags = cleanTags(req.Tags)
		}
		if req.Status != nil {
			blog.Status = *req.Status
		}
		markPublished(&blog)
		db := db.WithContext(c.Request.Context())
		taken, err := exists(db, &domain.Blog{}, "slug = ? AND id <> ?", blog.Slug, blog.ID)
		if err != nil {
			serverError(c, "check blog slug", err)
			return
		}
		if taken {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "is already in use"}})
			return
		}
		if err := db.Omit("Author").Save(&blog).Error; err != nil {
			serverError(c, "update blog", err)
			return
		}
		utils.OK(c, http.StatusOK, blog, "Blog updated")
	}
}

// DeleteBlogHandler archives a post, or removes it when an admin passes ?hard=true
func DeleteBlogHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		blog, ok := loadBlog(c, db)
		if !ok {
			return
		}
		if !middleware.CanModify(c, blog.AuthorID) {
			utils.Fail(c, http.StatusForbidden, "You can only delete your own posts")
			return
		}
		db := db.WithContext(c.Request.Context())
		if c.Query("hard") == "true" && middleware.IsAdmin(c) {
			if err := db.Delete(&blog).Error; err != nil {
				serverError(c, "delete blog", err)
				return
			}
		} else if err := db.Model(&blog).Update("status", domain.BlogArchived).Error; err != nil {
			serverError(c, "archive blog", err)
			return
		}
		utils.OK(c, http.StatusOK, nil, "Blog deleted")
	}
}

// loadBlog reads :id as a numeric ID or a slug
func loadBlog(c *gin.Context, db *gorm.DB) (domain.Blog, bool) {
	var blog domain.Blog
	query := db.WithContext(c.Request.Context())
	key := c.Param("id")
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", key)
	}
	if err := query.First(&blog).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Blog not found")
			return blog, false
		}
		serverError(c, "load blog", err)
		return blog, false
	}
	return blog, true
}

// markPublished stamps the first publication time
func markPublished(blog *domain.Blog) {
	if blog.Status == domain.BlogPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}
}
