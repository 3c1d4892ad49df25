package api

import (
	"net/http" // HTTP status codes

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ReviewRequest is the body for creating a review
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"` // Star rating
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"max=5000"`
}

// ReviewUpdateRequest is the body for editing a review
type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Comment *string `json:"comment" binding:"omitempty,max=5000"`
}

// ListReviewsHandler returns a page of reviews for a product
func ListReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "Product")
		if !ok {
			return
		}
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Review{}).Where("product_id = ?", productID)
		if rating := c.Query("rating"); rating != "" {
			query = query.Where("rating = ?", rating) // Filter by star rating
		}
		var reviews []domain.Review
		total, err := findPage(query, page, "created_at desc, id desc", &reviews, "User")
		if err != nil {
			serverError(c, "list reviews", err)
			return
		}
		utils.Paginated(c, reviews, page.Result(total))
	}
}

// CreateReviewHandler adds the caller's review, one per product
func CreateReviewHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "Product")
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		var req ReviewRequest
		if !bindJSON(c, &req) {
			return
		}
		db := db.WithContext(c.Request.Context())
		var product domain.Product
		if err := db.Where("is_active = ?", true).First(&product, productID).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			serverError(c, "load product", err)
			return
		}
		// One review per user per product
		reviewed, err := exists(db, &domain.Review{}, "product_id = ? AND user_id = ?", productID, userID)
		if err != nil {
			serverError(c, "check review", err)
			return
		}
		if reviewed {
			utils.Fail(c, http.StatusBadRequest, "You have already reviewed this product")
			return
		}
		verified, err := hasPurchased(db, userID, productID)
		if err != nil {
			serverError(c, "check purchase", err)
			return
		}
		review := domain.Review{
			ProductID:          productID,
			UserID:             userID,
			Rating:             req.Rating,
			Title:              utils.SanitizeLine(req.Title),
			Comment:            utils.SanitizeText(req.Comment),
			IsVerifiedPurchase: verified,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&review).Error; err != nil {
				return err // Return error to rollback
			}
			return refreshRating(tx, productID)
		})
		if err != nil {
			serverError(c, "create review", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix) // Ratings appear in listings
		utils.OK(c, http.StatusCreated, review, "Review added")
	}
}

// UpdateReviewHandler lets the author edit a review
func UpdateReviewHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := loadReview(c, db)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		if review.UserID != userID {
			utils.Fail(c, http.StatusForbidden, "You can only edit your own review")
			return
		}
		var req ReviewUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Title != nil {
			review.Title = utils.SanitizeLine(*req.Title)
		}
		if req.Comment != nil {
			review.Comment = utils.SanitizeText(*req.Comment)
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&review).Error; err != nil {
				return err // Return error to rollback
			}
			return refreshRating(tx, review.ProductID)
		})
		if err != nil {
			serverError(c, "update review", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix)
		utils.OK(c, http.StatusOK, review, "Review updated")
	}
}

// DeleteReviewHandler removes a review, allowed for its author and admins
func DeleteReviewHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := loadReview(c, db)
		if !ok {
			return
		}
		if !middleware.CanModify(c, review.UserID) {
			utils.Fail(c, http.StatusForbidden, "You can only delete your own review")
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&review).Error; err != nil {
				return err // Return error to rollback
			}
			return refreshRating(tx, review.ProductID)
		})
		if err != nil {
			serverError(c, "delete review", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix)
		utils.OK(c, http.StatusOK, nil, "Review deleted")
	}
}

func loadReview(c *gin.Context, db *gorm.DB) (domain.Review, bool) {
	var review domain.Review
	id, ok := pathID(c, "Review")
	if !ok {
		return review, false
	}
	if err := db.WithContext(c.Request.Context()).First(&review, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Review not found")
			return review, false
		}
		serverError(c, "load review", err)
		return review, false
	}
	return review, true
}

// refreshRating recomputes the cached rating aggregate of a product
func refreshRating(tx *gorm.DB, productID uint) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&domain.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"average_rating": utils.Round2(agg.Avg),
		"review_count":   agg.Count,
	}).Error
}

// hasPurchased reports whether the user has a non-cancelled order containing the product
func hasPurchased(db *gorm.DB, userID, productID uint) (bool, error) {
	var n int64
	err := db.Model(&domain.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status <> ?", userID, productID, domain.OrderCancelled).
		Count(&n).Error
	return n > 0, err
}
