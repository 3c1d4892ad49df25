package api

import (
	"errors"   // Error definitions
	"net/http" // HTTP status codes

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// OrderItemRequest is one line of an order request
type OrderItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1,lte=100"`
}

// OrderRequest is the body of POST /api/orders
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
	ShippingAddress string             `json:"shippingAddress" binding:"required,min=5,max=500"`
}

// OrderStatusRequest is the body of PATCH /api/orders/:id/status
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled"`
}

// Errors returned from inside the order transaction
var (
	errProductUnavailable = errors.New("product unavailable")
	errInsufficientStock  = errors.New("insufficient stock")
)

// orderTransitions lists the statuses an order may move to
var orderTransitions = map[string][]string{
	domain.OrderPending: {domain.OrderPaid, domain.OrderCancelled},
	domain.OrderPaid:    {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped: {domain.OrderDelivered},
}

// CreateOrderHandler places an order and reserves stock atomically
func CreateOrderHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		var req OrderRequest
		if !bindJSON(c, &req) {
			return
		}
		// Merge repeated products into one line
		quantities := make(map[uint]int)
		var productIDs []uint
		for _, item := range req.Items {
			if _, seen := quantities[item.ProductID]; !seen {
				productIDs = append(productIDs, item.ProductID)
			}
			quantities[item.ProductID] += item.Quantity
		}

		order := domain.Order{
			UserID:          userID,
			Status:          domain.OrderPending,
			ShippingAddress: utils.SanitizeText(req.ShippingAddress),
		}
		var failedID uint
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var total float64
			for _, id := range productIDs {
				var product domain.Product
				if err := tx.Where("is_active = ?", true).First(&product, id).Error; err != nil {
					if isNotFound(err) {
						failedID = id
						return errProductUnavailable
					}
					return err // Return error to rollback
				}
				qty := quantities[id]
				// Conditional decrement guards against concurrent orders
				res := tx.Model(&domain.Product{}).
					Where("id = ? AND stock >= ?", id, qty).
					Update("stock", gorm.Expr("stock - ?", qty))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					failedID = id
					return errInsufficientStock
				}
				order.Items = append(order.Items, domain.OrderItem{ProductID: id, Quantity: qty, UnitPrice: product.Price})
				total += product.Price * float64(qty)
			}
			order.Total = utils.Round2(total)
			return tx.Create(&order).Error // Creates the order and its items
		})
		switch {
		case errors.Is(err, errProductUnavailable):
			utils.FailWithData(c, http.StatusBadRequest, "Product not available", gin.H{"productId": failedID})
			return
		case errors.Is(err, errInsufficientStock):
			utils.FailWithData(c, http.StatusBadRequest, "Insufficient stock", gin.H{"productId": failedID})
			return
		case err != nil:
			serverError(c, "create order", err)
			return
		}
		cache.invalidate(c.Request.Context(), productCachePrefix) // Stock changed
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,    // Order ID
			"user_id":  userID,      // User ID
			"total":    order.Total, // Order total
		}).Info("Order placed")
		utils.OK(c, http.StatusCreated, order, "Order placed")
	}
}

// ListOrdersHandler returns the caller's orders, or all orders for admins
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Order{})
		if !middleware.IsAdmin(c) {
			userID, _ := middleware.CurrentUserID(c)
			query = query.Where("user_id = ?", userID) // Own orders only
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var orders []domain.Order
		total, err := findPage(query, page, "created_at desc, id desc", &orders, "Items")
		if err != nil {
			serverError(c, "list orders", err)
			return
		}
		utils.Paginated(c, orders, page.Result(total))
	}
}

// GetOrderHandler returns one order to its owner or an admin
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Order")
		if !ok {
			return
		}
		var order domain.Order
		if err := db.WithContext(c.Request.Context()).Preload("Items").First(&order, id).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Order not found")
				return
			}
			serverError(c, "load order", err)
			return
		}
		if !middleware.CanModify(c, order.UserID) {
			utils.Fail(c, http.StatusNotFound, "Order not found") // Hide other users' orders
			return
		}
		utils.OK(c, http.StatusOK, order, "")
	}
}

// UpdateOrderStatusHandler moves an order along its lifecycle, restoring stock on cancel
func UpdateOrderStatusHandler(db *gorm.DB, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Order")
		if !ok {
			return
		}
		var req OrderStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		var order domain.Order
		var invalid bool
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Preload("Items").First(&order, id).Error; err != nil {
				return err
			}
			if !canTransition(order.Status, req.Status) {
				invalid = true
				return nil
			}
			if req.Status == domain.OrderCancelled {
				// Put the reserved stock back
				for _, item := range order.Items {
					if err := tx.Model(&domain.Product{}).Where("id = ?", item.ProductID).
						Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
						return err // Return error to rollback
					}
				}
			}
			order.Status = req.Status
			return tx.Model(&order).Update("status", req.Status).Error
		})
		if err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Order not found")
				return
			}
			serverError(c, "update order status", err)
			return
		}
		if invalid {
			utils.Fail(c, http.StatusBadRequest, "Cannot change order status from "+order.Status+" to "+req.Status)
			return
		}
		if req.Status == domain.OrderCancelled {
			cache.invalidate(c.Request.Context(), productCachePrefix)
		}
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,     // Order ID
			"status":   order.Status, // New status
		}).Info("Order status updated")
		utils.OK(c, http.StatusOK, order, "Order status updated")
	}
}

func canTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
