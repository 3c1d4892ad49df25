package api

import (
	"net/http"
	"testing"

	"learnshop/internal/domain"
	"learnshop/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockOf(t *testing.T, s *testServer, id uint) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, s.db.First(&p, id).Error)
	return p.Stock
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)
	mug := seedProduct(t, s, domain.Product{Name: "Blue Mug", SKU: "MUG-001", Price: 12.5, Stock: 5})
	shirt := seedProduct(t, s, domain.Product{Name: "Shirt", SKU: "SHIRT-1", Price: 20, Stock: 1})

	w := s.do(http.MethodPost, "/api/orders", s.userToken(), gin.H{
		"shippingAddress": "1 Main Street",
		"items": []gin.H{
			{"productId": mug.ID, "quantity": 1},
			{"productId": shirt.ID, "quantity": 1},
			{"productId": mug.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order domain.Order
	decode(t, w, &order)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, 45.0, order.Total)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 3, stockOf(t, s, mug.ID))
	assert.Equal(t, 0, stockOf(t, s, shirt.ID))
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	s := newTestServer(t)
	mug := seedProduct(t, s, domain.Product{Name: "Blue Mug", SKU: "MUG-001", Price: 10, Stock: 5})
	shirt := seedProduct(t, s, domain.Product{Name: "Shirt", SKU: "SHIRT-1", Price: 20, Stock: 1})

	w := s.do(http.MethodPost, "/api/orders", s.userToken(), gin.H{
		"shippingAddress": "1 Main Street",
		"items": []gin.H{
			{"productId": mug.ID, "quantity": 2},
			{"productId": shirt.ID, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock", decode(t, w, nil).Message)
	assert.Equal(t, 5, stockOf(t, s, mug.ID), "earlier decrement must roll back")

	var count int64
	require.NoError(t, s.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	w = s.do(http.MethodPost, "/api/orders", s.userToken(), gin.H{
		"shippingAddress": "1 Main Street",
		"items":           []gin.H{{"productId": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderVisibilityAndStatus(t *testing.T) {
	s := newTestServer(t)
	mug := seedProduct(t, s, domain.Product{Name: "Blue Mug", SKU: "MUG-001", Price: 10, Stock: 5})
	w := s.do(http.MethodPost, "/api/orders", s.userToken(), gin.H{
		"shippingAddress": "1 Main Street",
		"items":           []gin.H{{"productId": mug.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order domain.Order
	decode(t, w, &order)
	path := "/api/orders/" + itoa(order.ID)

	other := testutil.CreateUser(t, s.db, "other@example.com", domain.RoleUser)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, testutil.Token(t, other), nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, s.userToken(), nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, s.adminToken(), nil).Code)

	w = s.do(http.MethodGet, "/api/orders", testutil.Token(t, other), nil)
	assert.Equal(t, int64(0), decode(t, w, nil).Pagination.Total)

	// Users cannot change status
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path+"/status", s.userToken(), gin.H{"status": "paid"}).Code)

	w = s.do(http.MethodPatch, path+"/status", s.adminToken(), gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path+"/status", s.adminToken(), gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, stockOf(t, s, mug.ID))

	w = s.do(http.MethodPatch, path+"/status", s.adminToken(), gin.H{"status": "paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
