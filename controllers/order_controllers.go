package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/orders"
	"github.com/restolive/backend/store"
	"github.com/restolive/backend/utils"
)

type OrderController struct {
	Store   store.Store
	Service *orders.Service
}

func NewOrderController(s store.Store) *OrderController {
	return &OrderController{
		Store:   s,
		Service: orders.NewService(s),
	}
}

type createOrderRequest struct {
	orders.BuildInput
	// ConfirmAvailableOnly is the customer's explicit consent to commit only
	// the still-available items after an availability conflict.
	ConfirmAvailableOnly bool `json:"confirm_available_only"`
}

// CreateOrder -> POST /api/branches/:branch_id/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	branchID, err := strconv.Atoi(c.Param("branch_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid branch id"))
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.PlaceOrder(uint(branchID), req.BuildInput, req.ConfirmAvailableOnly)
	if err != nil {
		oc.respondPlaceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"id":           order.ID,
		"order_number": order.OrderNumber,
		"order":        order,
	})
}

func (oc *OrderController) respondPlaceError(c *gin.Context, err error) {
	var verr *orders.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
		return
	}

	var conflict *orders.AvailabilityConflict
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"status":      false,
			"message":     "Some items are no longer available",
			"available":   conflict.Available,
			"unavailable": conflict.Unavailable,
			"can_proceed": conflict.CanProceed(),
		})
		return
	}

	var wf *orders.WriteFailure
	if errors.As(err, &wf) {
		// Retryable from the customer's side; the cart is still intact on
		// the client, nothing was committed.
		utils.ErrorLogger.Printf("order write failed (%s, compensated=%t): %v", wf.Stage, wf.Compensated, wf.Err)
		utils.RespondError(c, http.StatusInternalServerError,
			fmt.Errorf("order could not be saved, please try again"))
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("branch not found"))
		return
	}

	utils.RespondError(c, http.StatusInternalServerError, err)
}

// GetRecentOrders -> GET /api/orders/recent?limit=N (the resync snapshot)
func (oc *OrderController) GetRecentOrders(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid limit"))
			return
		}
		limit = parsed
	}

	list, err := oc.Store.ListRecentOrders(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recent orders", list)
}

// GetOrderByID -> GET /api/orders/:order_id
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	order, err := oc.Store.GetOrder(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("order not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> PATCH /api/orders/:order_id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var req struct {
		Status models.Status `json:"status" binding:"required"`
		Notes  string        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.Machine.Advance(uint(id), req.Status, req.Notes)
	if err != nil {
		var invalid *orders.InvalidTransitionError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusConflict, gin.H{
				"status":         false,
				"message":        "Order status changed, refresh your view",
				"current_status": invalid.From,
				"allowed_next":   orders.NextStatuses(invalid.From),
			})
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("order not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
