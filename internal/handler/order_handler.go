package handler

import (
	"net/http"
	"strconv"

	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.POST("/suggest-price", h.SuggestPrice)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.PATCH("/:id/status", h.ToggleStatus)
		orders.POST("/:id/archive", h.ArchiveOrder)
		orders.POST("/:id/restore", h.RestoreOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/items/:index/purchases", h.AppendPurchase)
		orders.DELETE("/:id/items/:index/purchases", h.RemovePurchase)
	}
}

// ListOrders returns the live or archived order listing
// @Summary      List orders
// @Description  Retrieves paginated orders; archived=true selects the recycle bin view
// @Tags         orders
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Param        search    query     string  false  "Search by customer or product name"
// @Param        archived  query     bool    false  "Show archived/deleted orders"
// @Success      200  {object}  response.Response{data=response.ListData}
// @Failure      500  {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	archived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))

	orders, total, err := h.orderService.List(c.Request.Context(), repository.OrderFilter{
		Archived: archived,
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve orders: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, orders, total, params.Page, params.Limit))
}

// GetOrder returns one order with its items and purchase batches
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateOrder saves a new order document
// @Summary      Create order
// @Description  Creates an order; costs, total and processed status are recomputed server-side
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SaveOrderRequest  true  "Order payload"
// @Success      201      {object}  response.Response{data=service.SaveResult}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.SaveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.orderService.Save(c.Request.Context(), nil, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateOrder replaces an existing order document
// @Summary      Update order
// @Description  Replaces the order's fields, items and purchase batches as a whole
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Order ID"
// @Param        payload  body      service.SaveOrderRequest  true  "Order payload"
// @Success      200      {object}  response.Response{data=service.SaveResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.SaveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.orderService.Save(c.Request.Context(), &id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type toggleStatusRequest struct {
	Field string `json:"field" binding:"required,oneof=is_paid is_processed is_shipped"`
}

// ToggleStatus flips a single status flag on the order
// @Summary      Toggle order status flag
// @Description  Flips is_paid, is_processed or is_shipped. A forced is_processed is overwritten by the recompute on the next save.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Order ID"
// @Param        payload  body      toggleStatusRequest  true  "Status field to toggle"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req toggleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.ToggleStatusFlag(c.Request.Context(), id, req.Field)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

type operatorRequest struct {
	Operator string `json:"operator"`
}

// ArchiveOrder moves an order to the recycle bin view
// @Summary      Archive order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Order ID"
// @Param        payload  body      operatorRequest  false  "Acting operator"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/archive [post]
func (h *OrderHandler) ArchiveOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req operatorRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.orderService.Archive(c.Request.Context(), id, req.Operator); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// RestoreOrder brings an archived or soft-deleted order back
// @Summary      Restore order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Order ID"
// @Param        payload  body      operatorRequest  false  "Acting operator"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/restore [post]
func (h *OrderHandler) RestoreOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req operatorRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.orderService.Restore(c.Request.Context(), id, req.Operator); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// DeleteOrder permanently removes an order
// @Summary      Delete order
// @Description  Hard delete; archived orders are removed for good from the recycle bin
// @Tags         orders
// @Produce      json
// @Param        id        path      string  true   "Order ID"
// @Param        operator  query     string  false  "Acting operator"
// @Success      200       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.orderService.HardDelete(c.Request.Context(), id, c.Query("operator")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// AppendPurchase records one more purchased unit on a line item
// @Summary      Append purchase unit
// @Description  Adds one unit at today's rate; merges into an existing batch with identical economics
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Order ID"
// @Param        index    path      int              true   "Line item index"
// @Param        payload  body      operatorRequest  false  "Acting operator"
// @Success      200      {object}  response.Response{data=service.SaveResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/items/{index}/purchases [post]
func (h *OrderHandler) AppendPurchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item index: "+c.Param("index")))
		return
	}
	var req operatorRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.orderService.AppendPurchaseUnit(c.Request.Context(), id, index, req.Operator)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RemovePurchase takes the most recent purchased unit back
// @Summary      Remove purchase unit
// @Description  Removes one unit from the newest batch (last in, first out)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Order ID"
// @Param        index    path      int              true   "Line item index"
// @Param        payload  body      operatorRequest  false  "Acting operator"
// @Success      200      {object}  response.Response{data=service.SaveResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/items/{index}/purchases [delete]
func (h *OrderHandler) RemovePurchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item index: "+c.Param("index")))
		return
	}
	var req operatorRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.orderService.RemovePurchaseUnit(c.Request.Context(), id, index, req.Operator)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type suggestPriceRequest struct {
	Item          service.LineItemRequest `json:"item"`
	MarginPercent decimal.Decimal         `json:"margin_percent"`
}

// SuggestPrice computes a selling price covering cost plus margin
// @Summary      Suggest selling price
// @Description  Unit cost from the item's first purchase batch plus the given margin percentage, rounded up
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body      suggestPriceRequest  true  "Item and margin"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/orders/suggest-price [post]
func (h *OrderHandler) SuggestPrice(c *gin.Context) {
	var req suggestPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	price := h.orderService.SuggestPrice(req.Item, req.MarginPercent)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"suggested_price": price,
		"margin_percent":  req.MarginPercent,
	}))
}
