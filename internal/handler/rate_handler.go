package handler

import (
	"net/http"
	"strconv"
	"time"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExchangeRateHandler struct {
	rateService service.ExchangeRateService
}

func NewExchangeRateHandler(rateService service.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rateService: rateService}
}

func (h *ExchangeRateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/api/exchange-rates")
	{
		rates.GET("", h.ListRates)
		rates.POST("", h.SaveRate)
		rates.GET("/resolve", h.ResolveRate)
		rates.DELETE("/:id", h.DeleteRate)
	}
}

// ListRates returns rate records, newest date first
// @Summary      List exchange rates
// @Tags         exchange-rates
// @Produce      json
// @Param        limit  query     int  false  "Maximum records (default 100, 0 for all)"
// @Success      200    {object}  response.Response{data=[]model.ExchangeRate}
// @Failure      500    {object}  response.Response
// @Router       /api/exchange-rates [get]
func (h *ExchangeRateHandler) ListRates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rates, err := h.rateService.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve rates: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// SaveRate creates or overwrites the rate record for a currency and date
// @Summary      Save exchange rate
// @Description  Upserts on the (currency, date) pair; saving the same day again overwrites it
// @Tags         exchange-rates
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SaveRateRequest  true  "Rate payload"
// @Success      200      {object}  response.Response{data=model.ExchangeRate}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/exchange-rates [post]
func (h *ExchangeRateHandler) SaveRate(c *gin.Context) {
	var req service.SaveRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.rateService.Save(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// ResolveRate answers which rate applies for a currency, payment method and date
// @Summary      Resolve applicable rate
// @Description  Exact-date match first, otherwise the most recent dated record; missing=true means cost math falls back to 1:1
// @Tags         exchange-rates
// @Produce      json
// @Param        currency        query     string  true   "Currency code"
// @Param        payment_method  query     string  true   "CASH, VISA or JCB"
// @Param        date            query     string  false  "Date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.Response{data=service.ResolvedRate}
// @Failure      400  {object}  response.Response
// @Router       /api/exchange-rates/resolve [get]
func (h *ExchangeRateHandler) ResolveRate(c *gin.Context) {
	currency := c.Query("currency")
	paymentMethod := c.Query("payment_method")
	if currency == "" || paymentMethod == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "currency and payment_method are required"))
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	resolved, err := h.rateService.Resolve(c.Request.Context(), currency, paymentMethod, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resolved))
}

// DeleteRate removes a rate record
// @Summary      Delete exchange rate
// @Tags         exchange-rates
// @Produce      json
// @Param        id        path      string  true   "Rate ID"
// @Param        operator  query     string  false  "Acting operator"
// @Success      200       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /api/exchange-rates/{id} [delete]
func (h *ExchangeRateHandler) DeleteRate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.rateService.Delete(c.Request.Context(), id, c.Query("operator")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
