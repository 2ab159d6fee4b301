package handler

import (
	"net/http"
	"strconv"

	"backend/internal/report"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/profitability", h.Profitability)
		reports.GET("/summary", h.Summary)
	}
}

// Profitability returns the per-product rollup across live orders
// @Summary      Profitability report
// @Description  Per-product quantity, buyer count, revenue, landed cost and profit, sorted by quantity
// @Tags         reports
// @Produce      json
// @Param        include_shipping  query     bool    false  "Fold estimated shipping into cost (default true)"
// @Param        search            query     string  false  "Filter by product name"
// @Success      200  {object}  response.Response{data=[]report.Row}
// @Failure      500  {object}  response.Response
// @Router       /api/reports/profitability [get]
func (h *ReportHandler) Profitability(c *gin.Context) {
	includeShipping, _ := strconv.ParseBool(c.DefaultQuery("include_shipping", "true"))

	rows, err := h.reportService.Profitability(c.Request.Context(),
		report.Options{IncludeShipping: includeShipping},
		c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build report: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// Summary returns the dashboard counters over live orders
// @Summary      Dashboard summary
// @Tags         reports
// @Produce      json
// @Success      200  {object}  response.Response{data=report.Summary}
// @Failure      500  {object}  response.Response
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build summary: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
