package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OperatorHandler struct {
	operatorService service.OperatorService
}

func NewOperatorHandler(operatorService service.OperatorService) *OperatorHandler {
	return &OperatorHandler{operatorService: operatorService}
}

func (h *OperatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	operators := router.Group("/api/operators")
	{
		operators.GET("", h.ListOperators)
		operators.POST("", h.AddOperator)
		operators.DELETE("/:id", h.RemoveOperator)
	}
}

// ListOperators returns the roster in the order people were added
// @Summary      List operators
// @Tags         operators
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Operator}
// @Failure      500  {object}  response.Response
// @Router       /api/operators [get]
func (h *OperatorHandler) ListOperators(c *gin.Context) {
	operators, err := h.operatorService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve operators: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, operators))
}

type addOperatorRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddOperator adds a name to the roster
// @Summary      Add operator
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        payload  body      addOperatorRequest  true  "Operator name"
// @Success      201      {object}  response.Response{data=model.Operator}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/operators [post]
func (h *OperatorHandler) AddOperator(c *gin.Context) {
	var req addOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	operator, err := h.operatorService.Add(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, operator))
}

// RemoveOperator drops a name from the roster
// @Summary      Remove operator
// @Tags         operators
// @Produce      json
// @Param        id        path      string  true   "Operator ID"
// @Param        operator  query     string  false  "Acting operator"
// @Success      200       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Router       /api/operators/{id} [delete]
func (h *OperatorHandler) RemoveOperator(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.operatorService.Remove(c.Request.Context(), id, c.Query("operator")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
