package handler

import (
	"errors"
	"net/http"

	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backend/pkg/response"
)

// parseID pulls and validates the :id path parameter. On failure it has
// already written the 400 response; callers just return.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid ID: "+c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

// statusForError maps service errors onto HTTP status codes. Validation
// failures are the client's fault; everything unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrRateNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoOperator),
		errors.Is(err, service.ErrNoCustomer),
		errors.Is(err, service.ErrNegativeQuantity),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrItemOutOfRange),
		errors.Is(err, service.ErrRateDate),
		errors.Is(err, service.ErrRateCurrency),
		errors.Is(err, service.ErrProductName),
		errors.Is(err, service.ErrProductExists),
		errors.Is(err, service.ErrOperatorName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusForError(err)
	c.JSON(status, response.Error(status, err.Error()))
}
