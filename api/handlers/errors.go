package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chorebot-api/api/middleware"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// errorStatus maps a service error onto an HTTP status
func errorStatus(err error) int {
	var ambiguous chore.AmbiguousNameError
	switch {
	case common.IsValidation(err), errors.As(err, &ambiguous):
		return http.StatusBadRequest
	case common.IsNotFound(err):
		return http.StatusNotFound
	case common.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Storage failures are logged and
// their details kept out of the response.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := errorStatus(err)
	reqLogger := middleware.LoggerFrom(c, log)

	message := err.Error()
	var coded common.CodedError
	if errors.As(err, &coded) {
		message = coded.Message()
	}

	if status == http.StatusInternalServerError {
		reqLogger.Errorw("Request failed", "error", err)
		message = "internal server error"
	} else {
		reqLogger.Debugw("Request rejected", "status_code", status, "error", err)
	}

	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// pathID parses the :id parameter, answering 400 when it is not a positive integer
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
