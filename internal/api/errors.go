package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fundamental/pricing/internal/comps"
	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/processor"
	"fundamental/pricing/internal/queue"
	"fundamental/pricing/internal/regression"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var insufficient *models.InsufficientDataError
	var invalid *models.InvalidFeatureValueError
	switch {
	case errors.As(err, &insufficient),
		errors.As(err, &invalid),
		errors.Is(err, models.ErrMissingReferenceID),
		errors.Is(err, models.ErrUnknownFeature),
		errors.Is(err, models.ErrUnsupportedModelKind),
		errors.Is(err, regression.ErrInvalidHyperparameters),
		errors.Is(err, processor.ErrEmptyBatch),
		errors.Is(err, processor.ErrBatchTooLarge),
		errors.Is(err, errMissingProperty):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrModelNotTrained),
		errors.Is(err, database.ErrPropertyNotFound),
		errors.Is(err, comps.ErrNoComps):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrQueueFull),
		errors.Is(err, queue.ErrQueueClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes the error with its mapped status. Server errors are logged
// and their details withheld from the client.
func (h *Handler) respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
