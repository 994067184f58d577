package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crte-ams/ticket-service/internal/errs"
)

func statusFor(err error) int {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrTicketNotFound), errors.Is(err, errs.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrTicketClosed),
		errors.Is(err, errs.ErrAlreadyCancelled),
		errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrOSNotAllowed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...}. Persistence failures only expose their
// localized message; the cause goes to the request log via c.Error.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	body := gin.H{"error": err.Error()}

	var ve *errs.ValidationError
	var conflict *errs.AssignmentConflictError
	var pe *errs.PersistenceError
	switch {
	case errors.As(err, &ve):
		body["error"] = ve.Error()
		if ve.Field != "" {
			body["field"] = ve.Field
		}
	case errors.As(err, &conflict):
		body["current"] = conflict.Current
	case errors.As(err, &pe):
		body["error"] = pe.Message
	}
	c.JSON(statusFor(err), body)
}
