package handlers

import (
	"errors"
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusOf maps board errors to HTTP status codes.
func statusOf(err error) int {
	var remote *service.RemoteError
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrMissingDeadline),
		errors.Is(err, service.ErrPromptCancelled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrDeleteDeclined):
		return http.StatusPreconditionRequired
	case errors.As(err, &remote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindDraft reads a {text, deadline} body. Missing fields are a 422,
// anything unparseable a 400.
func bindDraft(c *gin.Context) (domain.Draft, bool) {
	var d domain.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "text and deadline are required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		}
		return d, false
	}
	return d, true
}
