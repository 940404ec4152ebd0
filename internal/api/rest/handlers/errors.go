package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	var media *domain.MediaError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict
	case errors.As(err, &media) && media.TooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ответ об ошибке. Store failures never leak driver details to the client.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := statusFor(err)
	body := res.ErrorResponse{Error: err.Error()}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		body = res.ErrorResponse{Error: domain.ErrValidation.Error(), Details: []domain.ValidationError(verrs)}
	}
	if status == http.StatusInternalServerError {
		log.Errorw("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		body = res.ErrorResponse{Error: "internal server error"}
	}

	res.JsonErrorResponse(c, body, status, log)
}
