package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-ranker/domain"
)

// errorResponse maps a domain error onto an HTTP status and JSON body.
func errorResponse(err error) (int, gin.H) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		cfgErr     *domain.ConfigurationError
		transport  *domain.TransportError
		extraction *domain.ExtractionFailure
		persist    *domain.PersistenceError
		maxBytes   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, gin.H{"error": validation.Error()}
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, gin.H{"error": "uploaded file is too large"}
	case errors.As(err, &notFound):
		return http.StatusNotFound, gin.H{"error": notFound.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided or are invalid."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."}
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, gin.H{"error": cfgErr.Error()}
	case errors.As(err, &extraction):
		return http.StatusInternalServerError, gin.H{"error": extraction.Error(), "raw_response": extraction.RawText}
	case errors.As(err, &transport):
		return http.StatusInternalServerError, gin.H{"error": transport.Error()}
	case errors.As(err, &persist):
		return http.StatusInternalServerError, gin.H{"error": "failed to save data"}
	}
	return http.StatusInternalServerError, gin.H{"error": "internal server error"}
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed", map[string]interface{}{
			"path":   c.FullPath(),
			"status": status,
		})
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
