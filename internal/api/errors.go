package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/parse"
	"maintenance-records-backend/internal/store"
)

const userIDKey = "user_id"

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, maintenance.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, maintenance.ErrAlreadyFinished),
		errors.Is(err, maintenance.ErrNothingToUpdate),
		errors.Is(err, maintenance.ErrInvalidAttachment),
		errors.Is(err, maintenance.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.From(c.Request.Context()).Error("request failed", logging.ErrAttrs(err)...)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// requireUser rejects requests without a valid caller id in the configured header.
func (h *Handler) requireUser(c *gin.Context) {
	id, err := parse.ID(c.GetHeader(h.opts.UserHeader))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.Set(userIDKey, id)
	c.Next()
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// pathID parses the named path parameter, writing a 400 response on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parse.ID(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func recordPath(c *gin.Context) (machineID, recordID int64, ok bool) {
	if machineID, ok = pathID(c, "machineId"); !ok {
		return 0, 0, false
	}
	if recordID, ok = pathID(c, "recordId"); !ok {
		return 0, 0, false
	}
	return machineID, recordID, true
}
