package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/model"
)

// UploadPhoto handles POST /machines/:machineId/maintenance-records/:recordId/photos.
// The multipart form carries the image in "file" and BEFORE or AFTER in "type".
func (h *Handler) UploadPhoto(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > h.opts.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		badRequest(c, "file is required")
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, err)
		return
	}

	photo, err := h.svc.AddPhoto(c.Request.Context(), machineID, recordID, maintenance.PhotoUpload{
		Type:        model.PhotoType(strings.ToUpper(c.PostForm("type"))),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// ListPhotos handles GET /machines/:machineId/maintenance-records/:recordId/photos.
func (h *Handler) ListPhotos(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	photos, err := h.svc.ListPhotos(c.Request.Context(), machineID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

// DeletePhoto handles DELETE /machines/:machineId/maintenance-records/:recordId/photos/:photoId.
func (h *Handler) DeletePhoto(c *gin.Context) {
	machineID, recordID, ok := recordPath(c)
	if !ok {
		return
	}
	photoID, ok := pathID(c, "photoId")
	if !ok {
		return
	}
	photo, err := h.svc.RemovePhoto(c.Request.Context(), machineID, recordID, photoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}
