package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conecta/logger"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Upload accepts a multipart form with a single "media" field and
// returns the URL plus the detected type (image or video).
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.Errorf("[media] open upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	defer f.Close()

	url, mediaType, err := h.store.Save(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		logger.Errorf("[media] save upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":     url,
		"type":    mediaType,
		"message": "Media (" + mediaType + ") uploaded successfully",
	})
}
