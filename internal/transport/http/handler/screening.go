package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/app"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/transport/http/response"
)

const defaultMaxImageBytes = 10 << 20 // 10 MB

// ScreeningHandler serves the public prediction endpoint and the
// authenticated audit-trail listing. The prediction endpoint keeps the flat
// JSON shape existing clients depend on, separate from the enveloped API
// responses used elsewhere.
type ScreeningHandler struct {
	service       *app.ScreeningService
	maxImageBytes int64
}

func NewScreeningHandler(service *app.ScreeningService, maxImageBytes int64) *ScreeningHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}
	return &ScreeningHandler{
		service:       service,
		maxImageBytes: maxImageBytes,
	}
}

// Predict accepts a multipart form with an "image" file, runs the screening
// pipeline, and answers {"prediction": ..., "confidence": "NN.NN%"}.
func (h *ScreeningHandler) Predict(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided in the request."})
		return
	}

	if file.Size > h.maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is too large."})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "An error occurred during prediction.",
			"details": err.Error(),
		})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "An error occurred during prediction.",
			"details": err.Error(),
		})
		return
	}

	result, err := h.service.Screen(c.Request.Context(), app.ScreenInput{
		RequestID: c.GetHeader("X-Request-ID"),
		Filename:  file.Filename,
		Image:     data,
	})
	if err != nil {
		h.writeScreenError(c, err)
		return
	}

	c.Header("X-Request-ID", result.RequestID)
	c.JSON(http.StatusOK, gin.H{
		"prediction": result.Prediction.Label,
		"confidence": result.Prediction.ConfidenceString(),
	})
}

func (h *ScreeningHandler) writeScreenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrNoImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided in the request."})
	case errors.Is(err, app.ErrImageDecode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not decode the image file. It might be corrupted."})
	case errors.Is(err, app.ErrModelLoad):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Model failed to load on the server.",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "An error occurred during prediction.",
			"details": err.Error(),
		})
	}
}

// Records lists the newest audit-trail entries for authenticated stations.
func (h *ScreeningHandler) Records(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.RecentRecords(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list prediction records failed")
		return
	}
	response.OK(c, gin.H{"records": records})
}
