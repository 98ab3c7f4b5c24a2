package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/app"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/vision"
)

type stubEngine struct {
	loadErr    error
	predictErr error
	prediction vision.Prediction
}

func (s *stubEngine) Load() error { return s.loadErr }

func (s *stubEngine) Predict(_ image.Image) (*vision.Prediction, error) {
	if s.predictErr != nil {
		return nil, s.predictErr
	}
	p := s.prediction
	return &p, nil
}

func newPredictRouter(engine *stubEngine, maxImageBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := app.NewScreeningService(engine, nil, nil, nil, "")
	h := NewScreeningHandler(svc, maxImageBytes)
	r := gin.New()
	r.POST("/predict", h.Predict)
	r.GET("/api/v1/predictions", h.Records)
	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

func multipartImage(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPredictSuccess(t *testing.T) {
	engine := &stubEngine{prediction: vision.Prediction{Label: "Healthy", Index: 0, Confidence: 0.9742}}
	router := newPredictRouter(engine, 0)

	buf, contentType := multipartImage(t, "image", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Healthy", body["prediction"])
	assert.Equal(t, "97.42%", body["confidence"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPredictMissingFile(t *testing.T) {
	router := newPredictRouter(&stubEngine{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No image file provided in the request.", body["error"])
}

func TestPredictWrongFieldName(t *testing.T) {
	router := newPredictRouter(&stubEngine{}, 0)

	buf, contentType := multipartImage(t, "file", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No image file provided in the request.", body["error"])
}

func TestPredictUndecodableImage(t *testing.T) {
	router := newPredictRouter(&stubEngine{prediction: vision.Prediction{Label: "Healthy"}}, 0)

	buf, contentType := multipartImage(t, "image", "notes.txt", []byte("this is not an image"))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Could not decode the image file. It might be corrupted.", body["error"])
	assert.NotContains(t, body, "details")
}

func TestPredictModelLoadFailure(t *testing.T) {
	engine := &stubEngine{loadErr: errors.New("libonnxruntime.so not found")}
	router := newPredictRouter(engine, 0)

	buf, contentType := multipartImage(t, "image", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Model failed to load on the server.", body["error"])
	assert.Contains(t, body["details"], "libonnxruntime.so not found")
}

func TestPredictInferenceFailure(t *testing.T) {
	engine := &stubEngine{predictErr: errors.New("tensor shape mismatch")}
	router := newPredictRouter(engine, 0)

	buf, contentType := multipartImage(t, "image", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "An error occurred during prediction.", body["error"])
	assert.Contains(t, body["details"], "tensor shape mismatch")
}

func TestPredictOversizeImage(t *testing.T) {
	router := newPredictRouter(&stubEngine{}, 16)

	buf, contentType := multipartImage(t, "image", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Image file is too large.", body["error"])
}

func TestPredictEchoesClientRequestID(t *testing.T) {
	engine := &stubEngine{prediction: vision.Prediction{Label: "Healthy", Confidence: 1}}
	router := newPredictRouter(engine, 0)

	buf, contentType := multipartImage(t, "image", "tongue.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", "c3b56b11-9a20-4f37-a741-11b36a0a2c1b")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c3b56b11-9a20-4f37-a741-11b36a0a2c1b", rec.Header().Get("X-Request-ID"))
}

func TestRecordsRejectsBadLimit(t *testing.T) {
	router := newPredictRouter(&stubEngine{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions?limit=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(40000), body["code"])
}

func TestRecordsWithoutAuditStore(t *testing.T) {
	router := newPredictRouter(&stubEngine{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(50000), body["code"])
}
