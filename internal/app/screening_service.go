package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/model"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/repository"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/vision"
)

var (
	ErrNoImage          = errors.New("no image provided")
	ErrImageDecode      = errors.New("image decode failed")
	ErrModelLoad        = errors.New("model load failed")
	ErrPredict          = errors.New("prediction failed")
	ErrAuditUnavailable = errors.New("audit trail unavailable")
)

// InferenceEngine runs the tissue model on a decoded image.
type InferenceEngine interface {
	Load() error
	Predict(img image.Image) (*vision.Prediction, error)
}

// ResultCache stores finished predictions keyed by image digest.
type ResultCache interface {
	Get(ctx context.Context, digest string) (*vision.Prediction, bool, error)
	Set(ctx context.Context, digest string, prediction *vision.Prediction) error
}

// RecordPublisher hands audit records to the persistence queue.
type RecordPublisher interface {
	Publish(ctx context.Context, record model.PredictionRecord) error
}

// ScreeningService runs the full screening pipeline: digest the upload, check
// the result cache, decode, run the model, then cache, archive, and enqueue
// the audit record. Cache, publisher, records, and archive are all optional;
// the standalone CLI runs with only the engine.
type ScreeningService struct {
	engine     InferenceEngine
	records    *repository.PredictionRepository
	cache      ResultCache
	publisher  RecordPublisher
	archiveDir string
}

type ScreenInput struct {
	RequestID string
	Filename  string
	Image     []byte
}

type ScreenResult struct {
	RequestID  string
	Prediction vision.Prediction
	Cached     bool
	DurationMs int64
}

func NewScreeningService(
	engine InferenceEngine,
	records *repository.PredictionRepository,
	cache ResultCache,
	publisher RecordPublisher,
	archiveDir string,
) *ScreeningService {
	return &ScreeningService{
		engine:     engine,
		records:    records,
		cache:      cache,
		publisher:  publisher,
		archiveDir: archiveDir,
	}
}

func (s *ScreeningService) Screen(ctx context.Context, input ScreenInput) (*ScreenResult, error) {
	if len(input.Image) == 0 {
		return nil, ErrNoImage
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	sum := sha256.Sum256(input.Image)
	digest := hex.EncodeToString(sum[:])

	// A cached digest implies the image decoded and classified fine before,
	// so the hit path does not need the model at all. A broken cache only
	// costs the shortcut; the model still answers.
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, digest)
		if err != nil {
			log.Printf("result cache lookup failed: %v", err)
		}
		if hit {
			result := &ScreenResult{
				RequestID:  requestID,
				Prediction: *cached,
				Cached:     true,
				DurationMs: time.Since(start).Milliseconds(),
			}
			s.record(ctx, result, digest, input, "")
			return result, nil
		}
	}

	if err := s.engine.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	img, err := vision.DecodeImage(input.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	prediction, err := s.engine.Predict(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredict, err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, digest, prediction)
	}

	archiveFile := ""
	if s.archiveDir != "" {
		archiveFile = s.archiveImage(requestID, input.Filename, input.Image)
	}

	result := &ScreenResult{
		RequestID:  requestID,
		Prediction: *prediction,
		DurationMs: time.Since(start).Milliseconds(),
	}
	s.record(ctx, result, digest, input, archiveFile)
	return result, nil
}

// RecentRecords lists the newest audit-trail entries.
func (s *ScreeningService) RecentRecords(limit int) ([]model.PredictionRecord, error) {
	if s.records == nil {
		return nil, ErrAuditUnavailable
	}
	return s.records.ListRecent(limit)
}

// record enqueues the audit entry. Failures never fail the screening itself.
func (s *ScreeningService) record(ctx context.Context, result *ScreenResult, digest string, input ScreenInput, archiveFile string) {
	if s.publisher == nil {
		return
	}
	rec := model.PredictionRecord{
		RequestID:   result.RequestID,
		Label:       result.Prediction.Label,
		Confidence:  float64(result.Prediction.Confidence),
		ImageSHA256: digest,
		ImageBytes:  int64(len(input.Image)),
		DurationMs:  result.DurationMs,
		Cached:      result.Cached,
		ArchiveFile: archiveFile,
		CreatedAt:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, rec); err != nil {
		log.Printf("publish prediction record failed: %v", err)
	}
}

// archiveImage writes the raw upload under the request id, keeping the
// original file extension. Returns the stored name, or "" on failure.
func (s *ScreeningService) archiveImage(requestID, filename string, data []byte) string {
	name := requestID + filepath.Ext(filename)
	if err := os.WriteFile(filepath.Join(s.archiveDir, name), data, 0o644); err != nil {
		log.Printf("archive image failed: %v", err)
		return ""
	}
	return name
}
