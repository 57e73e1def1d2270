// Package ocr extracts plain text from document images. It sits outside the
// inventory core: nothing in it touches products or holds catalog locks.
package ocr

import (
	"context"
	"errors"
	"fmt"

	"katalog/internal/models"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// TextExtractor converts image bytes to text. Failures are reported as
// models.ErrExtractionFailed and are never retried.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// VisionExtractor runs Google Cloud Vision document text detection.
type VisionExtractor struct {
	annotate annotateFunc
	close    func() error
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// Config configures NewVisionExtractor.
type Config struct {
	CredentialsFile string  // empty uses application default credentials
	RatePerSecond   float64 // 0 disables rate limiting
}

// NewVisionExtractor dials the Vision API.
func NewVisionExtractor(ctx context.Context, cfg Config, logger zerolog.Logger) (*VisionExtractor, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	e := newVisionExtractor(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}, newLimiter(cfg.RatePerSecond), logger)
	e.close = client.Close
	return e, nil
}

func newVisionExtractor(annotate annotateFunc, limiter *rate.Limiter, logger zerolog.Logger) *VisionExtractor {
	return &VisionExtractor{
		annotate: annotate,
		close:    func() error { return nil },
		limiter:  limiter,
		logger:   logger.With().Str("component", "ocr").Logger(),
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// ExtractText returns the full text annotation of image, or "" when the
// image contains no text.
func (e *VisionExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", e.fail(errors.New("image is empty"))
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", e.fail(fmt.Errorf("rate limiter: %w", err))
		}
	}

	resp, err := e.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", e.fail(err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", e.fail(errors.New("vision returned no responses"))
	}

	result := resp.GetResponses()[0]
	if status := result.GetError(); status != nil && status.GetCode() != 0 {
		return "", e.fail(fmt.Errorf("vision error %d: %s", status.GetCode(), status.GetMessage()))
	}

	text := result.GetFullTextAnnotation().GetText()
	e.logger.Debug().Int("bytes", len(image)).Int("chars", len(text)).Msg("extracted document text")
	return text, nil
}

// Close releases the underlying client.
func (e *VisionExtractor) Close() error {
	return e.close()
}

func (e *VisionExtractor) fail(cause error) error {
	e.logger.Error().Err(cause).Msg("document text extraction failed")
	return models.ErrExtractionFailed.Wrap(cause)
}

// Disabled is the extractor used when OCR is not configured.
type Disabled struct{}

// ExtractText always fails with models.ErrExtractionFailed.
func (Disabled) ExtractText(context.Context, []byte) (string, error) {
	return "", models.ErrExtractionFailed.Wrap(errors.New("text extraction is not configured"))
}
