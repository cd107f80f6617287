package receipt

import (
	"errors"
	"time"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

var (
	// ErrNoImage is returned when an upload carries no image data
	ErrNoImage = errors.New("no image received")
	// ErrNotFound is returned for unknown analysis IDs and missing images
	ErrNotFound = errors.New("analysis not found")
)

// Analysis is one analyzed ticket image with the receipt recovered from it
type Analysis struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	Scanner     string          `json:"scanner"`
	RawText     string          `json:"raw_text,omitempty"` // only set by OCR scanners
	Receipt     *ticket.Receipt `json:"receipt"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Health is the readiness report of the service
type Health struct {
	OK          bool   `json:"ok"`
	EngineReady bool   `json:"tesseractListo"`
	Scanner     string `json:"scanner"`
}
