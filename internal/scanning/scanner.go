package scanning

import (
	"context"
	"errors"
	"fmt"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

// ErrEngineNotReady is returned while an OCR engine is still initializing
var ErrEngineNotReady = errors.New("ocr engine not ready")

// Result is what a scanner recovered from one ticket image
type Result struct {
	Receipt *ticket.Receipt
	// RawText is the recognized text; empty for vision scanners that skip the parser
	RawText string
}

// Scanner turns a ticket image into a structured receipt
type Scanner interface {
	// ScanReceipt analyzes a ticket image/PDF and extracts the receipt
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*Result, error)
	// Name identifies the scanner in logs and health reports
	Name() string
	// Ready reports whether the scanner can accept requests
	Ready() bool
	// Close closes the scanner and releases resources
	Close() error
}

// Recognizer is an OCR engine that returns plain text for an image
type Recognizer interface {
	Recognize(ctx context.Context, imageData []byte, contentType string) (string, error)
	Name() string
	Ready() bool
	Close() error
}

// TextScanner runs a Recognizer and reconstructs the receipt from its text
type TextScanner struct {
	engine Recognizer
}

// NewTextScanner creates a Scanner backed by an OCR engine and the ticket parser
func NewTextScanner(engine Recognizer) *TextScanner {
	return &TextScanner{engine: engine}
}

// ScanReceipt recognizes the text of the image and parses it
func (s *TextScanner) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*Result, error) {
	if !s.engine.Ready() {
		return nil, ErrEngineNotReady
	}
	text, err := s.engine.Recognize(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}
	return &Result{Receipt: ticket.Parse(text), RawText: text}, nil
}

func (s *TextScanner) Name() string { return s.engine.Name() }

func (s *TextScanner) Ready() bool { return s.engine.Ready() }

// Close closes the underlying engine
func (s *TextScanner) Close() error {
	return s.engine.Close()
}
