// Package tesseract provides an OCR engine backed by the Tesseract library.
//
// The engine warms up asynchronously: Start loads the trained data in the
// background and the engine refuses requests until that completes.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/scanning"
)

// DefaultWhitelist restricts recognition to what shows up on Spanish tickets
const DefaultWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"ÁÉÍÓÚÜÑáéíóúüñ0123456789.,:;/-+x€$%*()#&' "

// Config holds the recognition settings
type Config struct {
	Languages []string
	// Whitelist limits the characters Tesseract may emit; empty disables it
	Whitelist string
	// PageSegMode is the Tesseract --psm value; 6 treats the image as one block of text
	PageSegMode int
}

// DefaultConfig is the known-good configuration for photographed tickets
func DefaultConfig() Config {
	return Config{
		Languages:   []string{"spa"},
		Whitelist:   DefaultWhitelist,
		PageSegMode: int(gosseract.PSM_SINGLE_BLOCK),
	}
}

// Engine implements scanning.Recognizer using gosseract
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client

	startOnce sync.Once
	done      chan struct{}
	mu        sync.RWMutex
	ready     bool
	initErr   error
}

// NewEngine creates an engine; call Start before use
func NewEngine(cfg Config) *Engine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultConfig().Languages
	}
	return &Engine{
		cfg:           cfg,
		clientFactory: gosseract.NewClient,
		done:          make(chan struct{}),
	}
}

// Start begins warming up the engine in the background. It is safe to call more than once.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		go e.warmUp()
	})
}

// warmUp loads the language data once so that a broken install is reported
// at startup rather than on the first ticket
func (e *Engine) warmUp() {
	defer close(e.done)

	c := e.clientFactory()
	defer c.Close()

	err := e.configure(c)
	if err == nil && c.Version() == "" {
		err = errors.New("tesseract library not available")
	}
	if err == nil {
		err = e.probe(c)
	}

	e.mu.Lock()
	e.ready = err == nil
	e.initErr = err
	e.mu.Unlock()

	if err != nil {
		slog.Error("Tesseract initialization failed", "languages", e.cfg.Languages, "error", err)
		return
	}
	slog.Info("Tesseract ready", "version", c.Version(), "languages", e.cfg.Languages, "psm", e.cfg.PageSegMode)
}

// Wait blocks until warm-up finishes and returns its error
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// probe runs one recognition over a blank page; the trained data is only
// loaded on the first Text call
func (e *Engine) probe(c *gosseract.Client) error {
	var buf bytes.Buffer
	blank := image.NewGray(image.Rect(0, 0, 32, 32))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)
	if err := png.Encode(&buf, blank); err != nil {
		return fmt.Errorf("encode probe image: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("set probe image: %w", err)
	}
	if _, err := c.Text(); err != nil {
		return fmt.Errorf("load trained data: %w", err)
	}
	return nil
}

func (e *Engine) Name() string { return "tesseract" }

// Ready reports whether warm-up completed successfully
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

func (e *Engine) configure(c *gosseract.Client) error {
	if err := c.SetLanguage(e.cfg.Languages...); err != nil {
		return fmt.Errorf("set languages: %w", err)
	}
	if e.cfg.Whitelist != "" {
		if err := c.SetWhitelist(e.cfg.Whitelist); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
	}
	if e.cfg.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	return nil
}

// Recognize returns the text Tesseract reads in the ticket image.
// Each call uses its own client, so concurrent calls are independent.
func (e *Engine) Recognize(ctx context.Context, imageData []byte, contentType string) (string, error) {
	if !e.Ready() {
		return "", scanning.ErrEngineNotReady
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pngData, _, err := scanning.PrepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return "", err
	}
	if err := c.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close is a no-op; clients are released after every call
func (e *Engine) Close() error {
	return nil
}
