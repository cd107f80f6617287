package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/scanning"
	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

// IDGenerator generates unique IDs for analyses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Service handles ticket analysis
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	reFilenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reFilenameSpaces = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if reFilenameUnsafe.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = reFilenameUnsafe.ReplaceAllString(base, "")
	base = reFilenameSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Phone cameras produce long names
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "ticket"
	}
	return base + ext
}

// AnalyzeTicket stores a ticket image, scans it and records the analysis
func (s *Service) AnalyzeTicket(ctx context.Context, filename string, data []byte, contentType string) (*Analysis, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if !s.scanner.Ready() {
		return nil, scanning.ErrEngineNotReady
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()
	contentType = scanning.NormalizeMimeType(contentType)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan ticket",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"scanner", s.scanner.Name(),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("scanning ticket: %w", err)
	}

	analysis := &Analysis{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		Scanner:     s.scanner.Name(),
		RawText:     result.RawText,
		Receipt:     result.Receipt,
		CreatedAt:   now,
	}

	if err := s.db.SaveAnalysis(analysis); err != nil {
		s.removeFile(savedPath)
		return nil, fmt.Errorf("saving analysis to database: %w", err)
	}

	slog.Info("Ticket analyzed",
		"id", id,
		"scanner", analysis.Scanner,
		"products", len(result.Receipt.Products),
		"total", result.Receipt.Total.String(),
	)
	return analysis, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// ParseText reconstructs a receipt from text recognized elsewhere
func (s *Service) ParseText(text string) *ticket.Receipt {
	return ticket.Parse(text)
}

// GetAnalysis retrieves an analysis by ID
func (s *Service) GetAnalysis(id string) (*Analysis, error) {
	analysis, err := s.db.GetAnalysis(id)
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return analysis, nil
}

// ListAnalyses returns all analyses, newest first
func (s *Service) ListAnalyses() ([]*Analysis, error) {
	analyses, err := s.db.ListAnalyses()
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return analyses, nil
}

// DeleteAnalysis removes an analysis and its image
func (s *Service) DeleteAnalysis(id string) error {
	analysis, err := s.db.GetAnalysis(id)
	if err != nil {
		return fmt.Errorf("getting analysis for deletion: %w", err)
	}

	// A missing image must not keep the record alive
	s.removeFile(analysis.Filename)

	if err := s.db.DeleteAnalysis(id); err != nil {
		return fmt.Errorf("deleting analysis from database: %w", err)
	}
	return nil
}

// GetAnalysisImage retrieves the stored image of an analysis
func (s *Service) GetAnalysisImage(id string) ([]byte, string, error) {
	analysis, err := s.db.GetAnalysis(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting analysis: %w", err)
	}

	data, err := s.storage.Get(analysis.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting analysis image: %w", err)
	}
	return data, analysis.ContentType, nil
}

// Health reports whether the scanner can take tickets
func (s *Service) Health() Health {
	return Health{
		OK:          true,
		EngineReady: s.scanner.Ready(),
		Scanner:     s.scanner.Name(),
	}
}

// IsNotFound reports whether err means the analysis does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
