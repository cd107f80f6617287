package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/scanning"
)

const uploadField = "imagen"

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes the {"error": message} body the clients expect
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// contentTypeFor guesses a MIME type from the upload's extension
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleAnalyzeTicket handles the ticket image upload and answers with the receipt
func (s *Server) handleAnalyzeTicket(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "La imagen es demasiado grande", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Error("Error parsing multipart form", "error", err)
		writeError(w, "No se recibió ninguna imagen", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, "No se recibió ninguna imagen", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > s.maxUploadSize {
		writeError(w, "La imagen es demasiado grande", http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error al leer la imagen", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}

	analysis, err := s.service.AnalyzeTicket(r.Context(), header.Filename, data, contentType)
	switch {
	case errors.Is(err, ErrNoImage):
		writeError(w, "No se recibió ninguna imagen", http.StatusBadRequest)
		return
	case errors.Is(err, scanning.ErrEngineNotReady):
		writeError(w, "El motor OCR todavía no está listo", http.StatusServiceUnavailable)
		return
	case err != nil:
		slog.Error("Error processing ticket", "filename", header.Filename, "error", err)
		writeError(w, "Error al procesar el ticket", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, analysis.Receipt)
}

// handleAnalyzeText parses OCR text sent as the request body
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadSize))
	if err != nil {
		writeError(w, "El texto es demasiado grande", http.StatusRequestEntityTooLarge)
		return
	}

	text := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Text string `json:"texto"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
			return
		}
		text = req.Text
	}

	writeJSON(w, http.StatusOK, s.service.ParseText(text))
}

// handleListAnalyses returns all stored analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.service.ListAnalyses()
	if err != nil {
		slog.Error("Error listing analyses", "error", err)
		writeError(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}
	if analyses == nil {
		analyses = []*Analysis{}
	}
	writeJSON(w, http.StatusOK, analyses)
}

// handleGetAnalysis returns a single analysis
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.service.GetAnalysis(r.PathValue("id"))
	switch {
	case IsNotFound(err):
		writeError(w, "Ticket no encontrado", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error getting analysis", "error", err)
		writeError(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleGetImage returns the stored ticket image
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetAnalysisImage(r.PathValue("id"))
	switch {
	case IsNotFound(err):
		writeError(w, "Imagen no encontrada", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error getting analysis image", "error", err)
		writeError(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		slog.Error("Error writing image", "error", err)
	}
}

// handleDeleteAnalysis deletes an analysis and its image
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteAnalysis(r.PathValue("id"))
	switch {
	case IsNotFound(err):
		writeError(w, "Ticket no encontrado", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error deleting analysis", "error", err)
		writeError(w, "Error al borrar el ticket", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports process liveness and OCR engine readiness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Health())
}
