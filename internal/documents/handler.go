package documents

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdt-ict/portal/internal/platform/httpx"
	"github.com/pdt-ict/portal/internal/shared"
)

const sniffLen = 512

var pdfMagic = []byte("%PDF-")

// Handler serves the document upload endpoints.
type Handler struct {
	service  *Service
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler constructs a Handler. Uploads larger than maxBytes are rejected.
func NewHandler(service *Service, maxBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, maxBytes: maxBytes, logger: logger}
}

// MountRoutes registers document routes. Callers mount them behind bearer auth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleUpload)
	r.Get("/", h.handleList)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	// multipart framing adds a little on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Fail(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		httpx.Fail(w, http.StatusBadRequest, "A PDF file is required")
		return
	}
	defer file.Close()
	if header.Size > h.maxBytes {
		httpx.Fail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		httpx.Fail(w, http.StatusBadRequest, "A PDF file is required")
		return
	}
	head = head[:n]
	if http.DetectContentType(head) != ContentTypePDF || !bytes.HasPrefix(head, pdfMagic) {
		httpx.Fail(w, http.StatusUnsupportedMediaType, "Only PDF files are allowed")
		return
	}

	doc, err := h.service.Upload(r.Context(), id.UserID, io.MultiReader(bytes.NewReader(head), file), header.Size)
	if err != nil {
		h.logger.Error("upload document", slog.String("user_id", id.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusCreated, doc, "File uploaded successfully")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	docs, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("list documents", slog.String("user_id", id.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page := shared.PaginationFromRequest(r, len(docs))
	start, end := page.Bounds()
	httpx.Success(w, http.StatusOK, map[string]any{
		"documents":  docs[start:end],
		"pagination": page,
	}, "")
}
