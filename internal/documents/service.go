package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdt-ict/portal/internal/shared"
)

// ContentTypePDF is the only accepted document type.
const ContentTypePDF = "application/pdf"

// Document is the client view of a stored upload.
type Document struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Service stores documents per user.
type Service struct {
	store ObjectStore
	now   func() time.Time
	newID func() string
}

// NewService constructs a document Service.
func NewService(store ObjectStore) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

// Upload stores a PDF for userID and returns its descriptor.
func (s *Service) Upload(ctx context.Context, userID string, body io.Reader, size int64) (*Document, error) {
	if userID == "" {
		return nil, shared.ErrUnauthenticated
	}
	id := s.newID()
	key := userPrefix(userID) + id + ".pdf"
	if err := s.store.Put(ctx, key, body, ContentTypePDF); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	return &Document{ID: id, Key: key, Size: size, UploadedAt: s.now().UTC()}, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	if userID == "" {
		return nil, shared.ErrUnauthenticated
	}
	objects, err := s.store.List(ctx, userPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]Document, 0, len(objects))
	for _, obj := range objects {
		docs = append(docs, Document{
			ID:         strings.TrimSuffix(path.Base(obj.Key), ".pdf"),
			Key:        obj.Key,
			Size:       obj.Size,
			UploadedAt: obj.LastModified.UTC(),
		})
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}

func userPrefix(userID string) string {
	return "documents/" + userID + "/"
}
