package evidence

import (
	"context"
	"io"
)

// Upload is a single binary evidence payload, typically a camera photo
// captured in the field.
type Upload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock

// Store accepts an upload and returns a stable retrieval URL. A URL is only
// returned when the object is durably stored; callers may persist it without
// further checks.
type Store interface {
	Upload(ctx context.Context, up Upload) (string, error)
}
