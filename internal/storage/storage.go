// Package storage persists uploaded product images.
package storage

import (
	"context"
	"io"
)

// ImageStore saves an image under name and returns the path or URL clients
// should use to fetch it.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
