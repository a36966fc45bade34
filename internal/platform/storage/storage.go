// Package storage keeps uploaded binary assets behind a small interface so the
// record store only ever holds object keys.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage is returned when uploaded bytes are not a recognised image.
var ErrNotImage = errors.New("storage: content is not an image")

// Store persists objects under opaque keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image describes a sniffed upload ready to be stored.
type Image struct {
	MIME      string
	Extension string
	Data      []byte
}

// DetectImage sniffs data and accepts it only when it is an image.
func DetectImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNotImage
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, ErrNotImage
	}
	return Image{MIME: mt.String(), Extension: mt.Extension(), Data: data}, nil
}

// NewKey builds a collision free key under prefix, keeping the sniffed extension.
func NewKey(prefix, extension string) string {
	prefix = strings.Trim(prefix, "/")
	name := uuid.NewString() + extension
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
