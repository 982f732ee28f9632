// Package storage keeps recipe images on the local disk or in an S3 bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidImage is returned for a payload that is not an allowed image
// data URI.
var ErrInvalidImage = errors.New("invalid image")

// ImagePrefix is the key prefix of every stored recipe image.
const ImagePrefix = "recipes/images/"

// AllowImage lists the accepted MIME types and their file extensions.
var AllowImage = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Data        []byte
}

// Key returns a fresh random object key for the image.
func (img *Image) Key() string {
	return ImagePrefix + uuid.NewString() + AllowImage[img.ContentType]
}

// ImageStore saves images and returns the public URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
	Ping(ctx context.Context) error
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>". The payload
// must really be of the declared type.
func DecodeDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidImage
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return nil, ErrInvalidImage
	}
	contentType = strings.ToLower(contentType)
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	if _, allowed := AllowImage[contentType]; !allowed {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if !mimetype.Detect(data).Is(contentType) {
		return nil, ErrInvalidImage
	}
	return &Image{ContentType: contentType, Data: data}, nil
}
