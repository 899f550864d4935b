package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	_ "golang.org/x/image/webp" // decode only
)

const (
	ListingPhotoBucket = "listing-photos"
	ProfilePhotoBucket = "profile-photos"

	photoCanvasSize = 400
	jpegQuality     = 85
)

// canonicalFormats maps the allowed upload extensions to the format the
// stored copy is re-encoded in. webp has no encoder here so it lands as png;
// jfif is a jpeg container.
var canonicalFormats = map[string]string{
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"jfif": "jpeg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tiff",
	"webp": "png",
}

var formatExtensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tiff",
}

// MediaService validates and normalizes uploaded photos, then persists them
// to object storage. Keys are generated identifiers, never client filenames,
// so concurrent uploads of same-named files cannot collide.
type MediaService interface {
	StoreListingPhoto(ctx context.Context, listingID uuid.UUID, filename string, reader io.Reader) (string, error)
	StoreProfilePhoto(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader) (string, error)
	ListingPhotoURL(objectKey string, expiry time.Duration) (string, error)
	ProfilePhotoURL(objectKey string, expiry time.Duration) (string, error)
	DeleteListingPhoto(ctx context.Context, objectKey string) error
	DeleteProfilePhoto(ctx context.Context, objectKey string) error
}

type mediaService struct {
	store MinioService
}

func NewMediaService(store MinioService) MediaService {
	return &mediaService{store: store}
}

func (m *mediaService) StoreListingPhoto(ctx context.Context, listingID uuid.UUID, filename string, reader io.Reader) (string, error) {
	return m.storePhoto(ctx, ListingPhotoBucket, listingID, filename, reader)
}

func (m *mediaService) StoreProfilePhoto(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader) (string, error) {
	return m.storePhoto(ctx, ProfilePhotoBucket, userID, filename, reader)
}

func (m *mediaService) storePhoto(ctx context.Context, bucket string, ownerID uuid.UUID, filename string, reader io.Reader) (string, error) {
	data, format, err := processPhoto(filename, reader)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s.%s", ownerID.String(), uuid.NewString(), formatExtensions[format])

	if err := m.store.EnsureBucketExists(ctx, bucket); err != nil {
		return "", fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	if err := m.store.UploadImage(ctx, bucket, objectKey, bytes.NewReader(data), int64(len(data)), "image/"+format); err != nil {
		return "", fmt.Errorf("failed to upload image to storage: %w", err)
	}
	return objectKey, nil
}

func (m *mediaService) ListingPhotoURL(objectKey string, expiry time.Duration) (string, error) {
	return m.store.GetPresignedURL(ListingPhotoBucket, objectKey, expiry)
}

func (m *mediaService) ProfilePhotoURL(objectKey string, expiry time.Duration) (string, error) {
	return m.store.GetPresignedURL(ProfilePhotoBucket, objectKey, expiry)
}

func (m *mediaService) DeleteListingPhoto(ctx context.Context, objectKey string) error {
	return m.store.DeleteImage(ctx, ListingPhotoBucket, objectKey)
}

func (m *mediaService) DeleteProfilePhoto(ctx context.Context, objectKey string) error {
	return m.store.DeleteImage(ctx, ProfilePhotoBucket, objectKey)
}

// processPhoto runs the ingest pipeline: allow-list the extension, decode,
// scale onto the fixed 400x400 canvas, flatten transparency/palette modes to
// opaque color, re-encode to the extension's canonical format. Unknown
// extensions are rejected before anything is read or written.
func processPhoto(filename string, reader io.Reader) ([]byte, string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	format, ok := canonicalFormats[ext]
	if !ok {
		return nil, "", ErrUnsupportedFormat
	}

	src, srcFormat, err := image.Decode(reader)
	if err != nil {
		return nil, "", ErrCorruptImage
	}
	log.Printf("photo ingest: %s decoded as %s, re-encoding as %s", filename, srcFormat, format)

	scaled := resize.Resize(photoCanvasSize, photoCanvasSize, src, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, photoCanvasSize, photoCanvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), scaled, image.Point{}, draw.Over)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, canvas)
	case "gif":
		err = gif.Encode(&buf, canvas, nil)
	case "bmp":
		err = bmp.Encode(&buf, canvas)
	case "tiff":
		err = tiff.Encode(&buf, canvas, nil)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to re-encode image: %w", err)
	}

	return buf.Bytes(), format, nil
}
