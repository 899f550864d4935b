package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadImage(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteImage(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockMinioService) ListImageKeys(ctx context.Context, bucketName string) ([]string, error) {
	args := m.Called(ctx, bucketName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// translucentPNG renders a semi-transparent red square so flattening is
// observable in the stored copy.
func translucentPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreListingPhoto_RejectsUnknownExtension(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)

	_, err := svc.StoreListingPhoto(context.Background(), uuid.New(), "malware.exe", strings.NewReader("payload"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	store.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStoreListingPhoto_RejectsCorruptImage(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)

	_, err := svc.StoreListingPhoto(context.Background(), uuid.New(), "photo.png", strings.NewReader("not a png"))

	assert.ErrorIs(t, err, ErrCorruptImage)
	store.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStoreListingPhoto_NormalizesToOpaqueCanvas(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)
	listingID := uuid.New()

	var stored []byte
	store.On("EnsureBucketExists", mock.Anything, ListingPhotoBucket).Return(nil)
	store.On("UploadImage", mock.Anything, ListingPhotoBucket, mock.Anything, mock.Anything, mock.Anything, "image/png").
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			stored = data
		}).
		Return(nil)

	objectKey, err := svc.StoreListingPhoto(context.Background(), listingID, "pet.png", bytes.NewReader(translucentPNG(t, 800, 600)))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(objectKey, listingID.String()+"/"))
	assert.True(t, strings.HasSuffix(objectKey, ".png"))
	// Key is a generated identifier, not the client filename.
	assert.NotContains(t, objectKey, "pet")

	img, format, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, photoCanvasSize, img.Bounds().Dx())
	assert.Equal(t, photoCanvasSize, img.Bounds().Dy())

	// Transparency was flattened onto the white canvas.
	_, _, _, a := img.At(photoCanvasSize/2, photoCanvasSize/2).RGBA()
	assert.Equal(t, uint32(0xffff), a)

	store.AssertExpectations(t)
}

func TestStoreProfilePhoto_UsesProfileBucket(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)

	store.On("EnsureBucketExists", mock.Anything, ProfilePhotoBucket).Return(nil)
	store.On("UploadImage", mock.Anything, ProfilePhotoBucket, mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil)

	_, err := svc.StoreProfilePhoto(context.Background(), uuid.New(), "face.png", bytes.NewReader(translucentPNG(t, 100, 100)))

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestStoreListingPhoto_DistinctKeysForSameFilename(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)
	listingID := uuid.New()

	store.On("EnsureBucketExists", mock.Anything, ListingPhotoBucket).Return(nil)
	store.On("UploadImage", mock.Anything, ListingPhotoBucket, mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil)

	first, err := svc.StoreListingPhoto(context.Background(), listingID, "pet.png", bytes.NewReader(translucentPNG(t, 100, 100)))
	require.NoError(t, err)
	second, err := svc.StoreListingPhoto(context.Background(), listingID, "pet.png", bytes.NewReader(translucentPNG(t, 100, 100)))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeleteListingPhoto_TargetsListingBucket(t *testing.T) {
	store := &MockMinioService{}
	svc := NewMediaService(store)

	store.On("DeleteImage", mock.Anything, ListingPhotoBucket, "owner/key.png").Return(nil)

	assert.NoError(t, svc.DeleteListingPhoto(context.Background(), "owner/key.png"))
	store.AssertExpectations(t)
}
