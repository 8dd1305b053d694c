package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/repository/storage"
)

const (
	MaxReceiptSize  = 5 * 1024 * 1024 // 5MB
	MaxReceiptWidth = 1200
	JPEGQuality     = 85
	ReceiptURLTTL   = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrReceiptInvalidFormat        = errors.New("invalid format. Supported: JPEG, PNG")
	ErrReceiptInvalidData          = errors.New("invalid image data")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReceiptService normalizes receipt photos and stores them with the external
// storage collaborator. The ledger itself only ever sees the opaque object
// path this service returns.
type ReceiptService struct {
	storage storage.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository) *ReceiptService {
	return &ReceiptService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates and normalizes a receipt photo, uploads it, and returns
// the object path to attach to the transaction.
func (s *ReceiptService) Upload(ctx context.Context, storeID int32, transactionID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	// Phone photos are large; downscale before storing.
	if img.Bounds().Dx() > MaxReceiptWidth {
		img = imaging.Resize(img, MaxReceiptWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	objectPath := fmt.Sprintf("receipts/%d/%d/%s.jpg", storeID, transactionID, uuid.New().String())
	return s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
}

// Delete removes the stored receipt photo. Best effort on detach paths;
// callers decide whether a failure matters.
func (s *ReceiptService) Delete(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}
	return s.storage.Delete(ctx, objectPath)
}

// PresignURL returns a short-lived GET URL for a stored receipt.
func (s *ReceiptService) PresignURL(ctx context.Context, objectPath string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, objectPath, ReceiptURLTTL)
}

// validateAndDecode validates the photo and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrReceiptInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrReceiptInvalidData
	}
	return img, nil
}
