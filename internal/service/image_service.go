package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"strings"

	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/storage"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder so WebP uploads are identified and refused
)

const (
	DefaultImageMaxUploadSizeMB = 5
	MaxImageDimension           = 2048
	JPEGQuality                 = 85
)

// Image kinds name the key prefix an upload is stored under.
const (
	ImageKindPost    = "posts"
	ImageKindProfile = "profiles"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService validates uploaded images, shrinks oversized ones and hands
// them to the configured object store.
type ImageService struct {
	store              storage.Store
	maxUploadSizeBytes int64
}

func NewImageService(store storage.Store, maxUploadSizeMB int) *ImageService {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// MaxUploadBytes is the largest accepted upload.
func (s *ImageService) MaxUploadBytes() int64 {
	return s.maxUploadSizeBytes
}

// Store validates in and saves it under kind. It returns the stored reference.
func (s *ImageService) Store(ctx context.Context, kind string, in *Upload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	// The declared type and extension are ignored; only the bytes decide.
	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Only jpeg, jpg, png and gif images are allowed")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	mimeType := decodedFormatToMime(format)
	if mimeType == "" || mimeType != detected {
		return "", models.NewValidationError("Unsupported image format")
	}

	data := in.Content
	if format != "gif" && (cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension) {
		data, err = downscale(in.Content, format)
		if err != nil {
			return "", models.NewValidationError("Invalid image file")
		}
	}

	key := buildImageKey(kind, data, extensionFor(format))
	ref, err := s.store.Put(ctx, key, data, mimeType)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return ref, nil
}

// Remove deletes a previously stored image. Failures are logged, not returned.
func (s *ImageService) Remove(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete stored image",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}

func downscale(content []byte, format string) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	resized := resizeToFit(decoded, MaxImageDimension, MaxImageDimension)

	buf := bytes.NewBuffer(nil)
	switch format {
	case "png":
		err = png.Encode(buf, resized)
	default:
		err = jpeg.Encode(buf, resized, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return ""
	}
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// buildImageKey returns kind/<uuid>-<digest prefix>.<ext>.
func buildImageKey(kind string, content []byte, ext string) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%s/%s-%s.%s", kind, uuid.NewString(), hex.EncodeToString(sum[:6]), ext)
}
