package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"skillhive/internal/config"
	"skillhive/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaUploadDir   = "uploads"
	DefaultMediaPrefix      = "/media"
	DefaultMediaMaxUploadMB = 10
	MediaMaxSize            = 1280
	WebPQuality             = 75
)

type UploadMediaInput struct {
	UserID      string
	Filename    string
	ContentType string
	Content     []byte
}

// StoredMedia describes an uploaded image after normalisation.
type StoredMedia struct {
	Hash   string `json:"hash"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

// MediaService turns image uploads into content-addressed WebP files under the
// upload dir.
type MediaService struct {
	uploadDir          string
	publicPrefix       string
	maxUploadSizeBytes int64
}

func NewMediaService(cfg *config.Config) *MediaService {
	uploadDir := DefaultMediaUploadDir
	prefix := DefaultMediaPrefix
	maxUploadSizeMB := DefaultMediaMaxUploadMB

	if cfg != nil {
		if cfg.MediaUploadDir != "" {
			uploadDir = cfg.MediaUploadDir
		}
		if cfg.MediaPublicPrefix != "" {
			prefix = cfg.MediaPublicPrefix
		}
		if cfg.MediaMaxUploadMB > 0 {
			maxUploadSizeMB = cfg.MediaMaxUploadMB
		}
	}

	return &MediaService{
		uploadDir:          uploadDir,
		publicPrefix:       strings.TrimRight(prefix, "/"),
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func (s *MediaService) UploadDir() string    { return s.uploadDir }
func (s *MediaService) PublicPrefix() string { return s.publicPrefix }

func (s *MediaService) Upload(_ context.Context, in UploadMediaInput) (*StoredMedia, error) {
	if in.UserID == "" {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	resized := resizeToFit(decoded, MediaMaxSize, MediaMaxSize)
	encoded, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := contentHash(in.UserID, encoded)
	rel := hash + ".webp"
	abs := filepath.Join(s.uploadDir, hash[:2], rel)
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		if err := writeBytesToFile(abs, encoded); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	b := resized.Bounds()
	return &StoredMedia{
		Hash:   hash,
		URL:    path.Join(s.publicPrefix, hash[:2], rel),
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  len(encoded),
	}, nil
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

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	if provided == detected {
		return true
	}
	return (provided == "image/jpg" && detected == "image/jpeg") || (provided == "image/jpeg" && detected == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func contentHash(userID string, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
