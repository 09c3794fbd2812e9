package media

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"floradex/internal/flora"
)

// DefaultMaxSize caps how large an acquired image may be. The identification
// backend rejects oversized uploads anyway; catching it locally avoids a
// pointless round trip.
const DefaultMaxSize = 10 << 20 // 10 MiB

// allowedMIMEs are the sniffable image types the backend accepts.
var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Manager acquires local images for upload. It stands in for the mobile
// app's camera/gallery surface: a raw path in, a validated flora.Image out.
// Validation failures are flora.ValidationError — no network is attempted.
type Manager struct {
	maxSize int64
}

// NewManager creates a Manager with the default size cap.
func NewManager() *Manager {
	return &Manager{maxSize: DefaultMaxSize}
}

// NewManagerWithLimit creates a Manager with a custom size cap.
func NewManagerWithLimit(maxSize int64) *Manager {
	return &Manager{maxSize: maxSize}
}

// Resolve validates a raw path and loads it as an image ready for upload.
func (m *Manager) Resolve(rawPath string) (*flora.Image, error) {
	if strings.TrimSpace(rawPath) == "" {
		return nil, &flora.ValidationError{Field: "image", Reason: "no image selected"}
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &flora.ValidationError{Field: "image", Reason: fmt.Sprintf("cannot read %s", rawPath)}
	}
	if info.IsDir() {
		return nil, &flora.ValidationError{Field: "image", Reason: fmt.Sprintf("%s is a directory", rawPath)}
	}
	if !info.Mode().IsRegular() {
		return nil, &flora.ValidationError{Field: "image", Reason: fmt.Sprintf("%s is not a regular file", rawPath)}
	}
	if info.Size() == 0 {
		return nil, &flora.ValidationError{Field: "image", Reason: "image file is empty"}
	}
	if info.Size() > m.maxSize {
		return nil, &flora.ValidationError{
			Field:  "image",
			Reason: fmt.Sprintf("image is %d bytes, limit is %d", info.Size(), m.maxSize),
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	mime, err := sniffMIME(absPath, data)
	if err != nil {
		return nil, err
	}

	return &flora.Image{Ref: absPath, MIME: mime, Data: data}, nil
}

// sniffMIME detects the image content type from the leading bytes. HEIC
// containers sniff as octet-stream, so they are admitted by extension.
func sniffMIME(path string, data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if allowedMIMEs[mime] {
		return mime, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return "image/heic", nil
	}

	return "", &flora.ValidationError{
		Field:  "image",
		Reason: fmt.Sprintf("unsupported image type %s", mime),
	}
}
