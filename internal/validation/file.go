package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNotAnImage = errors.New("Chỉ chấp nhận file hình ảnh (jpeg, jpg, png, gif, webp)")
	ErrFileEmpty  = errors.New("File rỗng")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	// BlogImageConstraints applies to post gallery uploads
	BlogImageConstraints = FileConstraints{
		AllowedMimeTypes:  imageMimeTypes,
		AllowedExtensions: imageExtensions,
		MaxSize:           5 << 20, // 5MB
	}

	// AvatarConstraints applies to profile pictures
	AvatarConstraints = FileConstraints{
		AllowedMimeTypes:  imageMimeTypes,
		AllowedExtensions: imageExtensions,
		MaxSize:           2 << 20, // 2MB
	}
)

// IsImageExtension reports whether name ends in one of the accepted image
// extensions (case-insensitive).
func IsImageExtension(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ValidateFile validates a file upload against one or more constraint sets
// and returns the MIME type sniffed from its content.
// If multiple constraints are provided, file must match at least one (OR logic)
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) (string, error) {
	if len(constraints) == 0 {
		return "", fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		mimeType, err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return mimeType, nil
		}
		lastErr = err
	}

	return "", lastErr
}

func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	// Size and extension first, before reading content
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", fmt.Errorf("File quá lớn. Kích thước tối đa: %dMB", maxMB)
	}
	if header.Size == 0 {
		return "", ErrFileEmpty
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return "", ErrNotAnImage
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Magic numbers cannot be faked by changing the Content-Type header
	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return "", ErrNotAnImage
	}

	return detectedType, nil
}
