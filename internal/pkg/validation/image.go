package validation

import (
	"fmt"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest accepted upload, 10MB
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks an uploaded file by sniffing its content. The
// declared Content-Type header is not trusted.
func ValidateImage(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	if fileHeader.Size > MaxImageSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", int64(MaxImageSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	if !allowedImageTypes[mtype.String()] {
		return "", fmt.Errorf("unsupported image type %s", mtype.String())
	}

	return mtype.String(), nil
}
