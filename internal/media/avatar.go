package media

import (
	"fmt"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
)

// AvatarMimeTypes are the accepted avatar formats
var AvatarMimeTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ValidateAvatar checks the size and sniffed format of an avatar file
func ValidateAvatar(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, domain.NewValidationError("avatar", "file is empty")
	}
	if len(data) > domain.AvatarMaxBytes {
		return nil, domain.NewValidationError("avatar", fmt.Sprintf("file exceeds %d bytes", domain.AvatarMaxBytes))
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), AvatarMimeTypes...) {
		return nil, domain.NewValidationError("avatar", fmt.Sprintf("unsupported type %s", mime.String()))
	}
	return mime, nil
}

// LoadAvatar reads an avatar file of at most maxBytes and validates its format.
// It returns the base name of the file alongside its content.
func LoadAvatar(fs adapter.FileSystem, path string, maxBytes int64) (string, []byte, error) {
	if maxBytes <= 0 || maxBytes > domain.AvatarMaxBytes {
		maxBytes = domain.AvatarMaxBytes
	}

	info, err := fs.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat avatar: %w", err)
	}
	if info.IsDir() {
		return "", nil, domain.NewValidationError("avatar", "path is a directory")
	}
	if info.Size() > maxBytes {
		return "", nil, domain.NewValidationError("avatar", fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if _, err := ValidateAvatar(data); err != nil {
		return "", nil, err
	}
	return filepath.Base(path), data, nil
}
