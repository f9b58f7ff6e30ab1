// Package media uploads avatars to IPFS and turns stored avatar references into fetchable URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// DefaultPinataURL is the Pinata pinFileToIPFS endpoint
const DefaultPinataURL = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// ErrPinFailed is returned when the pinning service rejects an upload or answers without a CID
var ErrPinFailed = errors.New("pin failed")

// Pinner stores a file on IPFS and returns its ipfs:// reference
//
//go:generate mockgen -source=pinner.go -destination=../mocks/pinner.go -package=mocks -mock_names=Pinner=MockPinner
type Pinner interface {
	// Pin uploads data under name and returns "ipfs://<cid>"
	Pin(ctx context.Context, name string, data []byte) (string, error)
}

// PinataConfig holds the Pinata credentials
type PinataConfig struct {
	URL string
	// JWT is the Pinata API token, with or without the "Bearer " prefix
	JWT string
}

type pinata struct {
	config PinataConfig
	http   adapter.HTTPClient
}

// NewPinataPinner creates a Pinner backed by Pinata
func NewPinataPinner(cfg PinataConfig, httpClient adapter.HTTPClient) Pinner {
	if cfg.URL == "" {
		cfg.URL = DefaultPinataURL
	}
	return &pinata{config: cfg, http: httpClient}
}

// Pin validates the file as an avatar and uploads it as multipart form data
func (p *pinata) Pin(ctx context.Context, name string, data []byte) (string, error) {
	auth := bearer(p.config.JWT)
	if auth == "" {
		return "", domain.NewValidationError("pinata_jwt", "is not configured")
	}
	mime, err := ValidateAvatar(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		name = "avatar" + mime.Extension()
	}

	body, contentType, err := multipartFile(name, mime.String(), data)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", auth)
	headers.Set("Content-Type", contentType)

	logger.InfoCtx(ctx, "Pinning avatar", zap.String("name", name), zap.Int("bytes", len(data)), zap.String("mime", mime.String()))

	resp, err := p.http.PostWithHeaders(ctx, p.config.URL, headers, body)
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: status %d %s", ErrPinFailed, statusErr.StatusCode, statusErr.Body)
		}
		return "", fmt.Errorf("%w: %w", ErrPinFailed, err)
	}

	cid := gjson.GetBytes(resp, "IpfsHash").String()
	if cid == "" {
		return "", fmt.Errorf("%w: response carries no IpfsHash", ErrPinFailed)
	}
	return "ipfs://" + cid, nil
}

func bearer(jwt string) string {
	jwt = strings.TrimSpace(jwt)
	if jwt == "" {
		return ""
	}
	if strings.HasPrefix(jwt, "Bearer ") {
		return jwt
	}
	return "Bearer " + jwt
}

func multipartFile(name, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
