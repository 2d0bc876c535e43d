// Package imagehost uploads images to the remote asset host and returns the
// secure URL they are served from.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"time"

	"tvcatalog/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotConfigured is returned by uploads when no upload URL is set.
var ErrNotConfigured = errors.New("image host upload url not configured")

// Image is the asset host's description of an uploaded image.
type Image struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Client posts multipart uploads to the asset host
type Client struct {
	client    *http.Client
	uploadURL string
	apiKey    string
	folder    string
	newID     func() string
}

// New creates a client with the configured timeout (30s when unset)
func New(cfg config.ImagesCfg) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		uploadURL: cfg.UploadURL,
		apiKey:    cfg.APIKey,
		folder:    cfg.Folder,
		newID:     func() string { return uuid.NewString() },
	}
}

// UploadFile uploads a file received in a multipart request.
func (c *Client) UploadFile(ctx context.Context, fh *multipart.FileHeader) (*Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()
	return c.Upload(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
}

// Upload streams body to the asset host under a fresh public id.
func (c *Client) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*Image, error) {
	if c.uploadURL == "" {
		return nil, ErrNotConfigured
	}

	publicID := c.newID()
	if c.folder != "" {
		publicID = path.Join(c.folder, publicID)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("public_id", publicID); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", "tvcatalog/imagehost")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log.Debug().
		Str("url", c.uploadURL).
		Str("public_id", publicID).
		Int("size", buf.Len()).
		Msg("uploading image")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Str("url", c.uploadURL).Err(err).Msg("image upload failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("body_length", len(raw)).
		Msg("received image host response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image host responded %d", resp.StatusCode)
	}

	var img Image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, fmt.Errorf("decode image host response: %w", err)
	}
	if img.SecureURL == "" {
		return nil, errors.New("no secure_url in image host response")
	}
	if img.PublicID == "" {
		img.PublicID = publicID
	}
	return &img, nil
}
