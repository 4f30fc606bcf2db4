package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultUploadBase = "https://upload.uploadcare.com"
	defaultCDNBase    = "https://ucarecdn.com"
)

// UploadcareClient talks to the Uploadcare direct-upload API. Failures are
// terminal for the attempt; retry policy belongs to the caller.
type UploadcareClient struct {
	httpClient *http.Client
	uploadBase string
	cdnBase    string
	publicKey  string
	logger     *zap.Logger
}

type UploadcareOption func(*UploadcareClient)

func WithBaseURLs(uploadBase, cdnBase string) UploadcareOption {
	return func(c *UploadcareClient) {
		c.uploadBase = uploadBase
		c.cdnBase = cdnBase
	}
}

func WithHTTPClient(hc *http.Client) UploadcareOption {
	return func(c *UploadcareClient) {
		c.httpClient = hc
	}
}

func NewUploadcareClient(publicKey string, opts ...UploadcareOption) *UploadcareClient {
	c := &UploadcareClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		uploadBase: defaultUploadBase,
		cdnBase:    defaultCDNBase,
		publicKey:  publicKey,
		logger:     zap.L().Named("evidence.uploadcare"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *UploadcareClient) Upload(ctx context.Context, up Upload) (string, error) {
	if up.Content == nil {
		return "", fmt.Errorf("empty upload payload")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("UPLOADCARE_STORE", "1"); err != nil {
		return "", err
	}
	if err := writer.WriteField("UPLOADCARE_PUB_KEY", c.publicKey); err != nil {
		return "", err
	}

	part, err := writer.CreateFormFile("file", up.FileName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadBase+"/base/", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("evidence upload request failed", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("evidence upload rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("evidence store returned status %d", resp.StatusCode)
	}

	var result struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.File == "" {
		return "", fmt.Errorf("evidence store response missing file id")
	}

	return fmt.Sprintf("%s/%s/", c.cdnBase, result.File), nil
}
