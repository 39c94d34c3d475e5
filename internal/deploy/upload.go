package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/useVaf/vaf-cli/pkg/api/client"
)

type uploadTargetProvider interface {
	UploadTargetFor(ctx context.Context, projectID, envID, kind string) (client.UploadTarget, error)
	PublishLayer(ctx context.Context, projectID, envID string, input client.PublishLayerInput) (client.Layer, error)
}

// UploadReceipt carries the backend-assigned storage key for an uploaded
// artifact. The key is always the backend's, never a client-side invention.
type UploadReceipt struct {
	Key string
}

// Uploader streams package and layer archives to pre-signed transfer targets.
type Uploader struct {
	api        uploadTargetProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewUploader returns an Uploader with a transfer-sized HTTP timeout.
func NewUploader(api uploadTargetProvider, logger *slog.Logger) *Uploader {
	return &Uploader{
		api:        api,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     logger,
	}
}

// WithHTTPClient overrides the transfer client. Used in tests.
func (u *Uploader) WithHTTPClient(h *http.Client) *Uploader {
	if h != nil {
		u.httpClient = h
	}
	return u
}

// Upload requests one pre-signed target for the artifact and streams its bytes
// there. Upload failure is fatal to the attempt; the transport error message is
// preserved.
func (u *Uploader) Upload(ctx context.Context, projectID, envID string, art Artifact) (UploadReceipt, error) {
	if art.Kind == ArtifactImage {
		return UploadReceipt{}, fmt.Errorf("container images are pushed to the registry, not uploaded")
	}
	target, err := u.api.UploadTargetFor(ctx, projectID, envID, string(art.Kind))
	if err != nil {
		return UploadReceipt{}, fmt.Errorf("request upload target: %w", err)
	}
	if target.URL == "" || target.Key == "" {
		return UploadReceipt{}, fmt.Errorf("upload target response missing url or key")
	}

	f, err := os.Open(art.Location)
	if err != nil {
		return UploadReceipt{}, fmt.Errorf("open artifact %s: %w", art.Location, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, f)
	if err != nil {
		return UploadReceipt{}, fmt.Errorf("create upload request: %w", err)
	}
	contentType := target.ContentType
	if contentType == "" {
		contentType = "application/zip"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = art.SizeBytes

	u.logger.Info("uploading artifact", "kind", art.Kind, "bytes", art.SizeBytes)
	resp, err := u.httpClient.Do(req)
	if err != nil {
		if uerr, ok := err.(*url.Error); ok {
			return UploadReceipt{}, fmt.Errorf("upload %s: %v", art.Kind, uerr.Err)
		}
		return UploadReceipt{}, fmt.Errorf("upload %s: %w", art.Kind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return UploadReceipt{}, fmt.Errorf("upload %s rejected (%d): %s", art.Kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return UploadReceipt{Key: target.Key}, nil
}

// PublishLayer registers an uploaded layer and returns its reference. The
// reference must exist before release triggering.
func (u *Uploader) PublishLayer(ctx context.Context, projectID, envID string, receipt UploadReceipt, art Artifact) (client.Layer, error) {
	layer, err := u.api.PublishLayer(ctx, projectID, envID, client.PublishLayerInput{
		Key:       receipt.Key,
		SizeBytes: art.SizeBytes,
	})
	if err != nil {
		return client.Layer{}, fmt.Errorf("publish layer: %w", err)
	}
	if layer.Reference == "" {
		return client.Layer{}, fmt.Errorf("layer publish response missing reference")
	}
	u.logger.Info("published layer", "reference", layer.Reference, "version", layer.Version)
	return layer, nil
}
