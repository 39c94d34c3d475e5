package deploy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/useVaf/vaf-cli/pkg/api/client"
	"github.com/useVaf/vaf-cli/pkg/logger"
)

type fakeUploadAPI struct {
	target client.UploadTarget
	layer  client.Layer
}

func (f fakeUploadAPI) UploadTargetFor(ctx context.Context, projectID, envID, kind string) (client.UploadTarget, error) {
	return f.target, nil
}

func (f fakeUploadAPI) PublishLayer(ctx context.Context, projectID, envID string, input client.PublishLayerInput) (client.Layer, error) {
	return f.layer, nil
}

func writeArtifact(t *testing.T, content string) Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.zip")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return Artifact{Kind: ArtifactPackage, Location: path, SizeBytes: int64(len(content))}
}

func TestUploadStreamsBytesAndReturnsBackendKey(t *testing.T) {
	var gotBody string
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	api := fakeUploadAPI{target: client.UploadTarget{URL: server.URL, Key: "uploads/prj1/pkg.zip"}}
	u := NewUploader(api, logger.Discard())
	art := writeArtifact(t, "zip-bytes")

	receipt, err := u.Upload(context.Background(), "prj_1", "env_1", art)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if receipt.Key != "uploads/prj1/pkg.zip" {
		t.Fatalf("receipt must carry the backend key, got %q", receipt.Key)
	}
	if gotBody != "zip-bytes" {
		t.Fatalf("uploaded body = %q", gotBody)
	}
	if gotContentType != "application/zip" {
		t.Fatalf("content type = %q", gotContentType)
	}
}

func TestUploadRejectionPreservesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("signature expired"))
	}))
	defer server.Close()

	api := fakeUploadAPI{target: client.UploadTarget{URL: server.URL, Key: "k"}}
	u := NewUploader(api, logger.Discard())

	_, err := u.Upload(context.Background(), "prj_1", "env_1", writeArtifact(t, "x"))
	if err == nil || !strings.Contains(err.Error(), "signature expired") {
		t.Fatalf("transport rejection must preserve the server message, got %v", err)
	}
}

func TestUploadRefusesImages(t *testing.T) {
	u := NewUploader(fakeUploadAPI{}, logger.Discard())
	_, err := u.Upload(context.Background(), "prj_1", "env_1", Artifact{Kind: ArtifactImage, Location: "ref"})
	if err == nil {
		t.Fatalf("image artifacts never go through the upload path")
	}
}

func TestPublishLayerReturnsReference(t *testing.T) {
	api := fakeUploadAPI{layer: client.Layer{Reference: "arn:layer:7", Version: 7}}
	u := NewUploader(api, logger.Discard())

	layer, err := u.PublishLayer(context.Background(), "prj_1", "env_1", UploadReceipt{Key: "k"}, Artifact{Kind: ArtifactLayer, SizeBytes: 10})
	if err != nil {
		t.Fatalf("PublishLayer: %v", err)
	}
	if layer.Reference != "arn:layer:7" {
		t.Fatalf("unexpected layer: %+v", layer)
	}
}
