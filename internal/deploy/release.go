package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/useVaf/vaf-cli/pkg/api/client"
)

type releaseAPI interface {
	CreateRelease(ctx context.Context, projectID, envID string, input client.ReleaseInput) (client.Release, error)
}

// ArtifactRefs carries the references a release payload may include.
type ArtifactRefs struct {
	PackageKey string
	ImageRef   string
	LayerRefs  []string
}

// BuildReleaseInput assembles the release payload from the resolved config and
// the artifact references. Optional references are included only when
// non-empty after trimming, so the backend never sees explicit empty strings.
func BuildReleaseInput(cfg Config, refs ArtifactRefs) client.ReleaseInput {
	input := client.ReleaseInput{
		Runtime:        cfg.Runtime,
		MemoryMB:       cfg.MemoryMB,
		TimeoutSeconds: cfg.TimeoutSeconds,
		Database:       strings.TrimSpace(cfg.Database),
		Cache:          strings.TrimSpace(cfg.Cache),
		Storage:        strings.TrimSpace(cfg.Storage),
	}
	if cfg.Kind == KindContainer {
		input.Image = refs.ImageRef
	} else {
		input.Key = refs.PackageKey
		input.Handler = strings.TrimSpace(cfg.Handler)
	}
	for _, ref := range refs.LayerRefs {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			input.Layers = append(input.Layers, trimmed)
		}
	}
	return input
}

// ReleaseTrigger submits release payloads.
type ReleaseTrigger struct {
	api    releaseAPI
	logger *slog.Logger
}

// NewReleaseTrigger wires a ReleaseTrigger.
func NewReleaseTrigger(api releaseAPI, logger *slog.Logger) *ReleaseTrigger {
	return &ReleaseTrigger{api: api, logger: logger}
}

// Trigger submits the release and returns the backend's initial record.
func (t *ReleaseTrigger) Trigger(ctx context.Context, projectID, envID string, cfg Config, refs ArtifactRefs) (client.Release, error) {
	input := BuildReleaseInput(cfg, refs)
	release, err := t.api.CreateRelease(ctx, projectID, envID, input)
	if err != nil {
		return client.Release{}, fmt.Errorf("trigger release: %w", err)
	}
	if release.ID == "" {
		t.logger.Info("release accepted without an id; treating as completed")
	} else {
		t.logger.Info("release triggered", "release_id", release.ID)
	}
	return release, nil
}
