package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/useVaf/vaf-cli/internal/docker"
	"github.com/useVaf/vaf-cli/internal/runner"
	"github.com/useVaf/vaf-cli/pkg/api/client"
)

type registryConfigProvider interface {
	GetRegistryConfig(ctx context.Context, projectID, envID string) (client.RegistryConfig, error)
}

// ImageBackend is the container engine surface the image builder needs.
type ImageBackend interface {
	BuildImage(ctx context.Context, dir, dockerfile, tag string, onOutput docker.OutputCallback) error
	TagImage(ctx context.Context, source, target string) error
	PushImage(ctx context.Context, ref, username, password string, onOutput docker.OutputCallback) error
}

// ImageBuilder builds and pushes container images for container releases.
// Every step failure is fatal; there is no partial-success state.
type ImageBuilder struct {
	api    registryConfigProvider
	engine ImageBackend
	runner *runner.Runner
	logger *slog.Logger
}

// NewImageBuilder wires an ImageBuilder.
func NewImageBuilder(api registryConfigProvider, engine ImageBackend, r *runner.Runner, logger *slog.Logger) *ImageBuilder {
	return &ImageBuilder{api: api, engine: engine, runner: r, logger: logger}
}

// ResolveDockerfile picks the Dockerfile by priority: explicit override path,
// config-declared path, {environment}.Dockerfile, then ./Dockerfile. A tier
// whose file does not exist falls through to the next one.
func ResolveDockerfile(cwd, override, declared, environment string) (string, error) {
	candidates := []string{}
	if strings.TrimSpace(override) != "" {
		candidates = append(candidates, override)
	}
	if strings.TrimSpace(declared) != "" {
		candidates = append(candidates, declared)
	}
	candidates = append(candidates, environment+".Dockerfile", "Dockerfile")

	for _, candidate := range candidates {
		path := candidate
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, candidate)
		}
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("check dockerfile %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w (checked override, vaf.yaml, %s.Dockerfile, Dockerfile)", ErrDockerfileNotFound, environment)
}

// Build produces a pushed image artifact for the environment's registry.
func (b *ImageBuilder) Build(ctx context.Context, cwd string, cfg Config, env client.Environment) (Artifact, error) {
	dockerfile, err := ResolveDockerfile(cwd, cfg.DockerfileOverride, cfg.DockerfileDeclared, env.Name)
	if err != nil {
		return Artifact{}, err
	}
	relDockerfile, err := filepath.Rel(cwd, dockerfile)
	if err != nil || strings.HasPrefix(relDockerfile, "..") {
		return Artifact{}, fmt.Errorf("dockerfile %s is outside the build context %s", dockerfile, cwd)
	}

	registry, err := b.api.GetRegistryConfig(ctx, cfg.ProjectID, env.ID)
	if err != nil {
		return Artifact{}, fmt.Errorf("fetch registry configuration: %w", err)
	}
	if registry.RepositoryURI == "" {
		return Artifact{}, fmt.Errorf("registry configuration has no repository uri")
	}

	if strings.TrimSpace(registry.LoginCommand) != "" {
		if _, err := b.runner.Run(ctx, registry.LoginCommand, cwd); err != nil {
			return Artifact{}, fmt.Errorf("registry login: %w", err)
		}
	}

	localTag := fmt.Sprintf("vaf-build:%s", cfg.ImageTag)
	ref := fmt.Sprintf("%s:%s", registry.RepositoryURI, cfg.ImageTag)

	b.logger.Info("building container image", "dockerfile", relDockerfile, "platform", docker.TargetPlatform, "tag", ref)
	onOutput := func(line string) { b.logger.Debug("docker", "line", line) }

	if err := b.engine.BuildImage(ctx, cwd, filepath.ToSlash(relDockerfile), localTag, onOutput); err != nil {
		return Artifact{}, fmt.Errorf("build image: %w", err)
	}
	if err := b.engine.TagImage(ctx, localTag, ref); err != nil {
		return Artifact{}, fmt.Errorf("tag image: %w", err)
	}
	if err := b.engine.PushImage(ctx, ref, registry.Username, registry.Password, onOutput); err != nil {
		return Artifact{}, fmt.Errorf("push image: %w", err)
	}

	b.logger.Info("pushed container image", "ref", ref)
	return Artifact{Kind: ArtifactImage, Location: ref}, nil
}
