package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/useVaf/vaf-cli/internal/pack"
	"github.com/useVaf/vaf-cli/internal/runner"
)

// ArtifactKind distinguishes the deliverable shapes.
type ArtifactKind string

const (
	ArtifactPackage ArtifactKind = "package"
	ArtifactLayer   ArtifactKind = "layer"
	ArtifactImage   ArtifactKind = "image"
)

// Artifact is a built deliverable: a local archive or a registry image ref.
type Artifact struct {
	Kind      ArtifactKind
	Location  string
	SizeBytes int64
}

// Remove deletes the artifact's local file. Image artifacts have no local file.
func (a Artifact) Remove() error {
	if a.Kind == ArtifactImage || a.Location == "" {
		return nil
	}
	if err := os.Remove(a.Location); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

const (
	dependencyDir   = "node_modules"
	fallbackBuild   = "npm run build --if-present"
	primaryInstall  = "npm install --omit=dev"
	fallbackInstall = "npm install --production"
)

// ArtifactBuilder produces zip packages and dependency layers.
type ArtifactBuilder struct {
	runner *runner.Runner
	logger *slog.Logger
	tmpDir string
}

// NewArtifactBuilder returns a builder writing archives into tmpDir
// (os.TempDir when empty).
func NewArtifactBuilder(r *runner.Runner, logger *slog.Logger, tmpDir string) *ArtifactBuilder {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &ArtifactBuilder{runner: r, logger: logger, tmpDir: tmpDir}
}

// Build runs the declared build commands, installs production dependencies and
// packages cwd. For zip+layer it returns [layer, package]; for zip a single
// package. Build-command and install failures are warnings; packaging failures
// abort the attempt.
func (b *ArtifactBuilder) Build(ctx context.Context, cwd string, cfg Config, skipBuild bool) ([]Artifact, error) {
	if !skipBuild {
		b.runBuildCommands(ctx, cwd, cfg.BuildCommands)
	}
	b.installDependencies(ctx, cwd)

	patterns, err := pack.LoadPatterns(cwd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	switch cfg.Kind {
	case KindZipLayer:
		return b.buildLayered(cwd, patterns)
	case KindZip:
		return b.buildSingle(cwd, patterns)
	default:
		return nil, fmt.Errorf("artifact builder cannot handle runtime kind %q", cfg.Kind)
	}
}

func (b *ArtifactBuilder) runBuildCommands(ctx context.Context, cwd string, commands []string) {
	if len(commands) == 0 {
		commands = []string{fallbackBuild}
	}
	for _, command := range commands {
		if _, err := b.runner.Run(ctx, command, cwd); err != nil {
			// Non-fatal: idempotent steps (migrations and the like) are
			// expected to fail on repeat runs.
			b.logger.Warn("build command failed, continuing", "command", command, "error", err)
		}
	}
}

func (b *ArtifactBuilder) installDependencies(ctx context.Context, cwd string) {
	_, err := b.runner.Run(ctx, primaryInstall, cwd)
	if err == nil {
		return
	}
	b.logger.Warn("dependency install failed, trying fallback", "command", primaryInstall, "error", err)
	if _, err := b.runner.Run(ctx, fallbackInstall, cwd); err != nil {
		b.logger.Warn("fallback install failed, packaging the existing dependency tree", "command", fallbackInstall, "error", err)
	}
}

func (b *ArtifactBuilder) buildLayered(cwd string, patterns []string) ([]Artifact, error) {
	depsPath := filepath.Join(cwd, dependencyDir)
	info, err := os.Stat(depsPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDependenciesMissing, depsPath)
	}

	layerDest := b.archivePath(ArtifactLayer)
	layerSize, err := pack.Zip(depsPath, layerDest, dependencyDir, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}
	layer := Artifact{Kind: ArtifactLayer, Location: layerDest, SizeBytes: layerSize}

	// The thin package never carries the dependency directory, whatever the
	// ignore-file says.
	excludes := append(append([]string(nil), patterns...), dependencyDir)
	pkgDest := b.archivePath(ArtifactPackage)
	pkgSize, err := pack.Zip(cwd, pkgDest, "", excludes)
	if err != nil {
		_ = layer.Remove()
		return nil, fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}
	pkg := Artifact{Kind: ArtifactPackage, Location: pkgDest, SizeBytes: pkgSize}

	b.logger.Info("built layered package", "layer_bytes", layerSize, "package_bytes", pkgSize)
	return []Artifact{layer, pkg}, nil
}

func (b *ArtifactBuilder) buildSingle(cwd string, patterns []string) ([]Artifact, error) {
	// Dependencies must be bundled, so drop any dependency-directory pattern
	// the ignore-file declares.
	excludes := make([]string, 0, len(patterns))
	for _, p := range patterns {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(p, "/**"), "/")
		if trimmed == dependencyDir {
			continue
		}
		excludes = append(excludes, p)
	}

	dest := b.archivePath(ArtifactPackage)
	size, err := pack.Zip(cwd, dest, "", excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}
	b.logger.Info("built package", "package_bytes", size)
	return []Artifact{{Kind: ArtifactPackage, Location: dest, SizeBytes: size}}, nil
}

// archivePath yields a per-attempt unique destination so a debounced watch
// re-run can never collide with a previous attempt's cleanup.
func (b *ArtifactBuilder) archivePath(kind ArtifactKind) string {
	name := fmt.Sprintf("vaf-%s-%d-%s.zip", kind, time.Now().UnixMilli(), uuid.NewString()[:8])
	return filepath.Join(b.tmpDir, name)
}
