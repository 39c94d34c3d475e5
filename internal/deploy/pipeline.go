package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/useVaf/vaf-cli/internal/project"
	"github.com/useVaf/vaf-cli/internal/runner"
	"github.com/useVaf/vaf-cli/pkg/api/client"
)

// API is the backend surface one deploy attempt consumes.
type API interface {
	ListEnvironments(ctx context.Context, projectID string) ([]client.Environment, error)
	UploadTargetFor(ctx context.Context, projectID, envID, kind string) (client.UploadTarget, error)
	PublishLayer(ctx context.Context, projectID, envID string, input client.PublishLayerInput) (client.Layer, error)
	GetRegistryConfig(ctx context.Context, projectID, envID string) (client.RegistryConfig, error)
	CreateRelease(ctx context.Context, projectID, envID string, input client.ReleaseInput) (client.Release, error)
	GetRelease(ctx context.Context, projectID, envID, releaseID string) (client.Release, error)
}

// Options parameterizes one deploy attempt.
type Options struct {
	Dir         string
	Environment string
	Overrides   Overrides
	SkipBuild   bool
}

// Orchestrator runs the deploy pipeline: resolve, build, upload, trigger,
// poll. Each attempt is a strictly ordered sequence; nothing inside one
// attempt runs concurrently.
type Orchestrator struct {
	api    API
	engine ImageBackend
	runner *runner.Runner
	logger *slog.Logger
	out    io.Writer
	tmpDir string
}

// NewOrchestrator wires an Orchestrator. engine may be nil when the host has
// no container engine; only container releases need it.
func NewOrchestrator(api API, engine ImageBackend, r *runner.Runner, logger *slog.Logger, out io.Writer) *Orchestrator {
	return &Orchestrator{api: api, engine: engine, runner: r, logger: logger, out: out}
}

// WithTempDir overrides where artifact archives are written. Used in tests.
func (o *Orchestrator) WithTempDir(dir string) *Orchestrator {
	o.tmpDir = dir
	return o
}

// Deploy runs one complete attempt. The project file is re-read on every call
// so a watch-triggered re-run never acts on stale configuration.
func (o *Orchestrator) Deploy(ctx context.Context, opts Options) error {
	file, err := project.Load(opts.Dir)
	if err != nil {
		return err
	}
	cfg, err := Resolve(file, opts.Environment, opts.Overrides)
	if err != nil {
		return err
	}
	env, err := ResolveEnvironment(ctx, o.api, cfg.ProjectID, cfg.Environment)
	if err != nil {
		return err
	}
	o.logger.Info("deploying", "project_id", cfg.ProjectID, "environment", env.Name, "kind", cfg.Kind)

	var refs ArtifactRefs
	if cfg.Kind == KindContainer {
		if o.engine == nil {
			return fmt.Errorf("container runtime selected but no container engine is available")
		}
		image, err := NewImageBuilder(o.api, o.engine, o.runner, o.logger).Build(ctx, opts.Dir, cfg, env)
		if err != nil {
			return err
		}
		refs.ImageRef = image.Location
	} else {
		builder := NewArtifactBuilder(o.runner, o.logger, o.tmpDir)
		artifacts, err := builder.Build(ctx, opts.Dir, cfg, opts.SkipBuild)
		// Local archives never persist past one attempt, whatever happens.
		defer func() {
			for _, a := range artifacts {
				if rerr := a.Remove(); rerr != nil {
					o.logger.Warn("artifact cleanup failed", "path", a.Location, "error", rerr)
				}
			}
		}()
		if err != nil {
			return err
		}

		uploader := NewUploader(o.api, o.logger)
		for _, art := range artifacts {
			receipt, err := uploader.Upload(ctx, cfg.ProjectID, env.ID, art)
			if err != nil {
				return err
			}
			if art.Kind == ArtifactLayer {
				layer, err := uploader.PublishLayer(ctx, cfg.ProjectID, env.ID, receipt, art)
				if err != nil {
					return err
				}
				refs.LayerRefs = append(refs.LayerRefs, layer.Reference)
			} else {
				refs.PackageKey = receipt.Key
			}
		}
	}

	release, err := NewReleaseTrigger(o.api, o.logger).Trigger(ctx, cfg.ProjectID, env.ID, cfg, refs)
	if err != nil {
		return err
	}
	if release.ID == "" {
		o.logger.Info("deployment completed", "environment", env.Name)
		return nil
	}

	final, err := NewStatusPoller(o.api, o.logger, o.out).Poll(ctx, cfg.ProjectID, env.ID, release.ID)
	if err != nil {
		return err
	}
	switch final.Status {
	case StatusSuccess:
		o.logger.Info("deployment succeeded", "release_id", final.ID, "url", final.URL)
		if final.URL != "" {
			fmt.Fprintln(o.out, final.URL)
		}
		return nil
	case StatusFailed:
		return ReleaseFailedError{ReleaseID: final.ID, Detail: final.Error, Logs: final.Logs}
	default:
		// Poll budget exhausted; the poller already warned.
		return nil
	}
}

// Watch wraps Deploy as a repeatable unit of work under file-change triggers.
func (o *Orchestrator) Watch(ctx context.Context, opts Options) error {
	scheduler := NewWatchScheduler(o.logger)
	return scheduler.Run(ctx, opts.Dir, func() {
		if err := o.Deploy(ctx, opts); err != nil {
			o.logger.Error("deploy attempt failed", "error", err)
		}
	})
}
