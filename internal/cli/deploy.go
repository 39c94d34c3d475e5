package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/internal/deploy"
	"github.com/useVaf/vaf-cli/internal/docker"
	"github.com/useVaf/vaf-cli/internal/runner"
)

var (
	deployEnv        string
	deployProject    string
	deployRuntime    string
	deployMemory     int
	deployTimeout    int
	deployHandler    string
	deployDatabase   string
	deployCache      string
	deployStorage    string
	deployDockerfile string
	deployImageTag   string
	deploySkipBuild  bool
	deployNoLayers   bool
	deployWatch      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [environment]",
	Short: "Build and release the current directory",
	Long: `Deploy resolves configuration from vaf.yaml and flags, packages the
function (or builds a container image), uploads the artifacts and releases
them, then polls until the release settles.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		environment := deployEnv
		if len(args) == 1 {
			environment = args[0]
		}
		if environment == "" {
			return errors.New("an environment is required: vaf deploy <environment>")
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}

		api, err := newClient()
		if err != nil {
			return err
		}

		// The engine is optional: zip deploys work without a container
		// engine, container deploys fail with a clear error.
		var engine deploy.ImageBackend
		if dockerClient, err := docker.New(""); err == nil {
			engine = dockerClient
			defer dockerClient.Close()
		} else {
			log.Debug("container engine unavailable", "error", err)
		}

		opts := deploy.Options{
			Dir:         cwd,
			Environment: environment,
			Overrides:   collectOverrides(cmd),
			SkipBuild:   deploySkipBuild,
		}
		orch := deploy.NewOrchestrator(api, engine, runner.New(log), log, cmd.OutOrStdout())
		if deployWatch {
			return orch.Watch(cmd.Context(), opts)
		}
		return orch.Deploy(cmd.Context(), opts)
	},
}

// collectOverrides maps only the flags the user actually set, leaving the
// rest nil so vaf.yaml values keep their precedence.
func collectOverrides(cmd *cobra.Command) deploy.Overrides {
	o := deploy.Overrides{ProjectID: deployProject}
	flags := cmd.Flags()
	if flags.Changed("runtime") {
		o.Runtime = &deployRuntime
	}
	if flags.Changed("memory") {
		o.MemoryMB = &deployMemory
	}
	if flags.Changed("timeout") {
		o.TimeoutSeconds = &deployTimeout
	}
	if flags.Changed("handler") {
		o.Handler = &deployHandler
	}
	if flags.Changed("database") {
		o.Database = &deployDatabase
	}
	if flags.Changed("cache") {
		o.Cache = &deployCache
	}
	if flags.Changed("storage") {
		o.Storage = &deployStorage
	}
	if flags.Changed("dockerfile") {
		o.Dockerfile = &deployDockerfile
	}
	if flags.Changed("image-tag") {
		o.ImageTag = &deployImageTag
	}
	if deployNoLayers {
		useLayers := false
		o.UseLayers = &useLayers
	}
	return o
}

func init() {
	f := deployCmd.Flags()
	f.StringVar(&deployEnv, "env", "", "target environment name or id")
	f.StringVar(&deployProject, "project", "", "project id (overrides vaf.yaml)")
	f.StringVar(&deployRuntime, "runtime", "", "function runtime, or \"container\" for image releases")
	f.IntVar(&deployMemory, "memory", 0, "memory limit in MB")
	f.IntVar(&deployTimeout, "timeout", 0, "execution timeout in seconds")
	f.StringVar(&deployHandler, "handler", "", "function entry point")
	f.StringVar(&deployDatabase, "database", "", "managed database to attach")
	f.StringVar(&deployCache, "cache", "", "managed cache to attach")
	f.StringVar(&deployStorage, "storage", "", "storage bucket to attach")
	f.StringVar(&deployDockerfile, "dockerfile", "", "Dockerfile path for container releases")
	f.StringVar(&deployImageTag, "image-tag", "", "image tag for container releases")
	f.BoolVar(&deploySkipBuild, "skip-build", false, "skip build commands, package as-is")
	f.BoolVar(&deployNoLayers, "no-layers", false, "bundle dependencies into the package instead of a layer")
	f.BoolVar(&deployWatch, "watch", false, "redeploy on file changes until interrupted")
}
