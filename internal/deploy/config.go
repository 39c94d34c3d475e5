package deploy

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/useVaf/vaf-cli/internal/project"
)

// RuntimeKind selects which builder path a deploy attempt takes. Exactly one
// of the package paths or the container path runs per attempt.
type RuntimeKind string

const (
	KindZip       RuntimeKind = "zip"
	KindZipLayer  RuntimeKind = "zip+layer"
	KindContainer RuntimeKind = "container"
)

// ContainerRuntime is the literal runtime value selecting the container path.
const ContainerRuntime = "container"

// Built-in defaults, the lowest precedence tier.
const (
	DefaultRuntime        = "nodejs20"
	DefaultMemoryMB       = 512
	DefaultTimeoutSeconds = 30
	DefaultHandler        = "index.handler"
	DefaultImageTag       = "latest"
)

// Config is the effective, fully-resolved configuration for one deploy attempt.
type Config struct {
	ProjectID      string `validate:"required"`
	Environment    string `validate:"required"`
	Kind           RuntimeKind
	Runtime        string `validate:"required"`
	MemoryMB       int    `validate:"gt=0"`
	TimeoutSeconds int    `validate:"gt=0"`
	Handler        string
	Database       string
	Cache          string
	Storage        string
	BuildCommands  []string
	// Dockerfile candidates, kept as separate tiers because a path that does
	// not exist on disk falls through to the next tier (see ResolveDockerfile).
	DockerfileOverride string
	DockerfileDeclared string
	ImageTag           string
}

// Overrides carries per-invocation values. Pointer fields distinguish "flag
// not given" from an explicit zero.
type Overrides struct {
	ProjectID      string
	Runtime        *string
	MemoryMB       *int
	TimeoutSeconds *int
	Handler        *string
	Database       *string
	Cache          *string
	Storage        *string
	BuildCommands  []string
	Dockerfile     *string
	ImageTag       *string
	UseLayers      *bool
}

var validate = validator.New()

// Resolve merges the project file, the named environment's declared values and
// the per-invocation overrides into one Config. Precedence for every field is
// override > declared > default; build commands are taken wholesale from the
// winning tier, never merged element-wise. Resolve is pure: it touches neither
// the filesystem nor the network.
func Resolve(file *project.File, environment string, o Overrides) (Config, error) {
	projectID := o.ProjectID
	if projectID == "" && file != nil {
		projectID = file.ProjectID
	}
	if projectID == "" || environment == "" {
		return Config{}, ErrMissingIdentifier
	}

	var declared project.EnvironmentConfig
	if file != nil && len(file.Environments) > 0 {
		var ok bool
		declared, ok = file.Environment(environment)
		if !ok {
			return Config{}, UnknownEnvironmentError{Name: environment, Declared: file.EnvironmentNames()}
		}
	}

	cfg := Config{
		ProjectID:      projectID,
		Environment:    environment,
		Runtime:        stringValue(o.Runtime, declared.Runtime, DefaultRuntime),
		MemoryMB:       intValue(o.MemoryMB, declared.MemoryMB, DefaultMemoryMB),
		TimeoutSeconds: intValue(o.TimeoutSeconds, declared.TimeoutSeconds, DefaultTimeoutSeconds),
		Handler:        stringValue(o.Handler, declared.Handler, DefaultHandler),
		Database:       stringValue(o.Database, declared.Database, ""),
		Cache:          stringValue(o.Cache, declared.Cache, ""),
		Storage:        stringValue(o.Storage, declared.Storage, ""),
		ImageTag:       stringValue(o.ImageTag, declared.ImageTag, DefaultImageTag),
	}

	switch {
	case len(o.BuildCommands) > 0:
		cfg.BuildCommands = append([]string(nil), o.BuildCommands...)
	case declared.BuildCommands != nil:
		cfg.BuildCommands = append([]string(nil), declared.BuildCommands...)
	}

	if o.Dockerfile != nil {
		cfg.DockerfileOverride = *o.Dockerfile
	}
	if declared.Dockerfile != nil {
		cfg.DockerfileDeclared = *declared.Dockerfile
	}

	if cfg.Runtime == ContainerRuntime {
		cfg.Kind = KindContainer
	} else if boolValue(o.UseLayers, declared.UseLayers, true) {
		cfg.Kind = KindZipLayer
	} else {
		cfg.Kind = KindZip
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid deployment configuration: %w", err)
	}
	return cfg, nil
}

func stringValue(override, declared *string, def string) string {
	if override != nil {
		return *override
	}
	if declared != nil {
		return *declared
	}
	return def
}

func intValue(override, declared *int, def int) int {
	if override != nil {
		return *override
	}
	if declared != nil {
		return *declared
	}
	return def
}

func boolValue(override, declared *bool, def bool) bool {
	if override != nil {
		return *override
	}
	if declared != nil {
		return *declared
	}
	return def
}
