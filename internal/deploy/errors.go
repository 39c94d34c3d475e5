package deploy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingIdentifier is returned when neither vaf.yaml nor the invocation
// supplies a project id and environment name. Nothing downstream is meaningful
// without them.
var ErrMissingIdentifier = errors.New("project id and environment are required: run inside a directory with vaf.yaml or pass --project and an environment name")

// ErrPackagingFailed marks a fatal archive construction failure.
var ErrPackagingFailed = errors.New("packaging failed")

// ErrDependenciesMissing is returned when a layer build finds no dependency
// directory. An empty layer is meaningless, so this path is fatal.
var ErrDependenciesMissing = errors.New("dependency directory not found; cannot build a layer")

// ErrDockerfileNotFound is returned when no Dockerfile exists at any of the
// four candidate locations.
var ErrDockerfileNotFound = errors.New("no dockerfile found")

// UnknownEnvironmentError reports an environment name absent from vaf.yaml.
// Declared carries the full list so calling UIs can render the choices.
type UnknownEnvironmentError struct {
	Name     string
	Declared []string
}

func (e UnknownEnvironmentError) Error() string {
	if len(e.Declared) == 0 {
		return fmt.Sprintf("environment %q is not declared in vaf.yaml", e.Name)
	}
	return fmt.Sprintf("environment %q is not declared in vaf.yaml (declared: %s)", e.Name, strings.Join(e.Declared, ", "))
}

// EnvironmentNotFoundError reports an environment the backend does not know,
// by name or identifier. Known carries the backend's environment names.
type EnvironmentNotFoundError struct {
	Name  string
	Known []string
}

func (e EnvironmentNotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("environment %q not found for this project", e.Name)
	}
	return fmt.Sprintf("environment %q not found for this project (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// ReleaseFailedError reports a release the backend marked failed, with the
// server-supplied logs.
type ReleaseFailedError struct {
	ReleaseID string
	Detail    string
	Logs      string
}

func (e ReleaseFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("release %s failed: %s", e.ReleaseID, e.Detail)
	}
	return fmt.Sprintf("release %s failed", e.ReleaseID)
}
