package deploy

import (
	"context"
	"fmt"

	"github.com/useVaf/vaf-cli/pkg/api/client"
)

type environmentLister interface {
	ListEnvironments(ctx context.Context, projectID string) ([]client.Environment, error)
}

// ResolveEnvironment maps a human-chosen environment name to the backend
// environment record, matching by name first and identifier second.
func ResolveEnvironment(ctx context.Context, api environmentLister, projectID, name string) (client.Environment, error) {
	envs, err := api.ListEnvironments(ctx, projectID)
	if err != nil {
		return client.Environment{}, fmt.Errorf("list environments: %w", err)
	}
	for _, env := range envs {
		if env.Name == name {
			return env, nil
		}
	}
	for _, env := range envs {
		if env.ID == name {
			return env, nil
		}
	}
	known := make([]string, 0, len(envs))
	for _, env := range envs {
		known = append(known, env.Name)
	}
	return client.Environment{}, EnvironmentNotFoundError{Name: name, Known: known}
}
