package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/internal/deploy"
	"github.com/useVaf/vaf-cli/internal/project"
	"github.com/useVaf/vaf-cli/pkg/api/client"
)

var (
	envsProject    string
	envVarsProject string
)

// resolveProjectID prefers the flag, then vaf.yaml in the current directory.
func resolveProjectID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	file, err := project.Load(cwd)
	if err != nil {
		return "", err
	}
	if file != nil && file.ProjectID != "" {
		return file.ProjectID, nil
	}
	return "", errors.New("no project id: pass --project or add project_id to vaf.yaml")
}

func resolveEnvID(ctx context.Context, api *client.Client, projectID, name string) (string, error) {
	env, err := deploy.ResolveEnvironment(ctx, api, projectID, name)
	if err != nil {
		return "", err
	}
	return env.ID, nil
}

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List a project's environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProjectID(envsProject)
		if err != nil {
			return err
		}
		api, err := newClient()
		if err != nil {
			return err
		}
		envs, err := api.ListEnvironments(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, e := range envs {
			fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Name)
		}
		return w.Flush()
	},
}

var envVarsCmd = &cobra.Command{
	Use:   "env-vars",
	Short: "Manage environment variables",
}

var envVarsListCmd = &cobra.Command{
	Use:   "list <environment>",
	Short: "List variables in an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, projectID, envID, err := envVarsTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		vars, err := api.ListEnvVars(cmd.Context(), projectID, envID)
		if err != nil {
			return err
		}
		for _, v := range vars {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", v.Key, v.Value)
		}
		return nil
	},
}

var envVarsSetCmd = &cobra.Command{
	Use:   "set <environment> <key> <value>",
	Short: "Set a variable in an environment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, projectID, envID, err := envVarsTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		v := client.EnvVar{Key: args[1], Value: args[2]}
		if err := api.SetEnvVar(cmd.Context(), projectID, envID, v); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", v.Key)
		return nil
	},
}

var envVarsUnsetCmd = &cobra.Command{
	Use:   "unset <environment> <key>",
	Short: "Remove a variable from an environment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, projectID, envID, err := envVarsTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := api.UnsetEnvVar(cmd.Context(), projectID, envID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[1])
		return nil
	},
}

func envVarsTarget(ctx context.Context, environment string) (*client.Client, string, string, error) {
	projectID, err := resolveProjectID(envVarsProject)
	if err != nil {
		return nil, "", "", err
	}
	api, err := newClient()
	if err != nil {
		return nil, "", "", err
	}
	envID, err := resolveEnvID(ctx, api, projectID, environment)
	if err != nil {
		return nil, "", "", err
	}
	return api, projectID, envID, nil
}

func init() {
	envsCmd.Flags().StringVar(&envsProject, "project", "", "project id (overrides vaf.yaml)")
	envVarsCmd.PersistentFlags().StringVar(&envVarsProject, "project", "", "project id (overrides vaf.yaml)")
	envVarsCmd.AddCommand(envVarsListCmd, envVarsSetCmd, envVarsUnsetCmd)
}
