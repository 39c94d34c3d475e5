package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var logsProject string

var logsCmd = &cobra.Command{
	Use:   "logs <environment>",
	Short: "Print the latest release's logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProjectID(logsProject)
		if err != nil {
			return err
		}
		api, err := newClient()
		if err != nil {
			return err
		}
		envID, err := resolveEnvID(cmd.Context(), api, projectID, args[0])
		if err != nil {
			return err
		}
		release, err := api.GetLatestRelease(cmd.Context(), projectID, envID)
		if err != nil {
			return err
		}
		if release.ID == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No releases yet")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Release %s (%s)\n", release.ID, release.Status)
		if logs := strings.TrimSpace(release.Logs); logs != "" {
			fmt.Fprintln(cmd.OutOrStdout(), logs)
		}
		if release.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %s\n", release.Error)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsProject, "project", "", "project id (overrides vaf.yaml)")
}
