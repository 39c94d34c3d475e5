package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/internal/project"
)

var initProjectID string

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Write a starter vaf.yaml in the current directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		name := filepath.Base(cwd)
		if len(args) == 1 {
			name = args[0]
		}
		if err := project.WriteStarter(cwd, initProjectID, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for %q\n", project.FileName, name)
		if initProjectID == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Set project_id before deploying, or pass --project to vaf deploy.")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initProjectID, "project", "", "project id to record in vaf.yaml")
}
