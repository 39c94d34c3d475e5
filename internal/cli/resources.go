package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/pkg/api/client"
)

var databaseEngine string

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "Manage managed databases",
}

var databasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List databases",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		dbs, err := api.ListDatabases(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENGINE\tSTATUS\tCREATED")
		for _, db := range dbs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", db.Name, db.Engine, db.Status, db.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var databasesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Provision a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		db, err := api.CreateDatabase(cmd.Context(), client.CreateDatabaseInput{
			Name:   args[0],
			Engine: databaseEngine,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created database %s (%s)\n", db.Name, db.Status)
		return nil
	},
}

var databasesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		if err := api.DeleteDatabase(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted database %s\n", args[0])
		return nil
	},
}

var cachesCmd = &cobra.Command{
	Use:   "caches",
	Short: "Manage managed caches",
}

var cachesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		caches, err := api.ListCaches(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tCREATED")
		for _, c := range caches {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Status, c.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var cachesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Provision a cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		c, err := api.CreateCache(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created cache %s (%s)\n", c.Name, c.Status)
		return nil
	},
}

var cachesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newClient()
		if err != nil {
			return err
		}
		if err := api.DeleteCache(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted cache %s\n", args[0])
		return nil
	},
}

func init() {
	databasesCreateCmd.Flags().StringVar(&databaseEngine, "engine", "", "database engine (backend default when omitted)")
	databasesCmd.AddCommand(databasesListCmd, databasesCreateCmd, databasesDeleteCmd)
	cachesCmd.AddCommand(cachesListCmd, cachesCreateCmd, cachesDeleteCmd)
}
