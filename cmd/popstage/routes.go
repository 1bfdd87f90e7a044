package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/phanxgames/popstage"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the camera pose of every route",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := cfg.RouteTable()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tPOSITION\tROTATION")
	for _, p := range popstage.Routes {
		pose := table.Lookup(p)
		fmt.Fprintf(w, "%s\t(%.2f, %.2f, %.2f)\t(%.3f, %.3f, %.3f)\n", p,
			pose.Position.X, pose.Position.Y, pose.Position.Z,
			pose.Rotation.X, pose.Rotation.Y, pose.Rotation.Z)
	}
	return w.Flush()
}
