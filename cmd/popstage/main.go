package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/popstage"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "popstage",
	Short: "An animated desk scene for uploading audio and browsing analysis",
	Long: `popstage renders a desk with a CD player and a wall of TV screens.
Dropping an audio file on the window docks it in the player; the camera,
dock and lights follow the application state with eased transitions.`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig() (*popstage.Config, error) {
	if configPath == "" {
		return popstage.DefaultConfig(), nil
	}
	return popstage.LoadConfig(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
