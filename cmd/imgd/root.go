package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// version is stamped by the release build.
var version = "dev"

// isTTY checks if the current environment has a TTY available
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imgd",
		Short: "Image normalization and network info service",
		Long: `imgd is a small HTTP service for image housekeeping: it detects uploads
across the common raster, icon and vector formats, fits them into
bounding boxes, produces avatar sets, scrubs JPEG metadata, and
answers client IP and DNS questions on the side.

Run it with no arguments to start serving, or use the subcommands
for one-off work:

  imgd                       # Start the HTTP service
  imgd serve -c imgd.yaml    # Start with an explicit config file
  imgd inspect photo.jpg     # Describe a local image file
  imgd version               # Print version information`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(viper.GetString("config"))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ~/.imgd/config.yaml)")

	// Viper bridges the flag with the IMGD_CONFIG environment variable.
	viper.SetEnvPrefix("IMGD")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("imgd %s\n", version)
		},
	}
}
