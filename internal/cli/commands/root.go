// Package commands wires up the schemadump CLI.
package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemadump",
		Short: "Dump class layouts and offsets from a running Source 2 process",
		Long: color.CyanString(`schemadump - schema introspection for a live target process

schemadump attaches to a running game client, walks the schema system the
process maintains for its own runtime reflection, and reconstructs every
registered class's declared fields and instance offsets. Results are
emitted as C++ headers and JSON files.

The target is never modified: all access is read-only.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewDumpCommand())
	rootCmd.AddCommand(NewClassesCommand())
	rootCmd.AddCommand(NewOffsetsCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the schemadump version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Print("schemadump version: ")
			valueColor.Println(Version)

			titleColor.Print("Git commit: ")
			valueColor.Println(GitCommit)

			titleColor.Print("Build date: ")
			valueColor.Println(BuildDate)

			titleColor.Print("Go version: ")
			valueColor.Println(goVer)
		},
	}
}
