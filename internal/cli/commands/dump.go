package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/s2kit/schemadump/internal/cli/config"
	"github.com/s2kit/schemadump/internal/cli/ui"
	"github.com/s2kit/schemadump/internal/codegen"
	"github.com/s2kit/schemadump/internal/schema"
)

var (
	dumpProcess     string
	dumpOutput      string
	dumpFormats     []string
	dumpScope       string
	dumpVerbose     bool
	dumpInteractive bool
)

// NewDumpCommand creates the dump command
func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump class layouts for every type scope in the target",
		Long: `Attach to the target process, locate its schema system, and write one
header and/or JSON file per type scope into the output directory, plus a
manifest describing the run.

Classes whose metadata cannot be read are skipped with a warning; a dump
only fails outright when the schema system itself is unreachable.`,
		Example: `  # Dump everything with settings from schemadump.yml
  schemadump dump

  # Dump a different process to a different directory
  schemadump dump --process deadlock.exe --output out/

  # Only the client.dll scope, JSON only
  schemadump dump --scope client.dll --format json`,
		RunE: runDump,
	}

	cmd.Flags().StringVarP(&dumpProcess, "process", "p", "", "Target process name (default from config)")
	cmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringSliceVar(&dumpFormats, "format", nil, "Output formats: header, json (default from config)")
	cmd.Flags().StringVar(&dumpScope, "scope", "", "Only dump the scope for this module, e.g. client.dll")
	cmd.Flags().BoolVarP(&dumpVerbose, "verbose", "v", false, "Verbose, human-readable logging")
	cmd.Flags().BoolVarP(&dumpInteractive, "interactive", "i", false, "Offer a process picker when the target is not running")

	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	processName := dumpProcess
	if processName == "" {
		processName = cfg.Process.Name
	}
	outputDir := dumpOutput
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}
	formats := dumpFormats
	if len(formats) == 0 {
		formats = cfg.Output.Formats
	}

	logger := newLogger(dumpVerbose)
	defer logger.Sync()

	proc, err := attachTarget(processName, dumpInteractive)
	if err != nil {
		ui.Errorf(out, "failed to attach to %s: %v", processName, err)
		return err
	}
	defer proc.Close()
	ui.Successf(out, "attached to %s (pid %d)", proc.Name(), proc.Pid())

	system, err := schema.LocateSystem(proc)
	if err != nil {
		ui.Errorf(out, "failed to locate schema system: %v", err)
		return err
	}
	logger.Info("located schema system", zap.Uint64("address", system.Address()))

	scopes, err := system.TypeScopes()
	if err != nil {
		ui.Errorf(out, "failed to enumerate type scopes: %v", err)
		return err
	}

	gen := codegen.New(outputDir, logger)
	manifest := codegen.NewManifest(proc.Name(), proc.Pid())

	dumped := 0
	for _, scope := range scopes {
		module, err := scope.ModuleName()
		if err != nil {
			logger.Warn("skipping scope with unreadable module name", zap.Error(err))
			continue
		}
		if dumpScope != "" && module != dumpScope {
			continue
		}

		ui.Infof(out, "generating files for %s...", module)
		dump, err := gen.Collect(scope)
		if err != nil {
			ui.Warnf(out, "  skipping %s: %v", module, err)
			continue
		}

		paths, err := gen.Write(dump, formats)
		if err != nil {
			return err
		}
		manifest.AddScope(module, len(dump.Classes), paths)
		dumped++
	}

	if dumped == 0 {
		ui.Warnf(out, "no scopes dumped")
	}
	if _, err := gen.WriteManifest(manifest); err != nil {
		return err
	}

	ui.Successf(out, "done in %s (%d scopes -> %s)", time.Since(start).Round(time.Millisecond), dumped, outputDir)
	return nil
}

// newLogger builds the run logger: human-readable when verbose, JSON
// otherwise, never fatal to construct.
func newLogger(verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}
