package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s2kit/schemadump/internal/cli/config"
	"github.com/s2kit/schemadump/internal/cli/ui"
	"github.com/s2kit/schemadump/internal/offsets"
)

var (
	offsetsProcess string
	offsetsFormat  string
)

// NewOffsetsCommand creates the offsets command
func NewOffsetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offsets",
		Short: "Resolve well-known globals by signature scanning",
		Long: `Resolve the well-known global addresses (entity list, local player
controller, view matrix) by scanning the target's code for their reference
signatures, and print them relative to their module's base.

Signatures go stale when the target updates; stale entries are reported
individually and do not fail the rest.`,
		Example: `  # Resolve against the configured process
  schemadump offsets

  # Machine-readable output
  schemadump offsets --format json`,
		RunE: runOffsets,
	}

	cmd.Flags().StringVarP(&offsetsProcess, "process", "p", "", "Target process name (default from config)")
	cmd.Flags().StringVar(&offsetsFormat, "format", "table", "Output format: table or json")

	return cmd
}

type offsetListing struct {
	Name     string `json:"name"`
	Module   string `json:"module"`
	Relative string `json:"relative,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runOffsets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	processName := offsetsProcess
	if processName == "" {
		processName = cfg.Process.Name
	}

	proc, err := attachTarget(processName, false)
	if err != nil {
		return err
	}
	defer proc.Close()

	results := offsets.ResolveAll(proc, offsets.WellKnown)

	listings := make([]offsetListing, 0, len(results))
	failed := 0
	for _, r := range results {
		l := offsetListing{Name: r.Entry.Name, Module: r.Entry.Module}
		if r.Err != nil {
			l.Error = r.Err.Error()
			failed++
		} else {
			l.Relative = fmt.Sprintf("%#x", r.Relative)
		}
		listings = append(listings, l)
	}

	if offsetsFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "    ")
		if err := enc.Encode(listings); err != nil {
			return err
		}
	} else {
		table := ui.NewTable(out, "NAME", "MODULE", "OFFSET")
		for _, l := range listings {
			v := l.Relative
			if v == "" {
				v = "unresolved: " + l.Error
			}
			table.AddRow(l.Name, l.Module, v)
		}
		table.Render()
	}

	if failed == len(listings) && failed > 0 {
		return fmt.Errorf("no offsets resolved")
	}
	return nil
}
