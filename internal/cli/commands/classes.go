package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s2kit/schemadump/internal/cli/config"
	"github.com/s2kit/schemadump/internal/cli/ui"
	"github.com/s2kit/schemadump/internal/schema"
)

var (
	classesProcess string
	classesFormat  string
)

// NewClassesCommand creates the classes command
func NewClassesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes <module>",
		Short: "List the classes declared by one type scope",
		Long: `List every class the given module's type scope declares, with its
declared field count and instance size.`,
		Example: `  # List client.dll's classes
  schemadump classes client.dll

  # Machine-readable output
  schemadump classes client.dll --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runClasses,
	}

	cmd.Flags().StringVarP(&classesProcess, "process", "p", "", "Target process name (default from config)")
	cmd.Flags().StringVar(&classesFormat, "format", "table", "Output format: table or json")

	return cmd
}

type classListing struct {
	Name   string `json:"name"`
	Fields uint16 `json:"fields"`
	Size   uint32 `json:"size"`
}

func runClasses(cmd *cobra.Command, args []string) error {
	module := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	processName := classesProcess
	if processName == "" {
		processName = cfg.Process.Name
	}

	proc, err := attachTarget(processName, false)
	if err != nil {
		return err
	}
	defer proc.Close()

	system, err := schema.LocateSystem(proc)
	if err != nil {
		return err
	}

	scopes, err := system.TypeScopes()
	if err != nil {
		return err
	}

	for _, scope := range scopes {
		name, err := scope.ModuleName()
		if err != nil || name != module {
			continue
		}

		classes, err := scope.Classes()
		if err != nil {
			return err
		}

		listings := make([]classListing, 0, len(classes))
		for _, c := range classes {
			l := classListing{Name: c.Name()}
			// A class with unreadable counters still gets listed by name.
			l.Fields, _ = c.FieldCount()
			l.Size, _ = c.InstanceSize()
			listings = append(listings, l)
		}

		return renderClasses(cmd, module, listings)
	}

	return fmt.Errorf("no type scope for module %q", module)
}

func renderClasses(cmd *cobra.Command, module string, listings []classListing) error {
	out := cmd.OutOrStdout()

	if classesFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "    ")
		return enc.Encode(listings)
	}

	ui.Infof(out, "%s: %d classes", module, len(listings))
	table := ui.NewTable(out, "CLASS", "FIELDS", "SIZE")
	for _, l := range listings {
		table.AddRow(l.Name, strconv.Itoa(int(l.Fields)), fmt.Sprintf("%#x", l.Size))
	}
	table.Render()
	return nil
}
