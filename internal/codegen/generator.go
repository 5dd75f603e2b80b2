// Package codegen turns walked schema scopes into generated artifacts: one
// C++ header and one JSON file per module scope, plus a manifest describing
// the run.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/s2kit/schemadump/internal/schema"
)

// FieldDump is one resolved field: its name, instance offset, and type
// display name (empty when the type record was unreadable).
type FieldDump struct {
	Name   string
	Offset uint32
	Type   string
}

// ClassDump is one class with its resolved fields, in declaration order.
type ClassDump struct {
	Name   string
	Fields []FieldDump
}

// ScopeDump is everything collected from one type scope.
type ScopeDump struct {
	Module  string
	Classes []ClassDump
}

// Generator collects scope dumps and writes them to an output directory.
type Generator struct {
	outDir string
	log    *zap.Logger
}

// New creates a Generator writing into outDir. A nil logger is replaced
// with a no-op one.
func New(outDir string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{outDir: outDir, log: log}
}

// Collect walks every class in the scope and resolves its fields. A class
// whose enumeration fails, or a field whose name or offset is unreadable,
// is skipped with a warning; per-class problems never fail the scope.
func (g *Generator) Collect(scope *schema.TypeScope) (*ScopeDump, error) {
	module, err := scope.ModuleName()
	if err != nil {
		return nil, fmt.Errorf("codegen: read scope module name: %w", err)
	}

	classes, err := scope.Classes()
	if err != nil {
		return nil, fmt.Errorf("codegen: enumerate classes of %s: %w", module, err)
	}

	dump := &ScopeDump{Module: module}
	for _, class := range classes {
		fields, err := class.Fields()
		if err != nil {
			g.log.Warn("skipping class, field table unreadable",
				zap.String("module", module),
				zap.String("class", class.Name()),
				zap.Error(err))
			continue
		}

		cd := ClassDump{Name: class.Name(), Fields: make([]FieldDump, 0, len(fields))}
		for _, field := range fields {
			fd, err := resolveField(field)
			if err != nil {
				g.log.Warn("skipping field",
					zap.String("module", module),
					zap.String("class", class.Name()),
					zap.Uint64("field_record", field.Address()),
					zap.Error(err))
				continue
			}
			cd.Fields = append(cd.Fields, fd)
		}
		dump.Classes = append(dump.Classes, cd)
	}

	sort.Slice(dump.Classes, func(i, j int) bool {
		return dump.Classes[i].Name < dump.Classes[j].Name
	})
	return dump, nil
}

func resolveField(field *schema.FieldDescriptor) (FieldDump, error) {
	name, err := field.Name()
	if err != nil {
		return FieldDump{}, err
	}
	offset, err := field.Offset()
	if err != nil {
		return FieldDump{}, err
	}

	fd := FieldDump{Name: name, Offset: offset}

	// The type name is decoration; an unreadable type record does not
	// disqualify the field.
	if typ, err := field.Type(); err == nil {
		if typeName, err := typ.Name(); err == nil {
			fd.Type = typeName
		}
	}
	return fd, nil
}

// Write emits every configured format for the dump and returns the paths
// written.
func (g *Generator) Write(dump *ScopeDump, formats []string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case FormatHeader:
			path, err = g.writeHeader(dump)
		case FormatJSON:
			path, err = g.writeJSON(dump)
		default:
			err = fmt.Errorf("codegen: unknown format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Supported output formats.
const (
	FormatHeader = "header"
	FormatJSON   = "json"
)

// Formats lists the supported output format names.
func Formats() []string { return []string{FormatHeader, FormatJSON} }

func (g *Generator) writeFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", fmt.Errorf("codegen: create output dir: %w", err)
	}
	path := filepath.Join(g.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("codegen: write %s: %w", path, err)
	}
	g.log.Info("wrote file", zap.String("path", path))
	return path, nil
}
