package codegen

import (
	"fmt"
	"strings"
)

// writeHeader emits <module>.hpp: one namespace per class, one constexpr
// ptrdiff_t per field, the field's type as a trailing comment.
func (g *Generator) writeHeader(dump *ScopeDump) (string, error) {
	var b strings.Builder

	b.WriteString("#pragma once\n\n#include <cstddef>\n\n")

	for _, class := range dump.Classes {
		fmt.Fprintf(&b, "namespace %s {\n", sanitizeIdentifier(class.Name))
		for _, field := range class.Fields {
			fmt.Fprintf(&b, "    constexpr std::ptrdiff_t %s = 0x%X;", sanitizeIdentifier(field.Name), field.Offset)
			if field.Type != "" {
				fmt.Fprintf(&b, " // %s", field.Type)
			}
			b.WriteByte('\n')
		}
		b.WriteString("}\n\n")
	}

	return g.writeFile(dump.Module+".hpp", []byte(b.String()))
}

// sanitizeIdentifier makes a schema name safe to emit as a C++ identifier.
// Template arguments and nested-name separators show up in generic class
// names; they become underscores.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		ok := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0)
		if ok {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
