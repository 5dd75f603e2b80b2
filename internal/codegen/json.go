package codegen

import (
	"encoding/json"
	"fmt"
)

// writeJSON emits <module>.json: class name -> field name -> instance
// offset, for tooling that consumes the dump programmatically.
func (g *Generator) writeJSON(dump *ScopeDump) (string, error) {
	doc := make(map[string]map[string]uint32, len(dump.Classes))
	for _, class := range dump.Classes {
		fields := make(map[string]uint32, len(class.Fields))
		for _, field := range class.Fields {
			fields[field.Name] = field.Offset
		}
		doc[class.Name] = fields
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("codegen: marshal %s: %w", dump.Module, err)
	}
	return g.writeFile(dump.Module+".json", append(data, '\n'))
}
