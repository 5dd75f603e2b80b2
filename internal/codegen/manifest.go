package codegen

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one dump run: what was attached to, when, and which
// scopes were emitted. It lands next to the generated files as
// manifest.json.
type Manifest struct {
	RunID     string        `json:"run_id"`
	Generated time.Time     `json:"generated"`
	Process   string        `json:"process"`
	Pid       int32         `json:"pid"`
	Scopes    []ScopeRecord `json:"scopes"`
}

// ScopeRecord summarizes one emitted scope.
type ScopeRecord struct {
	Module  string   `json:"module"`
	Classes int      `json:"classes"`
	Files   []string `json:"files"`
}

// NewManifest starts a manifest for the given target.
func NewManifest(process string, pid int32) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Generated: time.Now().UTC(),
		Process:   process,
		Pid:       pid,
	}
}

// AddScope records one emitted scope.
func (m *Manifest) AddScope(module string, classes int, files []string) {
	m.Scopes = append(m.Scopes, ScopeRecord{Module: module, Classes: classes, Files: files})
}

// Write emits the manifest into the generator's output directory.
func (g *Generator) WriteManifest(m *Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return "", err
	}
	return g.writeFile("manifest.json", append(data, '\n'))
}
