package batch

import (
	"time"

	"github.com/nerrad567/sceneflow-core/internal/coordinator"
)

// Definition is a named, persisted scene batch as authored in the editor.
//
// The three scene lists hold plain scene names. Richer editor
// representations (asset references, GUIDs) are resolved to names before
// they reach this type; the coordinator core only ever sees names.
type Definition struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Description (optional)
	Description *string `json:"description,omitempty"`

	// Composition
	Unload   []string `json:"unload"`
	Load     []string `json:"load"`
	Activate string   `json:"activate,omitempty"`

	// Configuration
	Enabled bool `json:"enabled"`

	// Recalc requests the recalculation hook after the batch completes.
	Recalc bool `json:"recalc"`

	// Sort order for UI display
	SortOrder int `json:"sort_order"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resolve converts the definition into the value object the coordinator
// consumes. The returned batch owns fresh slices; mutating it never
// affects the definition.
func (d *Definition) Resolve() coordinator.SceneBatch {
	out := coordinator.SceneBatch{Activate: d.Activate}
	if len(d.Unload) > 0 {
		out.Unload = make([]string, len(d.Unload))
		copy(out.Unload, d.Unload)
	}
	if len(d.Load) > 0 {
		out.Load = make([]string, len(d.Load))
		copy(out.Load, d.Load)
	}
	return out
}

// DeepCopy returns an independent copy of the definition.
func (d *Definition) DeepCopy() *Definition {
	cp := *d
	if d.Description != nil {
		desc := *d.Description
		cp.Description = &desc
	}
	if len(d.Unload) > 0 {
		cp.Unload = make([]string, len(d.Unload))
		copy(cp.Unload, d.Unload)
	}
	if len(d.Load) > 0 {
		cp.Load = make([]string, len(d.Load))
		copy(cp.Load, d.Load)
	}
	return &cp
}
