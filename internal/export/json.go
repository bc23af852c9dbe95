package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/terrasolar/rackplan/internal/model"
)

// LayoutDocument is the JSON envelope for an exported layout.
type LayoutDocument struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Footprint   model.RackFootprint `json:"footprint"`
	Layout      model.LayoutResult  `json:"layout"`
}

// WriteLayoutJSON writes the layout as indented JSON to w.
func WriteLayoutJSON(w io.Writer, footprint model.RackFootprint, layout model.LayoutResult) error {
	doc := LayoutDocument{
		GeneratedAt: time.Now().UTC(),
		Footprint:   footprint,
		Layout:      layout,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// SaveLayoutJSON writes the layout document to a file.
func SaveLayoutJSON(path string, footprint model.RackFootprint, layout model.LayoutResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteLayoutJSON(f, footprint, layout); err != nil {
		return err
	}
	return f.Close()
}
