package sink

import (
	"encoding/json"

	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/layout"
)

// RenderJSON encodes s as indented JSON.
func RenderJSON(s Scene) ([]byte, error) {
	if s.Groups == nil {
		s.Groups = []geometry.Group{}
	}
	if s.Layout.Slots == nil {
		s.Layout.Slots = []layout.Slot{}
	}
	return json.MarshalIndent(s, "", "  ")
}
