package subtitles

import (
	"sort"

	"github.com/forPelevin/mixcut/internal/types"
)

const (
	PresetClassic    types.PresetID = "custom-style-1"
	PresetGold       types.PresetID = "custom-style-2"
	PresetDarkBox    types.PresetID = "custom-style-3"
	PresetLightBox   types.PresetID = "custom-style-4"
	PresetRedOutline types.PresetID = "custom-style-5"
	PresetBlueBox    types.PresetID = "custom-style-6"
)

const (
	borderOutline   = 1
	borderOpaqueBox = 3
)

// Preset overrides the outline, fill, background and border parameters of a
// caption. An empty Fill keeps the caption's own font colour.
type Preset struct {
	Description  string
	Fill         string
	Outline      string
	OutlineWidth float64
	Background   string
	BorderStyle  int
	Shadow       float64
}

var presets = map[types.PresetID]Preset{
	PresetClassic: {
		Description: "white text, thick black outline",
		Fill:        "FFFFFF", Outline: "000000", OutlineWidth: 3,
		Background: "000000", BorderStyle: borderOutline,
	},
	PresetGold: {
		Description: "gold text, black outline and drop shadow",
		Fill:        "FFD200", Outline: "000000", OutlineWidth: 3,
		Background: "000000", BorderStyle: borderOutline, Shadow: 2,
	},
	PresetDarkBox: {
		Description: "font colour on a translucent black box",
		Outline:     "000000", OutlineWidth: 8,
		Background: "000000", BorderStyle: borderOpaqueBox,
	},
	PresetLightBox: {
		Description: "black text on a translucent white box",
		Fill:        "000000", Outline: "FFFFFF", OutlineWidth: 8,
		Background: "FFFFFF", BorderStyle: borderOpaqueBox,
	},
	PresetRedOutline: {
		Description: "white text, red outline",
		Fill:        "FFFFFF", Outline: "E53935", OutlineWidth: 4,
		Background: "000000", BorderStyle: borderOutline, Shadow: 1,
	},
	PresetBlueBox: {
		Description: "font colour on a translucent blue box",
		Outline:     "1E88E5", OutlineWidth: 8,
		Background: "1E88E5", BorderStyle: borderOpaqueBox,
	},
}

func LookupPreset(id types.PresetID) (Preset, bool) {
	p, ok := presets[id]
	return p, ok
}

// PresetIDs returns the known preset identifiers in sorted order.
func PresetIDs() []types.PresetID {
	out := make([]types.PresetID, 0, len(presets))
	for id := range presets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
