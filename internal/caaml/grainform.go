package caaml

// GrainClassification is the derived two-level taxonomy for a raw grain form
// code. Code is always the verbatim source string; the derived fields are
// empty when the code (or its modifier suffix) is not in the reference
// tables. Classification is a pure function of Code — see ClassifyGrainForm.
type GrainClassification struct {
	Code      string `json:"code"`
	BasicCode string `json:"basic_code,omitempty"`
	BasicName string `json:"basic_name,omitempty"`
	SubCode   string `json:"sub_code,omitempty"`
	SubName   string `json:"sub_name,omitempty"`
}

// grainClass is one row of the basic-class reference table.
type grainClass struct {
	name string
	subs map[string]string // modifier suffix → sub-class name
}

// grainClasses is the ICSSG basic grain class table. Keys are the uppercase
// code prefixes; sub tables map the lowercase modifier suffixes a class can
// carry.
var grainClasses = map[string]grainClass{
	"PP": {
		name: "Precipitation Particles",
		subs: map[string]string{
			"co": "Columns",
			"nd": "Needles",
			"pl": "Plates",
			"sd": "Stellars and Dendrites",
			"ir": "Irregular Crystals",
			"gp": "Graupel",
			"hl": "Hail",
			"ip": "Ice Pellets",
			"rm": "Rime",
		},
	},
	"MM": {
		name: "Machine Made Snow",
		subs: map[string]string{
			"rp": "Round Polycrystalline Particles",
			"ci": "Crushed Ice Particles",
		},
	},
	"DF": {
		name: "Decomposing and Fragmented Precipitation Particles",
		subs: map[string]string{
			"dc": "Partly Decomposed Precipitation Particles",
			"bk": "Wind-Broken Precipitation Particles",
		},
	},
	"RG": {
		name: "Rounded Grains",
		subs: map[string]string{
			"sr": "Small Rounded Particles",
			"lr": "Large Rounded Particles",
			"wp": "Wind Packed",
			"xf": "Faceted Rounded Particles",
		},
	},
	"FC": {
		name: "Faceted Crystals",
		subs: map[string]string{
			"so": "Solid Faceted Particles",
			"sf": "Near Surface Faceted Particles",
			"xr": "Rounding Faceted Particles",
		},
	},
	"DH": {
		name: "Depth Hoar",
		subs: map[string]string{
			"cp": "Hollow Cups",
			"pr": "Hollow Prisms",
			"ch": "Chains of Depth Hoar",
			"la": "Large Striated Crystals",
			"xr": "Rounding Depth Hoar",
		},
	},
	"SH": {
		name: "Surface Hoar",
		subs: map[string]string{
			"su": "Surface Hoar Crystals",
			"cv": "Cavity or Crevasse Hoar",
			"xr": "Rounding Surface Hoar",
		},
	},
	"MF": {
		name: "Melt Forms",
		subs: map[string]string{
			"cl": "Clustered Rounded Grains",
			"pc": "Rounded Polycrystals",
			"sl": "Slush",
			"cr": "Melt-Freeze Crust",
		},
	},
	"IF": {
		name: "Ice Formations",
		subs: map[string]string{
			"il": "Ice Layer",
			"ic": "Ice Column",
			"bi": "Basal Ice",
			"rc": "Rain Crust",
			"sc": "Sun Crust",
		},
	},
}

// ClassifyGrainForm derives the basic class and, where the modifier suffix is
// known, the sub-class for a raw grain form code. The raw code is preserved
// verbatim; an unknown prefix leaves the basic class empty and an unknown
// suffix leaves only the sub-class empty. Deterministic and idempotent: the
// output depends on nothing but the input string.
func ClassifyGrainForm(code string) GrainClassification {
	gc := GrainClassification{Code: code}
	if len(code) < 2 {
		return gc
	}

	class, ok := grainClasses[code[:2]]
	if !ok {
		return gc
	}
	gc.BasicCode = code[:2]
	gc.BasicName = class.name

	suffix := code[2:]
	if suffix == "" {
		return gc
	}
	if name, ok := class.subs[suffix]; ok {
		gc.SubCode = suffix
		gc.SubName = name
	}
	return gc
}
