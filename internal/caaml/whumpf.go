package caaml

// WhumpfData is the SnowPilot extension block describing an observed
// collapse. Every field is independently optional and no cross-field
// consistency is enforced: the source data may be internally inconsistent
// and this model preserves exactly what was recorded.
type WhumpfData struct {
	WhumpfCracking           *bool   `json:"whumpf_cracking,omitempty"`         // cracking accompanied the whumpf
	WhumpfNoCracking         *bool   `json:"whumpf_no_cracking,omitempty"`      // whumpf without cracking
	CrackingNoWhumpf         *bool   `json:"cracking_no_whumpf,omitempty"`      // cracking without a whumpf
	WhumpfNearPit            *bool   `json:"whumpf_near_pit,omitempty"`
	WhumpfDepthWeakLayer     *bool   `json:"whumpf_depth_weak_layer,omitempty"` // collapse at the weak layer depth
	WhumpfTriggeredRemoteAva *bool   `json:"whumpf_triggered_remote_ava,omitempty"`
	WhumpfSize               *string `json:"whumpf_size,omitempty"`             // size/frequency, e.g. "numerous"
}

// parseCustomData walks the customData containers for the SnowPilot
// extension payloads: whumpf observations, wind loading, and the
// pit-near-avalanche flag. Extension elements are matched by local name
// because some exports qualify them and some do not.
func (p *parser) parseCustomData(root *element, pit *SnowPit) {
	for _, custom := range root.findAll(p.r.name(nsProfile, "customData")) {
		if wl := custom.findLocal("windLoading"); wl != nil {
			if s := wl.trimmedText(); s != "" {
				if pit.Profile.SurfaceCondition == nil {
					pit.Profile.SurfaceCondition = &SurfaceCondition{}
				}
				pit.Profile.SurfaceCondition.WindLoading = &s
			}
		}

		if wd := custom.findLocal("whumpfData"); wd != nil {
			pit.Whumpf = p.parseWhumpf(wd)
		}
	}

	if near := root.findLocal("pitNearAvalanche"); near != nil && near.name.Space == p.r.extension {
		pit.CoreInfo.Location.PitNearAvalanche = p.c.boolOf(near, "pitNearAvalanche")
		if loc := near.attr("", "location"); loc != "" {
			pit.CoreInfo.Location.PitNearAvalancheLocation = &loc
		}
	}
}

func (p *parser) parseWhumpf(wd *element) *WhumpfData {
	w := &WhumpfData{}
	flag := func(local string) *bool {
		el := wd.findLocal(local)
		if el == nil {
			return nil
		}
		return p.c.boolOf(el, "customData/whumpfData/"+local)
	}

	w.WhumpfCracking = flag("whumpfCracking")
	w.WhumpfNoCracking = flag("whumpfNoCracking")
	w.CrackingNoWhumpf = flag("crackingNoWhumpf")
	w.WhumpfNearPit = flag("whumpfNearPit")
	w.WhumpfDepthWeakLayer = flag("whumpfDepthWeakLayer")
	w.WhumpfTriggeredRemoteAva = flag("whumpfTriggeredRemoteAva")
	if el := wd.findLocal("whumpfSize"); el != nil {
		if s := el.trimmedText(); s != "" {
			w.WhumpfSize = &s
		}
	}
	return w
}
