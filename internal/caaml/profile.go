package caaml

import "fmt"

// SnowProfile holds the measured column: stratigraphy, temperature and
// density observations, and the surface condition block.
type SnowProfile struct {
	// MeasurementDirection is "top down" or "bottom up". Depths everywhere
	// in the profile are stored exactly as recorded; callers must respect
	// this direction when doing depth arithmetic.
	MeasurementDirection *string `json:"measurement_direction,omitempty"`

	ProfileDepth *Measurement `json:"profile_depth,omitempty"`
	SnowHeight   *Measurement `json:"snow_height,omitempty"` // hS, total snowpack height

	SurfaceCondition *SurfaceCondition `json:"surface_condition,omitempty"`

	Layers     []Layer      `json:"layers"`
	TempObs    []TempObs    `json:"temp_profile,omitempty"`
	DensityObs []DensityObs `json:"density_profile,omitempty"`
}

// LayersOfConcern returns pointers to the layers flagged as the weak layer
// of concern, in stratigraphic order. The view is a projection over Layers;
// no layer is duplicated.
func (p *SnowProfile) LayersOfConcern() []*Layer {
	var out []*Layer
	for i := range p.Layers {
		if p.Layers[i].LayerOfConcern {
			out = append(out, &p.Layers[i])
		}
	}
	return out
}

// Layer is one stratigraphic band.
type Layer struct {
	DepthTop *Measurement `json:"depth_top,omitempty"`
	// Thickness is absent on a bottom boundary marker.
	Thickness *Measurement `json:"thickness,omitempty"`

	// Hardness is set for a uniform layer; HardnessTop/HardnessBottom for
	// a gradient. All are hand-hardness codes.
	Hardness       *string `json:"hardness,omitempty"`
	HardnessTop    *string `json:"hardness_top,omitempty"`
	HardnessBottom *string `json:"hardness_bottom,omitempty"`

	Wetness *string `json:"wetness,omitempty"` // e.g. "D", "D-M", "W"

	LayerOfConcern bool `json:"layer_of_concern"`
	// ConcernPart qualifies which part of the layer is of concern, when
	// the source records one.
	ConcernPart *string `json:"concern_part,omitempty"`

	Comments *string `json:"comments,omitempty"`

	GrainPrimary   *Grain `json:"grain_form_primary,omitempty"`
	GrainSecondary *Grain `json:"grain_form_secondary,omitempty"`
}

// Grain describes crystal morphology. Classification is derived from Form
// and never stored independently of it.
type Grain struct {
	Form           string              `json:"form"`
	SizeAvg        *Measurement        `json:"size_avg,omitempty"`
	SizeMax        *Measurement        `json:"size_max,omitempty"`
	Classification GrainClassification `json:"classification"`
}

// TempObs is one snow temperature observation.
type TempObs struct {
	Depth    *Measurement `json:"depth,omitempty"`
	SnowTemp *Measurement `json:"snow_temp,omitempty"`
}

// DensityObs is one density profile band.
type DensityObs struct {
	DepthTop  *Measurement `json:"depth_top,omitempty"`
	Thickness *Measurement `json:"thickness,omitempty"`
	Density   *Measurement `json:"density,omitempty"`
}

// SurfaceCondition is the surface block: wind loading (from the SnowPilot
// extension) and boot/ski penetration depths.
type SurfaceCondition struct {
	WindLoading     *string      `json:"wind_loading,omitempty"`
	PenetrationFoot *Measurement `json:"penetration_foot,omitempty"`
	PenetrationSki  *Measurement `json:"penetration_ski,omitempty"`
}

// parseProfile assembles the snow profile from the measurement container.
func (p *parser) parseProfile(meas *element) SnowProfile {
	prof := SnowProfile{}

	if dir := meas.attr("", "dir"); dir != "" {
		prof.MeasurementDirection = &dir
	}
	prof.ProfileDepth = p.c.measurement(meas, p.r.name(nsProfile, "profileDepth"), "SnowProfileMeasurements/profileDepth")
	if hs := meas.find(p.r.name(nsProfile, "hS")); hs != nil {
		prof.SnowHeight = p.c.measurement(hs, p.r.name(nsProfile, "height"), "SnowProfileMeasurements/hS/height")
	}

	prof.SurfaceCondition = p.parseSurfaceCondition(meas)
	prof.Layers = p.parseLayers(meas)
	prof.TempObs = p.parseTempProfile(meas)
	prof.DensityObs = p.parseDensityProfile(meas)

	p.checkDepthOrder(&prof)
	return prof
}

// parseSurfaceCondition pulls the surfCond block, if any. Wind loading lives
// in the extension's customData and is attached later by parseCustomData.
func (p *parser) parseSurfaceCondition(meas *element) *SurfaceCondition {
	surf := meas.find(p.r.name(nsProfile, "surfCond"))
	if surf == nil {
		return nil
	}
	return &SurfaceCondition{
		PenetrationFoot: p.c.measurement(surf, p.r.name(nsProfile, "penetrationFoot"), "surfCond/penetrationFoot"),
		PenetrationSki:  p.c.measurement(surf, p.r.name(nsProfile, "penetrationSki"), "surfCond/penetrationSki"),
	}
}

// parseLayers walks the stratigraphy in document order, producing one Layer
// per element whether or not its optional children are present.
func (p *parser) parseLayers(meas *element) []Layer {
	strat := meas.find(p.r.name(nsProfile, "stratProfile"))
	if strat == nil {
		return nil
	}

	layerName := p.r.name(nsProfile, "Layer")
	var layers []Layer
	for i, el := range strat.findAll(layerName) {
		layers = append(layers, p.parseLayer(el, fmt.Sprintf("stratProfile/Layer[%d]", i)))
	}
	return layers
}

func (p *parser) parseLayer(el *element, path string) Layer {
	l := Layer{
		DepthTop:  p.c.measurement(el, p.r.name(nsProfile, "depthTop"), path+"/depthTop"),
		Thickness: p.c.measurement(el, p.r.name(nsProfile, "thickness"), path+"/thickness"),
		Wetness:   optString(el, p.r.name(nsProfile, "wetness")),
		Comments:  p.comment(el),
	}

	l.Hardness = p.hardnessCode(el, "hardness", path)
	l.HardnessTop = p.hardnessCode(el, "hardnessTop", path)
	l.HardnessBottom = p.hardnessCode(el, "hardnessBottom", path)

	if loc := el.find(p.r.name(nsProfile, "layerOfConcern")); loc != nil {
		if v := p.c.boolOf(loc, path+"/layerOfConcern"); v != nil {
			l.LayerOfConcern = *v
		}
		if part := loc.attr("", "partOfLayer"); part != "" {
			l.ConcernPart = &part
		}
	}

	l.GrainPrimary = p.parseGrain(el, "grainFormPrimary", path)
	l.GrainSecondary = p.parseGrain(el, "grainFormSecondary", path)

	// Grain size applies to the primary form in SnowPilot exports.
	if l.GrainPrimary != nil {
		if size := el.find(p.r.name(nsProfile, "grainSize")); size != nil {
			uom := size.attr("", "uom")
			l.GrainPrimary.SizeAvg = p.grainSizeComponent(size, "avg", uom, path)
			l.GrainPrimary.SizeMax = p.grainSizeComponent(size, "avgMax", uom, path)
		}
	}
	return l
}

// hardnessCode reads a hand-hardness element, diagnosing off-scale tokens.
func (p *parser) hardnessCode(el *element, local, path string) *string {
	s, ok := scalarText(el, p.r.name(nsProfile, local))
	if !ok {
		return nil
	}
	if !validHardness(s) {
		p.c.add(path+"/"+local, DiagUnrecognizedCode, "%q is not a hand hardness code", s)
		return nil
	}
	return &s
}

func (p *parser) parseGrain(el *element, local, path string) *Grain {
	form, ok := scalarText(el, p.r.name(nsProfile, local))
	if !ok {
		return nil
	}
	return &Grain{Form: form, Classification: ClassifyGrainForm(form)}
}

// grainSizeComponent reads <grainSize><Components><avg>…</avg>… with the
// unit carried on the enclosing grainSize element.
func (p *parser) grainSizeComponent(size *element, local, uom, path string) *Measurement {
	comp := size.find(p.r.name(nsProfile, local))
	if comp == nil {
		return nil
	}
	v := p.c.floatOf(comp, path+"/grainSize/"+local)
	if v == nil {
		return nil
	}
	return &Measurement{Value: *v, Unit: uom}
}

func (p *parser) parseTempProfile(meas *element) []TempObs {
	temp := meas.find(p.r.name(nsProfile, "tempProfile"))
	if temp == nil {
		return nil
	}

	var obs []TempObs
	for i, el := range temp.findAll(p.r.name(nsProfile, "Obs")) {
		path := fmt.Sprintf("tempProfile/Obs[%d]", i)
		obs = append(obs, TempObs{
			Depth:    p.c.measurement(el, p.r.name(nsProfile, "depth"), path+"/depth"),
			SnowTemp: p.c.measurement(el, p.r.name(nsProfile, "snowTemp"), path+"/snowTemp"),
		})
	}
	return obs
}

func (p *parser) parseDensityProfile(meas *element) []DensityObs {
	dens := meas.find(p.r.name(nsProfile, "densityProfile"))
	if dens == nil {
		return nil
	}

	var obs []DensityObs
	for i, el := range dens.findAll(p.r.name(nsProfile, "Layer")) {
		path := fmt.Sprintf("densityProfile/Layer[%d]", i)
		obs = append(obs, DensityObs{
			DepthTop:  p.c.measurement(el, p.r.name(nsProfile, "depthTop"), path+"/depthTop"),
			Thickness: p.c.measurement(el, p.r.name(nsProfile, "thickness"), path+"/thickness"),
			Density:   p.c.measurement(el, p.r.name(nsProfile, "density"), path+"/density"),
		})
	}
	return obs
}

// checkDepthOrder diagnoses out-of-order depth-top values. Only meaningful
// for top-down profiles; bottom-up depth conventions are left to the caller.
func (p *parser) checkDepthOrder(prof *SnowProfile) {
	if prof.MeasurementDirection == nil || *prof.MeasurementDirection != "top down" {
		return
	}
	var prev *Measurement
	for i := range prof.Layers {
		cur := prof.Layers[i].DepthTop
		if cur == nil {
			continue
		}
		if prev != nil && cur.Value < prev.Value {
			p.c.add(fmt.Sprintf("stratProfile/Layer[%d]/depthTop", i), DiagDepthOrder,
				"depth %g above previous layer depth %g in a top-down profile", cur.Value, prev.Value)
		}
		prev = cur
	}
}
