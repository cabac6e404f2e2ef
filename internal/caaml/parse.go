package caaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// depthCoverageTolerance absorbs rounding slop between a profile's declared
// depth and its deepest layer. Field data legitimately exceeds this; the
// overrun is a diagnostic, never a rejection.
const depthCoverageTolerance = 1.0

// parser holds per-parse state. Parsing is a single synchronous pass over
// an immutable document; nothing is shared between invocations, so
// concurrent Parse calls need no locking.
type parser struct {
	r *resolver
	c *collector
}

// Parse decodes one CAAML document into a SnowPit. The returned error is
// non-nil only for fatal problems (ErrMalformedDocument,
// ErrUnknownNamespace); everything field-level ends up in
// SnowPit.Diagnostics on an otherwise successful result.
func Parse(data []byte) (*SnowPit, error) {
	root, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	r, err := newResolver(root)
	if err != nil {
		return nil, err
	}

	meas := root.find(r.name(nsProfile, "SnowProfileMeasurements"))
	if meas == nil {
		return nil, fmt.Errorf("%w: missing SnowProfileMeasurements container", ErrMalformedDocument)
	}

	p := &parser{r: r, c: &collector{}}
	pit := &SnowPit{SchemaVersion: r.profile}

	pit.CoreInfo = p.parseCoreInfo(root)
	pit.Profile = p.parseProfile(meas)
	pit.StabilityTests = p.parseStabilityTests(meas)
	p.parseCustomData(root, pit)

	p.checkDepthCoverage(pit)

	pit.Diagnostics = p.c.diags
	return pit, nil
}

// parseCoreInfo extracts pit identity, observer, location, and weather.
func (p *parser) parseCoreInfo(root *element) CoreInfo {
	info := CoreInfo{}

	locRef := root.find(p.r.name(nsProfile, "locRef"))
	if locRef != nil {
		// The pit id is the numeric tail of the gml:id, e.g.
		// "SnowPilot-Pit-73109" → "73109".
		if id := locRef.attr(p.r.gml, "id"); id != "" {
			parts := strings.Split(id, "-")
			info.PitID = parts[len(parts)-1]
		}
		info.PitName = optString(locRef, p.r.name(nsProfile, "name"))
		info.Location = p.parseLocation(locRef)
	}

	info.RecordTime = p.c.timestamp(root, p.r.name(nsProfile, "timePosition"), "validTime/timePosition")
	if meta := root.find(p.r.name(nsProfile, "metaData")); meta != nil {
		info.Comment = optString(meta, p.r.name(nsProfile, "comment"))
		info.ReportTime = p.c.timestamp(meta, p.r.name(nsProfile, "dateTimeReport"), "metaData/dateTimeReport")
		info.LastEditTime = p.c.timestamp(meta, p.r.name(nsProfile, "dateTimeLastEdit"), "metaData/dateTimeLastEdit")
	}

	if srcRef := root.find(p.r.name(nsProfile, "srcRef")); srcRef != nil {
		info.User = p.parseUser(srcRef)
	}
	if weather := root.find(p.r.name(nsProfile, "weatherCond")); weather != nil {
		info.Weather = p.parseWeather(weather)
	}
	return info
}

// parseUser decodes the srcRef block. A professional pit nests
// Operation/ContactPerson; a personal one has a bare Person. Operation
// presence is what marks the observer as professional.
func (p *parser) parseUser(srcRef *element) User {
	u := User{}

	if op := srcRef.find(p.r.name(nsProfile, "Operation")); op != nil {
		if id := op.attr(p.r.gml, "id"); id != "" {
			u.OperationID = &id
		}
		u.OperationName = optString(op, p.r.name(nsProfile, "name"))
		u.Professional = true
	}

	person := srcRef.find(p.r.name(nsProfile, "ContactPerson"))
	if person == nil {
		person = srcRef.find(p.r.name(nsProfile, "Person"))
	}
	if person != nil {
		if id := person.attr(p.r.gml, "id"); id != "" {
			u.UserID = &id
		}
		u.Username = optString(person, p.r.name(nsProfile, "name"))
	}
	return u
}

func (p *parser) parseLocation(locRef *element) Location {
	loc := Location{}

	// gml:pos is "<lat> <lon>" in decimal degrees.
	if pos, ok := scalarText(locRef, p.r.name(nsGML, "pos")); ok {
		fields := strings.Fields(pos)
		if len(fields) == 2 {
			lat := p.parseCoord(fields[0], "locRef/pointLocation/pos")
			lon := p.parseCoord(fields[1], "locRef/pointLocation/pos")
			loc.Latitude, loc.Longitude = lat, lon
		} else {
			p.c.add("locRef/pointLocation/pos", DiagInvalidNumeric, "expected \"lat lon\", got %q", pos)
		}
	}

	if el := locRef.find(p.r.name(nsProfile, "ElevationPosition")); el != nil {
		loc.Elevation = p.positionMeasurement(el, "locRef/ElevationPosition")
	}
	if el := locRef.find(p.r.name(nsProfile, "AspectPosition")); el != nil {
		loc.Aspect = p.c.compassSector(el, p.r.name(nsProfile, "position"), "locRef/AspectPosition/position")
	}
	if el := locRef.find(p.r.name(nsProfile, "SlopeAnglePosition")); el != nil {
		loc.SlopeAngle = p.positionMeasurement(el, "locRef/SlopeAnglePosition")
	}

	loc.Country = optString(locRef, p.r.name(nsProfile, "country"))
	loc.Region = optString(locRef, p.r.name(nsProfile, "region"))
	return loc
}

// positionMeasurement reads an Elevation/SlopeAngle position block, where
// the uom attribute sits on the wrapper and the value on a nested position
// element.
func (p *parser) positionMeasurement(wrapper *element, path string) *Measurement {
	pos := wrapper.find(p.r.name(nsProfile, "position"))
	if pos == nil {
		return nil
	}
	v := p.c.floatOf(pos, path+"/position")
	if v == nil {
		return nil
	}
	return &Measurement{Value: *v, Unit: wrapper.attr("", "uom")}
}

func (p *parser) parseCoord(s, path string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.c.add(path, DiagInvalidNumeric, "cannot parse coordinate %q", s)
		return nil
	}
	return &v
}

func (p *parser) parseWeather(weather *element) WeatherConditions {
	w := WeatherConditions{
		SkyCondition:  optString(weather, p.r.name(nsProfile, "skyCond")),
		Precipitation: optString(weather, p.r.name(nsProfile, "precipTI")),
		AirTemp:       p.c.measurement(weather, p.r.name(nsProfile, "airTempPres"), "weatherCond/airTempPres"),
		WindSpeed:     optString(weather, p.r.name(nsProfile, "windSpd")),
	}
	// Wind direction nests as windDir/AspectPosition/position.
	if wd := weather.find(p.r.name(nsProfile, "windDir")); wd != nil {
		w.WindDirection = p.c.compassSector(wd, p.r.name(nsProfile, "position"), "weatherCond/windDir/position")
	}
	return w
}

// comment pulls the metaData/comment nested under el, if any.
func (p *parser) comment(el *element) *string {
	meta := el.find(p.r.name(nsProfile, "metaData"))
	if meta == nil {
		return nil
	}
	return optString(meta, p.r.name(nsProfile, "comment"))
}

// checkDepthCoverage verifies the deepest layer does not extend past the
// declared profile depth. Units are compared as recorded; SnowPilot exports
// are uniformly centimeters.
func (p *parser) checkDepthCoverage(pit *SnowPit) {
	depth := pit.Profile.ProfileDepth
	if depth == nil || len(pit.Profile.Layers) == 0 {
		return
	}

	deepest := 0.0
	for i := range pit.Profile.Layers {
		l := &pit.Profile.Layers[i]
		if l.DepthTop == nil {
			continue
		}
		bottom := l.DepthTop.Value
		if l.Thickness != nil {
			bottom += l.Thickness.Value
		}
		deepest = math.Max(deepest, bottom)
	}

	if deepest > depth.Value+depthCoverageTolerance {
		p.c.add("stratProfile", DiagDepthCoverage,
			"layers extend to %g but profile depth is %g %s", deepest, depth.Value, depth.Unit)
	}
}
