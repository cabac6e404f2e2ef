package caaml

import "fmt"

// TestKind tags a stability test variant.
type TestKind string

const (
	KindExtColumn   TestKind = "ECT"
	KindCompression TestKind = "CT"
	KindRutschblock TestKind = "RBT"
	KindPropSaw     TestKind = "PST"
	KindStuffBlock  TestKind = "SBT"
	KindShovelShear TestKind = "SST"
	KindDeepTap     TestKind = "DTT"
)

// StabilityTest is the capability every test variant exposes uniformly:
// where it failed (or was performed) and what the observer noted. The
// family-specific result payload lives on the concrete type.
type StabilityTest interface {
	Kind() TestKind
	Depth() *Measurement
	Note() *string
}

// TestBase carries the fields common to every test variant.
type TestBase struct {
	DepthTop *Measurement `json:"depth_top,omitempty"`
	Comment  *string      `json:"comment,omitempty"`

	// NoFailure is true when the source recorded the test with an explicit
	// no-failure container instead of a failure layer. The test is still
	// present; its depth refers to the tested column, not a fracture.
	NoFailure bool `json:"no_failure,omitempty"`
}

func (b TestBase) Depth() *Measurement { return b.DepthTop }
func (b TestBase) Note() *string       { return b.Comment }

// ExtColumnTest is an extended column test occurrence.
type ExtColumnTest struct {
	TestBase
	Score *string `json:"score,omitempty"` // raw code, e.g. "ECTP21"
	// Result is the decoded score; nil when the score was absent or did
	// not match the ECT grammar.
	Result *ECTResult `json:"result,omitempty"`
}

func (ExtColumnTest) Kind() TestKind { return KindExtColumn }

// ComprTest is a compression test occurrence.
type ComprTest struct {
	TestBase
	Score             *string `json:"score,omitempty"` // numeric tap count as recorded
	FractureCharacter *string `json:"fracture_character,omitempty"`
}

func (ComprTest) Kind() TestKind { return KindCompression }

// RutschblockTest is a rutschblock test occurrence.
type RutschblockTest struct {
	TestBase
	Score             *string `json:"score,omitempty"` // e.g. "RB3"
	FractureCharacter *string `json:"fracture_character,omitempty"`
	ReleaseType       *string `json:"release_type,omitempty"` // e.g. "MB" (most of block)
}

func (RutschblockTest) Kind() TestKind { return KindRutschblock }

// PropSawTest is a propagation saw test occurrence.
type PropSawTest struct {
	TestBase
	// FractureProp is the raw outcome code ("End" or "Arr"); Propagated is
	// its decoded meaning.
	FractureProp *string      `json:"fracture_prop,omitempty"`
	Propagated   *bool        `json:"propagated,omitempty"`
	CutLength    *Measurement `json:"cut_length,omitempty"`
	ColumnLength *Measurement `json:"column_length,omitempty"`
}

func (PropSawTest) Kind() TestKind { return KindPropSaw }

// StuffBlockTest is a stuff block test occurrence.
type StuffBlockTest struct {
	TestBase
	Score             *string `json:"score,omitempty"`
	FractureCharacter *string `json:"fracture_character,omitempty"`
}

func (StuffBlockTest) Kind() TestKind { return KindStuffBlock }

// ShovelShearTest is a shovel shear test occurrence.
type ShovelShearTest struct {
	TestBase
	Score *string `json:"score,omitempty"`
}

func (ShovelShearTest) Kind() TestKind { return KindShovelShear }

// DeepTapTest is a deep tap test occurrence.
type DeepTapTest struct {
	TestBase
	Score             *string `json:"score,omitempty"`
	FractureCharacter *string `json:"fracture_character,omitempty"`
}

func (DeepTapTest) Kind() TestKind { return KindDeepTap }

// StabilityTests groups every test occurrence by family, each in document
// order. A family with no occurrences is an empty slice.
type StabilityTests struct {
	ECT []ExtColumnTest   `json:"ect,omitempty"`
	CT  []ComprTest       `json:"ct,omitempty"`
	RBT []RutschblockTest `json:"rbt,omitempty"`
	PST []PropSawTest     `json:"pst,omitempty"`
	SBT []StuffBlockTest  `json:"sbt,omitempty"`
	SST []ShovelShearTest `json:"sst,omitempty"`
	DTT []DeepTapTest     `json:"dtt,omitempty"`
}

// All returns every test across families as the uniform StabilityTest view,
// families in schema order, occurrences in document order.
func (s *StabilityTests) All() []StabilityTest {
	var out []StabilityTest
	for _, t := range s.ECT {
		out = append(out, t)
	}
	for _, t := range s.CT {
		out = append(out, t)
	}
	for _, t := range s.RBT {
		out = append(out, t)
	}
	for _, t := range s.PST {
		out = append(out, t)
	}
	for _, t := range s.SBT {
		out = append(out, t)
	}
	for _, t := range s.SST {
		out = append(out, t)
	}
	for _, t := range s.DTT {
		out = append(out, t)
	}
	return out
}

// parseStabilityTests decodes the stbTests container. Tests may repeat any
// number of times, including zero.
func (p *parser) parseStabilityTests(meas *element) StabilityTests {
	var tests StabilityTests

	stb := meas.find(p.r.name(nsProfile, "stbTests"))
	if stb == nil {
		return tests
	}

	for i, el := range stb.findAll(p.r.name(nsProfile, "ExtColumnTest")) {
		tests.ECT = append(tests.ECT, p.parseECT(el, fmt.Sprintf("stbTests/ExtColumnTest[%d]", i)))
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "ComprTest")) {
		path := fmt.Sprintf("stbTests/ComprTest[%d]", i)
		tests.CT = append(tests.CT, ComprTest{
			TestBase:          p.parseTestBase(el, path),
			Score:             optString(el, p.r.name(nsProfile, "testScore")),
			FractureCharacter: optString(el, p.r.name(nsProfile, "fractureCharacter")),
		})
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "RBlockTest")) {
		path := fmt.Sprintf("stbTests/RBlockTest[%d]", i)
		tests.RBT = append(tests.RBT, RutschblockTest{
			TestBase:          p.parseTestBase(el, path),
			Score:             optString(el, p.r.name(nsProfile, "testScore")),
			FractureCharacter: optString(el, p.r.name(nsProfile, "fractureCharacter")),
			ReleaseType:       optString(el, p.r.name(nsProfile, "releaseType")),
		})
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "PropSawTest")) {
		tests.PST = append(tests.PST, p.parsePST(el, fmt.Sprintf("stbTests/PropSawTest[%d]", i)))
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "StuffBlockTest")) {
		path := fmt.Sprintf("stbTests/StuffBlockTest[%d]", i)
		tests.SBT = append(tests.SBT, StuffBlockTest{
			TestBase:          p.parseTestBase(el, path),
			Score:             optString(el, p.r.name(nsProfile, "testScore")),
			FractureCharacter: optString(el, p.r.name(nsProfile, "fractureCharacter")),
		})
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "ShovelShearTest")) {
		path := fmt.Sprintf("stbTests/ShovelShearTest[%d]", i)
		tests.SST = append(tests.SST, ShovelShearTest{
			TestBase: p.parseTestBase(el, path),
			Score:    optString(el, p.r.name(nsProfile, "testScore")),
		})
	}
	for i, el := range stb.findAll(p.r.name(nsProfile, "DeepTapTest")) {
		path := fmt.Sprintf("stbTests/DeepTapTest[%d]", i)
		tests.DTT = append(tests.DTT, DeepTapTest{
			TestBase:          p.parseTestBase(el, path),
			Score:             optString(el, p.r.name(nsProfile, "testScore")),
			FractureCharacter: optString(el, p.r.name(nsProfile, "fractureCharacter")),
		})
	}

	return tests
}

// parseTestBase extracts the uniform fields. The failure layer depth lives
// under failedOn/Layer/depthTop; a noFailedOn container marks a test that
// produced no failure and is preserved as such, not coerced into an empty
// failure record.
func (p *parser) parseTestBase(el *element, path string) TestBase {
	base := TestBase{Comment: p.comment(el)}

	if noFail := el.find(p.r.name(nsProfile, "noFailedOn")); noFail != nil {
		base.NoFailure = true
		base.DepthTop = p.c.measurement(noFail, p.r.name(nsProfile, "depthTop"), path+"/noFailedOn/depthTop")
		return base
	}

	base.DepthTop = p.c.measurement(el, p.r.name(nsProfile, "depthTop"), path+"/depthTop")
	return base
}

func (p *parser) parseECT(el *element, path string) ExtColumnTest {
	ect := ExtColumnTest{
		TestBase: p.parseTestBase(el, path),
		Score:    optString(el, p.r.name(nsProfile, "testScore")),
	}
	if ect.Score != nil {
		result, err := DecodeECTScore(*ect.Score)
		if err != nil {
			p.c.add(path+"/testScore", DiagUnrecognizedCode, "%v", err)
		} else {
			ect.Result = &result
		}
	}
	return ect
}

func (p *parser) parsePST(el *element, path string) PropSawTest {
	pst := PropSawTest{
		TestBase:     p.parseTestBase(el, path),
		FractureProp: optString(el, p.r.name(nsProfile, "fractureProp")),
		CutLength:    p.c.measurement(el, p.r.name(nsProfile, "cutLength"), path+"/cutLength"),
		ColumnLength: p.c.measurement(el, p.r.name(nsProfile, "columnLength"), path+"/columnLength"),
	}
	if pst.FractureProp != nil {
		propagated, err := DecodePSTOutcome(*pst.FractureProp)
		if err != nil {
			p.c.add(path+"/fractureProp", DiagUnrecognizedCode, "%v", err)
		} else {
			pst.Propagated = &propagated
		}
	}
	return pst
}

// ensure the variants satisfy the uniform interface
var (
	_ StabilityTest = ExtColumnTest{}
	_ StabilityTest = ComprTest{}
	_ StabilityTest = RutschblockTest{}
	_ StabilityTest = PropSawTest{}
	_ StabilityTest = StuffBlockTest{}
	_ StabilityTest = ShovelShearTest{}
	_ StabilityTest = DeepTapTest{}
)
