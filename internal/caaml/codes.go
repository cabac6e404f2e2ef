package caaml

import (
	"fmt"
	"strconv"
	"strings"
)

// hardnessRank encodes the hand-hardness total order. Base categories run
// fist < four-finger < one-finger < pencil < knife < ice; the "-"/"+"
// refinements order within a category.
var hardnessRank = map[string]int{
	"F-": 1, "F": 2, "F+": 3,
	"4F-": 4, "4F": 5, "4F+": 6,
	"1F-": 7, "1F": 8, "1F+": 9,
	"P-": 10, "P": 11, "P+": 12,
	"K-": 13, "K": 14, "K+": 15,
	"I-": 16, "I": 17, "I+": 18,
}

// CompareHardness orders two hand-hardness codes: -1 if a is softer than b,
// 0 if equal, +1 if harder. Unrecognized tokens are an error, not a silent
// ordering.
func CompareHardness(a, b string) (int, error) {
	ra, ok := hardnessRank[a]
	if !ok {
		return 0, fmt.Errorf("unrecognized hardness code %q", a)
	}
	rb, ok := hardnessRank[b]
	if !ok {
		return 0, fmt.Errorf("unrecognized hardness code %q", b)
	}
	switch {
	case ra < rb:
		return -1, nil
	case ra > rb:
		return 1, nil
	default:
		return 0, nil
	}
}

// validHardness reports whether code is on the hand-hardness scale.
func validHardness(code string) bool {
	_, ok := hardnessRank[code]
	return ok
}

// ECTResult is the decoded payload of an extended column test score.
type ECTResult struct {
	// Propagation is true for ECTP variants (fracture propagated across
	// the full column) and false for ECTN.
	Propagation bool `json:"propagation"`

	// Taps is the tap count at fracture; nil for ECTPV, where the column
	// fractured on isolation before any tap.
	Taps *int `json:"taps,omitempty"`

	// NoFracture is true for ECTX: no fracture within the full tap
	// sequence. Propagation is false and Taps is nil in that case.
	NoFracture bool `json:"no_fracture,omitempty"`
}

// DecodeECTScore parses an extended column test score. Grammar:
//
//	ECT(P|N)<digits>  fracture at the given tap, with/without propagation
//	ECTPV             fracture on isolation, before any tap
//	ECTX              no fracture
func DecodeECTScore(code string) (ECTResult, error) {
	rest, ok := strings.CutPrefix(code, "ECT")
	if !ok {
		return ECTResult{}, fmt.Errorf("score %q does not start with ECT", code)
	}

	if rest == "X" {
		return ECTResult{NoFracture: true}, nil
	}
	if rest == "PV" {
		return ECTResult{Propagation: true}, nil
	}

	if len(rest) < 2 {
		return ECTResult{}, fmt.Errorf("score %q is incomplete", code)
	}
	var propagation bool
	switch rest[0] {
	case 'P':
		propagation = true
	case 'N':
		propagation = false
	default:
		return ECTResult{}, fmt.Errorf("score %q has neither P nor N after ECT", code)
	}

	// Atoi alone would accept a sign here; the grammar allows digits only.
	if !allDigits(rest[1:]) {
		return ECTResult{}, fmt.Errorf("score %q has a non-numeric tap count", code)
	}
	taps, err := strconv.Atoi(rest[1:])
	if err != nil {
		return ECTResult{}, fmt.Errorf("score %q has a non-numeric tap count", code)
	}
	return ECTResult{Propagation: propagation, Taps: &taps}, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// DecodePSTOutcome maps a propagation saw test fractureProp code to its
// propagation semantics: "End" means the cut ran to the end of the column,
// "Arr" means the fracture arrested.
func DecodePSTOutcome(code string) (propagated bool, err error) {
	switch code {
	case "End":
		return true, nil
	case "Arr":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized fracture propagation code %q", code)
	}
}
