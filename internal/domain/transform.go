package domain

import (
	"fmt"

	"github.com/whiteroomlabs/snowpit-etl/internal/caaml"
)

// ParseRawDocument parses a RawDocument's CAAML payload into a PitEvent.
// Field-level parse problems do not fail the transform; they surface as the
// event's diagnostic count and travel with the pit.
func ParseRawDocument(raw RawDocument) (PitEvent, error) {
	pit, err := caaml.Parse(raw.Value)
	if err != nil {
		return PitEvent{}, fmt.Errorf("parse pit document: %w", err)
	}
	return BuildPitEvent(pit), nil
}

// BuildPitEvent derives the summary event for a parsed pit. ProcessedAt
// comes from the package clock so tests can freeze it.
func BuildPitEvent(pit *caaml.SnowPit) PitEvent {
	return PitEvent{
		PitID:         pit.CoreInfo.PitID,
		SchemaVersion: pit.SchemaVersion,

		RecordTime: pit.CoreInfo.RecordTime,
		Region:     pit.CoreInfo.Location.Region,
		Country:    pit.CoreInfo.Location.Country,

		LayerCount:      len(pit.Profile.Layers),
		TestCount:       len(pit.StabilityTests.All()),
		DiagnosticCount: len(pit.Diagnostics),

		WeakLayerDepth:      WeakLayerDepth(pit),
		PropagationObserved: PropagationObserved(pit),

		Pit:         pit,
		ProcessedAt: clock.Now().UTC(),
	}
}

// WeakLayerDepth returns the depth-top of the first layer flagged as the
// layer of concern, or nil when no layer is flagged.
func WeakLayerDepth(pit *caaml.SnowPit) *caaml.Measurement {
	concern := pit.Profile.LayersOfConcern()
	if len(concern) == 0 {
		return nil
	}
	return concern[0].DepthTop
}

// PropagationObserved reports whether the pit holds direct propagation
// evidence: a propagating ECT score, a PST fracture that ran to the end of
// the column, or a whumpf observed near the pit.
func PropagationObserved(pit *caaml.SnowPit) bool {
	for _, ect := range pit.StabilityTests.ECT {
		if ect.Result != nil && ect.Result.Propagation {
			return true
		}
	}
	for _, pst := range pit.StabilityTests.PST {
		if pst.Propagated != nil && *pst.Propagated {
			return true
		}
	}
	if w := pit.Whumpf; w != nil {
		if w.WhumpfCracking != nil && *w.WhumpfCracking {
			return true
		}
		if w.WhumpfNoCracking != nil && *w.WhumpfNoCracking {
			return true
		}
	}
	return false
}
