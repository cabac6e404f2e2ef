// Package caaml parses SnowPilot CAAML snow pit documents into a typed
// in-memory model.
//
// # Data Source
//
// Snow pit observations are recorded in the field with SnowPilot
// (https://snowpilot.org) and exported as CAAML XML — the IACS snow profile
// exchange schema. Each document describes one pit: metadata, stratigraphy,
// density and temperature profiles, stability tests, and an optional
// SnowPilot extension block describing collapse ("whumpf") observations.
//
// Three XML namespaces appear in a document:
//
//	CAAML profile schema  http://caaml.org/Schemas/SnowProfileIACS/v6.0.3 (or v6.0.2)
//	GML geography markup  http://www.opengis.net/gml
//	SnowPilot extension   http://www.snowpilot.org/Schemas/caaml
//
// Namespace resolution is by URI, never by prefix spelling, so documents may
// bind any prefixes they like. A caaml.org or snowpilot.org URI this package
// does not recognize aborts the parse with [ErrUnknownNamespace].
//
// # Field Data Conventions
//
// Grain form codes (ICSSG taxonomy):
//
//	1–2 uppercase letters name the basic class (PP precipitation particles,
//	DF decomposing/fragmented, RG rounded grains, FC faceted crystals,
//	DH depth hoar, SH surface hoar, MF melt forms, IF ice formations,
//	MM machine made snow), optionally followed by lowercase modifier
//	letters naming a sub-class: "FCxr" = faceted crystals, rounding.
//	Unknown modifiers are not an error — the raw code is kept verbatim and
//	the sub-class is simply absent. See [ClassifyGrainForm].
//
// Hand hardness codes:
//
//	A total order over hand-test resistance:
//	F- < F < F+ < 4F- < 4F < 4F+ < 1F- < 1F < 1F+ < P- < P < P+ < K- < K < K+ < I.
//	Layers may carry a single code or a top/bottom pair denoting a gradient.
//	See [CompareHardness].
//
// Extended column test scores:
//
//	ECTP21  propagation across the column on tap 21
//	ECTN11  fracture without propagation on tap 11
//	ECTPV   fracture on isolation, before any tap
//	ECTX    no fracture within 30 taps
//
// Depth convention:
//
//	Depths are stored exactly as recorded. The profile's measurement
//	direction ("top down" or "bottom up") is surfaced as a field so callers
//	interpret depth arithmetic consistently; this package never renormalizes.
//
// # Error Policy
//
// Field observers use inconsistent tooling, so the parser salvages as much as
// it can: only a document that is not well-formed XML, lacks the measurement
// container, or declares an unknown schema version fails outright. Every
// field-level problem — a bad number, an unrecognized code, a depth-coverage
// discrepancy — leaves the field absent and appends a [Diagnostic] to the
// result. Callers distinguish "parse failed" from "parsed with N diagnostics"
// and apply their own tolerance policy.
package caaml
