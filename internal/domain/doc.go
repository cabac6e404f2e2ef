// Package domain models snow pit observation events flowing through the
// pipeline.
//
// # Data Source
//
// Pit documents originate from SnowPilot (https://snowpilot.org), a public
// archive of avalanche snowpack observations. Each document is one CAAML XML
// export describing a single pit: stratigraphy, snow temperatures, stability
// tests, and observer metadata. The upstream fetcher publishes each raw XML
// export to the Kafka source topic; this package turns a parsed pit into the
// summary event destined for the sink topic.
//
// # Event Summary Fields
//
// A PitEvent carries the full parsed pit plus a handful of derived fields
// used for downstream filtering without deserializing the whole profile:
//
//	LayerCount       number of stratigraphy layers
//	TestCount        stability tests across all families
//	DiagnosticCount  non-fatal parse problems recorded for the document
//	WeakLayerDepth   depth-top of the first layer flagged as the layer of
//	                 concern, when one is flagged
//
// # Instability Evidence
//
// PropagationObserved is true when the pit contains direct evidence of a
// snowpack capable of propagating a fracture:
//
//	ECT  any score decoded as propagating (ECTP<n> or ECTPV)
//	PST  any fracture that ran to the end of the column ("End")
//	Whumpf  a collapse observed near the pit, with or without cracking
//
// It is evidence aggregation only, not a stability rating: absence of
// evidence in a sparse pit says nothing about the slope.
//
// # Event Keys
//
// Output events are keyed by the source pit id, so replays and re-fetches of
// the same pit compact to the latest version downstream.
package domain
