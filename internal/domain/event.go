package domain

import (
	"context"
	"time"

	"github.com/whiteroomlabs/snowpit-etl/internal/caaml"
)

// RawDocument represents an unprocessed message from the source topic. Value
// holds one complete CAAML XML export.
type RawDocument struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// PitEvent is the domain-rich representation after parsing: the full pit
// plus derived summary fields for downstream consumers that filter without
// walking the profile.
type PitEvent struct {
	PitID         string `json:"pit_id"`
	SchemaVersion string `json:"schema_version"`

	RecordTime *time.Time `json:"record_time,omitempty"`
	Region     *string    `json:"region,omitempty"`
	Country    *string    `json:"country,omitempty"`

	LayerCount      int `json:"layer_count"`
	TestCount       int `json:"test_count"`
	DiagnosticCount int `json:"diagnostic_count"`

	WeakLayerDepth      *caaml.Measurement `json:"weak_layer_depth,omitempty"`
	PropagationObserved bool               `json:"propagation_observed"`

	Pit *caaml.SnowPit `json:"pit"`

	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
