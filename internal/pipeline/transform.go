package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/whiteroomlabs/snowpit-etl/internal/domain"
	"github.com/whiteroomlabs/snowpit-etl/internal/observability"
)

// PitTransformer implements Transformer by parsing CAAML payloads into pit
// events. A document that parses with field-level diagnostics still produces
// an event; only fatal parse errors fail the transform.
type PitTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a PitTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *PitTransformer {
	return &PitTransformer{logger: logger, metrics: metrics}
}

func (t *PitTransformer) Transform(_ context.Context, raw domain.RawDocument) (domain.OutputEvent, error) {
	event, err := domain.ParseRawDocument(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	if event.DiagnosticCount > 0 {
		t.logger.Warn("document parsed with diagnostics",
			"pit_id", event.PitID,
			"diagnostics", event.DiagnosticCount,
		)
		if t.metrics != nil {
			t.metrics.ParseDiagnostics.Add(float64(event.DiagnosticCount))
		}
	}

	return serializeEvent(event)
}

// serializeEvent marshals a PitEvent into the sink message shape. Events are
// keyed by pit id so replays compact to the latest version of a pit.
func serializeEvent(event domain.PitEvent) (domain.OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize pit event: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(event.PitID),
		Value: data,
		Headers: map[string]string{
			"schema_version":   event.SchemaVersion,
			"diagnostic_count": strconv.Itoa(event.DiagnosticCount),
			"processed_at":     event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
