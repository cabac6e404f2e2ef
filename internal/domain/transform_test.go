package domain_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whiteroomlabs/snowpit-etl/internal/caaml"
	"github.com/whiteroomlabs/snowpit-etl/internal/domain"
)

func fixtureDocument(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join("..", "caaml", "testdata", "snowpit-81506.caaml.xml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestParseRawDocument(t *testing.T) {
	frozen := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	defer domain.SetClock(nil)

	raw := domain.RawDocument{
		Key:   []byte("81506"),
		Value: fixtureDocument(t),
		Topic: "raw-pit-documents",
	}

	event, err := domain.ParseRawDocument(raw)
	require.NoError(t, err)

	assert.Equal(t, "81506", event.PitID)
	assert.Equal(t, "http://caaml.org/Schemas/SnowProfileIACS/v6.0.3", event.SchemaVersion)
	assert.Equal(t, 7, event.LayerCount)
	assert.Equal(t, 6, event.TestCount)
	assert.Equal(t, 0, event.DiagnosticCount)
	require.NotNil(t, event.Region)
	assert.Equal(t, "MT", *event.Region)
	require.NotNil(t, event.Country)
	assert.Equal(t, "US", *event.Country)
	require.NotNil(t, event.RecordTime)

	require.NotNil(t, event.WeakLayerDepth)
	assert.Equal(t, caaml.Measurement{Value: 56, Unit: "cm"}, *event.WeakLayerDepth)
	assert.True(t, event.PropagationObserved)

	require.NotNil(t, event.Pit)
	assert.Equal(t, frozen, event.ProcessedAt)
}

func TestParseRawDocument_InvalidPayload(t *testing.T) {
	_, err := domain.ParseRawDocument(domain.RawDocument{Value: []byte("not xml")})
	require.Error(t, err)
	assert.ErrorIs(t, err, caaml.ErrMalformedDocument)
}

func TestPropagationObserved(t *testing.T) {
	taps := 21
	yes, no := true, false

	tests := []struct {
		name string
		pit  caaml.SnowPit
		want bool
	}{
		{
			name: "empty pit",
			pit:  caaml.SnowPit{},
			want: false,
		},
		{
			name: "propagating ect",
			pit: caaml.SnowPit{StabilityTests: caaml.StabilityTests{
				ECT: []caaml.ExtColumnTest{{Result: &caaml.ECTResult{Propagation: true, Taps: &taps}}},
			}},
			want: true,
		},
		{
			name: "non-propagating ect only",
			pit: caaml.SnowPit{StabilityTests: caaml.StabilityTests{
				ECT: []caaml.ExtColumnTest{{Result: &caaml.ECTResult{Propagation: false, Taps: &taps}}},
			}},
			want: false,
		},
		{
			name: "undecoded ect score ignored",
			pit: caaml.SnowPit{StabilityTests: caaml.StabilityTests{
				ECT: []caaml.ExtColumnTest{{}},
			}},
			want: false,
		},
		{
			name: "pst ran to end",
			pit: caaml.SnowPit{StabilityTests: caaml.StabilityTests{
				PST: []caaml.PropSawTest{{Propagated: &yes}},
			}},
			want: true,
		},
		{
			name: "pst arrested",
			pit: caaml.SnowPit{StabilityTests: caaml.StabilityTests{
				PST: []caaml.PropSawTest{{Propagated: &no}},
			}},
			want: false,
		},
		{
			name: "whumpf with cracking",
			pit:  caaml.SnowPit{Whumpf: &caaml.WhumpfData{WhumpfCracking: &yes}},
			want: true,
		},
		{
			name: "whumpf without cracking",
			pit:  caaml.SnowPit{Whumpf: &caaml.WhumpfData{WhumpfNoCracking: &yes}},
			want: true,
		},
		{
			name: "cracking only is not a collapse",
			pit:  caaml.SnowPit{Whumpf: &caaml.WhumpfData{CrackingNoWhumpf: &yes}},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.PropagationObserved(&tc.pit))
		})
	}
}

func TestWeakLayerDepth(t *testing.T) {
	depth := caaml.Measurement{Value: 56, Unit: "cm"}
	pit := caaml.SnowPit{Profile: caaml.SnowProfile{Layers: []caaml.Layer{
		{DepthTop: &caaml.Measurement{Value: 0, Unit: "cm"}},
		{DepthTop: &depth, LayerOfConcern: true},
	}}}

	got := domain.WeakLayerDepth(&pit)
	require.NotNil(t, got)
	assert.Equal(t, depth, *got)

	assert.Nil(t, domain.WeakLayerDepth(&caaml.SnowPit{}))
}
