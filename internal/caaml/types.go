package caaml

import "time"

// Measurement is a unit-tagged scalar. Values are never exposed as bare
// numbers; Unit is "" when the source omitted the uom attribute, never
// inferred.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SnowPit is the aggregate root for one parsed CAAML document. It owns all
// descendants exclusively; nothing is shared between parses and nothing is
// mutated after Parse returns.
type SnowPit struct {
	SchemaVersion string `json:"schema_version"` // profile namespace URI

	CoreInfo       CoreInfo       `json:"core_info"`
	Profile        SnowProfile    `json:"snow_profile"`
	StabilityTests StabilityTests `json:"stability_tests"`

	// Whumpf is nil unless the SnowPilot extension block is present.
	Whumpf *WhumpfData `json:"whumpf_data,omitempty"`

	// Diagnostics lists every non-fatal problem found during the parse.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// CoreInfo carries pit identity, observer, location, and weather metadata.
type CoreInfo struct {
	PitID   string  `json:"pit_id"`
	PitName *string `json:"pit_name,omitempty"`
	Comment *string `json:"comment,omitempty"`

	RecordTime   *time.Time `json:"record_time,omitempty"`
	ReportTime   *time.Time `json:"report_time,omitempty"`
	LastEditTime *time.Time `json:"last_edit_time,omitempty"`

	User     User              `json:"user"`
	Location Location          `json:"location"`
	Weather  WeatherConditions `json:"weather"`
}

// User identifies the observer. Professional pits carry an Operation block;
// its presence is what sets Professional.
type User struct {
	OperationID   *string `json:"operation_id,omitempty"`
	OperationName *string `json:"operation_name,omitempty"`
	Professional  bool    `json:"professional"`
	UserID        *string `json:"user_id,omitempty"`
	Username      *string `json:"username,omitempty"`
}

// Location describes where the pit was dug.
type Location struct {
	Latitude   *float64     `json:"latitude,omitempty"`
	Longitude  *float64     `json:"longitude,omitempty"`
	Elevation  *Measurement `json:"elevation,omitempty"`
	Aspect     *string      `json:"aspect,omitempty"` // compass sector, e.g. "NE"
	SlopeAngle *Measurement `json:"slope_angle,omitempty"`
	Country    *string      `json:"country,omitempty"`
	Region     *string      `json:"region,omitempty"`

	// PitNearAvalanche and its location qualifier ("crown", "flank", …)
	// come from the SnowPilot extension.
	PitNearAvalanche         *bool   `json:"pit_near_avalanche,omitempty"`
	PitNearAvalancheLocation *string `json:"pit_near_avalanche_location,omitempty"`
}

// WeatherConditions holds the observation-time weather block. Every field is
// independently optional.
type WeatherConditions struct {
	SkyCondition  *string      `json:"sky_condition,omitempty"`  // e.g. "SCT"
	Precipitation *string      `json:"precipitation,omitempty"`  // type/intensity code, e.g. "Nil"
	AirTemp       *Measurement `json:"air_temp,omitempty"`
	WindSpeed     *string      `json:"wind_speed,omitempty"`     // code, e.g. "C" (calm)
	WindDirection *string      `json:"wind_direction,omitempty"` // compass sector
}

// compassSectors is the set of valid aspect / wind direction values.
var compassSectors = map[string]bool{
	"N": true, "NNE": true, "NE": true, "ENE": true,
	"E": true, "ESE": true, "SE": true, "SSE": true,
	"S": true, "SSW": true, "SW": true, "WSW": true,
	"W": true, "WNW": true, "NW": true, "NNW": true,
}
