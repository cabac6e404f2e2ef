package caaml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// collector accumulates non-fatal diagnostics during a parse.
type collector struct {
	diags []Diagnostic
}

func (c *collector) add(path string, code DiagCode, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Path:   path,
		Code:   code,
		Detail: fmt.Sprintf(format, args...),
	})
}

// scalarText pulls the text of the first matching descendant. Missing
// element, or present-but-empty element, both report absent.
func scalarText(root *element, name xml.Name) (string, bool) {
	el := root.find(name)
	if el == nil {
		return "", false
	}
	s := el.trimmedText()
	if s == "" {
		return "", false
	}
	return s, true
}

// optString is scalarText with a pointer result for optional model fields.
func optString(root *element, name xml.Name) *string {
	if s, ok := scalarText(root, name); ok {
		return &s
	}
	return nil
}

// measurement pulls a unit-tagged scalar from the first matching descendant:
// the numeric element text paired with its uom attribute. A missing uom
// yields Unit == "", never an inferred unit. An unparseable number is a
// field-level diagnostic and the field stays absent.
func (c *collector) measurement(root *element, name xml.Name, path string) *Measurement {
	el := root.find(name)
	if el == nil {
		return nil
	}
	return c.measurementOf(el, path)
}

// measurementOf reads a unit-tagged scalar directly from el.
func (c *collector) measurementOf(el *element, path string) *Measurement {
	s := el.trimmedText()
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.add(path, DiagInvalidNumeric, "cannot parse %q as a number", s)
		return nil
	}
	return &Measurement{Value: v, Unit: el.attr("", "uom")}
}

// boolFlag interprets case-insensitive "true"/"false" element text. Any
// other text is a diagnostic, not a silent absent.
func (c *collector) boolFlag(root *element, name xml.Name, path string) *bool {
	el := root.find(name)
	if el == nil {
		return nil
	}
	return c.boolOf(el, path)
}

func (c *collector) boolOf(el *element, path string) *bool {
	s := el.trimmedText()
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		c.add(path, DiagInvalidBoolean, "expected true/false, got %q", s)
		return nil
	}
}

// floatOf parses the element text as a float64, diagnosing failures.
func (c *collector) floatOf(el *element, path string) *float64 {
	s := el.trimmedText()
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.add(path, DiagInvalidNumeric, "cannot parse %q as a number", s)
		return nil
	}
	return &v
}

// timestampLayouts covers the formats SnowPilot exports have been seen to
// use for timePosition and the metaData report/edit times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// timestamp pulls an optional timestamp from the first matching descendant.
func (c *collector) timestamp(root *element, name xml.Name, path string) *time.Time {
	s, ok := scalarText(root, name)
	if !ok {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	c.add(path, DiagInvalidTimestamp, "cannot parse %q as a timestamp", s)
	return nil
}

// compassSector validates an aspect / wind direction value against the
// 16-sector compass enumeration.
func (c *collector) compassSector(root *element, name xml.Name, path string) *string {
	s, ok := scalarText(root, name)
	if !ok {
		return nil
	}
	if !compassSectors[s] {
		c.add(path, DiagUnrecognizedCode, "%q is not a compass sector", s)
		return nil
	}
	return &s
}
