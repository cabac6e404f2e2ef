package caaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/whiteroomlabs/snowpit-etl/internal/caaml"
)

func TestClassifyGrainForm(t *testing.T) {
	tests := []struct {
		name string
		code string
		want caaml.GrainClassification
	}{
		{
			name: "basic class only",
			code: "FC",
			want: caaml.GrainClassification{
				Code:      "FC",
				BasicCode: "FC",
				BasicName: "Faceted Crystals",
			},
		},
		{
			name: "class with sub-class",
			code: "FCxr",
			want: caaml.GrainClassification{
				Code:      "FCxr",
				BasicCode: "FC",
				BasicName: "Faceted Crystals",
				SubCode:   "xr",
				SubName:   "Rounding Faceted Particles",
			},
		},
		{
			name: "same suffix resolves per class",
			code: "SHxr",
			want: caaml.GrainClassification{
				Code:      "SHxr",
				BasicCode: "SH",
				BasicName: "Surface Hoar",
				SubCode:   "xr",
				SubName:   "Rounding Surface Hoar",
			},
		},
		{
			name: "precipitation particle sub-class",
			code: "PPgp",
			want: caaml.GrainClassification{
				Code:      "PPgp",
				BasicCode: "PP",
				BasicName: "Precipitation Particles",
				SubCode:   "gp",
				SubName:   "Graupel",
			},
		},
		{
			name: "melt-freeze crust",
			code: "MFcr",
			want: caaml.GrainClassification{
				Code:      "MFcr",
				BasicCode: "MF",
				BasicName: "Melt Forms",
				SubCode:   "cr",
				SubName:   "Melt-Freeze Crust",
			},
		},
		{
			name: "unknown suffix keeps basic class",
			code: "RGzz",
			want: caaml.GrainClassification{
				Code:      "RGzz",
				BasicCode: "RG",
				BasicName: "Rounded Grains",
			},
		},
		{
			name: "unknown prefix keeps raw code only",
			code: "QQxr",
			want: caaml.GrainClassification{Code: "QQxr"},
		},
		{
			name: "too short",
			code: "F",
			want: caaml.GrainClassification{Code: "F"},
		},
		{
			name: "empty",
			code: "",
			want: caaml.GrainClassification{Code: ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, caaml.ClassifyGrainForm(tc.code))
		})
	}
}

func TestClassifyGrainForm_AllBasicClasses(t *testing.T) {
	codes := []string{"PP", "MM", "DF", "RG", "FC", "DH", "SH", "MF", "IF"}
	for _, code := range codes {
		gc := caaml.ClassifyGrainForm(code)
		assert.Equal(t, code, gc.BasicCode, "code %s should classify to itself", code)
		assert.NotEmpty(t, gc.BasicName)
	}
}

func TestClassifyGrainForm_Deterministic(t *testing.T) {
	first := caaml.ClassifyGrainForm("DHcp")
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, caaml.ClassifyGrainForm("DHcp"))
	}
}
