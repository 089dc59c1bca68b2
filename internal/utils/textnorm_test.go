package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"shouted name", "ALMOND MILK", "Almond Milk"},
		{"mixed case untouched", "2% Milk", "2% Milk"},
		{"already normalized", "Almond Milk", "Almond Milk"},
		{"all caps with digits", "2% MILK", "2% Milk"},
		{"hyphenated", "COCA-COLA", "Coca-Cola"},
		{"short acronym untouched", "GU", "GU"},
		{"empty", "", ""},
		{"digits only", "12345", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCase(tt.in))
		})
	}
}

func TestNormalizeCaseIdempotent(t *testing.T) {
	inputs := []string{"ALMOND MILK", "2% Milk", "COCA-COLA", "Greek YOGURT", ""}
	for _, in := range inputs {
		once := NormalizeCase(in)
		assert.Equal(t, once, NormalizeCase(once), "normalize(normalize(%q))", in)
	}
}
