package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryTypeValid(t *testing.T) {
	assert.True(t, CategoryTypeNeed.Valid())
	assert.True(t, CategoryTypeWant.Valid())
	assert.False(t, CategoryType("").Valid())
	assert.False(t, CategoryType("Need").Valid())
}

func TestParseNeedWant(t *testing.T) {
	tests := []struct {
		input  string
		want   NeedWant
		wantOK bool
	}{
		{"auto", NeedWantAuto, true},
		{"need", NeedWantNeed, true},
		{"want", NeedWantWant, true},
		{"unassigned", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseNeedWant(tt.input)
		assert.Equal(t, tt.wantOK, ok, "ParseNeedWant(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseNeedWant(%q)", tt.input)
	}
}

func TestClassificationLabel(t *testing.T) {
	assert.Equal(t, "Need", ClassificationNeed.Label())
	assert.Equal(t, "Want", ClassificationWant.Label())
	assert.Equal(t, "Unassigned", ClassificationUnassigned.Label())
	assert.Equal(t, "Unassigned", Classification("").Label())
}

func TestColumnMappingValid(t *testing.T) {
	assert.True(t, DefaultColumnMapping().Valid())
	assert.True(t, ColumnMapping{}.Valid(), "all-zero indices are legal")
	assert.False(t, ColumnMapping{DateColumn: -1}.Valid())
}
