package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProspectQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   ProspectQuery
		wantErr bool
	}{
		{"valid with 3", NewProspectQuery("Bakery", "Downtown", 3), false},
		{"valid with 5", NewProspectQuery("Bakery", "Downtown", 5), false},
		{"valid with 10", NewProspectQuery("Dentists", "Centro, São Paulo - SP", 10), false},
		{"blank business type", NewProspectQuery("   ", "Downtown", 5), true},
		{"blank location", NewProspectQuery("Bakery", "", 5), true},
		{"count not offered", NewProspectQuery("Bakery", "Downtown", 4), true},
		{"zero count", NewProspectQuery("Bakery", "Downtown", 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProspectQuery_TrimsFields(t *testing.T) {
	q := NewProspectQuery("  Bakery ", "\tDowntown\n", 5)
	assert.Equal(t, "Bakery", q.BusinessType)
	assert.Equal(t, "Downtown", q.Location)
	assert.False(t, q.IsZero())
	assert.True(t, ProspectQuery{}.IsZero())
}

func TestNewRouteQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"keeps order", []string{"Office", "City Hall"}, []string{"Office", "City Hall"}},
		{"trims entries", []string{"  Office ", "City Hall\t"}, []string{"Office", "City Hall"}},
		{"drops blanks", []string{"Office", "", "   ", "City Hall"}, []string{"Office", "City Hall"}},
		{"drops duplicates after trim", []string{"Office", " Office", "City Hall", "Office"}, []string{"Office", "City Hall"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRouteQuery(tt.raw).Stops)
		})
	}
}

func TestRouteQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		wantErr bool
	}{
		{"two stops", []string{"Office", "City Hall"}, false},
		{"many stops", []string{"A", "B", "C", "D"}, false},
		{"one stop", []string{"Office"}, true},
		{"one stop after blanks removed", []string{"Office", "  ", ""}, true},
		{"duplicate collapses to one", []string{"Office", "Office "}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRouteQuery(tt.raw).Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
