package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() Set {
	return NewSet([]Grant{
		{ModuleID: 7, ModuleName: "Leave", CanView: true, CanCreate: true},
		{ModuleID: 3, ModuleName: "Profile", CanView: true, CanEdit: true},
		{ModuleID: 9, ModuleName: "Payroll"},
	})
}

func TestSet_Has(t *testing.T) {
	s := sampleSet()

	tests := []struct {
		name   string
		module int
		kind   Kind
		want   bool
	}{
		{"leave view", 7, View, true},
		{"leave create", 7, Create, true},
		{"leave delete denied", 7, Delete, false},
		{"profile edit", 3, Edit, true},
		{"payroll nothing", 9, View, false},
		{"unknown module", 42, View, false},
		{"unknown kind", 7, Kind("approve"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Has(tt.module, tt.kind))
		})
	}
}

func TestSet_HasByName(t *testing.T) {
	s := sampleSet()
	assert.True(t, s.HasByName("leave", Create))
	assert.True(t, s.HasByName(" PROFILE ", Edit))
	assert.False(t, s.HasByName("payroll", View))
	assert.False(t, s.HasByName("missing", View))
}

func TestZeroSetDenies(t *testing.T) {
	var s Set
	assert.False(t, s.Has(1, View))
	assert.False(t, s.HasByName("leave", View))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Grants())
}

func TestSet_GrantsOrderedAndReplaced(t *testing.T) {
	s := NewSet([]Grant{
		{ModuleID: 5, CanView: false},
		{ModuleID: 1, CanView: true},
		{ModuleID: 5, CanView: true},
	})
	grants := s.Grants()
	require.Len(t, grants, 2)
	assert.Equal(t, 1, grants[0].ModuleID)
	assert.Equal(t, 5, grants[1].ModuleID)
	assert.True(t, s.Has(5, View))

	g, ok := s.Lookup(5)
	assert.True(t, ok)
	assert.True(t, g.CanView)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Edit ")
	require.NoError(t, err)
	assert.Equal(t, Edit, k)

	_, err = ParseKind("approve")
	assert.Error(t, err)
}
