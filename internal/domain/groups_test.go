package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownGroups(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5, 6, 7, 9}, KnownGroups())
}

func TestLookupGroup_Unknown(t *testing.T) {
	for _, g := range []int{-1, 0, 1, 2, 8, 10, 15, 16} {
		_, ok := LookupGroup(g)
		assert.False(t, ok, "group %d", g)
	}
}

func TestLookupGroup_Offsets(t *testing.T) {
	for _, g := range KnownGroups() {
		defs, ok := LookupGroup(g)
		require.True(t, ok)
		for i, def := range defs {
			if def == nil {
				continue
			}
			assert.Equal(t, i*2, def.ByteOffset, "group %d slot %d", g, i+1)
			assert.Equal(t, 1, def.CodeLow, "group %d slot %d", g, i+1)
		}
	}
}

func TestLookupGroup_Group5SecondSlotUndefined(t *testing.T) {
	defs, ok := LookupGroup(5)
	require.True(t, ok)

	assert.Nil(t, defs[1])
	require.NotNil(t, defs[3])
	assert.Equal(t, "Y", defs[3].Label)
	assert.Equal(t, "C", defs[0].Label)
	assert.Equal(t, "X", defs[2].Label)
}

func TestLookupGroup_Entries(t *testing.T) {
	tests := []struct {
		group int
		slot  int
		want  VariableDefinition
	}{
		{3, 0, VariableDefinition{Label: "S", UnitScale: 0.01, Base: -501, CodeLow: 1, CodeHigh: 4501, ByteOffset: 0}},
		{3, 1, VariableDefinition{Label: "A", UnitScale: 0.01, Base: -8801, CodeLow: 1, CodeHigh: 14601, ByteOffset: 2}},
		{3, 2, VariableDefinition{Label: "Q", UnitScale: 0.01, Base: -1, CodeLow: 1, CodeHigh: 4001, ByteOffset: 4}},
		{3, 3, VariableDefinition{Label: "R", UnitScale: 0.1, Base: -1, CodeLow: 1, CodeHigh: 1001, ByteOffset: 6}},
		{4, 0, VariableDefinition{Label: "W", UnitScale: 0.01, Base: -1, CodeLow: 1, CodeHigh: 10221, ByteOffset: 0}},
		{4, 1, VariableDefinition{Label: "U", UnitScale: 0.01, Base: -10221, CodeLow: 1, CodeHigh: 20441, ByteOffset: 2}},
		{4, 2, VariableDefinition{Label: "V", UnitScale: 0.01, Base: -10221, CodeLow: 1, CodeHigh: 20441, ByteOffset: 4}},
		{4, 3, VariableDefinition{Label: "P", UnitScale: 0.01, Base: 86999, CodeLow: 1, CodeHigh: 20461, ByteOffset: 6}},
		{5, 0, VariableDefinition{Label: "C", UnitScale: 0.1, Base: -1, CodeLow: 1, CodeHigh: 81, ByteOffset: 0}},
		{5, 2, VariableDefinition{Label: "X", UnitScale: 0.1, Base: -30001, CodeLow: 1, CodeHigh: 60001, ByteOffset: 4}},
		{5, 3, VariableDefinition{Label: "Y", UnitScale: 0.1, Base: -30001, CodeLow: 1, CodeHigh: 60001, ByteOffset: 6}},
		{6, 0, VariableDefinition{Label: "D=S-A", UnitScale: 0.01, Base: -6301, CodeLow: 1, CodeHigh: 19101, ByteOffset: 0}},
		{6, 1, VariableDefinition{Label: "E=(S-A)*W", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 2}},
		{6, 2, VariableDefinition{Label: "F=QS-Q", UnitScale: 0.01, Base: -4001, CodeLow: 1, CodeHigh: 8001, ByteOffset: 4}},
		{6, 3, VariableDefinition{Label: "G=(QS-Q)*W", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 6}},
		{7, 0, VariableDefinition{Label: "UA", UnitScale: 0.1, Base: -20001, CodeLow: 1, CodeHigh: 40001, ByteOffset: 0}},
		{7, 1, VariableDefinition{Label: "VA", UnitScale: 0.1, Base: -20001, CodeLow: 1, CodeHigh: 40001, ByteOffset: 2}},
		{7, 2, VariableDefinition{Label: "UQ", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 4}},
		{7, 3, VariableDefinition{Label: "VQ", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 6}},
		{9, 0, VariableDefinition{Label: "FU", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 0}},
		{9, 1, VariableDefinition{Label: "FV", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 2}},
		{9, 2, VariableDefinition{Label: "B1=W**3", UnitScale: 0.5, Base: -1, CodeLow: 1, CodeHigh: 65535, ByteOffset: 4}},
		{9, 3, VariableDefinition{Label: "B2=W**3", UnitScale: 5, Base: -1, CodeLow: 1, CodeHigh: 65535, ByteOffset: 6}},
	}

	defined := 0
	for _, g := range KnownGroups() {
		defs, _ := LookupGroup(g)
		for _, def := range defs {
			if def != nil {
				defined++
			}
		}
	}
	require.Equal(t, len(tests), defined, "every defined slot has a row")

	for _, tt := range tests {
		t.Run(fmt.Sprintf("group%d/slot%d", tt.group, tt.slot+1), func(t *testing.T) {
			defs, ok := LookupGroup(tt.group)
			require.True(t, ok)
			require.NotNil(t, defs[tt.slot])
			assert.Equal(t, tt.want, *defs[tt.slot])
		})
	}
}

func TestLookupGroup_ReturnsCopies(t *testing.T) {
	defs, _ := LookupGroup(3)
	defs[0].Label = "changed"

	again, _ := LookupGroup(3)
	assert.Equal(t, "S", again[0].Label)
}
