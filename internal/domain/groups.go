package domain

// VariableDefinition describes how one variable slot of a group is scaled.
// ByteOffset is the slot's position (0, 2, 4 or 6) inside each 8-byte
// statistics block.
type VariableDefinition struct {
	Label      string
	UnitScale  float64
	Base       int
	CodeLow    int
	CodeHigh   int
	ByteOffset int
}

// SlotCount is the number of variable slots in every record.
const SlotCount = 4

// groupTable maps the 4-bit group code to its slot definitions. A nil slot is
// undefined; a group with no slots at all is unrecognised.
//
// Group 5 has no variable in slot 2; its records carry three variables.
var groupTable = [16][SlotCount]*VariableDefinition{
	3: {
		{Label: "S", UnitScale: 0.01, Base: -501, CodeLow: 1, CodeHigh: 4501, ByteOffset: 0},
		{Label: "A", UnitScale: 0.01, Base: -8801, CodeLow: 1, CodeHigh: 14601, ByteOffset: 2},
		{Label: "Q", UnitScale: 0.01, Base: -1, CodeLow: 1, CodeHigh: 4001, ByteOffset: 4},
		{Label: "R", UnitScale: 0.1, Base: -1, CodeLow: 1, CodeHigh: 1001, ByteOffset: 6},
	},
	4: {
		{Label: "W", UnitScale: 0.01, Base: -1, CodeLow: 1, CodeHigh: 10221, ByteOffset: 0},
		{Label: "U", UnitScale: 0.01, Base: -10221, CodeLow: 1, CodeHigh: 20441, ByteOffset: 2},
		{Label: "V", UnitScale: 0.01, Base: -10221, CodeLow: 1, CodeHigh: 20441, ByteOffset: 4},
		{Label: "P", UnitScale: 0.01, Base: 86999, CodeLow: 1, CodeHigh: 20461, ByteOffset: 6},
	},
	5: {
		{Label: "C", UnitScale: 0.1, Base: -1, CodeLow: 1, CodeHigh: 81, ByteOffset: 0},
		nil,
		{Label: "X", UnitScale: 0.1, Base: -30001, CodeLow: 1, CodeHigh: 60001, ByteOffset: 4},
		{Label: "Y", UnitScale: 0.1, Base: -30001, CodeLow: 1, CodeHigh: 60001, ByteOffset: 6},
	},
	6: {
		{Label: "D=S-A", UnitScale: 0.01, Base: -6301, CodeLow: 1, CodeHigh: 19101, ByteOffset: 0},
		{Label: "E=(S-A)*W", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 2},
		{Label: "F=QS-Q", UnitScale: 0.01, Base: -4001, CodeLow: 1, CodeHigh: 8001, ByteOffset: 4},
		{Label: "G=(QS-Q)*W", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 6},
	},
	7: {
		{Label: "UA", UnitScale: 0.1, Base: -20001, CodeLow: 1, CodeHigh: 40001, ByteOffset: 0},
		{Label: "VA", UnitScale: 0.1, Base: -20001, CodeLow: 1, CodeHigh: 40001, ByteOffset: 2},
		{Label: "UQ", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 4},
		{Label: "VQ", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 6},
	},
	9: {
		{Label: "FU", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 0},
		{Label: "FV", UnitScale: 0.1, Base: -10001, CodeLow: 1, CodeHigh: 20001, ByteOffset: 2},
		{Label: "B1=W**3", UnitScale: 0.5, Base: -1, CodeLow: 1, CodeHigh: 65535, ByteOffset: 4},
		{Label: "B2=W**3", UnitScale: 5, Base: -1, CodeLow: 1, CodeHigh: 65535, ByteOffset: 6},
	},
}

// LookupGroup returns the slot definitions for a group code. The bool is false
// when the group is not recognised. Returned definitions are copies; nil
// entries mark undefined slots.
func LookupGroup(group int) ([SlotCount]*VariableDefinition, bool) {
	var out [SlotCount]*VariableDefinition
	if group < 0 || group >= len(groupTable) {
		return out, false
	}
	found := false
	for i, def := range groupTable[group] {
		if def == nil {
			continue
		}
		d := *def
		out[i] = &d
		found = true
	}
	return out, found
}

// KnownGroups lists the recognised group codes in ascending order.
func KnownGroups() []int {
	var groups []int
	for g, slots := range groupTable {
		for _, def := range slots {
			if def != nil {
				groups = append(groups, g)
				break
			}
		}
	}
	return groups
}
