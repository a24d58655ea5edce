// Package model describes a parsed multinomial logit formula: the
// dependent variable, an ordered set of main effects, and ordered
// interaction groups referencing them.
package model

import "fmt"

// Role tags how a main effect enters the design matrix.
type Role int

const (
	// RoleCategorical marks a variable encoded via center-point or
	// dummy parameterization.
	RoleCategorical Role = iota
	// RoleDirect marks a variable entered as its raw numeric value.
	RoleDirect
)

// MainEffect is one declared main effect: a dataset variable position
// and whether it is direct (continuous) or categorical.
type MainEffect struct {
	VarIndex int
	Direct   bool
}

// Role returns the effect's tagged role.
func (m MainEffect) Role() Role {
	if m.Direct {
		return RoleDirect
	}
	return RoleCategorical
}

// Descriptor is a parsed model: dependent variable, main effects, and
// interaction groups (each an ordered list of indices into
// MainEffects, not into the dataset).
type Descriptor struct {
	DV           int
	MainEffects  []MainEffect
	Interactions [][]int
	Warnings     []string
}

// NewDescriptor creates a descriptor for dependent variable dv.
func NewDescriptor(dv int) *Descriptor {
	return &Descriptor{DV: dv}
}

func (d *Descriptor) findMainEffect(varIndex int) (int, bool) {
	for i, me := range d.MainEffects {
		if me.VarIndex == varIndex {
			return i, true
		}
	}
	return -1, false
}

func (d *Descriptor) warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// AddMainEffect registers varIndex as a main effect and returns its
// index into MainEffects. Registering the same variable twice is a
// warning, not an error; the first registration's direct flag wins.
func (d *Descriptor) AddMainEffect(varIndex int, direct bool) int {
	if idx, ok := d.findMainEffect(varIndex); ok {
		d.warnf("duplicate main effect for variable %d", varIndex)
		return idx
	}
	d.MainEffects = append(d.MainEffects, MainEffect{VarIndex: varIndex, Direct: direct})
	return len(d.MainEffects) - 1
}

// registerInteractionTerm resolves varIndex to a MainEffects index,
// auto-registering it (with a warning) if it was not already declared
// as a main effect.
func (d *Descriptor) registerInteractionTerm(varIndex int, direct bool) int {
	if idx, ok := d.findMainEffect(varIndex); ok {
		return idx
	}
	d.warnf("interaction term references undeclared variable %d; auto-registering", varIndex)
	d.MainEffects = append(d.MainEffects, MainEffect{VarIndex: varIndex, Direct: direct})
	return len(d.MainEffects) - 1
}

// NewInteraction starts a new interaction group with varIndex as its
// first component, per the formula grammar's "a*b*c" construct where
// the first component uses a "new interaction" constructor.
func (d *Descriptor) NewInteraction(varIndex int, direct bool) {
	idx := d.registerInteractionTerm(varIndex, direct)
	d.Interactions = append(d.Interactions, []int{idx})
}

// AppendInteraction appends varIndex to the most recently started
// interaction group, per the formula grammar's "subsequent components
// append to the last interaction". It is an error if no interaction
// has been started.
func (d *Descriptor) AppendInteraction(varIndex int, direct bool) error {
	if len(d.Interactions) == 0 {
		return fmt.Errorf("model: AppendInteraction with no open interaction")
	}
	idx := d.registerInteractionTerm(varIndex, direct)
	last := len(d.Interactions) - 1
	for _, existing := range d.Interactions[last] {
		if existing == idx {
			d.warnf("duplicate term %d within interaction %d", idx, last)
			break
		}
	}
	d.Interactions[last] = append(d.Interactions[last], idx)
	return nil
}

// InteractionName renders an interaction group's parameter label as
// "var1*var2*...", resolving each term's main-effect variable index
// to a name via names.
func (d *Descriptor) InteractionName(group []int, names []string) string {
	out := ""
	for i, termIdx := range group {
		if i > 0 {
			out += "*"
		}
		out += names[d.MainEffects[termIdx].VarIndex]
	}
	return out
}
