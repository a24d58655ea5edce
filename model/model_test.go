package model

import "testing"

// TestAddMainEffectDuplicate verifies duplicate main effects warn but
// do not create a second entry.
func TestAddMainEffectDuplicate(t *testing.T) {
	d := NewDescriptor(0)
	i1 := d.AddMainEffect(1, false)
	i2 := d.AddMainEffect(1, true)

	if i1 != i2 {
		t.Errorf("duplicate AddMainEffect returned different index: %d vs %d", i1, i2)
	}
	if len(d.MainEffects) != 1 {
		t.Fatalf("len(MainEffects) = %d, want 1", len(d.MainEffects))
	}
	if d.MainEffects[0].Direct {
		t.Errorf("first registration's Direct flag was overwritten")
	}
	if len(d.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1", len(d.Warnings))
	}
}

// TestInteractionAutoRegister verifies an interaction term referencing
// an undeclared variable auto-registers it with a warning.
func TestInteractionAutoRegister(t *testing.T) {
	d := NewDescriptor(0)
	d.NewInteraction(2, false)

	if len(d.MainEffects) != 1 {
		t.Fatalf("len(MainEffects) = %d, want 1", len(d.MainEffects))
	}
	if len(d.Interactions) != 1 || len(d.Interactions[0]) != 1 {
		t.Fatalf("Interactions = %v, want one group of one term", d.Interactions)
	}
	if len(d.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1 (auto-register)", len(d.Warnings))
	}
}

// TestInteractionReusesDeclaredMainEffect verifies referencing an
// already-declared main effect in an interaction does not warn or
// duplicate it.
func TestInteractionReusesDeclaredMainEffect(t *testing.T) {
	d := NewDescriptor(0)
	mainIdx := d.AddMainEffect(1, false)
	d.NewInteraction(1, false)

	if len(d.MainEffects) != 1 {
		t.Fatalf("len(MainEffects) = %d, want 1", len(d.MainEffects))
	}
	if d.Interactions[0][0] != mainIdx {
		t.Errorf("interaction term index = %d, want %d", d.Interactions[0][0], mainIdx)
	}
	if len(d.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", d.Warnings)
	}
}

// TestAppendInteractionNoOpenGroup verifies appending with no
// preceding NewInteraction call is an error.
func TestAppendInteractionNoOpenGroup(t *testing.T) {
	d := NewDescriptor(0)
	if err := d.AppendInteraction(1, false); err == nil {
		t.Fatalf("AppendInteraction() err = nil, want error")
	}
}

// TestAppendInteractionDuplicateTerm verifies a repeated term within
// one interaction warns but is still appended.
func TestAppendInteractionDuplicateTerm(t *testing.T) {
	d := NewDescriptor(0)
	d.NewInteraction(1, false)
	if err := d.AppendInteraction(1, false); err != nil {
		t.Fatalf("AppendInteraction() err = %v", err)
	}

	if len(d.Interactions[0]) != 2 {
		t.Fatalf("len(Interactions[0]) = %d, want 2", len(d.Interactions[0]))
	}
	if len(d.Warnings) != 2 {
		t.Errorf("len(Warnings) = %d, want 2 (auto-register + duplicate term)", len(d.Warnings))
	}
}

// TestInteractionName verifies the var1*var2*... label rendering.
func TestInteractionName(t *testing.T) {
	d := NewDescriptor(0)
	d.AddMainEffect(0, false)
	d.AddMainEffect(1, false)
	d.NewInteraction(0, false)
	d.AppendInteraction(1, false)

	names := []string{"sex", "age", "income"}
	got := d.InteractionName(d.Interactions[0], names)
	if got != "sex*age" {
		t.Errorf("InteractionName() = %q, want %q", got, "sex*age")
	}
}
