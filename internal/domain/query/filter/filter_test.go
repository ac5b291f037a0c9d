package filter

import "testing"

func price(t *testing.T, min float64, max float64) *PriceRange {
	t.Helper()
	r, err := NewPriceRange(min, &max)
	if err != nil {
		t.Fatalf("NewPriceRange: %v", err)
	}
	return &r
}

func TestNewPriceRange_Validation(t *testing.T) {
	if _, err := NewPriceRange(-1, nil); err == nil {
		t.Error("expected error for negative lower bound")
	}

	hi := 50.0
	if _, err := NewPriceRange(100, &hi); err == nil {
		t.Error("expected error for upper bound below lower bound")
	}

	r, err := NewPriceRange(0, &hi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Min() != 0 || *r.Max() != 50 {
		t.Errorf("got [%g, %g], want [0, 50]", r.Min(), *r.Max())
	}
}

func TestLadder_FullSpec(t *testing.T) {
	spec := New(price(t, 0, 400), "SmartX", "Laptop")
	steps := spec.Ladder()

	want := []Stage{StageCategoryPrice, StageCategory, StagePrice, StageUnfiltered}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, stage := range want {
		if steps[i].Stage() != stage {
			t.Errorf("step %d: got %q, want %q", i, steps[i].Stage(), stage)
		}
	}

	// Tags-only rung must not carry the price constraint.
	if steps[1].Spec().Price() != nil {
		t.Error("category rung should drop the price constraint")
	}
	// Price-only rung must not carry tags.
	if steps[2].Spec().HasTags() {
		t.Error("price rung should drop tag constraints")
	}
	if !steps[3].Spec().IsEmpty() {
		t.Error("final rung should be unconstrained")
	}
}

func TestLadder_TagsOnly(t *testing.T) {
	spec := New(nil, "", "Laptop")
	steps := spec.Ladder()

	want := []Stage{StageCategory, StageUnfiltered}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, stage := range want {
		if steps[i].Stage() != stage {
			t.Errorf("step %d: got %q, want %q", i, steps[i].Stage(), stage)
		}
	}
}

func TestLadder_PriceOnly(t *testing.T) {
	spec := New(price(t, 0, 100), "", "")
	steps := spec.Ladder()

	want := []Stage{StagePrice, StageUnfiltered}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, stage := range want {
		if steps[i].Stage() != stage {
			t.Errorf("step %d: got %q, want %q", i, steps[i].Stage(), stage)
		}
	}
}

func TestLadder_Empty(t *testing.T) {
	steps := Spec{}.Ladder()
	if len(steps) != 1 || steps[0].Stage() != StageUnfiltered {
		t.Fatalf("empty spec should collapse to the single unfiltered rung, got %v", steps)
	}
}

func TestRelaxed(t *testing.T) {
	full := New(price(t, 0, 400), "SmartX", "Laptop")
	if full.Relaxed(StageCategoryPrice) {
		t.Error("strictest rung of a full spec is not relaxed")
	}
	if !full.Relaxed(StageCategory) || !full.Relaxed(StageUnfiltered) {
		t.Error("later rungs of a full spec are relaxed")
	}

	tagsOnly := New(nil, "SmartX", "")
	if tagsOnly.Relaxed(StageCategory) {
		t.Error("category rung of a tags-only spec is not relaxed")
	}
	if !tagsOnly.Relaxed(StageUnfiltered) {
		t.Error("unfiltered rung of a tags-only spec is relaxed")
	}

	if (Spec{}).Relaxed(StageUnfiltered) {
		t.Error("an empty spec is never relaxed")
	}
}
