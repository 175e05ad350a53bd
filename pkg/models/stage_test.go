package models

import "testing"

func TestStages_Order(t *testing.T) {
	want := []Stage{StageObjectives, StageLessons, StageAssessments, StageReview}
	got := Stages()
	if len(got) != len(want) {
		t.Fatalf("Stages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Stages()[%d] = %q, want %q", i, got[i], want[i])
		}
		if !got[i].Valid() {
			t.Errorf("%q.Valid() = false", got[i])
		}
	}
	if Stage("publish").Valid() {
		t.Error(`Stage("publish").Valid() = true`)
	}
}

func TestObjectiveRange(t *testing.T) {
	tests := []struct {
		name     string
		r        ObjectiveRange
		n        int
		contains bool
		valid    bool
		str      string
	}{
		{"default lower bound", DefaultObjectiveRange(), 3, true, true, "3-5"},
		{"default below", DefaultObjectiveRange(), 2, false, true, "3-5"},
		{"default above", DefaultObjectiveRange(), 6, false, true, "3-5"},
		{"unbounded", ObjectiveRange{Min: 1}, 40, true, true, "at least 1"},
		{"exact", ObjectiveRange{Min: 2, Max: 2}, 2, true, true, "2"},
		{"inverted", ObjectiveRange{Min: 4, Max: 2}, 3, false, false, "4-2"},
		{"zero min", ObjectiveRange{}, 0, true, false, "at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(tt.n); got != tt.contains {
				t.Errorf("Contains(%d) = %v, want %v", tt.n, got, tt.contains)
			}
			if err := tt.r.Validate(); (err == nil) != tt.valid {
				t.Errorf("Validate() error = %v, want valid=%v", err, tt.valid)
			}
			if got := tt.r.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}
