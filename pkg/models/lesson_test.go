package models

import "testing"

func TestDeliveryMode_Valid(t *testing.T) {
	tests := []struct {
		name string
		mode DeliveryMode
		want bool
	}{
		{"in-person is valid", DeliveryInPerson, true},
		{"online is valid", DeliveryOnline, true},
		{"hybrid is valid", DeliveryHybrid, true},
		{"self-paced is valid", DeliverySelfPaced, true},
		{"empty string is invalid", DeliveryMode(""), false},
		{"unknown mode is invalid", DeliveryMode("carrier-pigeon"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("DeliveryMode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestParseDeliveryMode(t *testing.T) {
	tests := []struct {
		input  string
		want   DeliveryMode
		wantOK bool
	}{
		{"in-person", DeliveryInPerson, true},
		{"In Person", DeliveryInPerson, true},
		{"face to face", DeliveryInPerson, true},
		{"ONLINE", DeliveryOnline, true},
		{"virtual", DeliveryOnline, true},
		{" hybrid ", DeliveryHybrid, true},
		{"blended", DeliveryHybrid, true},
		{"self_paced", DeliverySelfPaced, true},
		{"asynchronous", DeliverySelfPaced, true},
		{"", "", false},
		{"interpretive dance", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDeliveryMode(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseDeliveryMode(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	if got := ObjectiveID(0); got != "obj-1" {
		t.Errorf("ObjectiveID(0) = %q, want %q", got, "obj-1")
	}
	if got := LessonID(2); got != "lesson-3" {
		t.Errorf("LessonID(2) = %q, want %q", got, "lesson-3")
	}
	if got := AssessmentID(9); got != "assess-10" {
		t.Errorf("AssessmentID(9) = %q, want %q", got, "assess-10")
	}
}
