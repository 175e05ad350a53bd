package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/curricula/pkg/models"
)

func TestObjectives(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr string
	}{
		{
			name: "strings",
			raw:  `["Define ethics", "Compare frameworks", "Apply a framework"]`,
			want: []string{"Define ethics", "Compare frameworks", "Apply a framework"},
		},
		{
			name: "objects in wrapper",
			raw:  `{"objectives": [{"text": "Define ethics"}, {"objective": "Compare frameworks"}, {"text": "Apply a framework"}]}`,
			want: []string{"Define ethics", "Compare frameworks", "Apply a framework"},
		},
		{
			name: "numbering stripped and blanks skipped",
			raw:  `["1. Define ethics", "", "2) Compare frameworks", "- Apply a framework"]`,
			want: []string{"Define ethics", "Compare frameworks", "Apply a framework"},
		},
		{
			name:    "too few",
			raw:     `["Define ethics", "Compare frameworks"]`,
			wantErr: "got 2 objectives, want 3-5",
		},
		{
			name:    "too many",
			raw:     `["a", "b", "c", "d", "e", "f"]`,
			wantErr: "got 6 objectives, want 3-5",
		},
		{
			name:    "empty",
			raw:     `[]`,
			wantErr: "no objectives returned",
		},
		{
			name:    "prose only",
			raw:     "Objectives: understand ethics.",
			wantErr: "no JSON object or array found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Objectives(tt.raw, models.DefaultObjectiveRange())
			if tt.wantErr != "" {
				var extractErr *Error
				if !errors.As(err, &extractErr) {
					t.Fatalf("error = %v, want *Error", err)
				}
				if extractErr.Stage != models.StageObjectives {
					t.Errorf("Stage = %q", extractErr.Stage)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Objectives() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d objectives, want %d", len(got), len(tt.want))
			}
			for i, obj := range got {
				if obj.ID != models.ObjectiveID(i) {
					t.Errorf("objective %d ID = %q", i, obj.ID)
				}
				if obj.Text != tt.want[i] {
					t.Errorf("objective %d Text = %q, want %q", i, obj.Text, tt.want[i])
				}
			}
		})
	}
}
