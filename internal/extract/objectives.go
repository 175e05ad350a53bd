package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// listMarker matches leading numbering or bullets such as "1.", "2)", "-", "*".
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// objectiveItem accepts either a bare string or an object with a text field.
type objectiveItem struct {
	text string
}

func (o *objectiveItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.text = s
		return nil
	}
	var obj struct {
		Text      string `json:"text"`
		Objective string `json:"objective"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.text = obj.Text
	if o.text == "" {
		o.text = obj.Objective
	}
	return nil
}

// Objectives parses the objective writer's output. Each objective is assigned
// its positional ID (obj-1, obj-2, ...). The count must lie within limits.
func Objectives(raw string, limits models.ObjectiveRange) ([]models.LearningObjective, error) {
	items, err := list(raw, "objectives")
	if err != nil {
		return nil, Errorf(models.StageObjectives, raw, "%v", err)
	}

	var objectives []models.LearningObjective
	for i, item := range items {
		var o objectiveItem
		if err := json.Unmarshal(item, &o); err != nil {
			return nil, Errorf(models.StageObjectives, raw, "objective %d: %v", i+1, err)
		}
		text := strings.TrimSpace(listMarker.ReplaceAllString(o.text, ""))
		if text == "" {
			continue
		}
		objectives = append(objectives, models.LearningObjective{
			ID:   models.ObjectiveID(len(objectives)),
			Text: text,
		})
	}

	if len(objectives) == 0 {
		return nil, Errorf(models.StageObjectives, raw, "no objectives returned")
	}
	if !limits.Contains(len(objectives)) {
		return nil, Errorf(models.StageObjectives, raw,
			"got %d objectives, want %s", len(objectives), limits)
	}
	return objectives, nil
}
