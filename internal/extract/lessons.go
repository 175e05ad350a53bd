package extract

import (
	"cmp"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// DefaultDurationMinutes is used when a lesson has no usable seat time.
const DefaultDurationMinutes = 60

var (
	lessonPrefix = regexp.MustCompile(`(?i)^\s*lesson\s+\d+\s*[:.\-–—]\s*`)
	leadingInt   = regexp.MustCompile(`\d+`)
)

// ref is a loose reference to another record: an ID ("obj-2"), a 1-based
// position (2 or "2") or the referenced record's text.
type ref string

func (r *ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ref(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reference must be a string or number, got %s", data)
	}
	*r = ref(n.String())
	return nil
}

// minutes accepts 45, 45.0 or "45 minutes".
type minutes int

func (m *minutes) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = minutes(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("seat time must be a number or string, got %s", data)
	}
	digits := leadingInt.FindString(s)
	if digits == "" {
		*m = 0
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return fmt.Errorf("seat time %q: %w", s, err)
	}
	*m = minutes(n)
	return nil
}

type lessonItem struct {
	ObjectiveID ref     `json:"objective_id"`
	Objective   ref     `json:"objective"`
	Title       string  `json:"title"`
	Hook        string  `json:"hook"`
	Explain     string  `json:"explain"`
	Explanation string  `json:"explanation"`
	Practice    string  `json:"practice"`
	Reflect     string  `json:"reflect"`
	Reflection  string  `json:"reflection"`
	SeatTime    minutes `json:"seat_time"`
	Duration    minutes `json:"duration_minutes"`
	Modality    string  `json:"modality"`
}

// Lessons parses the lesson designer's output. Each lesson must reference one
// of objectives. Lessons are returned in objective order and numbered in that
// order (lesson-1, ...). Titles lose
// any "Lesson N:" prefix, missing seat time defaults to an hour and an
// unrecognised delivery mode becomes hybrid.
func Lessons(raw string, objectives []models.LearningObjective) ([]models.LessonBlueprint, error) {
	items, err := list(raw, "lessons")
	if err != nil {
		return nil, Errorf(models.StageLessons, raw, "%v", err)
	}
	if len(items) == 0 {
		return nil, Errorf(models.StageLessons, raw, "no lessons returned")
	}

	resolver := newResolver(len(objectives))
	for i, o := range objectives {
		resolver.add(i, o.ID, o.Text)
	}

	lessons := make([]models.LessonBlueprint, 0, len(items))
	parents := make([]int, 0, len(items))
	for i, item := range items {
		var li lessonItem
		if err := json.Unmarshal(item, &li); err != nil {
			return nil, Errorf(models.StageLessons, raw, "lesson %d: %v", i+1, err)
		}

		key := li.ObjectiveID
		if key == "" {
			key = li.Objective
		}
		if key == "" {
			return nil, Errorf(models.StageLessons, raw, "lesson %d does not name its objective", i+1)
		}
		idx, ok := resolver.resolve(string(key))
		if !ok {
			return nil, Errorf(models.StageLessons, raw, "lesson %d references unknown objective %q", i+1, key)
		}

		title := strings.TrimSpace(lessonPrefix.ReplaceAllString(li.Title, ""))
		if title == "" {
			return nil, Errorf(models.StageLessons, raw, "lesson %d has no title", i+1)
		}

		duration := int(li.SeatTime)
		if duration <= 0 {
			duration = int(li.Duration)
		}
		if duration <= 0 {
			duration = DefaultDurationMinutes
		}

		mode, ok := models.ParseDeliveryMode(li.Modality)
		if !ok {
			mode = models.DeliveryHybrid
		}

		parents = append(parents, idx)
		lessons = append(lessons, models.LessonBlueprint{
			ObjectiveID:     objectives[idx].ID,
			Title:           title,
			Hook:            strings.TrimSpace(li.Hook),
			Explanation:     strings.TrimSpace(firstNonEmpty(li.Explain, li.Explanation)),
			Practice:        strings.TrimSpace(li.Practice),
			Reflection:      strings.TrimSpace(firstNonEmpty(li.Reflect, li.Reflection)),
			DurationMinutes: duration,
			DeliveryMode:    mode,
		})
	}

	lessons = byParent(lessons, parents)
	for i := range lessons {
		lessons[i].ID = models.LessonID(i)
	}
	return lessons, nil
}

// byParent orders records by the position of the upstream record each one
// serves. Ties keep their output order.
func byParent[T any](records []T, parents []int) []T {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(parents[a], parents[b])
	})
	sorted := make([]T, len(records))
	for i, j := range order {
		sorted[i] = records[j]
	}
	return sorted
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// resolver maps loose references onto record positions.
type resolver struct {
	n      int
	byID   map[string]int
	byText map[string]int
}

func newResolver(n int) *resolver {
	return &resolver{
		n:      n,
		byID:   make(map[string]int, n),
		byText: make(map[string]int, n),
	}
}

func (r *resolver) add(i int, id, text string) {
	r.byID[strings.ToLower(id)] = i
	r.byText[normalizeText(text)] = i
}

func (r *resolver) resolve(key string) (int, bool) {
	if i, ok := r.byID[strings.ToLower(key)]; ok {
		return i, true
	}
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= r.n {
			return n - 1, true
		}
		return 0, false
	}
	if i, ok := r.byText[normalizeText(key)]; ok {
		return i, true
	}
	return 0, false
}

func normalizeText(s string) string {
	s = lessonPrefix.ReplaceAllString(s, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
