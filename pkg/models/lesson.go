package models

import "strings"

// DeliveryMode describes how a lesson is delivered.
type DeliveryMode string

const (
	// DeliveryInPerson is a classroom session.
	DeliveryInPerson DeliveryMode = "in-person"
	// DeliveryOnline is a live remote session.
	DeliveryOnline DeliveryMode = "online"
	// DeliveryHybrid mixes classroom and remote participants.
	DeliveryHybrid DeliveryMode = "hybrid"
	// DeliverySelfPaced is asynchronous material.
	DeliverySelfPaced DeliveryMode = "self-paced"
)

// Valid returns true if the mode is a known value.
func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryInPerson, DeliveryOnline, DeliveryHybrid, DeliverySelfPaced:
		return true
	default:
		return false
	}
}

// ParseDeliveryMode maps the loose wording models tend to produce onto a
// known mode. The second return value is false when nothing matched.
func ParseDeliveryMode(s string) (DeliveryMode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)

	switch normalized {
	case "in-person", "inperson", "classroom", "face-to-face", "onsite", "on-site":
		return DeliveryInPerson, true
	case "online", "remote", "virtual", "live-online":
		return DeliveryOnline, true
	case "hybrid", "blended", "mixed":
		return DeliveryHybrid, true
	case "self-paced", "selfpaced", "asynchronous", "async", "e-learning":
		return DeliverySelfPaced, true
	default:
		return "", false
	}
}

// LessonBlueprint is the plan for a single lesson.
// Each lesson serves exactly one objective, referenced by ObjectiveID.
type LessonBlueprint struct {
	// ID is the stable identifier assessments use to reference this lesson.
	ID string `json:"id"`
	// ObjectiveID is the ID of the objective this lesson satisfies.
	ObjectiveID string `json:"objective_id"`
	// Title is the lesson title without any "Lesson N:" numbering.
	Title string `json:"title"`
	// Hook is the opening activity that captures attention.
	Hook string `json:"hook"`
	// Explanation is the core content of the lesson.
	Explanation string `json:"explain"`
	// Practice is the activity learners do to apply the content.
	Practice string `json:"practice"`
	// Reflection is the closing reflection prompt.
	Reflection string `json:"reflect"`
	// DurationMinutes is the seat time in minutes. Must be positive.
	DurationMinutes int `json:"seat_time"`
	// DeliveryMode is how the lesson is delivered.
	DeliveryMode DeliveryMode `json:"modality"`
}
