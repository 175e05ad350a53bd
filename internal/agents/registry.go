package agents

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// Registry holds personas by name.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]Persona
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{personas: make(map[string]Persona)}
}

// Default returns a registry with the four built-in personas.
func Default() *Registry {
	r := NewRegistry()
	for _, p := range []Persona{ObjectiveSpecialist, CurriculumDesigner, AssessmentSpecialist, QualityReviewer} {
		// Built-ins are always valid.
		_ = r.Register(p)
	}
	return r
}

// Register adds or replaces a persona.
func (r *Registry) Register(p Persona) error {
	if err := p.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.personas[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.personas[p.Name] = p
	return nil
}

// Get returns the persona registered under name.
func (r *Registry) Get(name string) (Persona, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.personas[name]
	return p, ok
}

// ForStage returns the persona that runs a pipeline stage.
func (r *Registry) ForStage(stage models.Stage) (Persona, error) {
	p, ok := r.Get(string(stage))
	if !ok {
		return Persona{}, fmt.Errorf("no persona registered for stage %q", stage)
	}
	return p, nil
}

// All returns personas in pipeline order, followed by any extra personas in
// registration order.
func (r *Registry) All() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rank := make(map[string]int, len(models.Stages()))
	for i, s := range models.Stages() {
		rank[string(s)] = i
	}
	names := append([]string(nil), r.order...)
	sort.SliceStable(names, func(i, j int) bool {
		ri, iStage := rank[names[i]]
		rj, jStage := rank[names[j]]
		switch {
		case iStage && jStage:
			return ri < rj
		case iStage != jStage:
			return iStage
		default:
			return false
		}
	})

	out := make([]Persona, 0, len(names))
	for _, name := range names {
		out = append(out, r.personas[name])
	}
	return out
}

// Count returns the number of registered personas.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

// overridesFile is the personas YAML file structure.
type overridesFile struct {
	Personas map[string]struct {
		Role      string `yaml:"role"`
		Goal      string `yaml:"goal"`
		Backstory string `yaml:"backstory"`
	} `yaml:"personas"`
}

// LoadOverrides reads a personas YAML file and overrides the role, goal or
// backstory of registered personas. Fields left empty keep their current
// value. Naming an unknown persona is an error and nothing is applied.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse personas file %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make(map[string]Persona, len(file.Personas))
	for name, o := range file.Personas {
		p, ok := r.personas[name]
		if !ok {
			return fmt.Errorf("personas file %s: unknown persona %q", path, name)
		}
		if o.Role != "" {
			p.Role = o.Role
		}
		if o.Goal != "" {
			p.Goal = o.Goal
		}
		if o.Backstory != "" {
			p.Backstory = o.Backstory
		}
		updated[name] = p
	}
	for name, p := range updated {
		r.personas[name] = p
	}
	return nil
}
