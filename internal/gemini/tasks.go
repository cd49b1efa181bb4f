package gemini

import (
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed tasks.yaml
var defaultTasksYAML []byte

// Task gates for the optional analysis stages.
const (
	WhenProjects      = "projects"
	WhenContributions = "contributions"
)

// Task is one stage of the analysis pipeline. Prompt is a text/template
// rendered against the fetched profile and the outputs of earlier stages.
type Task struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	When        string `yaml:"when,omitempty"`
	Prompt      string `yaml:"prompt"`

	tmpl *template.Template
}

type taskFile struct {
	Tasks []Task `yaml:"tasks"`
}

// DefaultTasks returns the embedded analysis pipeline.
func DefaultTasks() ([]Task, error) {
	return parseTasks(defaultTasksYAML)
}

// LoadTasks reads a pipeline definition from path, falling back to the
// embedded default when path is empty.
func LoadTasks(path string) ([]Task, error) {
	if path == "" {
		return DefaultTasks()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	return parseTasks(data)
}

func parseTasks(data []byte) ([]Task, error) {
	var f taskFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("tasks file defines no tasks")
	}

	seen := map[string]bool{}
	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.Name == "" {
			return nil, fmt.Errorf("task %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate task name %q", t.Name)
		}
		seen[t.Name] = true

		switch t.When {
		case "", WhenProjects, WhenContributions:
		default:
			return nil, fmt.Errorf("task %q has unknown gate %q", t.Name, t.When)
		}

		tmpl, err := template.New(t.Name).Parse(t.Prompt)
		if err != nil {
			return nil, fmt.Errorf("task %q prompt: %w", t.Name, err)
		}
		t.tmpl = tmpl
	}

	return f.Tasks, nil
}
