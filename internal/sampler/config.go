package sampler

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrConfiguration indicates sampling bounds that cannot produce a valid task,
	// either on their own or for the transcript they are applied to.
	ErrConfiguration = errors.New("sampler configuration error")
)

// Kind tags what the annotator is asked to do with a task
type Kind string

const (
	KindEdit   Kind = "edit"
	KindReview Kind = "review"
)

// ParseKind validates a task kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindEdit, KindReview:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown task kind %q", ErrConfiguration, s)
	}
}

// Config holds the sampling bounds, all in seconds.
type Config struct {
	MinTaskDuration float64 `yaml:"min_task_duration"`
	MaxTaskDuration float64 `yaml:"max_task_duration"`
	MinContextPad   float64 `yaml:"min_context_pad"`
	MaxContextPad   float64 `yaml:"max_context_pad"`
	Kinds           []Kind  `yaml:"kinds"`
}

// Validate checks that every bound is a finite number and that every range
// is non-negative and not inverted
func (c Config) Validate() error {
	bounds := []struct {
		name string
		v    float64
	}{
		{"min task duration", c.MinTaskDuration},
		{"max task duration", c.MaxTaskDuration},
		{"min context pad", c.MinContextPad},
		{"max context pad", c.MaxContextPad},
	}
	for _, b := range bounds {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrConfiguration, b.name, b.v)
		}
	}
	if c.MinTaskDuration < 0 || c.MinContextPad < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrConfiguration)
	}
	if c.MaxTaskDuration < c.MinTaskDuration {
		return fmt.Errorf("%w: max task duration %v is below min %v", ErrConfiguration, c.MaxTaskDuration, c.MinTaskDuration)
	}
	if c.MaxContextPad < c.MinContextPad {
		return fmt.Errorf("%w: max context pad %v is below min %v", ErrConfiguration, c.MaxContextPad, c.MinContextPad)
	}
	for _, k := range c.Kinds {
		if k != KindEdit && k != KindReview {
			return fmt.Errorf("%w: unknown task kind %q", ErrConfiguration, k)
		}
	}
	return nil
}

func (c Config) kinds() []Kind {
	if len(c.Kinds) == 0 {
		return []Kind{KindEdit}
	}
	return c.Kinds
}

// Profiles are the built-in parameter sets. "short" suits quick edit
// tasks, "long" gives annotators several minutes of speech.
var Profiles = map[string]Config{
	"short": {
		MinTaskDuration: 10,
		MaxTaskDuration: 40,
		MinContextPad:   7,
		MaxContextPad:   15,
	},
	"long": {
		MinTaskDuration: 50,
		MaxTaskDuration: 220,
		MinContextPad:   7,
		MaxContextPad:   40,
	},
}

// LoadProfiles reads named profiles from a YAML file and merges them over
// the built-in ones:
//
//	short:
//	  min_task_duration: 10
//	  max_task_duration: 40
//	  min_context_pad: 7
//	  max_context_pad: 15
//	  kinds: [edit, review]
func LoadProfiles(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %q: %w", path, err)
	}

	var loaded map[string]Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	result := make(map[string]Config, len(Profiles)+len(loaded))
	for name, cfg := range Profiles {
		result[name] = cfg
	}
	for name, cfg := range loaded {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		result[name] = cfg
	}
	return result, nil
}
