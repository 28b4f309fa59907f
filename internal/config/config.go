package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"trax/internal/sampler"
)

type Config struct {
	Port         string
	WordsFile    string
	TermsFile    string
	AudioURL     string
	TaskProfile  string
	ProfilesFile string
	TaskKinds    []string

	// Overrides applied on top of the selected profile, nil when unset
	MinTaskDuration *float64
	MaxTaskDuration *float64
	MinContextPad   *float64
	MaxContextPad   *float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8000"),
		WordsFile:    os.Getenv("WORDS_FILE"),
		TermsFile:    os.Getenv("TERMS_FILE"),
		AudioURL:     os.Getenv("AUDIO_URL"),
		TaskProfile:  getEnv("TASK_PROFILE", "short"),
		ProfilesFile: os.Getenv("SAMPLER_PROFILES_FILE"),
		TaskKinds:    splitList(getEnv("TASK_KINDS", "edit")),
	}

	var err error
	if cfg.MinTaskDuration, err = getEnvFloat("MIN_TASK_DURATION"); err != nil {
		return nil, err
	}
	if cfg.MaxTaskDuration, err = getEnvFloat("MAX_TASK_DURATION"); err != nil {
		return nil, err
	}
	if cfg.MinContextPad, err = getEnvFloat("MIN_CONTEXT_PAD"); err != nil {
		return nil, err
	}
	if cfg.MaxContextPad, err = getEnvFloat("MAX_CONTEXT_PAD"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings required to start the server
func (c *Config) Validate() error {
	if c.WordsFile == "" {
		return fmt.Errorf("word list file is required. Set WORDS_FILE or pass -u/--utts")
	}
	if c.TermsFile == "" {
		return fmt.Errorf("terms file is required. Set TERMS_FILE or pass -t/--terms")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	return nil
}

// Sampler resolves the sampling bounds: the named profile, then any
// explicit overrides, then the task kinds.
func (c *Config) Sampler() (sampler.Config, error) {
	profiles := sampler.Profiles
	if c.ProfilesFile != "" {
		loaded, err := sampler.LoadProfiles(c.ProfilesFile)
		if err != nil {
			return sampler.Config{}, err
		}
		profiles = loaded
	}

	sc, ok := profiles[c.TaskProfile]
	if !ok {
		return sampler.Config{}, fmt.Errorf("%w: unknown task profile %q", sampler.ErrConfiguration, c.TaskProfile)
	}

	if c.MinTaskDuration != nil {
		sc.MinTaskDuration = *c.MinTaskDuration
	}
	if c.MaxTaskDuration != nil {
		sc.MaxTaskDuration = *c.MaxTaskDuration
	}
	if c.MinContextPad != nil {
		sc.MinContextPad = *c.MinContextPad
	}
	if c.MaxContextPad != nil {
		sc.MaxContextPad = *c.MaxContextPad
	}

	// Kinds from a profile file win over the environment default
	if len(sc.Kinds) == 0 {
		for _, name := range c.TaskKinds {
			k, err := sampler.ParseKind(name)
			if err != nil {
				return sampler.Config{}, err
			}
			sc.Kinds = append(sc.Kinds, k)
		}
	}

	if err := sc.Validate(); err != nil {
		return sampler.Config{}, err
	}
	return sc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string) (*float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number of seconds, got %q", key, v)
	}
	return &f, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
