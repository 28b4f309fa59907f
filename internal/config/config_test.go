package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"trax/internal/sampler"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "WORDS_FILE", "TERMS_FILE", "AUDIO_URL", "TASK_PROFILE", "SAMPLER_PROFILES_FILE",
		"TASK_KINDS", "MIN_TASK_DURATION", "MAX_TASK_DURATION", "MIN_CONTEXT_PAD", "MAX_CONTEXT_PAD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.TaskProfile != "short" {
		t.Errorf("TaskProfile = %q, want short", cfg.TaskProfile)
	}

	sc, err := cfg.Sampler()
	if err != nil {
		t.Fatalf("Sampler: %v", err)
	}
	want := sampler.Profiles["short"]
	if sc.MinTaskDuration != want.MinTaskDuration || sc.MaxTaskDuration != want.MaxTaskDuration ||
		sc.MinContextPad != want.MinContextPad || sc.MaxContextPad != want.MaxContextPad {
		t.Errorf("Sampler = %+v, want short profile %+v", sc, want)
	}
	if len(sc.Kinds) != 1 || sc.Kinds[0] != sampler.KindEdit {
		t.Errorf("Kinds = %v, want [edit]", sc.Kinds)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate should require the word list and terms files")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("WORDS_FILE", "words.json")
	t.Setenv("TERMS_FILE", "terms.json")
	t.Setenv("TASK_PROFILE", "long")
	t.Setenv("MAX_TASK_DURATION", "120")
	t.Setenv("MIN_CONTEXT_PAD", "2.5")
	t.Setenv("TASK_KINDS", "edit, review")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	sc, err := cfg.Sampler()
	if err != nil {
		t.Fatalf("Sampler: %v", err)
	}
	if sc.MinTaskDuration != 50 {
		t.Errorf("MinTaskDuration = %v, want 50 from the long profile", sc.MinTaskDuration)
	}
	if sc.MaxTaskDuration != 120 {
		t.Errorf("MaxTaskDuration = %v, want 120", sc.MaxTaskDuration)
	}
	if sc.MinContextPad != 2.5 {
		t.Errorf("MinContextPad = %v, want 2.5", sc.MinContextPad)
	}
	if len(sc.Kinds) != 2 || sc.Kinds[1] != sampler.KindReview {
		t.Errorf("Kinds = %v, want [edit review]", sc.Kinds)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_TASK_DURATION", "ten")

	if _, err := Load(); err == nil {
		t.Error("Load should reject a non-numeric duration")
	}
}

func TestSamplerErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown profile", Config{TaskProfile: "medium"}},
		{"unknown kind", Config{TaskProfile: "short", TaskKinds: []string{"translate"}}},
		{"inverted override", Config{TaskProfile: "short", MaxTaskDuration: ptr(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Sampler(); !errors.Is(err, sampler.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestSamplerRejectsNonFiniteEnv(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MAX_TASK_DURATION", v)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, err := cfg.Sampler(); !errors.Is(err, sampler.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestSamplerProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
tiny:
  min_task_duration: 1
  max_task_duration: 2
  min_context_pad: 0
  max_context_pad: 1
  kinds: [review]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cfg := Config{TaskProfile: "tiny", ProfilesFile: path, TaskKinds: []string{"edit"}}
	sc, err := cfg.Sampler()
	if err != nil {
		t.Fatalf("Sampler: %v", err)
	}
	if sc.MaxTaskDuration != 2 {
		t.Errorf("MaxTaskDuration = %v, want 2", sc.MaxTaskDuration)
	}
	if len(sc.Kinds) != 1 || sc.Kinds[0] != sampler.KindReview {
		t.Errorf("Kinds = %v, want the profile's [review]", sc.Kinds)
	}
}

func ptr(f float64) *float64 { return &f }
