package main

import (
	"reflect"
	"testing"
)

// TestSplitAndTrim tests comma list parsing from env values
func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain list", "a,b,c", []string{"a", "b", "c"}},
		{"spaces around entries", " a , b ,c ", []string{"a", "b", "c"}},
		{"empty entries dropped", "a,,b,", []string{"a", "b"}},
		{"single entry", "openai/gpt-5.1", []string{"openai/gpt-5.1"}},
		{"empty string", "", nil},
		{"only separators", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestConfigWithDefaults tests per-run settings resolution
func TestConfigWithDefaults(t *testing.T) {
	cfg := &Config{
		CouncilModels: []string{"default/a", "default/b"},
		ChairmanModel: "default/chairman",
	}

	t.Run("empty run config gets all defaults", func(t *testing.T) {
		resolved := cfg.withDefaults(FrameworkConfig{})

		if resolved.Framework != FrameworkStandard {
			t.Errorf("Framework = %q, want %q", resolved.Framework, FrameworkStandard)
		}
		if !reflect.DeepEqual(resolved.CouncilModels, cfg.CouncilModels) {
			t.Errorf("CouncilModels = %v, want defaults", resolved.CouncilModels)
		}
		if resolved.ChairmanModel != "default/chairman" {
			t.Errorf("ChairmanModel = %q, want default", resolved.ChairmanModel)
		}
	})

	t.Run("explicit settings are preserved", func(t *testing.T) {
		fc := FrameworkConfig{
			Framework:     FrameworkSixHats,
			CouncilModels: []string{"custom/a"},
			ChairmanModel: "custom/chairman",
		}

		resolved := cfg.withDefaults(fc)

		if !reflect.DeepEqual(resolved, fc) {
			t.Errorf("withDefaults(%+v) = %+v, want unchanged", fc, resolved)
		}
	})

	t.Run("partial settings mix with defaults", func(t *testing.T) {
		resolved := cfg.withDefaults(FrameworkConfig{Framework: FrameworkDebate})

		if resolved.Framework != FrameworkDebate {
			t.Errorf("Framework = %q, want %q", resolved.Framework, FrameworkDebate)
		}
		if !reflect.DeepEqual(resolved.CouncilModels, cfg.CouncilModels) {
			t.Errorf("CouncilModels = %v, want defaults", resolved.CouncilModels)
		}
	})

	t.Run("defaults are not mutated", func(t *testing.T) {
		cfg.withDefaults(FrameworkConfig{Framework: FrameworkEnsemble})

		if len(cfg.CouncilModels) != 2 || cfg.ChairmanModel != "default/chairman" {
			t.Errorf("Config mutated: %+v", cfg)
		}
	})
}
