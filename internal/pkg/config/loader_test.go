package config

import (
	"testing"
	"time"
)

func TestLoadEnvWithFallback(t *testing.T) {
	t.Run("unset variable uses default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("TEST_UNSET_VAR", "default", nil)
		if result.Value.(string) != "default" {
			t.Errorf("expected default, got %v", result.Value)
		}
		if result.FallbackApplied {
			t.Error("expected no fallback for unset variable")
		}
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("TEST_SCHEDULE", "garbage")
		result := LoadEnvWithFallback("TEST_SCHEDULE", "@every 5m", ValidateCronSchedule)
		if result.Value.(string) != "@every 5m" {
			t.Errorf("expected fallback to default, got %v", result.Value)
		}
		if !result.FallbackApplied || len(result.Warnings) != 1 {
			t.Errorf("expected one fallback warning, got %+v", result)
		}
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("TEST_SCHEDULE", "@every 1m")
		result := LoadEnvWithFallback("TEST_SCHEDULE", "@every 5m", ValidateCronSchedule)
		if result.Value.(string) != "@every 1m" {
			t.Errorf("expected env value, got %v", result.Value)
		}
	})
}

func TestLoadEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	result := LoadEnvInt("TEST_INT", 10, nil)
	if result.Value.(int) != 10 || !result.FallbackApplied {
		t.Errorf("expected fallback to 10, got %+v", result)
	}

	t.Setenv("TEST_INT", "200")
	result = LoadEnvInt("TEST_INT", 10, func(v int) error {
		return ValidateIntRange(v, 1, 100)
	})
	if result.Value.(int) != 10 || !result.FallbackApplied {
		t.Errorf("expected out-of-range value to fall back, got %+v", result)
	}

	t.Setenv("TEST_INT", "42")
	result = LoadEnvInt("TEST_INT", 10, nil)
	if result.Value.(int) != 42 {
		t.Errorf("expected 42, got %v", result.Value)
	}
}

func TestLoadEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "-37.8136")
	result := LoadEnvFloat("TEST_FLOAT", 0, ValidateLatitude)
	if result.Value.(float64) != -37.8136 {
		t.Errorf("expected -37.8136, got %v", result.Value)
	}

	t.Setenv("TEST_FLOAT", "95.0")
	result = LoadEnvFloat("TEST_FLOAT", 0, ValidateLatitude)
	if result.Value.(float64) != 0 || !result.FallbackApplied {
		t.Errorf("expected invalid latitude to fall back, got %+v", result)
	}
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	result := LoadEnvDuration("TEST_DURATION", time.Minute, ValidatePositiveDuration)
	if result.Value.(time.Duration) != 90*time.Second {
		t.Errorf("expected 90s, got %v", result.Value)
	}

	t.Setenv("TEST_DURATION", "soon")
	result = LoadEnvDuration("TEST_DURATION", time.Minute, nil)
	if result.Value.(time.Duration) != time.Minute || !result.FallbackApplied {
		t.Errorf("expected parse failure to fall back, got %+v", result)
	}
}
