package entity

import (
	"errors"
	"testing"
)

func TestIncident_Validate(t *testing.T) {
	valid := Incident{
		ID:        "12345",
		Category1: CategoryEmergencyWarning,
		Location:  "DONCASTER",
		Latitude:  -37.78,
		Longitude: 145.12,
	}

	t.Run("valid incident passes", func(t *testing.T) {
		inc := valid
		if err := inc.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing identifier fails", func(t *testing.T) {
		inc := valid
		inc.ID = ""
		err := inc.Validate()
		if err == nil {
			t.Fatal("expected error for empty id")
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
		if vErr.Field != "id" {
			t.Errorf("expected field=id, got %q", vErr.Field)
		}
	})

	t.Run("latitude out of range fails", func(t *testing.T) {
		inc := valid
		inc.Latitude = 91.0
		if err := inc.Validate(); err == nil {
			t.Fatal("expected error for latitude out of range")
		}
	})

	t.Run("longitude out of range fails", func(t *testing.T) {
		inc := valid
		inc.Longitude = -181.0
		if err := inc.Validate(); err == nil {
			t.Fatal("expected error for longitude out of range")
		}
	})
}

func TestIncident_Title(t *testing.T) {
	inc := Incident{Category1: "Fire", Location: "BUNYIP STATE PARK"}
	want := "Fire - BUNYIP STATE PARK"
	if got := inc.Title(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range ValidCategories {
		if !IsValidCategory(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"", "Fire", "advice", "Emergency"} {
		if IsValidCategory(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
