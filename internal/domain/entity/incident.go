// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Incident, along with their
// validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"time"
)

// Attribution is the fixed attribution string applied to every incident
// surfaced from the feed.
const Attribution = "VICEmergency"

// SourceTag identifies this integration as the origin of a geolocation event.
const SourceTag = "vicemergency_feed"

// Alert categories published by the VICEmergency feed. These are the only
// values accepted by the include/exclude configuration filters.
const (
	CategoryAdvice           = "Advice"
	CategoryEmergencyWarning = "Emergency Warning"
	CategoryNotApplicable    = "Not Applicable"
	CategoryWatchAndAct      = "Watch and Act"
	CategoryBurnArea         = "Burn Area"
)

// ValidCategories lists every category value accepted in configuration filters,
// in the order the feed documents them.
var ValidCategories = []string{
	CategoryAdvice,
	CategoryEmergencyWarning,
	CategoryNotApplicable,
	CategoryWatchAndAct,
	CategoryBurnArea,
}

// IsValidCategory reports whether the given value is one of the known
// alert categories.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Incident status values with special display handling.
const (
	StatusSafe         = "Safe"
	StatusComplete     = "Complete"
	StatusUnknown      = "Unknown"
	StatusUnderControl = "Under Control"
	StatusWarning      = "Warning"
)

// Incident represents one record from the VICEmergency GeoJSON incident feed.
// It is keyed by the feed's stable external identifier and mutated in place
// on subsequent polls; the feed manager owns its lifecycle.
type Incident struct {
	ID              string
	Category1       string
	Category2       string
	Description     string
	Location        string
	Latitude        float64
	Longitude       float64
	DistanceKm      float64 // distance to the configured reference point, filled by the feed manager
	PublicationDate time.Time
	SourceOrg       string
	SourceTitle     string
	Resources       int
	Size            string
	SizeFmt         string
	Status          string
	Type            string
	Statewide       bool
}

// Validate validates the Incident entity fields.
// An incident without an identifier cannot be tracked, and coordinates
// outside the valid WGS84 ranges indicate a malformed feed record.
func (i *Incident) Validate() error {
	if i.ID == "" {
		return &ValidationError{Field: "id", Message: "incident identifier is required"}
	}
	if i.Latitude < -90 || i.Latitude > 90 {
		return &ValidationError{
			Field:   "latitude",
			Message: fmt.Sprintf("latitude %.4f out of range [-90, 90]", i.Latitude),
		}
	}
	if i.Longitude < -180 || i.Longitude > 180 {
		return &ValidationError{
			Field:   "longitude",
			Message: fmt.Sprintf("longitude %.4f out of range [-180, 180]", i.Longitude),
		}
	}
	return nil
}

// Title returns the composite display name for the incident,
// formed as "<category1> - <location>".
func (i *Incident) Title() string {
	return i.Category1 + " - " + i.Location
}
