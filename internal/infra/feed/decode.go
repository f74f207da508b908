package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"vicemergency-feed/internal/domain/entity"
)

// Timestamp layouts observed in the feed, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"02/01/2006 15:04:05",
}

// decodeFeature maps one GeoJSON feature onto a domain incident.
// The feed publishes incidents as Points; warning areas arrive as polygons
// or geometry collections, from which the first point is used if present.
func decodeFeature(f *geojson.Feature) (entity.Incident, error) {
	lat, lon, err := pointCoordinates(f.Geometry)
	if err != nil {
		return entity.Incident{}, err
	}

	props := f.Properties

	id := propString(props, "id")
	if id == "" {
		id = f.ID
	}

	description := propString(props, "webBody")
	if description == "" {
		description = propString(props, "description")
	}

	publicationDate := propTime(props, "updated")
	if publicationDate.IsZero() {
		publicationDate = propTime(props, "created")
	}

	return entity.Incident{
		ID:              id,
		Category1:       propString(props, "category1"),
		Category2:       propString(props, "category2"),
		Description:     description,
		Location:        propString(props, "location"),
		Latitude:        lat,
		Longitude:       lon,
		PublicationDate: publicationDate,
		SourceOrg:       propString(props, "sourceOrg"),
		SourceTitle:     propString(props, "sourceTitle"),
		Resources:       propInt(props, "resources"),
		Size:            propString(props, "size"),
		SizeFmt:         propString(props, "sizeFmt"),
		Status:          propString(props, "status"),
		Type:            propString(props, "feedType"),
		Statewide:       propBool(props, "statewide"),
	}, nil
}

// pointCoordinates extracts a latitude/longitude pair from a geometry.
// GeoJSON positions are ordered longitude first.
func pointCoordinates(g geom.T) (lat, lon float64, err error) {
	switch geometry := g.(type) {
	case *geom.Point:
		coords := geometry.Coords()
		return coords[1], coords[0], nil
	case *geom.GeometryCollection:
		for _, member := range geometry.Geoms() {
			if point, ok := member.(*geom.Point); ok {
				coords := point.Coords()
				return coords[1], coords[0], nil
			}
		}
		return 0, 0, fmt.Errorf("geometry collection contains no point")
	case nil:
		return 0, 0, fmt.Errorf("feature has no geometry")
	default:
		return 0, 0, fmt.Errorf("unsupported geometry type %T", g)
	}
}

// propString reads a property as a string. Numeric identifiers are
// stringified so the feed's mixed id typing does not leak further in.
func propString(props map[string]interface{}, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func propInt(props map[string]interface{}, key string) int {
	switch v := props[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// propBool reads a property as a bool. The feed encodes flags as "Y"/"N".
func propBool(props map[string]interface{}, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "Y", "YES", "TRUE":
			return true
		}
		return false
	default:
		return false
	}
}

func propTime(props map[string]interface{}, key string) time.Time {
	raw, ok := props[key].(string)
	if !ok || raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
