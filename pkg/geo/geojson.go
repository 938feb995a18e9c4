package geo

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TrackPoint is one located sample of a delivery track.
type TrackPoint struct {
	Point     orb.Point
	EventType string
	Timestamp time.Time
}

// TrackFeatureCollection renders a delivery track as GeoJSON: the travelled
// line with its distance, the lifecycle event markers, and the client
// location when known.
func TrackFeatureCollection(deliveryID uint, points []TrackPoint, client *orb.Point, lifecycle func(string) bool) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, p.Point)
	}

	if len(line) >= 2 {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "track"
		f.Properties["delivery_id"] = deliveryID
		f.Properties["points"] = len(line)
		f.Properties["distance_km"] = PathDistanceKm(line)
		fc.Append(f)
	}

	for _, p := range points {
		if lifecycle == nil || !lifecycle(p.EventType) {
			continue
		}
		f := geojson.NewFeature(p.Point)
		f.Properties["kind"] = "event"
		f.Properties["event_type"] = p.EventType
		f.Properties["timestamp"] = p.Timestamp.UTC().Format(time.RFC3339)
		fc.Append(f)
	}

	if client != nil {
		f := geojson.NewFeature(*client)
		f.Properties["kind"] = "client"
		fc.Append(f)
	}

	return fc
}
