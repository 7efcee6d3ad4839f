// Package geo verifies that a submitting student is physically near the
// classroom a session was issued for. It is an optional pre-check and never
// marks attendance by itself.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrRoomUnknown is returned when no coordinates are configured for a room.
var ErrRoomUnknown = errors.New("room coordinates not configured")

const earthRadiusMeters = 6371000

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Room is a configured classroom location with its allowed radius.
type Room struct {
	Coordinate
	RadiusMeters float64 `json:"radius_meters"`
}

// Result reports the outcome of a location check.
type Result struct {
	WithinRadius   bool    `json:"within_radius"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
}

// RoomTable maps block -> room number -> coordinates, loaded once at startup.
type RoomTable map[string]map[string]Room

// LoadRooms reads the room-coordinate table from a JSON file.
func LoadRooms(path string) (RoomTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms file: %w", err)
	}
	var table RoomTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse rooms file: %w", err)
	}
	return table, nil
}

// Lookup returns the configured room, or ErrRoomUnknown.
func (t RoomTable) Lookup(block, room string) (Room, error) {
	r, ok := t[block][room]
	if !ok {
		return Room{}, fmt.Errorf("%w: block %s room %s", ErrRoomUnknown, block, room)
	}
	return r, nil
}

// Verify checks whether student is within the room's allowed radius.
func (t RoomTable) Verify(student Coordinate, block, room string) (Result, error) {
	r, err := t.Lookup(block, room)
	if err != nil {
		return Result{}, err
	}
	d := Distance(student, r.Coordinate)
	return Result{
		WithinRadius:   d <= r.RadiusMeters,
		DistanceMeters: math.Round(d*100) / 100,
		RadiusMeters:   r.RadiusMeters,
	}, nil
}

// Distance returns the great-circle distance in meters between two points,
// via the haversine formula.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
