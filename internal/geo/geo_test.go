package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable() RoomTable {
	return RoomTable{
		"A": {
			"101": {Coordinate: Coordinate{Latitude: 12.9716, Longitude: 77.5946}, RadiusMeters: 50},
		},
	}
}

func TestDistance(t *testing.T) {
	// Same point.
	p := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	require.InDelta(t, 0, Distance(p, p), 0.01)

	// One degree of latitude is roughly 111.2 km.
	q := Coordinate{Latitude: 13.9716, Longitude: 77.5946}
	require.InDelta(t, 111195, Distance(p, q), 100)

	// Order does not matter.
	require.InDelta(t, Distance(p, q), Distance(q, p), 0.001)
}

func TestVerifyWithinRadius(t *testing.T) {
	// ~11 meters north of the room.
	res, err := testTable().Verify(Coordinate{Latitude: 12.97170, Longitude: 77.5946}, "A", "101")
	require.NoError(t, err)
	require.True(t, res.WithinRadius)
	require.Equal(t, 50.0, res.RadiusMeters)
	require.Less(t, res.DistanceMeters, 50.0)
}

func TestVerifyOutsideRadius(t *testing.T) {
	// ~111 meters north of the room.
	res, err := testTable().Verify(Coordinate{Latitude: 12.9726, Longitude: 77.5946}, "A", "101")
	require.NoError(t, err)
	require.False(t, res.WithinRadius)
	require.Greater(t, res.DistanceMeters, 50.0)
}

func TestVerifyUnknownRoom(t *testing.T) {
	table := testTable()

	_, err := table.Verify(Coordinate{}, "A", "999")
	require.ErrorIs(t, err, ErrRoomUnknown)

	_, err = table.Verify(Coordinate{}, "Z", "101")
	require.ErrorIs(t, err, ErrRoomUnknown)
}
