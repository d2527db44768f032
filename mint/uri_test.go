package mint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuskWindow(t *testing.T) {
	require := require.New(t)

	at := func(h, m, s int) time.Time {
		return time.Date(2024, 6, 1, h, m, s, 0, time.UTC)
	}

	require.True(duskWindow(at(22, 0, 0)))
	require.True(duskWindow(at(23, 59, 59)))
	require.True(duskWindow(at(0, 0, 0)))
	require.True(duskWindow(at(7, 59, 59)))
	require.False(duskWindow(at(8, 0, 0)))
	require.False(duskWindow(at(12, 0, 0)))
	require.False(duskWindow(at(21, 59, 59)))

	// the window is defined in UTC wherever the clock reads from
	loc := time.FixedZone("UTC+9", 9*3600)
	require.True(duskWindow(time.Date(2024, 6, 1, 7, 0, 0, 0, loc)))
}

func TestPhaseCycle(t *testing.T) {
	require := require.New(t)

	require.Equal(PhaseRaffle, PhaseNone.Next())
	require.Equal(PhaseAllow, PhaseRaffle.Next())
	require.Equal(PhasePublic, PhaseAllow.Next())
	require.Equal(PhaseNone, PhasePublic.Next())
	require.Equal("raffle", PhaseRaffle.String())
}
