package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DeferOrdersByPosStableFIFO(t *testing.T) {
	var q Queue
	q.Defer(5, Packet{LanguageTag: 1})
	q.Defer(1, Packet{LanguageTag: 2})
	q.Defer(5, Packet{LanguageTag: 3}) // ties with the first entry, must stay after it
	q.Defer(3, Packet{LanguageTag: 4})

	require.Equal(t, 4, q.Len())
	due := q.Tick(5)
	require.Len(t, due, 4)
	assert.EqualValues(t, 2, due[0].Packet.LanguageTag)
	assert.EqualValues(t, 4, due[1].Packet.LanguageTag)
	assert.EqualValues(t, 1, due[2].Packet.LanguageTag)
	assert.EqualValues(t, 3, due[3].Packet.LanguageTag)
}

func TestQueue_TickOnlyPopsDueEntries(t *testing.T) {
	var q Queue
	q.Defer(1, Packet{})
	q.Defer(10, Packet{})

	due := q.Tick(5)
	require.Len(t, due, 1)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ValidatePurgesStaleEntries(t *testing.T) {
	var q Queue
	q.Defer(0, Packet{})
	q.Defer(50, Packet{})
	q.Defer(102, Packet{})

	q.Validate(101)
	assert.Equal(t, 1, q.Len())
	due := q.Tick(102)
	require.Len(t, due, 1)
}
