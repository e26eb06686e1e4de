package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KnownDiscriminators(t *testing.T) {
	n, err := Decode([]byte(`{"notification":"position","position":12.5}`))
	require.NoError(t, err)
	pos, ok := n.(Position)
	require.True(t, ok)
	assert.Equal(t, 12.5, pos.Seconds)

	n, err = Decode([]byte(`{"notification":"state","state":"playing"}`))
	require.NoError(t, err)
	assert.Equal(t, State{Value: "playing"}, n)

	n, err = Decode([]byte(`{"notification":"volume","volume":0.8,"muted":true}`))
	require.NoError(t, err)
	assert.Equal(t, Volume{Value: 0.8, Muted: true}, n)
}

func TestDecode_UnknownDiscriminatorNeverErrors(t *testing.T) {
	n, err := Decode([]byte(`{"notification":"some-future-thing","x":1}`))
	require.NoError(t, err)
	unk, ok := n.(UnknownNotification)
	require.True(t, ok)
	assert.Contains(t, string(unk.Raw), "some-future-thing")
}

func TestDecode_MalformedEnvelopeErrors(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestKind_MatchesItsOwnDecoderKey(t *testing.T) {
	// Every notification's Kind() must name the same discriminator that
	// Decode's decoders map would route it through, so the two never
	// drift apart once anything round-trips through JSON.
	samples := []Notification{
		Source{}, Volume{}, RateRange{}, Duration{}, State{}, Position{},
		SeekCompleted{}, Rate{}, VideoSize{}, AudioChannels{}, DualMonoMode{},
		SwitchingStarted{}, SwitchingEnded{}, Services{}, Service{}, Event{},
		ServiceChanged{}, StreamChanged{}, Caption{}, Superimpose{}, Timestamp{}, Error{},
	}
	for _, n := range samples {
		_, ok := decoders[n.Kind()]
		assert.True(t, ok, "no decoder registered for Kind() %q", n.Kind())
	}
}

func TestBus_EmitDispatchesToSubscribersInOrder(t *testing.T) {
	b := New()
	var seen []string
	b.Subscribe(func(n Notification) { seen = append(seen, "1:"+n.Kind()) })
	b.Subscribe(func(n Notification) { seen = append(seen, "2:"+n.Kind()) })

	b.Emit(Position{Seconds: 1})

	assert.Equal(t, []string{"1:position", "2:position"}, seen)
}
