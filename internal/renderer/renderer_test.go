package renderer

import (
	"testing"

	"github.com/aznhe21/tavoo/internal/b24"
	"github.com/aznhe21/tavoo/internal/caption"
	"github.com/aznhe21/tavoo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managementPacket() caption.Packet {
	return caption.Packet{
		Kind: caption.PacketManagementData, Group: caption.GroupA,
		Languages: []b24.CaptionLanguage{{LanguageTag: 0, Format: b24.FormatQhdHorz}},
	}
}

func dataPacket() caption.Packet {
	return caption.Packet{
		Kind: caption.PacketData, Group: caption.GroupA, LanguageTag: 0,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0xA2}}},
	}
}

func TestFacade_CaptionWithoutPosIsDiscarded(t *testing.T) {
	f := New(nil, false)
	f.DispatchCaption(0, false, managementPacket())
	prims := f.DispatchCaption(0, false, dataPacket())
	assert.Nil(t, prims)
	assert.Equal(t, 0, f.Stats().CaptionQueueLen)
}

func TestFacade_LateArrivalWhilePlayingRendersImmediately(t *testing.T) {
	f := New(nil, false)
	f.Clock.OnState(clock.StatePlaying)
	f.DispatchCaption(0, true, managementPacket())

	prims := f.DispatchCaption(0, true, dataPacket()) // pos=0 <= currentTime
	require.NotEmpty(t, prims)
	assert.Equal(t, 0, f.Stats().CaptionQueueLen)
}

func TestFacade_DeferredWhileNotPlayingDrainsOnTick(t *testing.T) {
	f := New(nil, false)
	// Not playing: every dispatch defers, including management data.
	f.DispatchCaption(0, true, managementPacket())
	prims := f.DispatchCaption(1000, true, dataPacket())
	assert.Nil(t, prims)
	assert.Equal(t, 2, f.Stats().CaptionQueueLen)

	// currentTime is frozen at 0 (never playing), so only the
	// management-data entry (pos=0) is due.
	captionPrims, _ := f.Tick()
	assert.Empty(t, captionPrims)
	assert.Equal(t, 1, f.Stats().CaptionQueueLen)
}

func TestFacade_SuperimposeAlwaysRendersImmediately(t *testing.T) {
	f := New(nil, false)
	f.DispatchSuperimpose(managementPacket())

	prims := f.DispatchSuperimpose(dataPacket())
	require.NotEmpty(t, prims)
}

func TestFacade_CaptionViewBoxReflectsEstablishedFormat(t *testing.T) {
	f := New(nil, false)
	f.Clock.OnState(clock.StatePlaying)
	f.DispatchCaption(0, true, managementPacket())

	w, h := f.CaptionViewBox()
	assert.Equal(t, 960.0, w)
	assert.Equal(t, 540.0, h)
}

func TestFacade_StateStoppedResetsBothPipelines(t *testing.T) {
	f := New(nil, false)
	f.DispatchCaption(0, true, managementPacket())
	f.DispatchCaption(1000, true, dataPacket())
	require.Equal(t, 2, f.Stats().CaptionQueueLen)

	f.OnStateChanged(clock.StateStopped)
	assert.Equal(t, 0, f.Stats().CaptionQueueLen)
	assert.Equal(t, 1, f.Stats().CaptionResets)
}
