// Package renderer implements the Renderer Façade (C4): it owns two
// independent {pending queue, state machine} pipelines (caption and
// superimpose), gated by the Playback Clock, and turns dispatched packets
// and ticks into Primitive batches; Notify reports them on the bus.
package renderer

import (
	"github.com/aznhe21/tavoo/internal/bus"
	"github.com/aznhe21/tavoo/internal/caption"
	"github.com/aznhe21/tavoo/internal/clock"
	"github.com/aznhe21/tavoo/internal/config"
	"go.uber.org/zap"
)

// pipeline is one {queue, state machine} instance, shared in shape by the
// caption and superimpose channels (spec.md §4.5: "the façade is simply
// two instances of the same wiring").
type pipeline struct {
	queue   caption.Queue
	machine *caption.Machine
}

func newPipeline(log *zap.Logger, oneseg bool) *pipeline {
	return &pipeline{machine: caption.NewMachine(log, oneseg)}
}

// Facade is the Renderer Façade: caption and superimpose pipelines plus
// the playback clock that gates immediate-vs-deferred dispatch.
type Facade struct {
	Clock *clock.Clock

	caption     *pipeline
	superimpose *pipeline

	log      *zap.Logger
	isOneseg bool

	captionResets     int
	superimposeResets int
}

// New returns a Facade with both pipelines freshly reset, using
// config.Default()'s timings.
func New(log *zap.Logger, oneseg bool) *Facade {
	return NewWithConfig(log, oneseg, config.Default())
}

// NewWithConfig returns a Facade whose idle-expiry and pending-queue
// validation window come from cfg instead of spec.md §4's hardcoded
// constants, per SPEC_FULL.md §1's configuration section.
func NewWithConfig(log *zap.Logger, oneseg bool, cfg config.Config) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Facade{
		Clock:       clock.New(),
		caption:     newPipeline(log, oneseg),
		superimpose: newPipeline(log, oneseg),
		log:         log,
		isOneseg:    oneseg,
	}
	f.caption.machine.SetTimings(cfg.IdleExpirySeconds)
	f.superimpose.machine.SetTimings(cfg.IdleExpirySeconds)
	f.caption.queue.Window = cfg.PendingValidateWindowSeconds
	f.superimpose.queue.Window = cfg.PendingValidateWindowSeconds
	return f
}

// CaptionViewBox returns the caption channel's current display format
// view-box dimensions (e.g. 960x540 for qhd-horz), for the host to size
// its drawing surface before consuming Primitive batches.
func (f *Facade) CaptionViewBox() (w, h float64) { return f.caption.machine.ViewBox() }

// SuperimposeViewBox returns the superimpose channel's current view-box
// dimensions, independent of the caption channel's format.
func (f *Facade) SuperimposeViewBox() (w, h float64) { return f.superimpose.machine.ViewBox() }

// OnSourceChanged implements spec.md §4.5's "source / service-changed ->
// isOneseg + resetAll" rule.
func (f *Facade) OnSourceChanged(oneseg bool) {
	f.isOneseg = oneseg
	f.resetAll()
}

// OnStateChanged forwards s to the clock and, on stopped, resets both
// pipelines. It schedules no ticks on playing; Tick runs only when called.
func (f *Facade) OnStateChanged(s clock.PlayState) {
	f.Clock.OnState(s)
	if s == clock.StateStopped {
		f.resetAll()
	}
}

// OnSeekCompleted implements "seek-completed -> validate+tick", returning
// the primitives of that tick.
func (f *Facade) OnSeekCompleted() (captionPrims, superimposePrims []caption.Primitive) {
	now := f.Clock.CurrentTime()
	f.caption.queue.Validate(now)
	f.superimpose.queue.Validate(now)
	return f.Tick()
}

func (f *Facade) resetAll() {
	f.caption.machine.Reset()
	f.superimpose.machine.Reset()
	f.caption.queue = caption.Queue{Window: f.caption.queue.Window}
	f.superimpose.queue = caption.Queue{Window: f.superimpose.queue.Window}
	f.captionResets++
	f.superimposeResets++
}

// DispatchCaption applies spec.md §4.5's immediate-vs-deferred rule to a
// caption-channel packet arriving at wire position pos (seconds), missing
// when the packet carried no timestamp at all.
func (f *Facade) DispatchCaption(pos float64, hasPos bool, p caption.Packet) []caption.Primitive {
	return f.dispatch(f.caption, pos, hasPos, p)
}

// DispatchSuperimpose renders a superimpose-channel packet immediately at
// the current playback time, per spec.md §4.5 ("superimpose always
// renders immediately").
func (f *Facade) DispatchSuperimpose(p caption.Packet) []caption.Primitive {
	now := f.Clock.CurrentTime()
	prims, postponed := f.superimpose.machine.Process(now, p)
	if postponed != nil {
		f.superimpose.queue.Defer(postponed.Pos, postponed.Packet)
	}
	return prims
}

func (f *Facade) dispatch(pl *pipeline, pos float64, hasPos bool, p caption.Packet) []caption.Primitive {
	if !hasPos {
		return nil
	}
	now := f.Clock.CurrentTime()
	playing := f.Clock.State() == clock.StatePlaying
	if playing && pos <= now {
		prims, postponed := pl.machine.Process(pos, p)
		if postponed != nil {
			pl.queue.Defer(postponed.Pos, postponed.Packet)
		}
		return prims
	}
	pl.queue.Defer(pos, p)
	return nil
}

// Tick drains every due entry from both queues at the clock's current
// time and runs them through their state machines, returning the
// combined primitives in queue order (caption channel first).
func (f *Facade) Tick() (captionPrims, superimposePrims []caption.Primitive) {
	now := f.Clock.CurrentTime()
	f.caption.machine.CheckIdle(now)
	f.superimpose.machine.CheckIdle(now)
	for _, e := range f.caption.queue.Tick(now) {
		prims, postponed := f.caption.machine.Process(e.Pos, e.Packet)
		captionPrims = append(captionPrims, prims...)
		if postponed != nil {
			f.caption.queue.Defer(postponed.Pos, postponed.Packet)
		}
	}
	for _, e := range f.superimpose.queue.Tick(now) {
		prims, postponed := f.superimpose.machine.Process(e.Pos, e.Packet)
		superimposePrims = append(superimposePrims, prims...)
		if postponed != nil {
			f.superimpose.queue.Defer(postponed.Pos, postponed.Packet)
		}
	}
	return captionPrims, superimposePrims
}

// Notify turns primitives produced by Tick or an immediate dispatch into
// bus notifications, keeping the façade decoupled from how the host
// consumes caption output.
func Notify(b *bus.Bus, pts float64, captionPrims, superimposePrims []caption.Primitive) {
	if len(captionPrims) > 0 {
		b.Emit(bus.Caption{PTSSeconds: pts, Primitives: len(captionPrims)})
	}
	if len(superimposePrims) > 0 {
		b.Emit(bus.Superimpose{PTSSeconds: pts, Primitives: len(superimposePrims)})
	}
}

// Stats reports queue depth and reset counts for both channels plus the
// DRCS decode/drop counts, an observability hook printed by the play CLI.
type Stats struct {
	CaptionQueueLen     int
	SuperimposeQueueLen int
	CaptionResets       int
	SuperimposeResets   int
	DrcsDecoded         int
	DrcsDropped         int
}

func (f *Facade) Stats() Stats {
	decoded, dropped := f.caption.machine.Drcs.Stats()
	sdecoded, sdropped := f.superimpose.machine.Drcs.Stats()
	return Stats{
		CaptionQueueLen:     f.caption.queue.Len(),
		SuperimposeQueueLen: f.superimpose.queue.Len(),
		CaptionResets:       f.captionResets,
		SuperimposeResets:   f.superimposeResets,
		DrcsDecoded:         decoded + sdecoded,
		DrcsDropped:         dropped + sdropped,
	}
}
