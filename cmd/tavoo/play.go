package main

import (
	"fmt"
	"os"

	"github.com/aznhe21/tavoo/internal/b24"
	"github.com/aznhe21/tavoo/internal/caption"
	"github.com/aznhe21/tavoo/internal/clock"
	"github.com/aznhe21/tavoo/internal/config"
	"github.com/aznhe21/tavoo/internal/logging"
	"github.com/aznhe21/tavoo/internal/renderer"
	"github.com/aznhe21/tavoo/internal/ts"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "demultiplex a transport stream and print rendered caption primitives",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

// runPlay is the headless stand-in for the host player described in
// SPEC_FULL.md §1: it drives a renderer.Facade directly off the
// transport stream's own PTS instead of a real playback clock, advancing
// the clock to each caption access unit's timestamp and ticking after
// every dispatch.
func runPlay(cmd *cobra.Command, args []string) error {
	log, err := logging.New(debugLogging)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := config.FromEnv()
	cfg.Debug = debugLogging

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	dec := ts.NewDecoder(f)
	captionPID, superimposePID, err := discoverCaptionPIDs(dec)
	if err != nil {
		return err
	}
	log.Info("caption streams discovered",
		zap.Uint16("captionPID", captionPID),
		zap.Bool("hasSuperimpose", superimposePID != 0),
		zap.String("service", cfg.ServiceLabel))

	face := renderer.NewWithConfig(log, cfg.OneSeg, cfg)
	face.OnStateChanged(clock.StatePlaying)

	pesCount := 0
	var lastViewW, lastViewH float64
	for {
		pes, err := dec.ReadCaptionPES(captionPID)
		if err != nil {
			break
		}
		pesCount++

		dg, err := b24.ReadDataGroup(pes.Payload)
		if err != nil {
			log.Warn("malformed data group", zap.Error(err))
			continue
		}
		pkt, err := caption.NewPacketFromDataGroup(dg)
		if err != nil {
			log.Warn("malformed caption packet", zap.Error(err))
			continue
		}

		if pes.HasPTS {
			face.Clock.OnPosition(pes.PTSSeconds)
		}
		prims := face.DispatchCaption(pes.PTSSeconds, pes.HasPTS, pkt)
		captionTick, superimposeTick := face.Tick()
		prims = append(prims, captionTick...)

		if viewW, viewH := face.CaptionViewBox(); viewW != lastViewW || viewH != lastViewH {
			lastViewW, lastViewH = viewW, viewH
			fmt.Fprintf(cmd.OutOrStdout(), "viewBox \"0 0 %.0f %.0f\"\n", viewW, viewH)
		}
		printPrimitives(pes.PTSSeconds, prims)
		printPrimitives(pes.PTSSeconds, superimposeTick)
	}

	stats := face.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "done: %d PES packets, queue depths caption=%d superimpose=%d, DRCS decoded=%d dropped=%d\n",
		pesCount, stats.CaptionQueueLen, stats.SuperimposeQueueLen, stats.DrcsDecoded, stats.DrcsDropped)
	return nil
}

func printPrimitives(pts float64, prims []caption.Primitive) {
	for _, p := range prims {
		fmt.Printf("%.3f kind=%d x=%.1f y=%.1f w=%.1f h=%.1f rune=%q hemming=%d\n",
			pts, p.Kind, p.X, p.Y, p.W, p.H, p.Rune, p.Hemming)
	}
}

// discoverCaptionPIDs reads frames until a PMT for a selected service has
// been seen and a caption (and optionally superimpose) component tag has
// been found in it, following ts.CaptionStreamPIDs.
func discoverCaptionPIDs(dec *ts.Decoder) (captionPID, superimposePID uint16, err error) {
	for {
		frame, ferr := dec.ParseNext()
		if ferr != nil {
			return 0, 0, fmt.Errorf("no caption stream found before end of file: %w", ferr)
		}
		pmt, ok := frame.(*ts.PMTFrame)
		if !ok {
			continue
		}
		cPID, hasCaption, sPID, hasSuperimpose := ts.CaptionStreamPIDs(pmt)
		if !hasCaption {
			continue
		}
		if hasSuperimpose {
			superimposePID = sPID
		}
		return cPID, superimposePID, nil
	}
}
