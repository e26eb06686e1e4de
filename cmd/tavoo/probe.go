package main

import (
	"fmt"
	"os"

	"github.com/aznhe21/tavoo/internal/ts"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "print demultiplexed PAT/PMT/NIT/EIT frames from a transport stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	dec := ts.NewDecoder(f)
	seenPMT := map[uint16]bool{}
	frames := 0
	for {
		frame, err := dec.ParseNext()
		if err != nil {
			break
		}
		frames++
		switch fr := frame.(type) {
		case *ts.PATFrame:
			fmt.Fprintf(out, "PAT: %d services, network PID=0x%04X\n", len(fr.SidPidMap), fr.NetworkPID)
			for sid, pid := range fr.SidPidMap {
				fmt.Fprintf(out, "  service %d -> PMT PID 0x%04X\n", sid, pid)
			}
		case *ts.PMTFrame:
			if seenPMT[fr.ServiceID] {
				continue
			}
			seenPMT[fr.ServiceID] = true
			fmt.Fprintf(out, "PMT: service %d, PCR PID=0x%04X, %d streams\n", fr.ServiceID, fr.PcrPID, len(fr.StreamList))
			for _, es := range fr.StreamList {
				role := ts.ClassifyComponentTag(es.ComponentTag)
				fmt.Fprintf(out, "  stream type=0x%02X PID=0x%04X componentTag=0x%02X role=%v\n",
					es.StreamId, es.PID, es.ComponentTag, role)
			}
			if pid, role, ok := ts.CaptionStreamPID(fr); ok {
				fmt.Fprintf(out, "  caption component: PID=0x%04X role=%v\n", pid, role)
			}
		case *ts.NITFrame:
			fmt.Fprintf(out, "NIT: network %q, %d transport streams\n", fr.NetworkName, len(fr.TransportStreams))
		case *ts.EITFrame:
			fmt.Fprintf(out, "EIT: service %d, %d events\n", fr.ServiceID, len(fr.Entries))
		}
	}
	fmt.Fprintf(out, "done: %d frames parsed\n", frames)
	return nil
}
