// Command ringtool inspects a shmring ring file directly: its header
// fields, reader cursor lag, and a tail of recent messages, decoded far
// enough to print a human-readable instrument ID (spec.md §4.6, §3.1).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"protov2.dev/core/instrument"
	"protov2.dev/core/parser"
	"protov2.dev/core/shmring"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ringtool"}
	cmd.AddCommand(headerCmd())
	cmd.AddCommand(tailCmd())
	return cmd
}

func headerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <ring-path>",
		Short: "print a ring's header fields and reader cursor lag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHeader(args[0])
		},
	}
}

func printHeader(path string) error {
	r, err := shmring.Open(path, diagnosticReaderID)
	if err != nil {
		return fmt.Errorf("ringtool: %w", err)
	}
	defer r.Close()

	writeSeq := r.WriteSequence()
	fmt.Printf("version:        %d\n", r.Version())
	fmt.Printf("capacity:       %d\n", r.Capacity())
	fmt.Printf("slot_size:      %d\n", r.SlotSize())
	fmt.Printf("writer_pid:     %d\n", r.WriterPID())
	fmt.Printf("write_sequence: %d\n", writeSeq)
	fmt.Printf("last_write_ns:  %d\n", r.LastWriteTimestampNs())
	for id := 0; id < shmring.MaxReaders; id++ {
		cursor, err := r.ReaderCursor(id)
		if err != nil {
			return err
		}
		if cursor == 0 && id != diagnosticReaderID {
			continue
		}
		fmt.Printf("reader[%d]:      cursor=%d lag=%d\n", id, cursor, writeSeq-cursor)
	}
	return nil
}

// diagnosticReaderID is the cursor slot ringtool claims for itself. It is
// the top of the range so it never collides with a production relay's
// reader_id, which is expected to start from 0.
const diagnosticReaderID = shmring.MaxReaders - 1

func tailCmd() *cobra.Command {
	var count int
	var audit bool

	cmd := &cobra.Command{
		Use:   "tail <ring-path>",
		Short: "parse and print messages held in a ring, oldest first, until it is empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tailRing(args[0], count, audit)
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "maximum number of messages to print; exits earlier when the ring is empty")
	cmd.Flags().BoolVar(&audit, "audit", false, "run parser in audit mode")
	return cmd
}

func tailRing(path string, count int, audit bool) error {
	r, err := shmring.Open(path, diagnosticReaderID)
	if err != nil {
		return fmt.Errorf("ringtool: %w", err)
	}
	defer r.Close()

	printed := 0
	for printed < count {
		raw, seq, err := r.Poll()
		if err != nil {
			if overrun, ok := err.(*shmring.OverrunError); ok {
				fmt.Printf("overrun: lost sequences %d-%d\n", overrun.GapStart, overrun.GapEnd)
				continue
			}
			if err == shmring.ErrRingEmpty {
				return nil
			}
			return err
		}

		msg, err := parser.Parse(raw, audit)
		if err != nil {
			fmt.Printf("seq=%d malformed: %v\n", seq, err)
			continue
		}
		printMessage(seq, msg)
		printed++
	}
	return nil
}

func printMessage(seq uint64, msg parser.Message) {
	fmt.Printf("seq=%d relay_domain=%d source_type=%d ts_ns=%d entries=%d\n",
		seq, msg.Header.RelayDomain, msg.Header.SourceType, msg.Header.TimestampNs, len(msg.Entries))
	for _, e := range msg.Entries {
		fmt.Printf("  type=%d len=%d%s\n", e.Type, len(e.Body), describeInstrument(e.Body))
	}
}

// describeInstrument renders the leading 16 bytes of a TLV body as an
// instrument ID when they decode to a valid venue/asset_type. Trade and
// Quote bodies lead with one; pool bodies lead with a 20-byte pool address,
// which usually does not decode and then prints nothing.
func describeInstrument(body []byte) string {
	if len(body) < 16 {
		return ""
	}
	var raw [16]byte
	copy(raw[:], body[:16])
	id := instrument.FromBytes(raw)
	venue, err := id.VenueOf()
	if err != nil {
		return ""
	}
	assetType, err := id.AssetTypeOf()
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" instrument=%s/%s/%d", venue, assetType, id.AssetID)
}
