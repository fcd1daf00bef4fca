// Command producerbench generates synthetic traffic into a shmring ring at
// a target rate, for measuring throughput against spec.md §4.7's per-domain
// targets (e.g. 1,000,000+ msgs/sec for market data).
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"protov2.dev/core/builder"
	"protov2.dev/core/shmring"
	"protov2.dev/core/tlv"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var ringPath string
	var capacity, slotSize uint32
	var create bool
	var domain string
	var sourceType uint8
	var tlvType uint8
	var bodyLen int
	var rate int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "producerbench",
		Short: "generate synthetic load into a protov2 ring",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			return run(benchConfig{
				ringPath:   ringPath,
				capacity:   capacity,
				slotSize:   slotSize,
				create:     create,
				domain:     d,
				sourceType: sourceType,
				tlvType:    tlvType,
				bodyLen:    bodyLen,
				rate:       rate,
				duration:   duration,
			})
		},
	}

	cmd.Flags().StringVar(&ringPath, "ring", "/dev/shm/protov2-bench.ring", "ring file path")
	cmd.Flags().Uint32Var(&capacity, "capacity", 1<<16, "slot count when --create is set")
	cmd.Flags().Uint32Var(&slotSize, "slot-size", 256, "slot size in bytes when --create is set")
	cmd.Flags().BoolVar(&create, "create", true, "create (truncate) the ring before writing")
	cmd.Flags().StringVar(&domain, "domain", "market_data", "relay domain: market_data|signal|execution|system")
	cmd.Flags().Uint8Var(&sourceType, "source-type", 1, "source_type byte stamped on each message")
	cmd.Flags().Uint8Var(&tlvType, "type", 1, "TLV entry type, must match --domain (1=trade/market_data, 20=signal_identity/signal, 100=heartbeat/system)")
	cmd.Flags().IntVar(&bodyLen, "body-len", 40, "TLV body length in bytes, must satisfy the type's size constraint")
	cmd.Flags().IntVar(&rate, "rate", 100000, "target messages per second, 0 for unthrottled")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to run")

	return cmd
}

func parseDomain(s string) (tlv.RelayDomain, error) {
	switch s {
	case "market_data":
		return tlv.RelayDomainMarketData, nil
	case "signal":
		return tlv.RelayDomainSignal, nil
	case "execution":
		return tlv.RelayDomainExecution, nil
	case "system":
		return tlv.RelayDomainSystem, nil
	default:
		return 0, fmt.Errorf("producerbench: unknown domain %q", s)
	}
}

type benchConfig struct {
	ringPath   string
	capacity   uint32
	slotSize   uint32
	create     bool
	domain     tlv.RelayDomain
	sourceType uint8
	tlvType    uint8
	bodyLen    int
	rate       int
	duration   time.Duration
}

func run(cfg benchConfig) error {
	var writer *shmring.Writer
	if cfg.create {
		w, err := shmring.Create(cfg.ringPath, cfg.capacity, cfg.slotSize)
		if err != nil {
			return fmt.Errorf("producerbench: create ring: %w", err)
		}
		writer = w
	} else {
		// Create is the only way to obtain a *Writer; benchmark runs
		// always own their ring, matching spec.md §5's single-writer rule.
		return fmt.Errorf("producerbench: --create=false is not supported, a writer must own the ring")
	}
	defer writer.Close()

	body := make([]byte, cfg.bodyLen)
	rng := rand.New(rand.NewSource(1))
	rng.Read(body)

	var interval time.Duration
	if cfg.rate > 0 {
		interval = time.Second / time.Duration(cfg.rate)
	}

	deadline := time.Now().Add(cfg.duration)
	var sent, dropped uint64
	start := time.Now()

	for time.Now().Before(deadline) {
		msg, err := builder.BuildMessage(builder.Fields{
			RelayDomain: cfg.domain,
			SourceType:  cfg.sourceType,
			Type:        cfg.tlvType,
			Body:        body,
		}, builder.DefaultChecksumPolicy)
		if err != nil {
			return fmt.Errorf("producerbench: build: %w", err)
		}
		if _, err := writer.Write(msg); err != nil {
			dropped++
			continue
		}
		sent++

		if interval > 0 {
			time.Sleep(interval)
		}
	}

	elapsed := time.Since(start)
	rate := float64(sent) / elapsed.Seconds()
	fmt.Printf("sent=%d dropped=%d elapsed=%s rate=%.0f msgs/sec\n", sent, dropped, elapsed, rate)
	return nil
}
