// Command relayd runs one domain relay: it tails a shared-memory ring,
// parses and validates each message, routes it to topics, and answers
// control-surface requests on a Unix-domain socket (spec.md §4.6-§4.7,
// §6.3).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"protov2.dev/core/config"
	"protov2.dev/core/control"
	"protov2.dev/core/parser"
	"protov2.dev/core/recovery"
	"protov2.dev/core/relay"
	"protov2.dev/core/shmring"
	"protov2.dev/core/tlv"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var domainFlag string
	var readerID int

	cmd := &cobra.Command{
		Use:   "relayd",
		Short: "run a protov2 domain relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.DefaultConfigForDomain(domainFlag)
			if err != nil {
				return err
			}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runRelay(cfg, readerID)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON config file; overrides --domain's tuned defaults entirely")
	cmd.Flags().StringVar(&domainFlag, "domain", "market_data", "relay domain whose tuned defaults to start from: market_data, signal, execution, or system")
	cmd.Flags().IntVar(&readerID, "reader-id", 0, "this relay's ring reader_id (0-15)")
	return cmd
}

func runRelay(cfg config.Config, readerID int) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("relayd: %w", err)
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "relayd")

	domain, err := config.RelayDomainValue(cfg)
	if err != nil {
		return err
	}

	reader, err := shmring.Open(cfg.RingPath, readerID)
	if err != nil {
		return fmt.Errorf("relayd: open ring: %w", err)
	}
	defer reader.Close()

	buf, err := recovery.OpenBuffer(cfg.RecoveryBufferPath, cfg.RecoveryBufferCapacity)
	if err != nil {
		return fmt.Errorf("relayd: open recovery buffer: %w", err)
	}
	defer buf.Close()
	recoverySvc := recovery.NewService(buf, cfg.RecoveryRequestExpiry)

	r := relay.New(relay.Config{
		Strategy:     relay.Strategy{Kind: relay.StrategySourceType, SourceTopics: relay.DefaultSourceTopics},
		BufferSize:   cfg.SubscriberBufferSize,
		AutoDiscover: cfg.AutoDiscoverTopics,
		IdleTimeout:  cfg.SubscriberIdleTimeout,
	})

	srv, err := control.Listen(cfg.ControlSocketPath, r, domain)
	if err != nil {
		return fmt.Errorf("relayd: listen control socket: %w", err)
	}
	defer srv.Close()
	go func() {
		if err := srv.Serve(); err != nil {
			log.WithError(err).Error("control server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit := domain == tlv.RelayDomainExecution
	log.WithFields(logrus.Fields{
		"ring":              cfg.RingPath,
		"domain":            cfg.RelayDomain,
		"target_throughput": cfg.TargetThroughputPerSec,
		"max_message_size":  cfg.MaxMessageSize,
	}).Info("relayd starting")

	var idleTick <-chan time.Time
	if cfg.SubscriberIdleTimeout > 0 {
		ticker := time.NewTicker(cfg.SubscriberIdleTimeout)
		defer ticker.Stop()
		idleTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("relayd: shutdown signal received, draining")
			return nil
		case <-idleTick:
			if evicted := r.EvictIdle(); len(evicted) > 0 {
				log.WithField("consumers", evicted).Info("evicted idle subscribers")
			}
		default:
		}

		raw, seq, err := reader.Poll()
		if err != nil {
			if overrun, ok := err.(*shmring.OverrunError); ok {
				log.WithFields(logrus.Fields{"gap_start": overrun.GapStart, "gap_end": overrun.GapEnd}).Warn("ring overrun")
				continue
			}
			time.Sleep(shmring.EmptyBackoff)
			continue
		}

		if len(raw) > cfg.MaxMessageSize {
			log.WithField("size", len(raw)).Warn("dropping message over max_message_size")
			continue
		}

		msg, err := parser.Parse(raw, audit)
		if err != nil {
			log.WithError(err).Debug("dropping malformed message")
			continue
		}
		if err := recoverySvc.Record(uint32(msg.Header.SourceType), seq, raw); err != nil {
			log.WithError(err).Warn("failed to record message for replay")
		}
		if err := r.Publish(msg, raw); err != nil {
			log.WithError(err).Warn("publish failed")
		}
	}
}
