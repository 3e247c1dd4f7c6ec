package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/log"
	"github.com/JWebSmart/Nft-marketplace/mq"
)

// eventPrinter writes one JSON document per event.
type eventPrinter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newEventPrinter(w io.Writer) *eventPrinter {
	return &eventPrinter{enc: json.NewEncoder(w)}
}

func (p *eventPrinter) print(event mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(event)
}

func eventsCmd() *cobra.Command {
	var (
		from string
		name string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the storefront event stream",
		Long: `
Follow the storefront event stream.

Prints voucher_issued, nft_minted, nft_transferred and nft_burned events as JSON lines.
--from accepts "first", "last" or "height:<n>".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)

			mqCfg := cfg.GetRabbitMQConfig()
			if mqCfg == nil {
				return errors.New("RABBITMQ_ENABLED is not set")
			}

			consumer, err := mq.NewConsumer(*mqCfg, logger)
			if err != nil {
				return err
			}
			defer consumer.Close() //nolint:errcheck

			printer := newEventPrinter(cmd.OutOrStdout())
			if err := consumer.Subscribe(from, name, func(event mq.Event) {
				if err := printer.print(event); err != nil {
					logger.Warn("failed to print event", slog.Any("error", err))
				}
			}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "last", "where to start reading: first, last or height:<n>")
	cmd.Flags().StringVar(&name, "name", "storefront-events", "consumer group name")

	return cmd
}
