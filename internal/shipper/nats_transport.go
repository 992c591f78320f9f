// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

//go:build nats

package shipper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
)

// NATSTransport publishes each entry as one JetStream message on the
// per-level subject "<prefix>.<lowercase level>". Message IDs enable
// broker-side deduplication on redelivery.
type NATSTransport struct {
	cfg       NATSConfig
	publisher message.Publisher
	embedded  *EmbeddedServer
}

// NewNATSTransport connects a Watermill JetStream publisher. When
// cfg.Embedded is set, an in-process nats-server is started first and
// the publisher connects to it.
func NewNATSTransport(cfg NATSConfig) (*NATSTransport, error) {
	cfg = cfg.Defaults()

	t := &NATSTransport{cfg: cfg}

	url := cfg.URL
	if cfg.Embedded {
		embedded, err := NewEmbeddedServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("nats transport: %w", err)
		}
		t.embedded = embedded
		url = embedded.ClientURL()
	}
	if url == "" {
		return nil, fmt.Errorf("nats transport: broker URL is required")
	}

	logger := watermill.NewStdLogger(false, false)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				log := logging.WithComponent("shipper")
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			log := logging.WithComponent("shipper")
			log.Info().
				Str("url", nc.ConnectedUrl()).
				Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true, // Enable deduplication
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		t.closeEmbedded()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	t.publisher = pub
	return t, nil
}

// Name implements Transport.
func (t *NATSTransport) Name() string { return "nats" }

// Send implements Transport. Entries are published individually so each
// lands on its level's subject; a failure aborts the rest of the batch.
func (t *NATSTransport) Send(ctx context.Context, batch []debuglog.Entry) error {
	for _, e := range batch {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}

		msg := message.NewMessage(watermill.NewUUID(), data)
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
		msg.Metadata.Set("category", e.Category)
		msg.Metadata.Set("session_id", e.SessionID)

		subject := t.cfg.SubjectPrefix + "." + strings.ToLower(e.Level.String())
		if err := t.publisher.Publish(subject, msg); err != nil {
			return fmt.Errorf("publish to %s: %w", subject, err)
		}
	}
	return nil
}

// Close shuts down the publisher, then the embedded server if one was
// started.
func (t *NATSTransport) Close() error {
	var err error
	if t.publisher != nil {
		err = t.publisher.Close()
	}
	t.closeEmbedded()
	return err
}

func (t *NATSTransport) closeEmbedded() {
	if t.embedded == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.embedded.Shutdown(ctx); err != nil {
		log := logging.WithComponent("shipper")
		log.Warn().Err(err).Msg("Embedded NATS shutdown failed")
	}
}
