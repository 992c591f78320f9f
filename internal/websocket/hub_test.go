// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/tabularius/internal/debuglog"
)

func tailEntry(level debuglog.Level, category, message string) debuglog.Entry {
	return debuglog.Entry{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Message:   message,
		SessionID: "sess-1",
	}
}

// registerTestClient registers a connectionless client directly with a
// running hub and returns it. The send channel stands in for the wire.
func registerTestClient(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()

	client := &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		send: make(chan Message, buffer),
	}
	hub.Register <- client

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return client
}

func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Serve(ctx) //nolint:errcheck
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_BroadcastsEntryToClients(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a := registerTestClient(t, hub, 8)
	b := registerTestClient(t, hub, 8)

	if err := hub.Write(tailEntry(debuglog.LevelInfo, "API Call", "hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeEntry {
			t.Errorf("type = %q", msg.Type)
		}
		entry, ok := msg.Data.(debuglog.Entry)
		if !ok {
			t.Fatalf("data type %T", msg.Data)
		}
		if entry.Message != "hello" {
			t.Errorf("message = %q", entry.Message)
		}
	}
}

func TestHub_AppliesClientFilter(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	filtered := registerTestClient(t, hub, 8)
	unfiltered := registerTestClient(t, hub, 8)

	maxLevel := debuglog.LevelWarn
	filtered.SetFilter(&ClientFilter{MaxLevel: &maxLevel, Category: "API Call"})

	hub.Write(tailEntry(debuglog.LevelInfo, "API Call", "too verbose"))  //nolint:errcheck
	hub.Write(tailEntry(debuglog.LevelError, "Navigation", "wrong cat")) //nolint:errcheck
	hub.Write(tailEntry(debuglog.LevelError, "API Call", "admitted"))    //nolint:errcheck

	// The unfiltered client sees all three; the filtered one only the last.
	for i := 0; i < 3; i++ {
		receive(t, unfiltered)
	}

	msg := receive(t, filtered)
	entry := msg.Data.(debuglog.Entry)
	if entry.Message != "admitted" {
		t.Errorf("filtered client received %q", entry.Message)
	}
	select {
	case extra := <-filtered.send:
		t.Errorf("filtered client received extra message: %+v", extra)
	default:
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	slow := registerTestClient(t, hub, 1)
	fast := registerTestClient(t, hub, 8)

	// Fill the slow client's buffer, then overflow it.
	hub.Write(tailEntry(debuglog.LevelInfo, "test", "first"))  //nolint:errcheck
	receive(t, fast)                                           // first delivered to both
	hub.Write(tailEntry(debuglog.LevelInfo, "test", "second")) //nolint:errcheck
	receive(t, fast)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("slow client not dropped: %d clients", got)
	}

	// The evicted client's backlog stays readable, then the channel
	// reports closed.
	if msg, ok := <-slow.send; !ok || msg.Data.(debuglog.Entry).Message != "first" {
		t.Errorf("slow client backlog = %+v (ok=%v)", msg.Data, ok)
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client send channel not closed after eviction")
	}

	// The fast client keeps receiving.
	hub.Write(tailEntry(debuglog.LevelInfo, "test", "third")) //nolint:errcheck
	msg := receive(t, fast)
	if msg.Data.(debuglog.Entry).Message != "third" {
		t.Errorf("fast client message = %+v", msg.Data)
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	client := registerTestClient(t, hub, 8)

	hub.Unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("received message instead of close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed on unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d", hub.ClientCount())
	}
}

func TestHub_ShutdownClosesAllClients(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Serve(ctx) //nolint:errcheck
		close(done)
	}()

	client := registerTestClient(t, hub, 8)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("received message instead of close")
		}
	default:
		t.Error("send channel not closed at shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count after shutdown = %d", hub.ClientCount())
	}
}

func TestHub_WriteNeverBlocksWhenChannelFull(t *testing.T) {
	t.Parallel()

	// No Serve loop: the broadcast channel fills and Write must drop.
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 512; i++ {
			hub.Write(tailEntry(debuglog.LevelInfo, "test", "x")) //nolint:errcheck
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write blocked on a full broadcast channel")
	}
}
