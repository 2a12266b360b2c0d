package ws

import (
	"log/slog"
	"testing"
	"time"
)

func recv(t *testing.T, c *Client, want string) {
	t.Helper()
	select {
	case got := <-c.Send:
		if string(got) != want {
			t.Fatalf("%s got %q want %q", c.ID, got, want)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting %s", c.ID)
	}
}

func none(t *testing.T, c *Client) {
	t.Helper()
	select {
	case got := <-c.Send:
		t.Fatalf("%s must not receive, got %q", c.ID, got)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("want %d clients, got %d", want, h.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_RoutesToAdminsAndOwner(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	admin := &Client{ID: "admin", Admin: true, Send: make(chan []byte, 4)}
	ana := &Client{ID: "ana", ConsultantID: 2, Send: make(chan []byte, 4)}
	bia := &Client{ID: "bia", ConsultantID: 3, Send: make(chan []byte, 4)}
	h.Register(admin)
	h.Register(ana)
	h.Register(bia)

	cid := int64(2)
	h.Route([]byte("lead-5-assigned"), &cid)
	recv(t, admin, "lead-5-assigned")
	recv(t, ana, "lead-5-assigned")
	none(t, bia)

	h.Route([]byte("lead-created"), nil)
	recv(t, admin, "lead-created")
	none(t, ana)
	none(t, bia)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	slow := &Client{ID: "slow", Admin: true, Send: make(chan []byte)}
	h.Register(slow)
	waitCount(t, h, 1)
	h.Route([]byte("x"), nil)
	waitCount(t, h, 0)

	if _, ok := <-slow.Send; ok {
		t.Fatal("expected closed channel")
	}
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c := &Client{Admin: true, Send: make(chan []byte, 1)}
	h.Register(c)
	waitCount(t, h, 1)
	h.Unregister(c)
	h.Unregister(c)
	waitCount(t, h, 0)
}

func TestHub_CallsAfterStopDoNotBlock(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c := &Client{Admin: true, Send: make(chan []byte, 1)}
		h.Register(c)
		if _, ok := <-c.Send; ok {
			t.Error("Send must be closed when registering on a stopped hub")
		}
		h.Unregister(c)
		h.Route([]byte("x"), nil)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after Stop")
	}
}
