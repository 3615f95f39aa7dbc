package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDocumentCreated, Data: map[string]string{"id": "doc-1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: document.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"doc-1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSessionTopicFiltering(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	all := b.Subscribe("")
	one := b.Subscribe("s1")
	two := b.Subscribe("s2")
	defer b.Unsubscribe(all)
	defer b.Unsubscribe(one)
	defer b.Unsubscribe(two)

	b.PublishSessionChange("s1", map[string]string{"op": "element.add"})
	time.Sleep(50 * time.Millisecond)

	if n := len(drain(all)); n != 1 {
		t.Errorf("unfiltered client got %d events, want 1", n)
	}
	got := drain(one)
	if len(got) != 1 || !strings.Contains(got[0], `"session":"s1"`) {
		t.Errorf("s1 client got %q", got)
	}
	if n := len(drain(two)); n != 0 {
		t.Errorf("s2 client got %d events, want 0", n)
	}
}

func TestPublishDocumentEvent_CatalogueThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.PublishDocumentEvent("created", "a")
	b.PublishDocumentEvent("updated", "b")

	time.Sleep(50 * time.Millisecond)
	catalogue, docs := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, TypeCatalogueUpdated) {
			catalogue++
		} else {
			docs++
		}
	}

	if docs != 2 {
		t.Errorf("document events = %d, want 2", docs)
	}
	if catalogue != 1 {
		t.Errorf("catalogue events = %d, want 1 (throttled)", catalogue)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?session=abc", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishSessionChange("abc", map[string]string{"op": "history.undo"})
	b.PublishSessionChange("other", map[string]string{"op": "history.redo"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: session.changed") || !strings.Contains(body, "history.undo") {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, "history.redo") {
		t.Errorf("handler delivered another session's event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the extra publishes must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeDocumentUpdated, Data: map[string]string{"id": "x"}})
	b.PublishDocumentEvent("updated", "x")
	b.PublishSessionChange("x", nil)
}
