package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	if err := q.Publish(ctx, Message{Type: TypeMirror, Body: []byte(`{"roll_number":"21CS045"}`)}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	select {
	case msg := <-messages:
		if msg.Type != TypeMirror {
			t.Fatalf("type = %q", msg.Type)
		}
		if string(msg.Body) != `{"roll_number":"21CS045"}` {
			t.Fatalf("body = %q", msg.Body)
		}
	case <-time.After(time.Second):
		t.Fatalf("no message received")
	}
}

func TestPublishCancelledContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Publish(ctx, Message{Type: TypeMirror}); err == nil {
		t.Fatalf("publish on cancelled context succeeded")
	}
}

// Cancelling the consumer context must close the output channel even when a
// pending message has no receiver.
func TestConsumeCancelWithPendingMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	q := NewInMemory(1)
	if err := q.Publish(ctx, Message{Type: TypeMirror, Body: []byte("{}")}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-messages:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("consumer channel not closed after cancel")
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	in := Message{Type: TypeMirror, Body: []byte(`{"device_info":"Android | Pixel"}`)}
	out, err := deserialize(serialize(in))
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if out.Type != in.Type || string(out.Body) != string(in.Body) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDeserializeWithoutSeparator(t *testing.T) {
	out, err := deserialize("no-separator")
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if out.Type != "" || string(out.Body) != "no-separator" {
		t.Fatalf("unexpected message: %+v", out)
	}
}
