package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemQueueSendReceiveDelete(t *testing.T) {
	q := NewMemQueue(50 * time.Millisecond)
	ctx := context.Background()

	if err := q.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := q.Receive(ctx, 1, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 1 || string(msgs[0].Body) != "hello" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	if err := q.Delete(ctx, msgs[0].Handle); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Nothing left to receive, and no redelivery since it was deleted.
	time.Sleep(60 * time.Millisecond)
	msgs, err = q.Receive(ctx, 1, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages after delete, got %+v", msgs)
	}
}

func TestMemQueueRedeliversUnackedMessage(t *testing.T) {
	q := NewMemQueue(20 * time.Millisecond)
	ctx := context.Background()

	if err := q.Send(ctx, []byte("retry-me")); err != nil {
		t.Fatalf("send: %v", err)
	}

	first, err := q.Receive(ctx, 1, 50*time.Millisecond)
	if err != nil || len(first) != 1 {
		t.Fatalf("first receive: %v %+v", err, first)
	}
	// Deliberately do not delete - simulate a crashed consumer.

	time.Sleep(30 * time.Millisecond)

	second, err := q.Receive(ctx, 1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if len(second) != 1 || string(second[0].Body) != "retry-me" {
		t.Fatalf("expected redelivery of unacked message, got %+v", second)
	}
}

func TestMemQueueReceiveTimesOutWhenEmpty(t *testing.T) {
	q := NewMemQueue(time.Second)
	start := time.Now()
	msgs, err := q.Receive(context.Background(), 1, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %+v", msgs)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("receive returned too early")
	}
}
