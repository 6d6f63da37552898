package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemQueue is an in-memory Queue backed by a buffered channel, generalizing
// codepr-webcrawler's messaging.ChannelQueue (a bare Produce/Consume pair)
// with delivery handles and visibility-timeout redelivery so it satisfies
// the same at-least-once contract as the SQS-backed queue.
type MemQueue struct {
	bus            chan []byte
	mu             sync.Mutex
	inFlight       map[string]inFlightMsg
	nextHandle     int64
	visibility     time.Duration
}

type inFlightMsg struct {
	body    []byte
	expires time.Time
}

// NewMemQueue creates an in-memory queue with the given visibility timeout.
func NewMemQueue(visibility time.Duration) *MemQueue {
	return &MemQueue{
		bus:        make(chan []byte, 1024),
		inFlight:   make(map[string]inFlightMsg),
		visibility: visibility,
	}
}

// Send enqueues a message body.
func (q *MemQueue) Send(ctx context.Context, body []byte) error {
	select {
	case q.bus <- body:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendFIFO ignores groupID/dedupID for the in-memory backend: single-process
// delivery order is already FIFO and no real deduplication window exists.
func (q *MemQueue) SendFIFO(ctx context.Context, body []byte, groupID, dedupID string) error {
	return q.Send(ctx, body)
}

// Receive returns up to maxMsgs messages, waiting at most `wait` for the
// first one. Expired in-flight messages (never deleted before their
// visibility timeout) are requeued before a new receive is attempted.
func (q *MemQueue) Receive(ctx context.Context, maxMsgs int, wait time.Duration) ([]Message, error) {
	q.requeueExpired()

	var out []Message
	deadline := time.After(wait)

	for len(out) < maxMsgs {
		select {
		case body := <-q.bus:
			out = append(out, q.track(body))
		case <-deadline:
			return out, nil
		case <-ctx.Done():
			return out, ctx.Err()
		default:
			if len(out) > 0 {
				return out, nil
			}
			select {
			case body := <-q.bus:
				out = append(out, q.track(body))
			case <-deadline:
				return out, nil
			case <-ctx.Done():
				return out, ctx.Err()
			}
		}
	}
	return out, nil
}

func (q *MemQueue) track(body []byte) Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextHandle++
	handle := strconv.FormatInt(q.nextHandle, 10)
	q.inFlight[handle] = inFlightMsg{body: body, expires: time.Now().Add(q.visibility)}
	return Message{Body: body, Handle: handle}
}

// Delete acks a message, removing it from the in-flight set so it is never
// redelivered.
func (q *MemQueue) Delete(ctx context.Context, handle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, handle)
	return nil
}

func (q *MemQueue) requeueExpired() {
	q.mu.Lock()
	var expired [][]byte
	now := time.Now()
	for handle, msg := range q.inFlight {
		if now.After(msg.expires) {
			expired = append(expired, msg.body)
			delete(q.inFlight, handle)
		}
	}
	q.mu.Unlock()

	for _, body := range expired {
		q.bus <- body
	}
}
