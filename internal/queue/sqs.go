package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/google/uuid"
)

// SQSQueue is the distributed-deployment Queue backend, backed by
// aws-sdk-go's SQS client: SendMessage/ReceiveMessage/DeleteMessage over
// a queue URL, with WaitTimeSeconds long-polling and the queue's own
// visibility-timeout redelivery doing the at-least-once work.
type SQSQueue struct {
	client   *sqs.SQS
	queueURL string
	fifo     bool
}

// dedupNamespace anchors the SHA1 dedup-id namespace to DNS, matching the
// conventional uuid5(NAMESPACE_DNS, url) derivation.
var dedupNamespace = uuid.NameSpaceDNS

// NewSQSQueue creates a queue client bound to queueURL in the given region.
// fifo must be true when queueURL ends in ".fifo".
func NewSQSQueue(region, queueURL string, fifo bool) (*SQSQueue, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("queue: create aws session: %w", err)
	}
	return &SQSQueue{
		client:   sqs.New(sess),
		queueURL: queueURL,
		fifo:     fifo,
	}, nil
}

// Send enqueues a message. On a FIFO queue it uses message group "1" and a
// dedup id hashed over the body's "url" field (the whole body when it has
// none).
func (q *SQSQueue) Send(ctx context.Context, body []byte) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if q.fifo {
		key := body
		var keyed struct {
			URL string `json:"url"`
		}
		if json.Unmarshal(body, &keyed) == nil && keyed.URL != "" {
			key = []byte(keyed.URL)
		}
		input.MessageGroupId = aws.String("1")
		input.MessageDeduplicationId = aws.String(uuid.NewSHA1(dedupNamespace, key).String())
	}
	_, err := q.client.SendMessageWithContext(ctx, input)
	if err != nil {
		return fmt.Errorf("queue: send: %w", err)
	}
	return nil
}

// SendFIFO enqueues a message to a FIFO queue with an explicit group and
// deduplication id, hashed over dedupKey (typically "url" or "url:depth").
func (q *SQSQueue) SendFIFO(ctx context.Context, body []byte, groupID, dedupKey string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:               aws.String(q.queueURL),
		MessageBody:            aws.String(string(body)),
		MessageGroupId:         aws.String(groupID),
		MessageDeduplicationId: aws.String(uuid.NewSHA1(dedupNamespace, []byte(dedupKey)).String()),
	}
	_, err := q.client.SendMessageWithContext(ctx, input)
	if err != nil {
		return fmt.Errorf("queue: send fifo: %w", err)
	}
	return nil
}

// Receive long-polls for up to maxMsgs messages, waiting at most `wait`.
func (q *SQSQueue) Receive(ctx context.Context, maxMsgs int, wait time.Duration) ([]Message, error) {
	out, err := q.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: aws.Int64(int64(maxMsgs)),
		WaitTimeSeconds:     aws.Int64(int64(wait.Seconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("queue: receive: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		if m.Body == nil || m.ReceiptHandle == nil {
			continue
		}
		msgs = append(msgs, Message{Body: []byte(*m.Body), Handle: *m.ReceiptHandle})
	}
	return msgs, nil
}

// Delete acks a message by its receipt handle.
func (q *SQSQueue) Delete(ctx context.Context, handle string) error {
	_, err := q.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("queue: delete: %w", err)
	}
	return nil
}
