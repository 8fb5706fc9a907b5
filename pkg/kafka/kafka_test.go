package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("fail")},
		{Offset: 3, Value: []byte("ok")},
	}}
	var mu sync.Mutex
	var seen []string
	handled := make(chan struct{}, 3)
	c := NewConsumerFromReader(r, "docs", func(_ context.Context, _ []byte, value []byte) error {
		mu.Lock()
		seen = append(seen, string(value))
		mu.Unlock()
		handled <- struct{}{}
		if string(value) == "fail" {
			return errors.New("handler failed")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	for range 3 {
		select {
		case <-handled:
		case <-time.After(5 * time.Second):
			t.Fatal("message not handled")
		}
	}
	cancel()
	require.NoError(t, <-done)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []int64{1, 3}, r.committed)
	assert.True(t, r.closed)
	assert.Equal(t, []string{"ok", "fail", "ok"}, seen)
}

type fakeWriter struct {
	msgs        []kafka.Message
	hadDeadline bool
	err         error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.hadDeadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerFromWriter(w, "docs", time.Second)

	require.NoError(t, p.Publish(context.Background(), Event{Key: "7", Value: map[string]int{"id": 7}}))
	require.NoError(t, p.PublishBatch(context.Background(), []Event{{Key: "8", Value: 8}, {Key: "9", Value: "nine"}}))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "7", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"id":7}`, string(w.msgs[0].Value))
	assert.Equal(t, `"nine"`, string(w.msgs[2].Value))
	assert.True(t, w.hadDeadline)
}

func TestProducerErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerFromWriter(w, "docs", 0)

	err := p.Publish(context.Background(), Event{Key: "1", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.False(t, w.hadDeadline)

	err = p.Publish(context.Background(), Event{Key: "1", Value: func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshaling")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		ID int `json:"id"`
	}
	got, err := DecodeJSON[payload]([]byte(`{"id":3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)

	_, err = DecodeJSON[payload]([]byte(`{`))
	assert.Error(t, err)
}
