package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	topics []string
	keys   []string
	err    error
}

func (r *recorder) PublishEvent(ctx context.Context, topic, key string, event any) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	r.topics = append(r.topics, topic)
	r.keys = append(r.keys, key)
	return r.err
}

func (r *recorder) Close() error { return nil }

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestEmit_SetsDeadlineAndSwallowsErrors(t *testing.T) {
	r := &recorder{}
	Emit(context.Background(), r, TopicOrders, "o1", map[string]any{"type": "order_created"})
	assert.Equal(t, []string{TopicOrders}, r.topics)
	assert.Equal(t, []string{"o1"}, r.keys)

	r.err = errors.New("broker down")
	assert.NotPanics(t, func() {
		Emit(context.Background(), r, TopicProducts, "p1", nil)
	})
}

func TestEmit_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, TopicOrders, "o1", nil)
	})
}

func TestEmit_CanceledRequestStillPublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{}
	Emit(ctx, r, TopicOrders, "o1", nil)
	assert.Len(t, r.topics, 1)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "k", nil))
	require.NoError(t, p.Close())
}
