package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorStoreEvents(t *testing.T) {
	ready := NewVectorStoreReady("amy", "data/amy/vectorStore", 12)
	assert.Equal(t, VectorStoreReadyType, ready.EventType())
	assert.Equal(t, 12, ready.Payload()["chunks"])
	assert.False(t, ready.Timestamp().IsZero())

	failed := NewVectorStoreFailed("amy", errors.New("no documents"))
	assert.Equal(t, VectorStoreFailedType, failed.EventType())
	assert.Equal(t, "no documents", failed.Payload()["error"])
}

type recorder struct {
	got []string
	err error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e.EventType())
	return r.err
}

func TestFanoutPublishesToAll(t *testing.T) {
	ok := &recorder{}
	broken := &recorder{err: errors.New("broker down")}
	fan := Fanout{ok, nil, broken}

	err := fan.Publish(context.Background(), NewVectorStoreReady("amy", "p", 1))
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{VectorStoreReadyType}, ok.got)
	assert.Equal(t, []string{VectorStoreReadyType}, broken.got)

	assert.NoError(t, Fanout{}.Publish(context.Background(), NewVectorStoreReady("amy", "p", 1)))
}
