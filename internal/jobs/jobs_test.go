package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Dispatch(t *testing.T) {
	registry := NewRegistry()

	var received []byte
	registry.Register("record", func(ctx context.Context, payload []byte) error {
		received = payload
		return nil
	})

	err := registry.Dispatch(context.Background(), "record", []byte(`{"a":1}`))

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(received))
}

func TestRegistry_Dispatch_UnknownJob(t *testing.T) {
	err := NewRegistry().Dispatch(context.Background(), "missing", nil)

	assert.ErrorIs(t, err, ErrUnknownJob)
	assert.True(t, IsPermanent(err))
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	noop := func(ctx context.Context, payload []byte) error { return nil }
	registry.Register("b", noop)
	registry.Register("a", noop)

	assert.Equal(t, []string{"a", "b"}, registry.Names())
}

func TestPermanent(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(base))

	permanent := Permanent(base)
	assert.True(t, IsPermanent(permanent))
	assert.ErrorIs(t, permanent, base)
	assert.Equal(t, "boom", permanent.Error())

	wrapped := fmt.Errorf("handler: %w", permanent)
	assert.True(t, IsPermanent(wrapped))
	assert.Same(t, permanent, Permanent(permanent))
}

func TestEncode(t *testing.T) {
	payload, err := Encode(map[string]string{"product_id": "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":"abc"}`, string(payload))

	_, err = Encode(make(chan int))
	assert.Error(t, err)
}
