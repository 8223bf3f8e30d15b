package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

type mockJetStream struct {
	mock.Mock
}

func (m *mockJetStream) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	args := m.Called(subj, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nats.PubAck), args.Error(1)
}

func TestPublisher_Enqueue(t *testing.T) {
	productID := uuid.New()
	expectedPayload, err := json.Marshal(jobs.ProductRatingArgs{ProductID: productID})
	require.NoError(t, err)

	js := new(mockJetStream)
	js.On("Publish", "jobs.update_average_product_rating", expectedPayload).
		Return(&nats.PubAck{Stream: StreamName, Sequence: 7}, nil)

	publisher := NewPublisherWithJetStream(js, logger.NewWithWriter("test", io.Discard))
	err = publisher.Enqueue(context.Background(), jobs.UpdateAverageProductRating, jobs.ProductRatingArgs{ProductID: productID})

	require.NoError(t, err)
	js.AssertExpectations(t)
}

func TestPublisher_Enqueue_PublishError(t *testing.T) {
	js := new(mockJetStream)
	js.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("no responders"))

	publisher := NewPublisherWithJetStream(js, logger.NewWithWriter("test", io.Discard))
	err := publisher.Enqueue(context.Background(), jobs.UpdateAverageProductRating, jobs.ProductRatingArgs{ProductID: uuid.New()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}

func TestGenerateExponentialBackoff(t *testing.T) {
	assert.Nil(t, generateExponentialBackoff(1))
	assert.Len(t, generateExponentialBackoff(4), 3)
	assert.Equal(t, "4s", generateExponentialBackoff(4)[2].String())
}
