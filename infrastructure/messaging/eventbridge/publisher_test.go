package eventbridge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/events"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func ratedEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewLocationRated(valueobjects.LocationID(i+1), 4, valueobjects.RatingAggregate{Sum: 4, Count: 1}, time.Now())
	}
	return out
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	client := new(mockClient)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 1 {
			return false
		}
		e := in.Entries[0]
		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(e.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(e.EventBusName) == "travel-bus" &&
			aws.ToString(e.Source) == Source &&
			aws.ToString(e.DetailType) == events.TypeLocationRated &&
			detail["location_id"] == float64(1)
	})).Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(client, "travel-bus", zap.NewNop())

	// Act
	err := p.Publish(context.Background(), ratedEvents(1)[0])

	// Assert
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublisher_BatchesByTen(t *testing.T) {
	client := new(mockClient)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(client, "travel-bus", nil)

	require.NoError(t, p.PublishBatch(context.Background(), ratedEvents(23)))

	require.Len(t, client.Calls, 3)
	sizes := []int{}
	for _, call := range client.Calls {
		sizes = append(sizes, len(call.Arguments.Get(1).(*eventbridge.PutEventsInput).Entries))
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		client := new(mockClient)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, stderrors.New("throttled"))
		p := NewPublisher(client, "travel-bus", nil)

		err := p.Publish(context.Background(), ratedEvents(1)[0])
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("failed entries are logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		client := new(mockClient)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("ok")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
			},
		}, nil)
		p := NewPublisher(client, "travel-bus", zap.New(core))

		err := p.PublishBatch(context.Background(), ratedEvents(2))
		assert.ErrorContains(t, err, "1 events failed")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "InternalFailure", logs.All()[0].ContextMap()["error_code"])
	})
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.PublishBatch(context.Background(), ratedEvents(2)))
	assert.Equal(t, 2, logs.FilterMessage("Domain event").Len())
}
