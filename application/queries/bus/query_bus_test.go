package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tj-backend/pkg/errors"
)

type echoQuery struct {
	Value int
}

func (q echoQuery) Validate() error {
	if q.Value < 0 {
		return errors.NewValidationError("value must be non-negative")
	}
	return nil
}

func echo(ctx context.Context, q Query) (interface{}, error) {
	return q.(echoQuery).Value * 2, nil
}

func TestQueryBus_Ask(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(echo)))

	result, err := b.Ask(context.Background(), echoQuery{Value: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	_, err = b.Ask(context.Background(), echoQuery{Value: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, errors.IsValidation(err))
}

func TestQueryBus_UnknownQuery(t *testing.T) {
	b := NewQueryBus()
	_, err := b.Ask(context.Background(), echoQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestSlowQueryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	b := NewQueryBus(SlowQueryMiddleware(logger, 5*time.Millisecond))
	require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		if q.(echoQuery).Value == 1 {
			time.Sleep(20 * time.Millisecond)
		}
		return nil, nil
	})))

	_, err := b.Ask(context.Background(), echoQuery{Value: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, logs.Len())

	_, err = b.Ask(context.Background(), echoQuery{Value: 1})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slow query", logs.All()[0].Message)
	assert.Equal(t, "echoQuery", logs.All()[0].ContextMap()["type"])
}
