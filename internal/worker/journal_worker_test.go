package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"yoyaku/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJournalWriter struct {
	mock.Mock
}

func (m *mockJournalWriter) AppendBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func workerLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func fastRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:         "b-1",
		ClientName: "Acme",
		Start:      time.Date(2024, time.January, 9, 2, 0, 0, 0, time.UTC),
		End:        time.Date(2024, time.January, 9, 2, 45, 0, 0, time.UTC),
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 10*time.Second, policy.NextDelay(10), "clamped at max delay")
	assert.Equal(t, time.Second, policy.NextDelay(0), "attempt floor")
}

func TestEnqueueMemoryFallback(t *testing.T) {
	journal := new(mockJournalWriter)
	w := NewJournalWorker(journal, nil, fastRetry(), workerLogger())

	require.NoError(t, w.Enqueue(context.Background(), testBooking()))
	assert.Len(t, w.queue, 1)
}

func TestEnqueueNilBooking(t *testing.T) {
	w := NewJournalWorker(new(mockJournalWriter), nil, fastRetry(), workerLogger())
	assert.Error(t, w.Enqueue(context.Background(), nil))
}

func TestEnqueueQueueFull(t *testing.T) {
	w := NewJournalWorker(new(mockJournalWriter), nil, fastRetry(), workerLogger())
	for i := 0; i < models.WorkerQueueSize; i++ {
		require.NoError(t, w.Enqueue(context.Background(), testBooking()))
	}
	assert.Error(t, w.Enqueue(context.Background(), testBooking()))
}

func TestEnqueuePrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	w := NewJournalWorker(new(mockJournalWriter), client, fastRetry(), workerLogger())
	require.NoError(t, w.Enqueue(context.Background(), testBooking()))

	// The task lands in redis, not in the channel.
	assert.Empty(t, w.queue)
	raw, err := mr.Lpop(w.redisQueueKey)
	require.NoError(t, err)

	var got models.Booking
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "b-1", got.ID)
}

func TestEnqueueRedisDownFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	w := NewJournalWorker(new(mockJournalWriter), client, fastRetry(), workerLogger())
	require.NoError(t, w.Enqueue(context.Background(), testBooking()))
	assert.Len(t, w.queue, 1)
}

func TestProcessRetriesThenSucceeds(t *testing.T) {
	journal := new(mockJournalWriter)
	journal.On("AppendBooking", mock.Anything, mock.Anything).
		Return(errors.New("sheets unavailable")).Twice()
	journal.On("AppendBooking", mock.Anything, mock.Anything).
		Return(nil).Once()

	w := NewJournalWorker(journal, nil, fastRetry(), workerLogger())
	w.process(context.Background(), *testBooking())

	journal.AssertNumberOfCalls(t, "AppendBooking", 3)
}

func TestProcessDeadLetterAfterExhaustion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	journal := new(mockJournalWriter)
	journal.On("AppendBooking", mock.Anything, mock.Anything).
		Return(errors.New("sheets unavailable"))

	w := NewJournalWorker(journal, client, fastRetry(), workerLogger())
	w.process(context.Background(), *testBooking())

	journal.AssertNumberOfCalls(t, "AppendBooking", 3)

	raw, err := mr.Lpop(w.deadLetterKey)
	require.NoError(t, err)
	var got models.Booking
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "b-1", got.ID)
}

func TestStartDrainsQueue(t *testing.T) {
	journal := new(mockJournalWriter)
	done := make(chan struct{})
	journal.On("AppendBooking", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(nil).Once()

	w := NewJournalWorker(journal, nil, fastRetry(), workerLogger())
	require.NoError(t, w.Enqueue(context.Background(), testBooking()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain the queue in time")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	w := NewJournalWorker(new(mockJournalWriter), nil, fastRetry(), workerLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
