package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"yoyaku/internal/domain"
	"yoyaku/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// JournalWorker drains booked consultations into the ops journal. Tasks go
// to redis first for durability and fall back to the in-process queue; on
// repeated journal failures the task lands on a dead-letter list.
type JournalWorker struct {
	journal       domain.JournalWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.Booking
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewJournalWorker builds a worker with sane defaults.
func NewJournalWorker(journal domain.JournalWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *JournalWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &JournalWorker{
		journal:       journal,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.Booking, models.WorkerQueueSize),
		redisQueueKey: "journal:queue",
		deadLetterKey: "journal:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// Enqueue schedules a journal append. Redis is preferred so the entry
// survives a restart; the in-memory channel is the fallback.
func (w *JournalWorker) Enqueue(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return errors.New("booking is required")
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, *booking); err != nil {
			w.logger.Warn().Err(err).Msg("journal: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- *booking:
		return nil
	default:
		return errors.New("journal queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *JournalWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("journal worker started")
	defer w.logger.Info().Msg("journal worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case booking := <-w.queue:
			w.process(ctx, booking)
		default:
			if booking, ok := w.tryRedis(ctx); ok {
				w.process(ctx, booking)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
		}
	}
}

func (w *JournalWorker) process(ctx context.Context, booking models.Booking) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.journal.AppendBooking(ctx, &booking)
		if lastErr == nil {
			return
		}

		w.logger.Warn().
			Err(lastErr).
			Str("booking_id", booking.ID).
			Int("attempt", attempt).
			Msg("journal append failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Err(lastErr).Str("booking_id", booking.ID).Msg("journal append exhausted retries")
	w.pushDeadLetter(ctx, booking)
}

func (w *JournalWorker) tryRedis(ctx context.Context) (models.Booking, bool) {
	if w.redis == nil {
		return models.Booking{}, false
	}

	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			w.logger.Warn().Err(err).Msg("journal: redis BRPOP error")
		}
		return models.Booking{}, false
	}
	if len(res) != 2 {
		return models.Booking{}, false
	}

	var booking models.Booking
	if err := json.Unmarshal([]byte(res[1]), &booking); err != nil {
		w.logger.Warn().Err(err).Msg("journal: decode redis task")
		return models.Booking{}, false
	}
	return booking, true
}

func (w *JournalWorker) pushRedis(ctx context.Context, booking models.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *JournalWorker) pushDeadLetter(ctx context.Context, booking models.Booking) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(booking)
	if err != nil {
		w.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("journal: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("journal: deadletter push")
	}
}
