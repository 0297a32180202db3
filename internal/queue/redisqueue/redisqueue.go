// Package redisqueue implements queue.Backend on Redis Streams: an
// env-based address, ping on construct, context timeouts per call,
// generalized from pub/sub to
// consumer-group streams so multiple worker goroutines can XREADGROUP the
// same queue without double-processing a job — the distributed
// coordination the Non-goals explicitly lean on the backend for.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

const consumerGroup = "workers"

type Backend struct {
	log      *logging.Logger
	rdb      *goredis.Client
	consumer string
}

// New dials Redis at addr, pinging to fail fast on misconfiguration.
func New(log *logging.Logger, addr, consumerName string) (*Backend, error) {
	if addr == "" {
		return nil, fmt.Errorf("redisqueue: missing addr")
	}
	if consumerName == "" {
		consumerName = "worker-1"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisqueue: ping: %w", err)
	}
	return &Backend{log: log.With("component", "RedisQueueBackend"), rdb: rdb, consumer: consumerName}, nil
}

func streamKey(queueName string) string { return "jobs:" + queueName }

func (b *Backend) ensureGroup(ctx context.Context, stream string) error {
	err := b.rdb.XGroupCreateMkStream(ctx, stream, consumerGroup, "$").Err()
	if err != nil && !isBusyGroupErr(err) {
		return err
	}
	return nil
}

func isBusyGroupErr(err error) bool {
	return err != nil && (err.Error() == "BUSYGROUP Consumer Group name already exists")
}

// Push implements the push(name, payload, options{priority,
// delay}). Redis Streams has no native delay/priority; delay is modeled by
// writing a due-at field the Pull loop's claim logic honors, and priority
// is accepted for interface completeness but does not reorder delivery —
// a documented limitation, since stream ordering is otherwise FIFO by
// entry ID.
func (b *Backend) Push(ctx context.Context, queueName string, payload []byte, opts queue.PushOptions) (domain.Job, error) {
	stream := streamKey(queueName)
	if err := b.ensureGroup(ctx, stream); err != nil {
		return domain.Job{}, err
	}
	dueAt := time.Now().Add(opts.Delay).UnixMilli()
	id, err := b.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"payload": payload,
			"due_at":  dueAt,
			"attempt": 0,
		},
	}).Result()
	if err != nil {
		return domain.Job{}, err
	}
	return domain.Job{ID: id, Queue: queueName, Payload: payload, Attempt: 0}, nil
}

// Pull blocks, claiming and dispatching jobs from queueName to handle,
// honoring opts.Concurrency by letting the caller run Pull from that many
// goroutines — the backend itself is stateless per call, the worker owns
// concurrency.
func (b *Backend) Pull(ctx context.Context, queueName string, opts queue.PullOptions, handle queue.Handler) error {
	stream := streamKey(queueName)
	if err := b.ensureGroup(ctx, stream); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res, err := b.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: b.consumer,
			Streams:  []string{stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Warn("redisqueue: read failed", "queue", queueName, "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stm := range res {
			for _, msg := range stm.Messages {
				job := jobFromMessage(queueName, msg)
				if dueAt, ok := msg.Values["due_at"]; ok {
					if ms, err := strconv.ParseInt(fmt.Sprint(dueAt), 10, 64); err == nil && ms > time.Now().UnixMilli() {
						continue // not due yet; left unacked, will be redelivered
					}
				}
				if err := handle(ctx, job); err != nil {
					b.log.Warn("redisqueue: handler error", "queue", queueName, "job_id", job.ID, "error", err)
					continue // left unacked for retry/reclaim
				}
				_ = b.rdb.XAck(ctx, stream, consumerGroup, msg.ID).Err()
			}
		}
	}
}

func jobFromMessage(queueName string, msg goredis.XMessage) domain.Job {
	var payload []byte
	if v, ok := msg.Values["payload"]; ok {
		payload = []byte(fmt.Sprint(v))
	}
	attempt := 0
	if v, ok := msg.Values["attempt"]; ok {
		if n, err := strconv.Atoi(fmt.Sprint(v)); err == nil {
			attempt = n
		}
	}
	return domain.Job{ID: msg.ID, Queue: queueName, Payload: payload, Attempt: attempt}
}

func (b *Backend) Ack(ctx context.Context, job domain.Job) error {
	return b.rdb.XAck(ctx, streamKey(job.Queue), consumerGroup, job.ID).Err()
}

// NackRetryAfter re-enqueues a copy of the payload with an incremented
// attempt counter and a due-at delay, then acks the original delivery.
// XCLAIM-based redelivery with per-attempt backoff would require tracking
// pending-entry age against XPENDING; re-publishing is simpler and needs
// no additional protocol beyond XADD/XACK.
func (b *Backend) NackRetryAfter(ctx context.Context, job domain.Job, d time.Duration) error {
	stream := streamKey(job.Queue)
	_, err := b.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"payload": job.Payload,
			"due_at":  time.Now().Add(d).UnixMilli(),
			"attempt": job.Attempt + 1,
		},
	}).Result()
	if err != nil {
		return err
	}
	return b.rdb.XAck(ctx, stream, consumerGroup, job.ID).Err()
}

// Ping is a non-mutating liveness check for health probes: it does not
// enqueue anything, so it is safe to call on every health check without
// growing any stream.
func (b *Backend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.rdb.Close()
}
