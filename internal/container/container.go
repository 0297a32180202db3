// Package container is the process-wide composition root: it builds every
// external collaborator exactly once (database, queue backend, object
// store, broadcaster, health monitor, completion tracker) and exposes them
// through typed accessors, pulled out into its own package so
// cmd/worker/main.go stays a thin entrypoint.
package container

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/config"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/health"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/objectstore"
	"github.com/yungbote/recipe-notes-worker/internal/objectstore/gcs"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
	"github.com/yungbote/recipe-notes-worker/internal/queue/redisqueue"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

// Container owns every shared collaborator plus each entity store built on
// top of the shared DB handle.
type Container struct {
	Config      *config.Config
	Log         *logging.Logger
	DB          *gorm.DB
	Queue       queue.Backend
	ObjectStore objectstore.Client
	Broadcaster *broadcast.Hub
	Health      *health.Monitor
	Errors      *errs.Handler
	Tracker     *completion.Tracker

	NoteStore        store.NoteStore
	IngredientStore  store.IngredientStore
	InstructionStore store.InstructionStore
	ImageStore       store.ImageStore

	closeDB func() error
}

// New wires every collaborator. DSN/address/bucket values come from the
// environment directly (DATABASE_URL, REDIS_ADDR, GCS_BUCKET, GCS_CDN_DOMAIN)
// since the config surface covers tuning knobs, not credentials —
// credentials live outside the YAML config file entirely, following
// ordinary platform/env convention.
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Container, error) {
	if log == nil {
		log = logging.NewNop()
	}

	db, err := gorm.Open(postgres.Open(os.Getenv("DATABASE_URL")), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("container: open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("container: db handle: %w", err)
	}
	if err := db.AutoMigrate(
		&domain.ImageRecord{},
		&domain.NoteRecord{},
		&domain.IngredientRecord{},
		&domain.InstructionRecord{},
	); err != nil {
		return nil, fmt.Errorf("container: automigrate: %w", err)
	}

	qb, err := redisqueue.New(log, os.Getenv("REDIS_ADDR"), os.Getenv("WORKER_CONSUMER_NAME"))
	if err != nil {
		return nil, fmt.Errorf("container: redis queue: %w", err)
	}

	var objStore objectstore.Client
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcsClient, err := gcs.New(ctx, bucket, os.Getenv("GCS_CDN_DOMAIN"))
		if err != nil {
			return nil, fmt.Errorf("container: gcs client: %w", err)
		}
		objStore = gcsClient
	} else {
		log.Warn("container: GCS_BUCKET unset, object store disabled")
	}

	hub := broadcast.NewHub(log)
	errHandler := errs.NewHandler(log)

	monitor := health.NewMonitor(log)
	monitor.Register(health.Probe{Name: "database", Check: func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	}})
	monitor.Register(health.Probe{Name: "queue", Check: func(ctx context.Context) error {
		return qb.Ping(ctx)
	}})

	noteStore := store.NewNoteStore(db)
	ingredientStore := store.NewIngredientStore(db)

	c := &Container{
		Config:           cfg,
		Log:              log,
		DB:               db,
		Queue:            qb,
		ObjectStore:      objStore,
		Broadcaster:      hub,
		Health:           monitor,
		Errors:           errHandler,
		NoteStore:        noteStore,
		IngredientStore:  ingredientStore,
		InstructionStore: store.NewInstructionStore(db),
		ImageStore:       store.NewImageStore(db),
		closeDB:          sqlDB.Close,
	}

	c.Tracker = completion.NewTracker(log,
		c.onCategoryDone,
		c.onNoteDone,
	)

	return c, nil
}

// onCategoryDone enqueues the single categorization job once a note's
// ingredient fan-out has fully landed, carrying the parsed ingredient names
// the categorization pipeline classifies against.
func (c *Container) onCategoryDone(noteID string, category completion.Category) {
	if category != completion.CategoryIngredient {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recs, err := c.IngredientStore.ListByNoteID(ctx, noteID)
	if err != nil {
		c.Log.Error("container: list ingredients for categorization failed", "note_id", noteID, "error", err)
		return
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}

	payload, err := json.Marshal(domain.CategorizationJobData{NoteID: noteID, Ingredients: names})
	if err != nil {
		c.Log.Error("container: marshal categorization payload failed", "note_id", noteID, "error", err)
		return
	}
	if _, err := c.Queue.Push(ctx, queue.Categorization, payload, queue.PushOptions{}); err != nil {
		c.Log.Error("container: push categorization job failed", "note_id", noteID, "error", err)
	}
}

// onNoteDone fires once every fan-out category (image, ingredient,
// instruction) has reached zero for a note — the terminal signal the
// ingestion UI's "note fully processed" banner waits for.
func (c *Container) onNoteDone(noteID string) {
	<-c.Broadcaster.Emit(broadcast.Event{
		NoteID:  noteID,
		Status:  broadcast.StatusCompleted,
		Message: "note fully processed",
		Context: "note_fanout",
	})
}

// HTTPClient returns a new default client with a 30s timeout for the
// source-queue fetch action. Each call builds a fresh client; the
// container holds no client of its own.
func (c *Container) HTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Close releases every collaborator with settle-all semantics: every
// Close() is attempted regardless of earlier failures, except the database
// handle's close error is the one surfaced to the caller, since a failed
// DB close can leak connections in a way the others don't.
func (c *Container) Close() error {
	if err := c.Queue.Close(); err != nil {
		c.Log.Error("container: queue close failed", "error", err)
	}
	dbErr := c.closeDB()
	if dbErr != nil {
		c.Log.Error("container: db close failed", "error", dbErr)
	}
	return dbErr
}
