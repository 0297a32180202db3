// Command worker is the process entrypoint: it loads configuration, builds
// the service container, wires one BaseWorker per queue into the Worker
// Manager, starts the HTTP/WebSocket surface, and shuts everything down in
// response to SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/categorization"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/config"
	"github.com/yungbote/recipe-notes-worker/internal/container"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/httpapi"
	"github.com/yungbote/recipe-notes-worker/internal/images"
	"github.com/yungbote/recipe-notes-worker/internal/ingredients"
	"github.com/yungbote/recipe-notes-worker/internal/instruction"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/notes"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
	"github.com/yungbote/recipe-notes-worker/internal/source"
	"github.com/yungbote/recipe-notes-worker/internal/worker"
)

func main() {
	log, err := logging.New(os.Getenv("LOG_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.Error("container init failed", "error", err)
		os.Exit(1)
	}

	retry := errs.RetryConfig{MaxRetries: cfg.MaxRetries, Base: cfg.BaseBackoff, MaxBackoff: cfg.MaxBackoff}
	sink := pipeline.EventSinkFunc(func(e pipeline.Event) {
		log.Debug("pipeline event", "job_id", e.JobID, "action", string(e.ActionName), "phase", string(e.Phase), "elapsed", e.Elapsed)
	})

	mgr := worker.NewManager(log)

	imageDeps := images.Deps{
		ObjectStore:  c.ObjectStore,
		Store:        c.ImageStore,
		Broadcaster:  c.Broadcaster,
		Tracker:      c.Tracker,
		Processor:    images.NewProcessor(),
		ImageBaseURL: cfg.ImageBaseURL,
		Log:          log.With("worker", queue.Image),
	}
	imageFactory, err := images.NewFactory()
	if err != nil {
		log.Error("image factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.ImageJobData]{
		QueueName:   queue.Image,
		Concurrency: worker.DefaultConcurrencyFor(queue.Image, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         imageDeps.Log,
		Decode:      worker.JSONDecoder[domain.ImageJobData](),
		Encode:      worker.JSONEncoder[domain.ImageJobData](),
		Deps:        imageDeps,
		Builder: func(data domain.ImageJobData, ac actions.ActionContext) ([]pipeline.Step[domain.ImageJobData], error) {
			return images.BuildPipeline(imageFactory, imageDeps)
		},
		OnTerminalFailure: func(ctx context.Context, data domain.ImageJobData, err error) {
			images.OnFatalFailure(ctx, imageDeps, data, err)
		},
	}))

	notesDeps := notes.Deps{Store: c.NoteStore, Queue: c.Queue, Tracker: c.Tracker, Log: log.With("worker", queue.Notes)}
	notesFactory, err := notes.NewFactory()
	if err != nil {
		log.Error("notes factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.NoteJobData]{
		QueueName:   queue.Notes,
		Concurrency: worker.DefaultConcurrencyFor(queue.Notes, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         notesDeps.Log,
		Decode:      worker.JSONDecoder[domain.NoteJobData](),
		Encode:      worker.JSONEncoder[domain.NoteJobData](),
		Deps:        notesDeps,
		Builder: func(data domain.NoteJobData, ac actions.ActionContext) ([]pipeline.Step[domain.NoteJobData], error) {
			return notes.BuildPipeline(notesFactory, notesDeps)
		},
	}))

	ingredientsDeps := ingredients.Deps{Store: c.IngredientStore, Queue: c.Queue, Tracker: c.Tracker, Log: log.With("worker", queue.Ingredients)}
	ingredientsFactory, err := ingredients.NewFactory()
	if err != nil {
		log.Error("ingredients factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.IngredientJobData]{
		QueueName:   queue.Ingredients,
		Concurrency: worker.DefaultConcurrencyFor(queue.Ingredients, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         ingredientsDeps.Log,
		Decode:      worker.JSONDecoder[domain.IngredientJobData](),
		Encode:      worker.JSONEncoder[domain.IngredientJobData](),
		Deps:        ingredientsDeps,
		Builder: func(data domain.IngredientJobData, ac actions.ActionContext) ([]pipeline.Step[domain.IngredientJobData], error) {
			return ingredients.BuildPipeline(ingredientsFactory, ingredientsDeps)
		},
	}))

	instructionDeps := instruction.Deps{Store: c.InstructionStore, Queue: c.Queue, Tracker: c.Tracker, Log: log.With("worker", queue.Instruction)}
	instructionFactory, err := instruction.NewFactory()
	if err != nil {
		log.Error("instruction factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.InstructionJobData]{
		QueueName:   queue.Instruction,
		Concurrency: worker.DefaultConcurrencyFor(queue.Instruction, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         instructionDeps.Log,
		Decode:      worker.JSONDecoder[domain.InstructionJobData](),
		Encode:      worker.JSONEncoder[domain.InstructionJobData](),
		Deps:        instructionDeps,
		Builder: func(data domain.InstructionJobData, ac actions.ActionContext) ([]pipeline.Step[domain.InstructionJobData], error) {
			return instruction.BuildPipeline(instructionFactory, instructionDeps)
		},
	}))

	categorizationDeps := categorization.Deps{NoteStore: c.NoteStore, Log: log.With("worker", queue.Categorization)}
	categorizationFactory, err := categorization.NewFactory()
	if err != nil {
		log.Error("categorization factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.CategorizationJobData]{
		QueueName:   queue.Categorization,
		Concurrency: worker.DefaultConcurrencyFor(queue.Categorization, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         categorizationDeps.Log,
		Decode:      worker.JSONDecoder[domain.CategorizationJobData](),
		Encode:      worker.JSONEncoder[domain.CategorizationJobData](),
		Deps:        categorizationDeps,
		Builder: func(data domain.CategorizationJobData, ac actions.ActionContext) ([]pipeline.Step[domain.CategorizationJobData], error) {
			return categorization.BuildPipeline(categorizationFactory, categorizationDeps)
		},
	}))

	sourceDeps := source.Deps{HTTPClient: c.HTTPClient(), Queue: c.Queue, Log: log.With("worker", queue.Source)}
	sourceFactory, err := source.NewFactory()
	if err != nil {
		log.Error("source factory registration failed", "error", err)
		os.Exit(1)
	}
	mgr.Register(worker.New(worker.Config[domain.SourceJobData]{
		QueueName:   queue.Source,
		Concurrency: worker.DefaultConcurrencyFor(queue.Source, cfg.QueueConcurrency),
		Backend:     c.Queue,
		Health:      c.Health,
		ErrHandler:  c.Errors,
		Retry:       retry,
		Sink:        sink,
		Log:         sourceDeps.Log,
		Decode:      worker.JSONDecoder[domain.SourceJobData](),
		Encode:      worker.JSONEncoder[domain.SourceJobData](),
		Deps:        sourceDeps,
		Builder: func(data domain.SourceJobData, ac actions.ActionContext) ([]pipeline.Step[domain.SourceJobData], error) {
			return source.BuildPipeline(sourceFactory, sourceDeps)
		},
	}))

	if err := mgr.StartAll(ctx); err != nil {
		log.Error("worker manager start failed", "error", err)
		os.Exit(1)
	}
	log.Info("all workers started", "status", mgr.Status())

	srv := httpapi.NewServer(httpapi.Deps{
		Queue:       c.Queue,
		Tracker:     c.Tracker,
		Broadcaster: c.Broadcaster,
		Log:         log.With("component", "HTTPServer"),
	}, cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped unexpectedly", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	mgr.StopAll(shutdownCtx)

	if err := c.Close(); err != nil {
		log.Error("container close failed", "error", err)
	}
	log.Info("shutdown complete")
}
