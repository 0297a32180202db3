// Package httpapi is the minimal HTTP ingestion surface: a POST endpoint
// that accepts a note's raw HTML and enqueues a notes-queue job, plus the
// WebSocket upgrade path the broadcaster hub serves progress events over.
// Built on a gin-gonic/gin router with gin-contrib/cors middleware,
// wrapped in one http.Server.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

// Deps bundles the ingestion endpoint's collaborators.
type Deps struct {
	Queue       queue.Backend
	Tracker     *completion.Tracker
	Broadcaster *broadcast.Hub
	Log         *logging.Logger
}

type ingestRequest struct {
	UserID     string `json:"userId" binding:"required"`
	SourceURL  string `json:"sourceUrl"`
	HTML       string `json:"html" binding:"required"`
	ImageCount int    `json:"imageCount"`
}

type ingestResponse struct {
	ImportID string `json:"importId"`
	NoteID   string `json:"noteId"`
}

// NewServer builds the *http.Server wrapping the gin engine, listening on
// port.
func NewServer(deps Deps, port int) *http.Server {
	if deps.Log == nil {
		deps.Log = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ws", func(c *gin.Context) { deps.Broadcaster.ServeWS(c.Writer, c.Request) })
	r.POST("/ingest", ingestHandler(deps))

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// ingestHandler validates the request body, registers the note's expected
// image count with the completion tracker before enqueueing anything (so
// no image job can race the registration), then pushes the notes-queue job.
func ingestHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ingestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		noteID := uuid.NewString()
		importID := uuid.NewString()

		if deps.Tracker != nil {
			deps.Tracker.Register(noteID, completion.CategoryImage, req.ImageCount)
		}

		payload, err := json.Marshal(domain.NoteJobData{
			NoteID: noteID, ImportID: importID, UserID: req.UserID,
			SourceURL: req.SourceURL, HTML: req.HTML,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode job"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := deps.Queue.Push(ctx, queue.Notes, payload, queue.PushOptions{}); err != nil {
			deps.Log.Error("ingest: push notes job failed", "note_id", noteID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue note"})
			return
		}

		c.JSON(http.StatusAccepted, ingestResponse{ImportID: importID, NoteID: noteID})
	}
}
