// Package source implements the source-queue pipeline: fetch a note's raw
// HTML from its source URL, then push a notes-queue job to continue the
// import, the entry point for imports that start from a link rather than a
// pasted HTML blob.
package source

import (
	"net/http"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

// Deps uses net/http's default transport rather than a third-party HTTP
// client: the fetch is a single unauthenticated GET with no retries,
// redirects, or middleware needs beyond what net/http already does, and no
// example repo in the retrieval pack reaches for a client library (e.g.
// resty, go-retryablehttp) for a fetch this plain.
type Deps struct {
	HTTPClient *http.Client
	Queue      queue.Backend
	Log        *logging.Logger
}
