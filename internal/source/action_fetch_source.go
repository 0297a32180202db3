package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/google/uuid"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

type fetchSourceAction struct {
	deps Deps
}

func newFetchSourceAction(d actions.Deps) (actions.Action[domain.SourceJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("source: fetch_source requires source.Deps")
	}
	return &fetchSourceAction{deps: deps}, nil
}

func (a *fetchSourceAction) Name() actions.Name { return actions.NameFetchSource }

func (a *fetchSourceAction) ValidateInput(data domain.SourceJobData) error {
	if data.SourceURL == "" || data.ImportID == "" {
		return fmt.Errorf("fetch_source: missing sourceUrl/importId")
	}
	return nil
}

func (a *fetchSourceAction) Execute(ctx context.Context, data domain.SourceJobData, _ actions.Deps, ac actions.ActionContext) (domain.SourceJobData, error) {
	req, err := newGetRequest(ctx, data.SourceURL)
	if err != nil {
		return data, &errs.StructuredError{
			Kind: errs.KindValidation, Severity: errs.SeverityLow, NonRetryable: true,
			JobID: ac.JobID, Queue: ac.Queue, Op: string(a.Name()), Err: err,
		}
	}

	resp, err := a.deps.HTTPClient.Do(req)
	if err != nil {
		return data, &errs.StructuredError{
			Kind: errs.KindNetwork, Severity: errs.SeverityMedium,
			JobID: ac.JobID, Queue: ac.Queue, Op: string(a.Name()), Err: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return data, &errs.StructuredError{
			Kind: errs.KindNetwork, Severity: errs.SeverityMedium,
			JobID: ac.JobID, Queue: ac.Queue, Op: string(a.Name()), Err: err,
		}
	}

	noteID := uuid.NewString()
	metadata := map[string]interface{}{
		"contentLength": len(body),
		"contentType":   resp.Header.Get("Content-Type"),
	}
	if u, err := url.Parse(data.SourceURL); err == nil {
		metadata["sourceHost"] = u.Host
	}

	payload, err := json.Marshal(domain.NoteJobData{
		NoteID: noteID, ImportID: data.ImportID, UserID: data.UserID,
		SourceURL: data.SourceURL, HTML: string(body), Metadata: metadata,
	})
	if err != nil {
		return data, &errs.StructuredError{
			Kind: errs.KindWorker, Severity: errs.SeverityCritical,
			JobID: ac.JobID, Queue: ac.Queue, Op: string(a.Name()), Err: err,
		}
	}
	if _, err := a.deps.Queue.Push(ctx, queue.Notes, payload, queue.PushOptions{}); err != nil {
		return data, &errs.StructuredError{
			Kind: errs.KindQueue, Severity: errs.SeverityHigh,
			JobID: ac.JobID, Queue: ac.Queue, Op: string(a.Name()), Err: err,
		}
	}
	return data, nil
}
