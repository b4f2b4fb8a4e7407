package intake

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"sitewright/internal/task"
	"sitewright/pkg/cerr"
	"sitewright/pkg/clog"
	"sitewright/pkg/panicerr"
)

type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleTask validates the inbound payload and dispatches processing to a
// detached worker goroutine. The response is only an acknowledgement — final
// status reaches the caller through the evaluation notification.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		cerr.WriteJSONError(ctx, w, cerr.NewError(cerr.InvalidArgument, "invalid request body", err))
		return
	}
	clog.AddAttributes(ctx, map[string]any{
		"task":  t.Name,
		"round": t.Round,
	})

	if subtle.ConstantTimeCompare([]byte(t.Secret), []byte(s.env.Secret)) != 1 {
		cerr.WriteJSONError(ctx, w, cerr.NewError(cerr.PermissionDenied, "invalid secret", nil))
		return
	}
	if err := t.Validate(); err != nil {
		cerr.WriteJSONError(ctx, w, err)
		return
	}

	// The worker must outlive this request. It inherits the server's base
	// context values but not its cancellation, and gets a fresh log bag so
	// request attributes don't bleed into worker logs.
	workerCtx := clog.ContextWithSlog(context.WithoutCancel(ctx))
	clog.AddAttributes(workerCtx, map[string]any{
		"task":  t.Name,
		"round": t.Round,
	})
	panicerr.Go(workerCtx, "task processing failed", func(ctx context.Context) error {
		return s.publisher.Run(ctx, &t)
	})

	cerr.WriteJSON(ctx, w, ackResponse{
		Status:  "ok",
		Message: "Task received and being processed.",
	})
}
