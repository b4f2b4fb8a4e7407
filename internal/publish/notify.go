package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sitewright/pkg/cerr"
)

// Notification is the payload POSTed to the evaluation sink when a round's
// artifact is ready.
type Notification struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

type Notifier struct {
	client *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 30 * time.Second}}
}

// Notify reports the finished round. A non-success response fails the round
// even though the artifact is already published.
func (n *Notifier) Notify(ctx context.Context, url string, payload Notification) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to encode evaluation payload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to build evaluation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "evaluation notification failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return cerr.NewError(cerr.Internal, "evaluation notification failed",
			fmt.Errorf("evaluation sink returned status %d: %s", resp.StatusCode, data))
	}
	return nil
}
