package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewright/internal/config"
	"sitewright/internal/generate"
	"sitewright/internal/journal/repositoryimpl"
	"sitewright/internal/llm"
	"sitewright/internal/publish"
	"sitewright/internal/repohost"
	"sitewright/internal/task"
	"sitewright/pkg/storage"
)

func newTestServer(t *testing.T, sinkCalls *atomic.Int32) (*Server, *repohost.Fake, string) {
	t.Helper()

	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sinkCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(sink.Close)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	host := repohost.NewFake()
	provider := llm.Func(func(_ context.Context, _ string) (string, error) {
		return `{"index.html": "<html></html>"}`, nil
	})
	publisher := publish.NewPublisher(
		generate.NewOrchestrator(provider),
		host,
		publish.NewNotifier(),
		repositoryimpl.NewYAMLRepository(store),
	)

	env := &config.Env{}
	env.Secret = "s3cret"
	return NewServer(env, publisher), host, sink.URL
}

func postTask(t *testing.T, s *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/task", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handleTask(w, req)
	return w
}

func TestHandleTask_Accepted(t *testing.T) {
	var sinkCalls atomic.Int32
	s, host, sinkURL := newTestServer(t, &sinkCalls)

	w := postTask(t, s, &task.Task{
		Email:         "dev@example.com",
		Secret:        "s3cret",
		Name:          "demo-app",
		Round:         1,
		Brief:         "a landing page",
		EvaluationURL: sinkURL,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var ack map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, "ok", ack["status"])
	assert.Equal(t, "Task received and being processed.", ack["message"])

	// Processing is asynchronous; the artifact and the notification land after
	// the acknowledgement.
	require.Eventually(t, func() bool {
		return sinkCalls.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
	_, ok := host.File("demo-app", "index.html")
	assert.True(t, ok)
	assert.True(t, host.PagesEnabled("demo-app"))
}

func TestHandleTask_InvalidSecret(t *testing.T) {
	var sinkCalls atomic.Int32
	s, _, sinkURL := newTestServer(t, &sinkCalls)

	w := postTask(t, s, &task.Task{
		Secret:        "wrong",
		Name:          "demo-app",
		Round:         1,
		Brief:         "a landing page",
		EvaluationURL: sinkURL,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int32(0), sinkCalls.Load())
}

func TestHandleTask_ValidationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*task.Task)
	}{
		{name: "round zero", mutate: func(t *task.Task) { t.Round = 0 }},
		{name: "missing task name", mutate: func(t *task.Task) { t.Name = "" }},
		{name: "missing brief", mutate: func(t *task.Task) { t.Brief = "" }},
		{name: "missing evaluation url", mutate: func(t *task.Task) { t.EvaluationURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sinkCalls atomic.Int32
			s, _, sinkURL := newTestServer(t, &sinkCalls)
			tk := &task.Task{
				Secret:        "s3cret",
				Name:          "demo-app",
				Round:         1,
				Brief:         "a landing page",
				EvaluationURL: sinkURL,
			}
			tt.mutate(tk)
			w := postTask(t, s, tk)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, int32(0), sinkCalls.Load())
		})
	}
}

func TestHandleTask_MalformedBody(t *testing.T) {
	var sinkCalls atomic.Int32
	s, _, _ := newTestServer(t, &sinkCalls)

	req := httptest.NewRequest(http.MethodPost, "/api/task", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	s.handleTask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTask_SecretNotEchoed(t *testing.T) {
	var sinkCalls atomic.Int32
	s, _, sinkURL := newTestServer(t, &sinkCalls)

	w := postTask(t, s, &task.Task{
		Secret:        "wrong",
		Name:          "demo-app",
		Round:         1,
		Brief:         "a landing page",
		EvaluationURL: sinkURL,
	})

	assert.NotContains(t, w.Body.String(), "wrong")
	assert.NotContains(t, w.Body.String(), "s3cret")
}
