package repohost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewright/pkg/cerr"
)

func TestGitHub_CreateRepository(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "token tkn", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	require.NoError(t, g.CreateRepository(context.Background(), "demo-app"))

	assert.Equal(t, "demo-app", gotBody["name"])
	assert.Equal(t, false, gotBody["private"])
	assert.Equal(t, true, gotBody["auto_init"])
}

func TestGitHub_CreateRepositoryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	assert.Error(t, g.CreateRepository(context.Background(), "demo-app"))
}

func TestGitHub_UploadNewFile(t *testing.T) {
	var putBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/octo/demo-app/contents/index.html", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"commit": {"sha": "deadbeef"}}`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	sha, err := g.UploadOrUpdate(context.Background(), "demo-app", "index.html", []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", sha)

	// A new file carries no blob sha.
	_, hasSHA := putBody["sha"]
	assert.False(t, hasSHA)
	assert.Equal(t, "feat: Add or update index.html", putBody["message"])
	assert.Equal(t, "main", putBody["branch"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("<html></html>")), putBody["content"])
}

func TestGitHub_UpdateExistingFile(t *testing.T) {
	var putBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"type": "file", "path": "index.html", "sha": "blob1"}`))
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
			_, _ = w.Write([]byte(`{"commit": {"sha": "cafe"}}`))
		}
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	sha, err := g.UploadOrUpdate(context.Background(), "demo-app", "index.html", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, "cafe", sha)
	assert.Equal(t, "blob1", putBody["sha"])
}

func TestGitHub_UploadConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"sha": "stale"}`))
		case http.MethodPut:
			w.WriteHeader(http.StatusConflict)
		}
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	_, err := g.UploadOrUpdate(context.Background(), "demo-app", "index.html", []byte("v2"))
	require.Error(t, err)
	// A stale blob sha is a hard round failure, not a retry.
	assert.True(t, cerr.IsCode(err, cerr.Aborted))
}

func TestGitHub_SnapshotRecursesDirectories(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/demo-app/contents/":
			_, _ = w.Write([]byte(`[
				{"type": "file", "path": "index.html", "download_url": "` + server.URL + `/raw/index.html"},
				{"type": "dir", "path": "src"}
			]`))
		case "/repos/octo/demo-app/contents/src":
			_, _ = w.Write([]byte(`[
				{"type": "file", "path": "src/app.js", "download_url": "` + server.URL + `/raw/src/app.js"}
			]`))
		case "/raw/index.html":
			_, _ = w.Write([]byte("<html></html>"))
		case "/raw/src/app.js":
			_, _ = w.Write([]byte("console.log(1)"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	files, err := g.Snapshot(context.Background(), "demo-app")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"index.html": "<html></html>",
		"src/app.js": "console.log(1)",
	}, files)
}

func TestGitHub_EnablePages(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/octo/demo-app/pages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	g := NewGitHub(server.URL, "octo", "tkn")
	require.NoError(t, g.EnablePages(context.Background(), "demo-app"))

	source, ok := gotBody["source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "main", source["branch"])
	assert.Equal(t, "/", source["path"])
}

func TestGitHub_URLs(t *testing.T) {
	g := NewGitHub("https://api.github.com", "octo", "tkn")
	assert.Equal(t, "https://github.com/octo/demo-app", g.RepoURL("demo-app"))
	assert.Equal(t, "https://octo.github.io/demo-app/", g.PagesURL("demo-app"))
}
