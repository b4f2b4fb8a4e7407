package repohost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sitewright/pkg/cerr"
)

// GitHub implements Host on top of the GitHub REST contents API. All requests
// are authenticated with a bearer token scoped to one account.
type GitHub struct {
	client  *http.Client
	apiBase string
	owner   string
	token   string
}

func NewGitHub(apiBase, owner, token string) *GitHub {
	return &GitHub{
		client:  &http.Client{Timeout: 60 * time.Second},
		apiBase: apiBase,
		owner:   owner,
		token:   token,
	}
}

func (g *GitHub) RepoURL(name string) string {
	return fmt.Sprintf("https://github.com/%s/%s", g.owner, name)
}

func (g *GitHub) PagesURL(name string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", g.owner, name)
}

func (g *GitHub) CreateRepository(ctx context.Context, name string) error {
	body := map[string]any{
		"name":      name,
		"private":   false,
		"auto_init": true,
	}
	resp, data, err := g.do(ctx, http.MethodPost, g.apiBase+"/user/repos", body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return cerr.NewError(cerr.Internal, "failed to create repository",
			fmt.Errorf("create repo %s: status %d: %s", name, resp.StatusCode, data))
	}
	return nil
}

// Snapshot walks the repository tree recursively, downloading each file's
// current content. Files whose content cannot be fetched are skipped with a
// warning from the caller's perspective rather than failing the whole listing.
func (g *GitHub) Snapshot(ctx context.Context, name string) (map[string]string, error) {
	files := map[string]string{}
	if err := g.walk(ctx, name, "", files); err != nil {
		return nil, err
	}
	return files, nil
}

type contentsItem struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	DownloadURL string `json:"download_url"`
}

func (g *GitHub) walk(ctx context.Context, name, dir string, files map[string]string) error {
	resp, data, err := g.do(ctx, http.MethodGet, g.contentsURL(name, dir), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return cerr.NewError(cerr.Internal, "failed to list repository contents",
			fmt.Errorf("list %s/%s: status %d: %s", name, dir, resp.StatusCode, data))
	}
	var items []contentsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return cerr.NewError(cerr.Internal, "failed to decode repository listing", err)
	}
	for _, item := range items {
		switch item.Type {
		case "file":
			content, err := g.download(ctx, item.DownloadURL)
			if err != nil {
				return err
			}
			files[item.Path] = content
		case "dir":
			if err := g.walk(ctx, name, item.Path, files); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GitHub) download(ctx context.Context, url string) (string, error) {
	resp, data, err := g.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", cerr.NewError(cerr.Internal, "failed to download file",
			fmt.Errorf("download %s: status %d", url, resp.StatusCode))
	}
	return string(data), nil
}

// UploadOrUpdate checks for an existing file to obtain its blob sha, then PUTs
// the new content. Including the sha is the optimistic-concurrency handshake:
// the store rejects the write if the sha has gone stale, which surfaces here
// as a hard failure rather than a retry.
func (g *GitHub) UploadOrUpdate(ctx context.Context, name, path string, content []byte) (string, error) {
	url := g.contentsURL(name, path)

	existingSHA := ""
	resp, data, err := g.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		var existing contentsItem
		if err := json.Unmarshal(data, &existing); err != nil {
			return "", cerr.NewError(cerr.Internal, "failed to decode existing file", err)
		}
		existingSHA = existing.SHA
	case http.StatusNotFound:
	default:
		return "", cerr.NewError(cerr.Internal, "failed to check for existing file",
			fmt.Errorf("check %s/%s: status %d: %s", name, path, resp.StatusCode, data))
	}

	body := map[string]any{
		"message": fmt.Sprintf("feat: Add or update %s", path),
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  "main",
	}
	if existingSHA != "" {
		body["sha"] = existingSHA
	}
	resp, data, err = g.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		code := cerr.Internal
		if resp.StatusCode == http.StatusConflict {
			code = cerr.Aborted
		}
		return "", cerr.NewError(code, "upload failed",
			fmt.Errorf("upload %s/%s: status %d: %s", name, path, resp.StatusCode, data))
	}
	var result struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to decode upload response", err)
	}
	return result.Commit.SHA, nil
}

func (g *GitHub) EnablePages(ctx context.Context, name string) error {
	body := map[string]any{
		"source": map[string]any{"branch": "main", "path": "/"},
	}
	url := fmt.Sprintf("%s/repos/%s/%s/pages", g.apiBase, g.owner, name)
	resp, data, err := g.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return cerr.NewError(cerr.Internal, "failed to enable pages",
			fmt.Errorf("enable pages %s: status %d: %s", name, resp.StatusCode, data))
	}
	return nil
}

func (g *GitHub) contentsURL(name, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.apiBase, g.owner, name, path)
}

func (g *GitHub) do(ctx context.Context, method, url string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, cerr.NewError(cerr.Internal, "failed to encode request", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, cerr.NewError(cerr.Internal, "failed to build request", err)
	}
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, cerr.NewError(cerr.Unavailable, "request to source host failed", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, cerr.NewError(cerr.Internal, "failed to read response", err)
	}
	return resp, data, nil
}
