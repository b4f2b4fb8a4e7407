package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"sitewright/internal/task"
)

var (
	app = kingpin.New("sitewright", "Operator CLI for the sitewright generation server")

	submitCmd     = app.Command("submit", "Submit a task round to a running server")
	submitServer  = submitCmd.Flag("server", "Server base URL").Default("http://localhost:8000").String()
	submitFile    = submitCmd.Flag("file", "Read the full task payload from a JSON file instead of flags").String()
	submitEmail   = submitCmd.Flag("email", "Requester email").String()
	submitSecret  = submitCmd.Flag("secret", "Shared secret").Envar("SITEWRIGHT_SECRET").String()
	submitTask    = submitCmd.Flag("task", "Task name (doubles as the repository name)").String()
	submitRound   = submitCmd.Flag("round", "Round number (1 creates, >1 modifies)").Default("0").Int()
	submitNonce   = submitCmd.Flag("nonce", "Round-scoped nonce").Default("").String()
	submitBrief   = submitCmd.Flag("brief", "Natural-language brief").String()
	submitChecks  = submitCmd.Flag("check", "Acceptance check (repeatable)").Strings()
	submitEval    = submitCmd.Flag("evaluation-url", "Evaluation sink URL").String()
	submitAttach  = submitCmd.Flag("attachment", "Attachment as name=path (repeatable)").Strings()
	submitTimeout = submitCmd.Flag("timeout", "Request timeout").Default("30s").Duration()
)

func main() {
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case submitCmd.FullCommand():
		if err := handleSubmit(); err != nil {
			color.Red("error: %v", err)
			os.Exit(1)
		}
	}
}

func handleSubmit() error {
	t, err := buildTask()
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	client := &http.Client{Timeout: *submitTimeout}
	url := strings.TrimSuffix(*submitServer, "/") + "/api/task"
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, data)
	}

	color.Green("task %s round %d accepted", t.Name, t.Round)
	fmt.Println(string(data))
	return nil
}

// buildTask assembles the payload from --file when given, with flags layered
// on top, or from flags alone.
func buildTask() (*task.Task, error) {
	var t task.Task
	if *submitFile != "" {
		data, err := os.ReadFile(*submitFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read task file: %w", err)
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse task file: %w", err)
		}
	}
	if *submitEmail != "" {
		t.Email = *submitEmail
	}
	if *submitSecret != "" {
		t.Secret = *submitSecret
	}
	if *submitTask != "" {
		t.Name = *submitTask
	}
	if *submitRound != 0 {
		t.Round = *submitRound
	}
	if t.Round == 0 {
		t.Round = 1
	}
	if *submitNonce != "" {
		t.Nonce = *submitNonce
	}
	if *submitBrief != "" {
		t.Brief = *submitBrief
	}
	if len(*submitChecks) > 0 {
		t.Checks = *submitChecks
	}
	if *submitEval != "" {
		t.EvaluationURL = *submitEval
	}
	attachments, err := loadAttachments(*submitAttach)
	if err != nil {
		return nil, err
	}
	if len(attachments) > 0 {
		t.Attachments = attachments
	}
	return &t, nil
}

// loadAttachments reads name=path specs and encodes each file as a data URI.
func loadAttachments(specs []string) ([]task.Attachment, error) {
	var attachments []task.Attachment
	for _, spec := range specs {
		name, path, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("attachment %q: expected name=path", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", name, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, task.Attachment{
			Name: name,
			URL:  fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
		})
	}
	return attachments, nil
}
