package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pmezard/go-difflib/difflib"

	"sitewright/internal/generate"
	"sitewright/internal/journal"
	"sitewright/internal/repohost"
	"sitewright/internal/task"
	"sitewright/pkg/cerr"
)

// Publisher runs one task round end to end: generation, reconciliation against
// the remote host, and notification of the evaluation sink. Model-facing
// failures are already absorbed into error artifacts by the orchestrator;
// host- and notification-facing failures abort the round. Writes that landed
// before a failing call are not rolled back.
type Publisher struct {
	orchestrator *generate.Orchestrator
	host         repohost.Host
	notifier     *Notifier
	journal      journal.Repository
}

func NewPublisher(orchestrator *generate.Orchestrator, host repohost.Host, notifier *Notifier, journalRepo journal.Repository) *Publisher {
	return &Publisher{
		orchestrator: orchestrator,
		host:         host,
		notifier:     notifier,
		journal:      journalRepo,
	}
}

// Run processes one round of t. The returned error is the round's failure; a
// nil return means the artifact is published and the evaluation sink accepted
// the notification.
func (p *Publisher) Run(ctx context.Context, t *task.Task) error {
	rec := &journal.Record{
		JobID:     ulid.Make().String(),
		Task:      t.Name,
		Round:     t.Round,
		Status:    journal.StatusAccepted,
		StartedAt: time.Now().UTC(),
	}
	p.saveRecord(ctx, rec)

	sha, written, diffs, err := p.runRound(ctx, t)
	rec.FinishedAt = time.Now().UTC()
	rec.CommitSHA = sha
	rec.FilesWritten = written
	rec.Diffs = diffs
	if err == nil {
		err = p.notifier.Notify(ctx, t.EvaluationURL, Notification{
			Email:     t.Email,
			Task:      t.Name,
			Round:     t.Round,
			Nonce:     t.Nonce,
			RepoURL:   p.host.RepoURL(t.Name),
			CommitSHA: sha,
			PagesURL:  p.host.PagesURL(t.Name),
		})
	}
	if err != nil {
		rec.Status = journal.StatusFailed
		rec.Error = err.Error()
		p.saveRecord(ctx, rec)
		return err
	}
	rec.Status = journal.StatusSucceeded
	p.saveRecord(ctx, rec)
	slog.InfoContext(ctx, "round published", "task", t.Name, "round", t.Round, "commit_sha", sha, "files", len(written))
	return nil
}

func (p *Publisher) runRound(ctx context.Context, t *task.Task) (string, []string, map[string]string, error) {
	if t.Round == 1 {
		sha, written, err := p.createRound(ctx, t)
		return sha, written, nil, err
	}
	return p.updateRound(ctx, t)
}

// createRound creates the repository, generates the full project, and enables
// static hosting once every file is written.
func (p *Publisher) createRound(ctx context.Context, t *task.Task) (string, []string, error) {
	slog.InfoContext(ctx, "creating repository", "task", t.Name)
	if err := p.host.CreateRepository(ctx, t.Name); err != nil {
		return "", nil, err
	}

	outcome := p.orchestrator.Generate(ctx, generate.Request{
		Name:            t.Name,
		Brief:           t.Brief,
		Checks:          t.Checks,
		AttachmentNames: attachmentNames(t.Attachments),
	})
	files, err := overlayAttachments(outcome.Files, t.Attachments)
	if err != nil {
		return "", nil, err
	}

	sha, written, err := p.writeAll(ctx, t.Name, files)
	if err != nil {
		return "", written, err
	}

	slog.InfoContext(ctx, "enabling static hosting", "task", t.Name)
	if err := p.host.EnablePages(ctx, t.Name); err != nil {
		return "", written, err
	}
	return sha, written, nil
}

// updateRound fetches the remote snapshot, generates targeted modifications,
// and writes only the files the model returned. Files absent from the
// generated set stay untouched in the store.
func (p *Publisher) updateRound(ctx context.Context, t *task.Task) (string, []string, map[string]string, error) {
	slog.InfoContext(ctx, "fetching existing files", "task", t.Name)
	existing, err := p.host.Snapshot(ctx, t.Name)
	if err != nil {
		return "", nil, nil, err
	}
	if len(existing) == 0 {
		return "", nil, nil, cerr.NewError(cerr.FailedPrecondition, "could not retrieve existing files to modify", nil)
	}

	outcome := p.orchestrator.Generate(ctx, generate.Request{
		Name:            t.Name,
		Brief:           t.Brief,
		Checks:          t.Checks,
		AttachmentNames: attachmentNames(t.Attachments),
		ExistingFiles:   existing,
	})
	files, err := overlayAttachments(outcome.Files, t.Attachments)
	if err != nil {
		return "", nil, nil, err
	}

	diffs := diffAgainst(existing, files)
	for path := range diffs {
		slog.DebugContext(ctx, "file changed", "path", path, "diff", diffs[path])
	}

	sha, written, err := p.writeAll(ctx, t.Name, files)
	return sha, written, diffs, err
}

// writeAll reconciles files against the store one path at a time, in sorted
// order. The identifier of the last successful write is the round marker; a
// round with zero successful writes is a failure.
func (p *Publisher) writeAll(ctx context.Context, name string, files generate.FileSet) (string, []string, error) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lastSHA := ""
	var written []string
	for _, path := range paths {
		key, ok := normalizePath(path)
		if !ok {
			slog.WarnContext(ctx, "skipping unsafe file path", "path", path)
			continue
		}
		sha, err := p.host.UploadOrUpdate(ctx, name, key, files[path])
		if err != nil {
			return "", written, err
		}
		lastSHA = sha
		written = append(written, key)
	}
	if lastSHA == "" {
		return "", written, cerr.NewError(cerr.Internal, "failed to retrieve a valid commit identifier",
			fmt.Errorf("no files were written"))
	}
	return lastSHA, written, nil
}

// overlayAttachments decodes every attachment onto the generated set. An
// attachment always wins over a generated file at the same path.
func overlayAttachments(files generate.FileSet, attachments []task.Attachment) (generate.FileSet, error) {
	for _, att := range attachments {
		data, err := att.Decode()
		if err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, "failed to decode attachment", err)
		}
		files[att.Name] = data
	}
	return files, nil
}

func attachmentNames(attachments []task.Attachment) []string {
	names := make([]string, 0, len(attachments))
	for _, att := range attachments {
		names = append(names, att.Name)
	}
	return names
}

// diffAgainst renders a unified diff for every generated file that already
// existed remotely, for the journal and debug logs.
func diffAgainst(existing map[string]string, files generate.FileSet) map[string]string {
	diffs := map[string]string{}
	for path, content := range files {
		old, ok := existing[path]
		if !ok || old == string(content) {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(old),
			B:        difflib.SplitLines(string(content)),
			FromFile: path,
			ToFile:   path,
			Context:  3,
		})
		if err != nil {
			continue
		}
		diffs[path] = text
	}
	return diffs
}

func (p *Publisher) saveRecord(ctx context.Context, rec *journal.Record) {
	// The journal is advisory; losing a record must not fail the round.
	if err := p.journal.Save(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to save round record", "task", rec.Task, "round", rec.Round, "error", err)
	}
}
