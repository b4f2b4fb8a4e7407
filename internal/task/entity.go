package task

import (
	"encoding/base64"
	"fmt"
	"strings"

	"sitewright/pkg/cerr"
)

// Task is one unit of work received from the dispatcher. Name doubles as the
// remote repository name; Round 1 creates the repository, later rounds modify
// it. The struct is consumed once per round and never persisted here — project
// state lives entirely in the remote host.
type Task struct {
	Email         string       `json:"email"`
	Secret        string       `json:"secret"`
	Name          string       `json:"task"`
	Round         int          `json:"round"`
	Nonce         string       `json:"nonce"`
	Brief         string       `json:"brief"`
	Checks        []string     `json:"checks"`
	EvaluationURL string       `json:"evaluation_url"`
	Attachments   []Attachment `json:"attachments"`
}

// Attachment is a caller-supplied asset, delivered as a base64 data-URI. It is
// written verbatim into the published repository and always wins over a
// generated file at the same path.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Decode splits the data-URI and returns the raw bytes of the payload.
func (a Attachment) Decode() ([]byte, error) {
	_, encoded, found := strings.Cut(a.URL, ",")
	if !found {
		return nil, fmt.Errorf("attachment %s: not a data URI", a.Name)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", a.Name, err)
	}
	return data, nil
}

// Validate rejects malformed tasks before any model or store call is made.
func (t *Task) Validate() error {
	if t.Name == "" {
		return cerr.NewError(cerr.InvalidArgument, "task is required", nil)
	}
	if t.Round < 1 {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown round: %d", t.Round), nil)
	}
	if t.Brief == "" {
		return cerr.NewError(cerr.InvalidArgument, "brief is required", nil)
	}
	if t.EvaluationURL == "" {
		return cerr.NewError(cerr.InvalidArgument, "evaluation_url is required", nil)
	}
	return nil
}
