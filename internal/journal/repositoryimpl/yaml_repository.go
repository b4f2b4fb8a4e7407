package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"sitewright/internal/journal"
	"sitewright/pkg/cerr"
	"sitewright/pkg/storage"
)

const roundsPrefix = "rounds"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(task string, round int) string {
	return fmt.Sprintf("%s/%s/%d.yaml", roundsPrefix, task, round)
}

func (r *YAMLRepository) Save(ctx context.Context, rec *journal.Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal round record: %w", err))
	}
	if err := r.storage.Write(ctx, path(rec.Task, rec.Round), data); err != nil {
		return cerr.WrapStorageWriteError("round record", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, task string, round int) (*journal.Record, error) {
	data, err := r.storage.Read(ctx, path(task, round))
	if err != nil {
		return nil, cerr.WrapStorageReadError("round record", err)
	}
	var rec journal.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal round record: %w", err))
	}
	return &rec, nil
}

func (r *YAMLRepository) List(ctx context.Context, task string) ([]*journal.Record, error) {
	paths, err := r.storage.List(ctx, roundsPrefix+"/"+task)
	if err != nil {
		return nil, cerr.WrapStorageReadError("round records", err)
	}
	sort.Strings(paths)

	var all []*journal.Record
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var rec journal.Record
		if err := yaml.Unmarshal(data, &rec); err != nil {
			continue
		}
		all = append(all, &rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Round < all[j].Round })
	return all, nil
}
