package journal

import "context"

type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, task string, round int) (*Record, error)
	List(ctx context.Context, task string) ([]*Record, error)
}
