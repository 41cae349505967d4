package ports

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// ListStore is the List Store Collaborator. Fetch-all and append are the
// only operations the workflow uses; append is the sole mutation primitive
// and is not transactional across rows.
type ListStore interface {
	FetchAll(ctx context.Context) ([]domain.ListEntry, error)
	Append(ctx context.Context, entry domain.ListEntry) error
}

// ListEditor is an optional extension for stores that can remove entries.
// The edit flow discovers it by type assertion; the discovery workflow never
// uses it. Remove matches by normalized name.
type ListEditor interface {
	Remove(ctx context.Context, name string) error
}
