package usecase

import (
	"context"
	stderrors "errors"

	"assetbazaar/internal/domain/repository"
	"assetbazaar/pkg/errors"
)

// lookupOrCreate returns the record find sees, creating it when absent. When
// a concurrent caller wins the insert, the loser reads the winner's record so
// both end up with the same identity.
func lookupOrCreate[T any](
	ctx context.Context,
	find func(context.Context) (*T, error),
	create func(context.Context) (*T, error),
) (*T, error) {
	existing, err := find(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := create(ctx)
	if !stderrors.Is(err, repository.ErrDuplicate) {
		return created, err
	}

	existing, err = find(ctx)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.Internal("Record reported as duplicate but not found", repository.ErrDuplicate)
	}
	return existing, nil
}
