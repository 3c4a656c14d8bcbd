package http

import (
	"context"

	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

// CollectionStatuses lists the collections of store with their point counts.
//
// A collection whose info cannot be read is still listed, with Points -1.
// An empty store yields an empty, non-nil slice.
func CollectionStatuses(ctx context.Context, store vectorstore.Store) ([]CollectionStatus, error) {
	names, err := store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]CollectionStatus, 0, len(names))
	for _, name := range names {
		status := CollectionStatus{Name: name, Points: -1}
		if info, err := store.CollectionInfo(ctx, name); err == nil && info != nil {
			status.Points = info.PointCount
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
