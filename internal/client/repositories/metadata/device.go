package metadata

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/google/uuid"
)

// DeviceID returns the installation id. The first caller stores a fresh
// UUID; concurrent first calls agree on a single value. A stored value that
// is not a UUID is replaced.
func DeviceID(ctx context.Context, repo Repository) (string, error) {
	v, err := repo.Get(ctx, common.MetadataDeviceID)
	switch {
	case errors.Is(err, ErrNotFound):
		stored, err := repo.SetIfAbsent(ctx, common.MetadataDeviceID, []byte(uuid.NewString()))
		if err != nil {
			return "", err
		}
		v = stored
	case err != nil:
		return "", err
	}

	if id, err := uuid.ParseBytes(v); err == nil {
		return id.String(), nil
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, common.MetadataDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
