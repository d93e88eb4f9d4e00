package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/dmitrijs2005/jobcoach/internal/cryptox"
)

// MetadataPersister keeps the session as sealed JSON in the metadata table.
// The stored value is nonce||ciphertext.
type MetadataPersister struct {
	repo metadata.Repository
	key  []byte
}

func NewMetadataPersister(repo metadata.Repository, key []byte) *MetadataPersister {
	return &MetadataPersister{repo: repo, key: key}
}

const nonceSize = 12

func (p *MetadataPersister) Load(ctx context.Context) (models.Session, error) {
	raw, err := p.repo.Get(ctx, common.MetadataSessionState)
	if errors.Is(err, metadata.ErrNotFound) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	if len(raw) <= nonceSize {
		return models.Session{}, fmt.Errorf("%w: short payload", ErrInvalidSession)
	}

	var s models.Session
	if err := cryptox.OpenJSON(p.key, raw[nonceSize:], raw[:nonceSize], []byte(common.MetadataSessionState), &s); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s, nil
}

// Save seals s under the session key. An anonymous session removes the
// record instead.
func (p *MetadataPersister) Save(ctx context.Context, s models.Session) error {
	if !s.IsAuthenticated {
		return p.repo.Delete(ctx, common.MetadataSessionState)
	}

	ct, nonce, err := cryptox.SealJSON(p.key, s, []byte(common.MetadataSessionState))
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	return p.repo.Set(ctx, common.MetadataSessionState, append(nonce, ct...))
}
