package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/domain"
	domidx "github.com/kailas-cloud/idxadvisor/internal/domain/index"
	"github.com/kailas-cloud/idxadvisor/internal/domain/provision"
)

// store is the consumer interface for index provisioning (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) (string, error)
	ListIndexes(ctx context.Context, collection string) ([]db.IndexInfo, error)
}

// Repo implements usecase/provision.Ensurer.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ensure makes sure an index equivalent to spec exists.
//
// Live indexes are reconciled first: an equivalent index means AlreadyExists;
// one with the same name or keys but other options is a conflicting definition.
// A create that collides with a concurrent creator re-reads the live indexes
// and reports AlreadyExists with an ErrBenignDuplicate detail when they match.
func (r *Repo) Ensure(ctx context.Context, spec domidx.Spec) (provision.Status, error) {
	def, err := buildDefinition(spec)
	if err != nil {
		return provision.StatusFailed, fmt.Errorf("%w: %w", domain.ErrInvalidSpec, err)
	}

	existing, err := r.store.ListIndexes(ctx, def.Collection)
	if err != nil {
		return provision.StatusFailed, translate("list indexes", err)
	}
	if status, err := reconcile(def, existing); status != "" {
		return status, err
	}

	if _, err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) || errors.Is(err, db.ErrIndexConflict) || errors.Is(err, db.ErrDuplicateKey) {
			return r.afterCollision(ctx, def, err)
		}
		return provision.StatusFailed, translate("create index", err)
	}
	return provision.StatusCreated, nil
}

func (r *Repo) afterCollision(ctx context.Context, def *db.IndexDefinition, createErr error) (provision.Status, error) {
	existing, err := r.store.ListIndexes(ctx, def.Collection)
	if err != nil {
		return provision.StatusFailed, errors.Join(
			translate("create index", createErr),
			translate("list indexes", err),
		)
	}
	for _, info := range existing {
		if def.Equivalent(info) {
			return provision.StatusAlreadyExists, fmt.Errorf("%w: %s created concurrently as %s: %w",
				domain.ErrBenignDuplicate, def.EffectiveName(), info.Name, createErr)
		}
	}
	if errors.Is(createErr, db.ErrDuplicateKey) {
		// unique build rejected by existing documents
		return provision.StatusFailed, fmt.Errorf("create index: %w", createErr)
	}
	return provision.StatusFailed, fmt.Errorf("%w: %w", domain.ErrConflictingDefinition, createErr)
}

// reconcile compares the wanted definition with live indexes. An empty status means create.
func reconcile(def *db.IndexDefinition, existing []db.IndexInfo) (provision.Status, error) {
	for _, info := range existing {
		if def.Equivalent(info) {
			return provision.StatusAlreadyExists, nil
		}
	}
	name := def.EffectiveName()
	for _, info := range existing {
		if info.Name == name {
			return provision.StatusFailed, fmt.Errorf("%w: %s exists on %s with %s",
				domain.ErrConflictingDefinition, name, def.Collection, describe(info))
		}
		if def.SameKeys(info) {
			return provision.StatusFailed, fmt.Errorf("%w: keys %s already indexed on %s as %s with %s",
				domain.ErrConflictingDefinition, db.KeyPatternString(def.Keys), def.Collection, info.Name, describe(info))
		}
	}
	return "", nil
}

func describe(info db.IndexInfo) string {
	s := db.KeyPatternString(info.Keys)
	if info.Unique {
		s += " unique"
	}
	if info.Sparse {
		s += " sparse"
	}
	if info.ExpireAfterSeconds != nil {
		s += fmt.Sprintf(" expireAfterSeconds=%d", *info.ExpireAfterSeconds)
	}
	return s
}

func translate(op string, err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConnectivity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
