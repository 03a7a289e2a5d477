package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
)

// store is the consumer interface for administrative reads (ISP).
type store interface {
	CurrentOp(ctx context.Context) ([]db.CurrentOp, error)
	DatabaseStats(ctx context.Context) (*db.DatabaseStats, error)
	ServerStatus(ctx context.Context) (*db.ServerStatus, error)
}

// Repo implements usecase/monitor.Repository.
type Repo struct {
	store store
}

// New creates a server state repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// InFlightOps returns the active operations.
func (r *Repo) InFlightOps(ctx context.Context) ([]snapshot.Op, error) {
	ops, err := r.store.CurrentOp(ctx)
	if err != nil {
		return nil, translate("current op", err)
	}
	out := make([]snapshot.Op, 0, len(ops))
	for _, op := range ops {
		if !op.Active {
			continue
		}
		out = append(out, snapshot.Op{
			OpID:        op.OpID,
			Type:        op.Type,
			Namespace:   op.Namespace,
			RunningMs:   op.MicrosecsRunning / 1000,
			Client:      op.Client,
			Description: op.Description,
		})
	}
	return out, nil
}

// Storage returns the database storage summary.
func (r *Repo) Storage(ctx context.Context) (snapshot.Storage, error) {
	st, err := r.store.DatabaseStats(ctx)
	if err != nil {
		return snapshot.Storage{}, translate("db stats", err)
	}
	return snapshot.Storage{
		Collections:   st.Collections,
		Objects:       st.Objects,
		AvgObjectSize: st.AvgObjSize,
		DataBytes:     st.DataSize,
		StorageBytes:  st.StorageSize,
		IndexCount:    st.Indexes,
		IndexBytes:    st.IndexSize,
	}, nil
}

// Server returns process-level server state.
func (r *Repo) Server(ctx context.Context) (snapshot.Server, error) {
	st, err := r.store.ServerStatus(ctx)
	if err != nil {
		return snapshot.Server{}, translate("server status", err)
	}
	return snapshot.Server{
		Version:       st.Version,
		UptimeSeconds: st.UptimeSeconds,
		Connections: snapshot.Connections{
			Current:      st.Connections.Current,
			Available:    st.Connections.Available,
			TotalCreated: st.Connections.TotalCreated,
		},
		Memory: snapshot.Memory{
			ResidentMB: st.ResidentMB,
			VirtualMB:  st.VirtualMB,
		},
	}, nil
}

func translate(op string, err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConnectivity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
