package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kailas-cloud/idxadvisor/internal/db"
)

type currentOpDoc struct {
	InProg []struct {
		OpID             interface{} `bson:"opid"`
		Op               string      `bson:"op"`
		NS               string      `bson:"ns"`
		Client           string      `bson:"client"`
		Desc             string      `bson:"desc"`
		Active           bool        `bson:"active"`
		MicrosecsRunning int64       `bson:"microsecs_running"`
	} `bson:"inprog"`
}

// CurrentOp lists active operations via the admin currentOp command.
func (s *Store) CurrentOp(ctx context.Context) ([]db.CurrentOp, error) {
	start := time.Now()
	res := s.admin.RunCommand(ctx, bson.D{
		{Key: "currentOp", Value: 1},
		{Key: "active", Value: true},
	})
	err := res.Err()
	observe(db.OpCurrentOp, start, err)
	if err != nil {
		return nil, wrapErr(db.OpCurrentOp, err)
	}

	var doc currentOpDoc
	if err := res.Decode(&doc); err != nil {
		return nil, wrapErr(db.OpCurrentOp, err)
	}

	out := make([]db.CurrentOp, 0, len(doc.InProg))
	for _, op := range doc.InProg {
		out = append(out, db.CurrentOp{
			OpID:             opID(op.OpID),
			Type:             op.Op,
			Namespace:        op.NS,
			Client:           op.Client,
			Description:      op.Desc,
			Active:           op.Active,
			MicrosecsRunning: op.MicrosecsRunning,
		})
	}
	return out, nil
}

// opID renders numeric (replica set) and string (sharded) op ids alike.
func opID(v interface{}) string {
	if v == nil {
		return ""
	}
	if n, ok := number(v); ok {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprint(v)
}

type dbStatsDoc struct {
	Collections int64   `bson:"collections"`
	Objects     int64   `bson:"objects"`
	AvgObjSize  float64 `bson:"avgObjSize"`
	DataSize    int64   `bson:"dataSize"`
	StorageSize int64   `bson:"storageSize"`
	Indexes     int64   `bson:"indexes"`
	IndexSize   int64   `bson:"indexSize"`
}

// DatabaseStats runs dbStats on the advisor database.
func (s *Store) DatabaseStats(ctx context.Context) (*db.DatabaseStats, error) {
	start := time.Now()
	res := s.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}})
	err := res.Err()
	observe(db.OpDBStats, start, err)
	if err != nil {
		return nil, wrapErr(db.OpDBStats, err)
	}

	var doc dbStatsDoc
	if err := res.Decode(&doc); err != nil {
		return nil, wrapErr(db.OpDBStats, err)
	}
	return &db.DatabaseStats{
		Collections: doc.Collections,
		Objects:     doc.Objects,
		AvgObjSize:  doc.AvgObjSize,
		DataSize:    doc.DataSize,
		StorageSize: doc.StorageSize,
		Indexes:     doc.Indexes,
		IndexSize:   doc.IndexSize,
	}, nil
}

type serverStatusDoc struct {
	Version     string  `bson:"version"`
	Uptime      float64 `bson:"uptime"`
	Connections struct {
		Current      int64 `bson:"current"`
		Available    int64 `bson:"available"`
		TotalCreated int64 `bson:"totalCreated"`
	} `bson:"connections"`
	Mem struct {
		Resident int64 `bson:"resident"`
		Virtual  int64 `bson:"virtual"`
	} `bson:"mem"`
}

// ServerStatus runs the admin serverStatus command.
func (s *Store) ServerStatus(ctx context.Context) (*db.ServerStatus, error) {
	start := time.Now()
	res := s.admin.RunCommand(ctx, bson.D{{Key: "serverStatus", Value: 1}})
	err := res.Err()
	observe(db.OpServerStatus, start, err)
	if err != nil {
		return nil, wrapErr(db.OpServerStatus, err)
	}

	var doc serverStatusDoc
	if err := res.Decode(&doc); err != nil {
		return nil, wrapErr(db.OpServerStatus, err)
	}
	return &db.ServerStatus{
		Version:       doc.Version,
		UptimeSeconds: int64(doc.Uptime),
		Connections: db.ConnectionStats{
			Current:      doc.Connections.Current,
			Available:    doc.Connections.Available,
			TotalCreated: doc.Connections.TotalCreated,
		},
		ResidentMB: doc.Mem.Resident,
		VirtualMB:  doc.Mem.Virtual,
	}, nil
}
