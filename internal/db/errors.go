package db

import (
	"errors"
	"strconv"
)

// Sentinel errors for database operations.
var (
	ErrIndexExists       = errors.New("db: index already exists")
	ErrIndexConflict     = errors.New("db: index conflicts with existing definition")
	ErrDuplicateKey      = errors.New("db: duplicate key")
	ErrNamespaceNotFound = errors.New("db: namespace not found")
	ErrUnavailable       = errors.New("db: unavailable")
)

// Op constants map to MongoDB command names for error context.
const (
	OpPing            = "ping"
	OpCreateIndexes   = "createIndexes"
	OpListIndexes     = "listIndexes"
	OpListCollections = "listCollections"
	OpIndexStats      = "$indexStats"
	OpCollStats       = "collStats"
	OpDBStats         = "dbStats"
	OpCurrentOp       = "currentOp"
	OpServerStatus    = "serverStatus"
	OpProfile         = "system.profile"
)

// MongoDB server error codes the adapters classify.
const (
	CodeNamespaceNotFound     int32 = 26
	CodeIndexAlreadyExists    int32 = 68
	CodeIndexOptionsConflict  int32 = 85
	CodeIndexKeySpecsConflict int32 = 86
	CodeDuplicateKey          int32 = 11000
)

// Error wraps an underlying error with the operation name and server code for diagnostics.
type Error struct {
	Op   string
	Code int32
	Err  error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return e.Op + " (code " + strconv.Itoa(int(e.Code)) + "): " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
