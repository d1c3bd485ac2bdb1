package core

import (
	"errors"
	"fmt"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

var (
	ErrStoreRead      = errors.New("store read failed")
	ErrStoreWrite     = errors.New("store write failed")
	ErrNoValidRecords = errors.New("no valid records")
)

// Stages of a sync run, as reported in SyncError.
const (
	StageValidate = "validate"
	StageDetect   = "detect"
	StageConnect  = "connect"
	StageRead     = "read"
	StageNodes    = "nodes"
	StageEdges    = "edges"
)

// SyncError stops a run. Report holds what was confirmed written before
// the failure.
type SyncError struct {
	Stage  string
	Report *model.SyncReport
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed at %s: %v", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
