package model

import "time"

type SyncRunStatus string

const (
	SyncRunStatusRunning SyncRunStatus = "running"
	SyncRunStatusSuccess SyncRunStatus = "success"
	SyncRunStatusError   SyncRunStatus = "error"
)

// SyncRun records one pull of an entity from the upstream into the local
// catalog cache.
type SyncRun struct {
	ID               string        `db:"id" json:"id"`
	Entity           Entity        `db:"entity" json:"entity"`
	Status           SyncRunStatus `db:"status" json:"status"`
	RecordsProcessed int           `db:"records_processed" json:"recordsProcessed"`
	RecordsSuccess   int           `db:"records_success" json:"recordsSuccess"`
	RecordsError     int           `db:"records_error" json:"recordsError"`
	ErrorMessage     *string       `db:"error_message" json:"errorMessage,omitempty"`
	StartedAt        time.Time     `db:"started_at" json:"startedAt"`
	FinishedAt       *time.Time    `db:"finished_at" json:"finishedAt,omitempty"`
}

type CreateSyncRunParams struct {
	Entity    Entity
	StartedAt time.Time
}

type FinishSyncRunParams struct {
	ID               string
	Status           SyncRunStatus
	RecordsProcessed int
	RecordsSuccess   int
	RecordsError     int
	ErrorMessage     *string
	FinishedAt       time.Time
}
