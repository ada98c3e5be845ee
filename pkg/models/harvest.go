package models

import "time"

// HarvestRun records one pass of the Camdram harvester.
type HarvestRun struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	FromDate    string    `json:"from_date"`
	ToDate      string    `json:"to_date"`
	ShowsAdded  int       `json:"shows_added"`
	RolesLoaded int       `json:"roles_loaded"`
	Hydrated    int       `json:"hydrated"`
	Status      string    `json:"status"` // "ok" or "failed"
	Error       string    `json:"error,omitempty"`
}
