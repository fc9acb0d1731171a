package model

import (
	"time"
)

type OutcomeStatus string

const (
	StatusUpdated        OutcomeStatus = "updated"
	StatusNoChange       OutcomeStatus = "no_change"
	StatusNotFoundLocal  OutcomeStatus = "not_found_local"
	StatusNotFoundRemote OutcomeStatus = "not_found_remote"
	StatusInvalidData    OutcomeStatus = "invalid_data_local"
	StatusError          OutcomeStatus = "error"
	StatusInterrupted    OutcomeStatus = "interrupted"
)

type UpdateOutcome struct {
	Sku              string
	Status           OutcomeStatus
	PriceChanged     bool
	InventoryChanged bool
	Success          bool
	Detail           string
}

type JoinMode string

const (
	JoinRemoteFirst JoinMode = "remote-first"
	JoinLocalFirst  JoinMode = "local-first"
)

type SyncScope string

const (
	ScopePrice     SyncScope = "price"
	ScopeInventory SyncScope = "inventory"
	ScopeBoth      SyncScope = "both"
)

func (s SyncScope) Price() bool {
	return s == ScopePrice || s == ScopeBoth
}

func (s SyncScope) Inventory() bool {
	return s == ScopeInventory || s == ScopeBoth
}

type RunSummary struct {
	RunID    string
	Mode     JoinMode
	Scope    SyncScope
	DryRun   bool
	Started  time.Time
	Duration time.Duration
	// Aborted is the reason a run stopped before reconciling, if it did.
	Aborted string

	Processed         int
	PriceOnly         int
	InventoryOnly     int
	PriceAndInventory int
	NoChange          int
	NotFoundLocal     int
	NotFoundRemote    int
	InvalidData       int
	Errors            int
	Interrupted       int

	// Failures holds error and invalid-data outcomes for the printed report.
	Failures []UpdateOutcome
}

// PriceUpdates counts items whose price was written.
func (s RunSummary) PriceUpdates() int {
	return s.PriceOnly + s.PriceAndInventory
}

// InventoryUpdates counts items whose inventory was written.
func (s RunSummary) InventoryUpdates() int {
	return s.InventoryOnly + s.PriceAndInventory
}

func (s RunSummary) Updated() int {
	return s.PriceOnly + s.InventoryOnly + s.PriceAndInventory
}

// Add folds one outcome into the counters.
func (s *RunSummary) Add(o UpdateOutcome) {
	s.Processed++
	switch {
	case o.PriceChanged && o.InventoryChanged:
		s.PriceAndInventory++
	case o.PriceChanged:
		s.PriceOnly++
	case o.InventoryChanged:
		s.InventoryOnly++
	}
	switch o.Status {
	case StatusNoChange:
		s.NoChange++
	case StatusNotFoundLocal:
		s.NotFoundLocal++
	case StatusNotFoundRemote:
		s.NotFoundRemote++
	case StatusInvalidData:
		s.InvalidData++
		s.Failures = append(s.Failures, o)
	case StatusError:
		s.Errors++
		s.Failures = append(s.Failures, o)
	case StatusInterrupted:
		s.Interrupted++
	}
}
