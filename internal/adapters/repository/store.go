// Package repository defines the per-vessel position history store.
package repository

import (
	"context"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// Store provides access to the bounded, time-ordered history of reports per
// vessel. Arrival order is assumed to be chronological order; the store never
// re-sorts.
type Store interface {
	// Append inserts a validated report into the vessel's history,
	// evicting the oldest entry once capacity is exceeded. A history is
	// created lazily for a vessel seen for the first time.
	Append(ctx context.Context, mmsi string, r model.PositionReport)

	// Previous returns the second-most-recent report for the vessel, or
	// false when fewer than two reports exist.
	Previous(ctx context.Context, mmsi string) (model.PositionReport, bool)

	// Latest returns the most recent report for the vessel, or false when
	// the vessel is unknown.
	Latest(ctx context.Context, mmsi string) (model.PositionReport, bool)

	// Len returns the number of reports currently retained for the vessel.
	Len(ctx context.Context, mmsi string) int

	// Vessels returns the number of vessels with at least one report.
	Vessels(ctx context.Context) int
}
