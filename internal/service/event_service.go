// Package service orchestrates the competition workflow on top of the
// roster, scoring, importer, exporter, and snapshot packages. Every
// mutating operation mirrors the roster to the snapshot store before
// returning; snapshot failures are logged and swallowed, never surfaced,
// since the in-memory roster remains authoritative for the session.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amahle/discus-manager/internal/config"
	"github.com/amahle/discus-manager/internal/exporter"
	"github.com/amahle/discus-manager/internal/importer"
	"github.com/amahle/discus-manager/internal/models"
	"github.com/amahle/discus-manager/internal/roster"
	"github.com/amahle/discus-manager/internal/scoring"
	"github.com/amahle/discus-manager/internal/storage"
)

// EventService manages one discus event: the roster, the per-category
// final rounds, and results import/export.
type EventService struct {
	roster *roster.Roster
	store  storage.Store
	cfg    *config.Config
}

// NewEventService creates an EventService with the given snapshot backend.
func NewEventService(r *roster.Roster, store storage.Store, cfg *config.Config) *EventService {
	return &EventService{roster: r, store: store, cfg: cfg}
}

// CategoryResults is one category's ranked results plus its qualifying
// standard, when one is configured.
type CategoryResults struct {
	Category string             `json:"category"`
	Standard *float64           `json:"standard,omitempty"`
	Rows     []models.ResultRow `json:"rows"`
}

// FinalRoundView is the final-round state for one category. Finalists are
// in throwing order: lowest qualifying rank first, leader last.
type FinalRoundView struct {
	Category  string                 `json:"category"`
	Active    bool                   `json:"active"`
	Finalists []models.FinalistEntry `json:"finalists"`
}

// RestoreSnapshot repopulates the roster from the durable snapshot at
// startup. Any failure is treated as "no backup available": the event
// starts with an empty roster and a warning in the log.
func (s *EventService) RestoreSnapshot(ctx context.Context) {
	athletes, err := s.store.Load(ctx)
	if err != nil {
		slog.Warn("Snapshot unreadable, starting with empty roster", "error", err)
		return
	}
	if len(athletes) == 0 {
		return
	}

	// Stored IDs are authoritative: an athlete renamed before the snapshot
	// keeps the ID issued at creation, so Replace rather than BulkLoad.
	s.roster.Replace(athletes)
	slog.Info("Roster restored from snapshot", "athletes", len(athletes))
}

// ImportStartList replaces the roster with the uploaded start list and
// resets all final rounds. A rejected file leaves the previous roster
// untouched. Returns the number of athletes loaded.
func (s *EventService) ImportStartList(ctx context.Context, r io.Reader, filename, fallbackCategory string) (int, error) {
	slog.Info("ImportStartList request received", "filename", filename)

	rows, err := importer.Read(r, filename, importer.Options{FallbackCategory: fallbackCategory})
	if err != nil {
		slog.Error("ImportStartList rejected", "filename", filename, "error", err)
		return 0, err
	}

	dups := s.roster.BulkLoad(rows)
	for _, id := range dups {
		// Shared IDs are kept as-is; see the models package comment.
		slog.Warn("Duplicate athlete ID in start list", "id", id)
	}
	s.persist(ctx)

	slog.Info("Start list loaded", "athletes", len(rows), "duplicate_ids", len(dups))
	return len(rows), nil
}

// AddAthlete appends a single manual entry with empty throws.
func (s *EventService) AddAthlete(ctx context.Context, category, house, name string) (models.Athlete, error) {
	slog.Info("AddAthlete request received", "category", category, "name", name)

	if category == "" || name == "" {
		return models.Athlete{}, fmt.Errorf("category and name are required")
	}

	a := s.roster.Add(category, house, name)
	s.persist(ctx)

	slog.Info("Athlete added", "id", a.ID, "category", a.Category)
	return a, nil
}

// UpdateAthlete writes one throw slot or the display name of an athlete.
func (s *EventService) UpdateAthlete(ctx context.Context, id, field, value string) error {
	slog.Debug("UpdateAthlete request received", "id", id, "field", field)

	if err := s.roster.UpdateField(id, field, value); err != nil {
		slog.Error("UpdateAthlete failed", "id", id, "field", field, "error", err)
		return err
	}
	s.persist(ctx)
	return nil
}

// ClearAll empties the roster, all final-round flags, and the snapshot.
func (s *EventService) ClearAll(ctx context.Context) error {
	slog.Info("ClearAll request received")

	s.roster.Clear()
	if err := s.store.Clear(ctx); err != nil {
		slog.Error("Failed to remove snapshot", "error", err)
		return err
	}

	slog.Info("All event data cleared")
	return nil
}

// Categories returns the sorted category labels present in the roster.
func (s *EventService) Categories() []string {
	return s.roster.Categories()
}

// KnownCategories returns the configured category names, for the
// manual-entry picker. Any free-text category is still accepted.
func (s *EventService) KnownCategories() []string {
	return s.cfg.Categories()
}

// Results returns a category's ranked leaderboard. An unknown or empty
// category yields empty rows rather than an error.
func (s *EventService) Results(category string) CategoryResults {
	res := CategoryResults{
		Category: category,
		Rows:     scoring.Results(s.roster.ByCategory(category)),
	}
	if std, ok := s.cfg.StandardFor(category); ok {
		res.Standard = &std
	}
	return res
}

// UnlockFinal marks the category's final round as active. Unlocking is
// sticky and idempotent; only a full clear or a fresh start list undoes it.
func (s *EventService) UnlockFinal(ctx context.Context, category string) error {
	slog.Info("UnlockFinal request received", "category", category)

	if len(s.roster.ByCategory(category)) == 0 {
		return fmt.Errorf("no athletes in category %q", category)
	}
	s.roster.UnlockFinal(category)

	slog.Info("Final round unlocked", "category", category)
	return nil
}

// FinalRound returns the category's final-round state. The finalist cut is
// recomputed from the live roster on every call rather than frozen at
// unlock time, so a late phase-1 edit can still change who qualifies; only
// the active flag is sticky.
func (s *EventService) FinalRound(category string) FinalRoundView {
	view := FinalRoundView{
		Category:  category,
		Active:    s.roster.FinalActive(category),
		Finalists: []models.FinalistEntry{},
	}
	if view.Active {
		view.Finalists = scoring.SelectFinalists(s.roster.ByCategory(category))
	}
	return view
}

// Export writes the category's ranked results to w in the given format
// ("csv" or "xlsx") and returns the suggested download filename.
func (s *EventService) Export(category, format string, w io.Writer) (string, error) {
	slog.Info("Export request received", "category", category, "format", format)

	athletes := s.roster.ByCategory(category)
	switch format {
	case "csv":
		if err := exporter.WriteCSV(w, athletes); err != nil {
			return "", err
		}
	case "xlsx":
		if err := exporter.WriteXLSX(w, athletes); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	return exporter.Filename(category, format), nil
}

// persist mirrors the roster to the snapshot store, best-effort.
func (s *EventService) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.roster.All()); err != nil {
		slog.Warn("Failed to write roster snapshot", "error", err)
	}
}
