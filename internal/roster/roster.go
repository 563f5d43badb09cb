// Package roster owns the in-memory competition state: the ordered list of
// athlete records across all categories plus the per-category final-round
// flags. All mutation goes through the methods here; callers never hold a
// reference into the underlying slice.
//
// A single mutex guards the state. The service is effectively
// request/response single-writer, so the lock is there to keep the state
// object safe to share, not to arbitrate real contention.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/amahle/discus-manager/internal/models"
)

// ErrNotFound is returned when no athlete matches the given ID.
var ErrNotFound = errors.New("athlete not found")

// Roster holds all athlete records in load order, plus which categories have
// had their final round unlocked. The flags live only in memory; they are
// deliberately absent from the durable snapshot.
type Roster struct {
	mu       sync.Mutex
	athletes []models.Athlete
	finals   map[string]bool
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{finals: make(map[string]bool)}
}

// BulkLoad replaces the entire roster with athletes built from the given
// start rows, in order, and resets every final-round flag. It returns the
// IDs that ended up shared by more than one record (same name and house),
// so the caller can surface the collision without rejecting the load.
func (r *Roster) BulkLoad(rows []models.StartRow) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.athletes = make([]models.Athlete, 0, len(rows))
	r.finals = make(map[string]bool)

	seen := make(map[string]int, len(rows))
	var dups []string
	for _, row := range rows {
		a := models.NewAthlete(row.Category, row.House, row.Name)
		a.Throws = row.Throws
		r.athletes = append(r.athletes, a)

		seen[a.ID]++
		if seen[a.ID] == 2 {
			dups = append(dups, a.ID)
		}
	}
	return dups
}

// Replace swaps in a previously persisted roster, keeping each record's
// stored ID, and resets every final-round flag. Unlike BulkLoad it never
// re-derives IDs: a record renamed before the snapshot was taken keeps the
// ID issued at creation.
func (r *Roster) Replace(athletes []models.Athlete) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.athletes = make([]models.Athlete, len(athletes))
	copy(r.athletes, athletes)
	r.finals = make(map[string]bool)
}

// Add appends a single athlete with empty throw slots. Final-round flags are
// left alone: a late manual entry must not re-lock a category.
func (r *Roster) Add(category, house, name string) models.Athlete {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := models.NewAthlete(category, house, name)
	r.athletes = append(r.athletes, a)
	return a
}

// UpdateField mutates one throw slot ("t1".."t5") or the display name
// ("name") of the athlete with the given ID, in place. When two records
// share an ID the first match in store order is updated; see the package
// comment in models for why shared IDs exist at all.
func (r *Roster) UpdateField(id, field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.athletes {
		if r.athletes[i].ID != id {
			continue
		}
		switch f := strings.ToLower(strings.TrimSpace(field)); f {
		case "name":
			r.athletes[i].Name = value
		case "t1", "t2", "t3", "t4", "t5":
			r.athletes[i].Throws[f[1]-'1'] = value
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear empties the roster and all final-round flags.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.athletes = nil
	r.finals = make(map[string]bool)
}

// All returns a copy of every athlete record in load order.
func (r *Roster) All() []models.Athlete {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Athlete, len(r.athletes))
	copy(out, r.athletes)
	return out
}

// ByCategory returns a copy of the athletes in the given category,
// preserving overall store order.
func (r *Roster) ByCategory(category string) []models.Athlete {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Athlete
	for _, a := range r.athletes {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Categories returns the distinct category labels, sorted.
func (r *Roster) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, a := range r.athletes {
		if !seen[a.Category] {
			seen[a.Category] = true
			out = append(out, a.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Len reports the number of athlete records.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.athletes)
}

// UnlockFinal marks the category's final round as active. The flag is
// sticky: there is no way back short of Clear or BulkLoad.
func (r *Roster) UnlockFinal(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finals[category] = true
}

// FinalActive reports whether the category's final round has been unlocked.
func (r *Roster) FinalActive(category string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finals[category]
}
