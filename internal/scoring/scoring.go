// Package scoring implements the pure ranking logic: throw parsing,
// best-throw selection, leaderboards, and the top-five cut for the final
// round. Nothing in this package mutates its inputs or touches storage.
package scoring

import (
	"sort"
	"strconv"
	"strings"

	"github.com/amahle/discus-manager/internal/models"
)

// FinalRoundSize is how many athletes advance to the final round.
const FinalRoundSize = 5

// ParseThrow converts raw throw text into a distance. Empty text and "-"
// mark fouls or unattempted throws; malformed text is treated the same way.
// All of these come back as 0.0 rather than an error, so a mistyped entry
// can never break ranking mid-event. Parseable values pass through
// unchanged, with no range check.
func ParseThrow(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// BestThrow returns the best distance across all of an athlete's attempts.
func BestThrow(a models.Athlete) float64 {
	var best float64
	for _, t := range a.Throws {
		if v := ParseThrow(t); v > best {
			best = v
		}
	}
	return best
}

// Leaderboard returns the athletes sorted by best throw, descending.
// The sort is stable: athletes with equal best throws keep their relative
// input order, so repeated calls never reshuffle ties.
func Leaderboard(athletes []models.Athlete) []models.Athlete {
	ranked := make([]models.Athlete, len(athletes))
	copy(ranked, athletes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return BestThrow(ranked[i]) > BestThrow(ranked[j])
	})
	return ranked
}

// SelectFinalists computes the cut for the final round: the top
// min(FinalRoundSize, len(athletes)) of the leaderboard, each carrying its
// 1-based leaderboard rank. Entries come back in reverse rank order — the
// lowest qualifying rank throws first and the leader throws last, per
// competition convention.
//
// The cut is recomputed from the current athletes on every call; ranks are
// never frozen at the moment the final round was unlocked.
func SelectFinalists(athletes []models.Athlete) []models.FinalistEntry {
	ranked := Leaderboard(athletes)

	n := len(ranked)
	if n > FinalRoundSize {
		n = FinalRoundSize
	}

	finalists := make([]models.FinalistEntry, 0, n)
	for i := n - 1; i >= 0; i-- {
		finalists = append(finalists, models.FinalistEntry{
			Rank:    i + 1,
			Athlete: ranked[i],
			Best:    BestThrow(ranked[i]),
		})
	}
	return finalists
}

// Results builds the ranked result rows for a category's athletes.
func Results(athletes []models.Athlete) []models.ResultRow {
	ranked := Leaderboard(athletes)

	rows := make([]models.ResultRow, len(ranked))
	for i, a := range ranked {
		rows[i] = models.ResultRow{
			Rank:   i + 1,
			Name:   a.Name,
			House:  a.House,
			Best:   BestThrow(a),
			Throws: a.Throws,
		}
	}
	return rows
}
