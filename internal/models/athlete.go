package models

// ThrowCount is the number of recorded attempts per athlete.
// Attempts 1-2 are the qualifying phase, attempts 3-5 the final round.
const ThrowCount = 5

// Athlete represents one competitor in one category.
type Athlete struct {
	// ID is derived from name and house at creation and never recomputed,
	// so renaming an athlete does not change their ID.
	ID string `json:"id"`

	// Category groups athletes into independent competitions
	// (e.g. "Junior Boys"). Free text, fixed after load.
	Category string `json:"category"`

	// House is the athlete's group or house label.
	House string `json:"house"`

	// Name is the display name. Editable during the event to fix
	// misspellings from the start list.
	Name string `json:"name"`

	// Throws holds the raw text of all five attempts: empty for not yet
	// thrown, "-" for a foul, otherwise a distance in metres.
	Throws [ThrowCount]string `json:"throws"`
}

// NewAthlete builds an athlete with empty throw slots and a derived ID.
func NewAthlete(category, house, name string) Athlete {
	return Athlete{
		ID:       DeriveID(name, house),
		Category: category,
		House:    house,
		Name:     name,
	}
}

// DeriveID builds the stable athlete identifier from name and house.
// Identical name+house pairs collide; callers keep both records.
func DeriveID(name, house string) string {
	return name + "_" + house
}

// StartRow is one row of an imported start list before it becomes an Athlete.
type StartRow struct {
	Category string
	House    string
	Name     string

	// Throws is populated when the source file carries T1..T5 columns,
	// e.g. when re-importing a previously exported results file.
	Throws [ThrowCount]string
}

// ResultRow is one ranked line of a category's results.
type ResultRow struct {
	Rank   int                `json:"rank"`
	Name   string             `json:"name"`
	House  string             `json:"house"`
	Best   float64            `json:"best"`
	Throws [ThrowCount]string `json:"throws"`
}

// FinalistEntry is one athlete qualified for the final round.
type FinalistEntry struct {
	// Rank is the athlete's 1-based leaderboard position at the time the
	// finalists were computed, not a frozen qualifying rank.
	Rank    int     `json:"rank"`
	Athlete Athlete `json:"athlete"`
	Best    float64 `json:"best"`
}
