package analysis

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/naming"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoMatches         = errors.New("no matches found")
	ErrNoFilteredMatches = errors.New("no matches found with these filters")
)

// Filter selects matches by the unit a player fielded. Zero values are inactive.
type Filter struct {
	Champion  string   `validate:"omitempty,min=1"`
	Items     []string `validate:"dive,required"`
	StarLevel int      `validate:"gte=0,lte=4"`
}

var validate = validator.New()

// Validate checks the filter values
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	return nil
}

// MatchedUnit is the first unit of a match that satisfied the filter
type MatchedUnit struct {
	Champion    string
	CharacterID string
	Items       []string // mapped names, in slot order
	Stars       int
}

// FilteredMatch is a match annotated with its matching unit
type FilteredMatch struct {
	models.PlayerMatchView
	MatchedUnit MatchedUnit
}

// Analyzer turns reconstructed matches into aggregates using a name table
type Analyzer struct {
	names *naming.Table
}

// New creates an analyzer. A nil table uses the built-in names.
func New(names *naming.Table) *Analyzer {
	if names == nil {
		names = naming.DefaultTable()
	}
	return &Analyzer{names: names}
}

// Names returns the table used for display names
func (a *Analyzer) Names() *naming.Table {
	return a.names
}

// FilterMatches keeps matches with at least one unit satisfying every active
// predicate. The first such unit is recorded; each match appears at most once.
func (a *Analyzer) FilterMatches(matches []models.PlayerMatchView, f Filter) []FilteredMatch {
	var out []FilteredMatch
	for _, m := range matches {
		for _, unit := range m.Units {
			matched, ok := a.matchUnit(unit, f)
			if !ok {
				continue
			}
			out = append(out, FilteredMatch{PlayerMatchView: m, MatchedUnit: matched})
			break
		}
	}
	return out
}

func (a *Analyzer) matchUnit(unit models.Unit, f Filter) (MatchedUnit, bool) {
	champion := a.names.Champion(unit.CharacterID)
	if f.Champion != "" && champion != f.Champion {
		return MatchedUnit{}, false
	}

	items := a.names.ItemNames(unit.ItemNames)
	for _, want := range f.Items {
		if !slices.Contains(items, want) {
			return MatchedUnit{}, false
		}
	}

	if f.StarLevel != 0 && unit.Stars() != f.StarLevel {
		return MatchedUnit{}, false
	}

	return MatchedUnit{
		Champion:    champion,
		CharacterID: unit.CharacterID,
		Items:       items,
		Stars:       unit.Stars(),
	}, true
}

// ExplorerResult is the outcome of an explorer query
type ExplorerResult struct {
	Filter  Filter
	Matches []FilteredMatch
	Stats   PlacementStats
}

// ExplorerQuery filters a player's matches and summarizes the placements of
// the accepted ones.
func (a *Analyzer) ExplorerQuery(matches []models.PlayerMatchView, f Filter) (*ExplorerResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}

	filtered := a.FilterMatches(matches, f)
	if len(filtered) == 0 {
		return nil, ErrNoFilteredMatches
	}

	placements := make([]int, len(filtered))
	for i, m := range filtered {
		placements[i] = m.Placement
	}

	return &ExplorerResult{
		Filter:  f,
		Matches: filtered,
		Stats:   ComputePlacementStats(placements),
	}, nil
}
