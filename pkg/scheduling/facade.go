package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"golang.org/x/sync/errgroup"
)

// ErrNoHistory is returned by a ReliabilityProvider that has nothing to
// aggregate for a staff member. The scorer then uses its default ratio.
var ErrNoHistory = errors.New("no reliability history")

// analysisWindowDays bounds every load: compliance and workload look back a
// week, the rest check needs the previous day.
const analysisWindowDays = 7

// RosterStore loads a consistent snapshot already filtered to restaurant
type RosterStore interface {
	LoadScope(ctx context.Context, restaurant string, dateRange models.DateRange) (*models.Scope, error)
}

// ReliabilityProvider returns a completed-as-scheduled ratio in [0,1]
type ReliabilityProvider interface {
	GetReliability(ctx context.Context, staffID string, asOf time.Time) (float64, error)
}

// Analysis is the result of AnalyzeSchedule
type Analysis struct {
	RestaurantID  string                       `json:"restaurant_id"`
	Date          string                       `json:"date"`
	Conflicts     []models.Conflict            `json:"conflicts"`
	Violations    []models.ComplianceViolation `json:"violations"`
	Balances      []models.StaffBalance        `json:"balances"`
	FairnessScore float64                      `json:"fairness_score"`
	Notes         []models.Note                `json:"notes"`

	// sizes of the loaded snapshot, used for usage accounting
	ShiftCount int `json:"shift_count"`
	StaffCount int `json:"staff_count"`
}

// SuggestionSet is the result of SuggestOpenAssignments
type SuggestionSet struct {
	RestaurantID string                                   `json:"restaurant_id"`
	Date         string                                   `json:"date"`
	Requirements []scheduler.RequirementSuggestions       `json:"requirements"`
	Suggestions  map[string][]models.AssignmentSuggestion `json:"suggestions"`
	Notes        []models.Note                            `json:"notes"`
	ShiftCount   int                                      `json:"shift_count"`
	StaffCount   int                                      `json:"staff_count"`
}

// Facade is the only entry point callers use. It loads one snapshot per
// call and hands it to the pure analysis functions.
type Facade struct {
	Store       RosterStore
	Reliability ReliabilityProvider
	Weights     *scheduler.ScoringWeights
	Rules       []scheduler.ConflictRule
	Logger      *log.Logger

	// ReliabilityConcurrency caps parallel provider lookups
	ReliabilityConcurrency int
}

// NewFacade wires a store and an optional reliability provider. A nil
// provider makes every staff member fall back to the default ratio.
func NewFacade(store RosterStore, reliability ReliabilityProvider, lg *log.Logger) *Facade {
	return &Facade{Store: store, Reliability: reliability, Logger: lg}
}

func (f *Facade) lg() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

func (f *Facade) load(ctx context.Context, restaurant string, date time.Time) (*models.Scope, error) {
	if restaurant == "" {
		return nil, &scheduler.ValidationError{Field: "restaurant", Reason: "is required"}
	}
	if date.IsZero() {
		return nil, &scheduler.ValidationError{Field: "date", Reason: "is required"}
	}
	if f.Store == nil {
		return nil, fmt.Errorf("%w: no store configured", scheduler.ErrStoreUnavailable)
	}

	rng := models.TrailingWindow(date, analysisWindowDays)
	scope, err := f.Store.LoadScope(ctx, restaurant, rng)
	if err != nil {
		f.lg().Printf("LoadScope %s %s failed: %v", restaurant, rng, err)
		if errors.Is(err, scheduler.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", scheduler.ErrStoreUnavailable, err)
	}
	if scope == nil {
		return nil, fmt.Errorf("%w: empty scope for %s", scheduler.ErrStoreUnavailable, restaurant)
	}
	if scope.RestaurantID == "" {
		scope.RestaurantID = restaurant
	}
	if err := scheduler.ValidateScope(scope); err != nil {
		return nil, err
	}
	return scope, nil
}

// AnalyzeSchedule runs conflict detection, the compliance sweep and the
// workload balance for restaurant on date. The three analyses share one
// snapshot and run concurrently.
func (f *Facade) AnalyzeSchedule(ctx context.Context, restaurant string, date time.Time) (*Analysis, error) {
	date = models.DateOnly(date)
	scope, err := f.load(ctx, restaurant, date)
	if err != nil {
		return nil, err
	}

	rules := f.Rules
	if len(rules) == 0 {
		rules = scheduler.DefaultConflictRules()
	}

	var (
		conflicts  []models.Conflict
		notes      []models.Note
		violations []models.ComplianceViolation
		balances   []models.StaffBalance
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		conflicts, notes, err = scheduler.DetectConflictsWith(rules, restaurant, date, scope.ShiftRecords, scope.StaffProfiles, scope.TimeOffRequests, scope.SkillAssignments)
		return err
	})
	g.Go(func() error {
		var err error
		violations, err = scheduler.CheckRosterCompliance(restaurant, date, scope.ShiftRecords, scope.StaffProfiles)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = scheduler.CalculateBalance(restaurant, models.TrailingWindow(date, analysisWindowDays), scope.ShiftRecords, scope.StaffProfiles)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logNotes(restaurant, notes)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	if violations == nil {
		violations = []models.ComplianceViolation{}
	}
	return &Analysis{
		RestaurantID:  restaurant,
		Date:          date.Format(models.DateLayout),
		Conflicts:     conflicts,
		Violations:    violations,
		Balances:      balances,
		FairnessScore: scheduler.FairnessScore(balances),
		Notes:         sortNotes(notes),
		ShiftCount:    len(scope.ShiftRecords),
		StaffCount:    len(scope.StaffProfiles),
	}, nil
}

// SuggestOpenAssignments ranks candidates for every open shift of
// restaurant on date, keyed by requirement key.
func (f *Facade) SuggestOpenAssignments(ctx context.Context, restaurant string, date time.Time) (*SuggestionSet, error) {
	date = models.DateOnly(date)
	scope, err := f.load(ctx, restaurant, date)
	if err != nil {
		return nil, err
	}

	reliability, err := f.reliability(ctx, restaurant, date, scope.StaffProfiles)
	if err != nil {
		return nil, err
	}

	ranked, notes, err := scheduler.SuggestAssignments(scheduler.ScoringInput{
		Restaurant:       restaurant,
		Date:             date,
		Requirements:     scheduler.BuildRequirements(restaurant, date, scope.ShiftRecords),
		StaffProfiles:    scope.StaffProfiles,
		Availability:     scope.AvailabilityWindows,
		SkillAssignments: scope.SkillAssignments,
		TimeOff:          scope.TimeOffRequests,
		Shifts:           scope.ShiftRecords,
		Reliability:      reliability,
		ShiftCounts:      scheduler.CountRecentShifts(scope.ShiftRecords, date),
		Weights:          f.Weights,
	})
	if err != nil {
		return nil, err
	}

	f.logNotes(restaurant, notes)
	byKey := make(map[string][]models.AssignmentSuggestion, len(ranked))
	for _, r := range ranked {
		if r.Skipped {
			continue
		}
		byKey[r.Requirement.Key] = r.Suggestions
	}
	return &SuggestionSet{
		RestaurantID: restaurant,
		Date:         date.Format(models.DateLayout),
		Requirements: ranked,
		Suggestions:  byKey,
		Notes:        sortNotes(notes),
		ShiftCount:   len(scope.ShiftRecords),
		StaffCount:   len(scope.StaffProfiles),
	}, nil
}

// reliability pre-fetches ratios for every staff member who could be a
// candidate, so scoring never re-queries mid-evaluation.
func (f *Facade) reliability(ctx context.Context, restaurant string, asOf time.Time, profiles []models.StaffProfile) (map[string]float64, error) {
	out := make(map[string]float64)
	if f.Reliability == nil {
		return out, nil
	}

	limit := f.ReliabilityConcurrency
	if limit <= 0 {
		limit = 8
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range profiles {
		p := &profiles[i]
		if !p.WorksAt(restaurant) || !p.ActiveOn(asOf) {
			continue
		}
		g.Go(func() error {
			ratio, err := f.Reliability.GetReliability(gctx, p.ID, asOf)
			if errors.Is(err, ErrNoHistory) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: reliability for %s: %w", scheduler.ErrStoreUnavailable, p.ID, err)
			}
			mu.Lock()
			out[p.ID] = ratio
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.lg().Printf("reliability lookup failed: %v", err)
		return nil, err
	}
	return out, nil
}

func (f *Facade) logNotes(restaurant string, notes []models.Note) {
	for _, n := range notes {
		f.lg().Printf("%s: %v", restaurant, scheduler.NoteError(n))
	}
}

func sortNotes(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Subject != notes[j].Subject {
			return notes[i].Subject < notes[j].Subject
		}
		return notes[i].Message < notes[j].Message
	})
	return notes
}
