package voyage

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
)

const DefaultCutoffLead = time.Hour + 30*time.Minute

// CutoffFilter hides bookable offers on voyages that depart within Lead of now.
type CutoffFilter struct {
	Lead     time.Duration
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewCutoffFilter(lead time.Duration, loc *time.Location, logger *slog.Logger) *CutoffFilter {
	if lead <= 0 {
		lead = DefaultCutoffLead
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CutoffFilter{Lead: lead, Location: loc, Now: time.Now, Logger: logger}
}

// CutoffAt returns the instant after which departure can no longer be booked.
// ok is false when the timestamp cannot be parsed.
func (f *CutoffFilter) CutoffAt(departureDateTime string) (cutoff time.Time, ok bool) {
	dep, err := ParseDeparture(departureDateTime, f.Location)
	if err != nil {
		return time.Time{}, false
	}
	return dep.Add(-f.Lead), true
}

// IsCutOff reports whether the voyage is past its cutoff. Unparseable
// timestamps are treated as still bookable.
func (f *CutoffFilter) IsCutOff(departureDateTime string) bool {
	cutoff, ok := f.CutoffAt(departureDateTime)
	return ok && f.Now().After(cutoff)
}

// SnapshotCutOff is IsCutOff for a selected voyage, which may carry only
// separate date and clock fields.
func (f *CutoffFilter) SnapshotCutOff(s *domain.VoyageSnapshot) bool {
	dep, err := DepartureOf(s, f.Location)
	if err != nil {
		f.Logger.Warn("cutoff check skipped, departure not parseable", slog.String("error", err.Error()))
		return false
	}
	return f.Now().After(dep.Add(-f.Lead))
}

// Apply returns a copy of voyages with cut-off entries emptied and annotated.
func (f *CutoffFilter) Apply(voyages []domain.VoyageResult) []domain.VoyageResult {
	out := make([]domain.VoyageResult, 0, len(voyages))
	now := f.Now()
	for _, v := range voyages {
		item := v.Clone()
		cutoff, ok := f.CutoffAt(v.Voyage.DepartureDateTime)
		switch {
		case !ok:
			f.Logger.Warn("cutoff check skipped, departure not parseable",
				slog.String("departure", v.Voyage.DepartureDateTime),
			)
		case now.After(cutoff):
			item.Accommodations = []domain.Accommodation{}
			item.CutoffMessage = CutoffMessage(cutoff.In(f.Location))
		}
		out = append(out, item)
	}
	return out
}

// CutoffMessage renders e.g. "Cut Off for this voyage was at 10/22/2025 12:30 pm".
func CutoffMessage(cutoff time.Time) string {
	stamp := cutoff.Format("01/02/2006 3:04 PM")
	stamp = strings.NewReplacer("AM", "am", "PM", "pm").Replace(stamp)
	return "Cut Off for this voyage was at " + stamp
}
