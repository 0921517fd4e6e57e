// Package timeline aggregates game activities and character birthdays into
// one ascending timeline of events.
package timeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/text/width"

	"github.com/millennium-tools/banav/internal/platform/dates"
	"github.com/millennium-tools/banav/internal/platform/format"
)

// Server identifies the game region an event applies to.
type Server int

const (
	ServerUnknown Server = iota - 1
	ServerJP
	ServerGlobal
	ServerCN
	ServerAll
)

// serverNames is the fixed table the activity feed uses for regions, in
// Server order.
var serverNames = []string{"日服", "国际服", "国服", "所有区服"}

// ResolveServer maps a feed region name to its Server by exact match.
// Unmatched names resolve to ServerUnknown rather than failing.
func ResolveServer(name string) Server {
	for i, candidate := range serverNames {
		if candidate == name {
			return Server(i)
		}
	}
	return ServerUnknown
}

func (s Server) String() string {
	if s < ServerJP || int(s) >= len(serverNames) {
		return "unknown"
	}
	return serverNames[s]
}

// Event is one timeline item. Start and End are Unix milliseconds with
// Start <= End; Current reports whether the event has begun.
type Event struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Server      Server `json:"server"`
	Current     bool   `json:"current"`
}

// fullDayMillis spans a birthday event over its whole day, ending at
// 23:59:59.999.
const fullDayMillis = 86399999

// birthdayNameTemplate renders "<character> 的生日".
const birthdayNameTemplate = "{0} 的生日"

// Aggregator builds the merged timeline from the activity feed and the
// character roster.
type Aggregator struct {
	activities ActivityFeed
	roster     RosterFeed
	now        func() time.Time
	logger     *log.Logger
}

// NewAggregator returns an aggregator over the given feeds. A nil clock
// defaults to time.Now; a nil logger defaults to log.Default.
func NewAggregator(activities ActivityFeed, roster RosterFeed, now func() time.Time, logger *log.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{activities: activities, roster: roster, now: now, logger: logger}
}

// Build fetches both sources and returns the merged timeline sorted by start
// time ascending. Either fetch failing fails the whole build; no partial
// timeline is returned.
func (a *Aggregator) Build(ctx context.Context) ([]Event, error) {
	ctx, span := otel.Tracer("nav/timeline").Start(ctx, "timeline.Build")
	defer span.End()

	now := a.now()

	activities, err := a.activities.Activities(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	roster, err := a.roster.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	nowMillis := now.UnixMilli()
	events := make([]Event, 0, len(activities))
	for _, record := range activities {
		start := record.BeginAt * 1000
		events = append(events, Event{
			Name:        record.Title,
			Description: record.Description,
			Start:       start,
			End:         record.EndAt * 1000,
			Server:      ResolveServer(record.PubArea),
			Current:     start <= nowMillis,
		})
	}
	events = append(events, a.birthdays(roster, now)...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})
	return events, nil
}

// birthdays emits one full-day event per roster character whose birthday's
// next occurrence falls inside the current week window. Variant entries,
// whose names carry a parenthetical qualifier, are skipped.
func (a *Aggregator) birthdays(roster []StudentRecord, now time.Time) []Event {
	weekStart, weekEnd := dates.WeekWindow(now)
	nowMillis := now.UnixMilli()

	var events []Event
	for _, record := range roster {
		if hasVariantQualifier(record.Name) {
			continue
		}
		occurrence, err := dates.NextOccurrence(record.BirthDay, now)
		if err != nil {
			a.logger.Printf("nav/timeline: birthday for %q: %v", record.Name, err)
			continue
		}
		if occurrence.Before(weekStart) || !occurrence.Before(weekEnd) {
			continue
		}
		start := occurrence.UnixMilli()
		events = append(events, Event{
			Name:        format.Format(birthdayNameTemplate, record.Name),
			Description: record.FamilyName + " " + record.PersonalName,
			Start:       start,
			End:         start + fullDayMillis,
			Server:      ServerAll,
			Current:     start <= nowMillis,
		})
	}
	return events
}

// hasVariantQualifier reports whether a roster name denotes an alternate
// outfit entry rather than a canonical character. Full-width parentheses are
// folded so 「ホシノ（バニーガール）」 matches the same as "Hoshino (Bunny)".
func hasVariantQualifier(name string) bool {
	return strings.Contains(width.Fold.String(name), "(")
}
