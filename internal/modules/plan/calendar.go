// README: iCalendar (RFC 5545) export of a plan; one event per scheduled activity.
package plan

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"wayfarer/internal/types"
)

const (
	// icsFloating is a local date-time without zone: slots are destination wall-clock times.
	icsFloating      = "20060102T150405"
	defaultEventTime = "09:00"
	eventDuration    = time.Hour
)

// Calendar renders p as an .ics document. Event UIDs are derived from the plan
// id, so exporting the same plan twice yields the same events.
func Calendar(p *Plan) []byte {
	cal := ics.NewCalendarFor("wayfarer")
	cal.SetProductId("-//wayfarer//Trip Planner//EN")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(ics.ToText("Trip to " + p.Request.Location))

	for _, day := range p.Itinerary.Days {
		for i, a := range day.Activities {
			start := eventStart(day.Date, a.Time)
			uid := uuid.NewSHA1(p.ID, []byte(fmt.Sprintf("%s/%d", day.Date.Format(types.DateLayout), i)))

			event := cal.AddEvent(uid.String() + "@wayfarer")
			event.SetDtStampTime(p.GeneratedAt)
			event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsFloating))
			event.SetProperty(ics.ComponentPropertyDtEnd, start.Add(eventDuration).Format(icsFloating))
			event.SetSummary(a.Title)
			event.SetDescription(describe(a))
			event.SetLocation(p.Request.Location)
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return []byte(cal.Serialize())
}

// eventStart combines the day with an HH:MM slot; unparsable slots start at 09:00.
func eventStart(date time.Time, slot string) time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(slot))
	if err != nil {
		t, _ = time.Parse("15:04", defaultEventTime)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func describe(a types.Activity) string {
	desc := fmt.Sprintf("Estimated cost: %.2f", a.EstimatedCost)
	if a.Provenance == types.ProvenanceFallback {
		desc += "\nSuggested from sample data; check before visiting."
	}
	return desc
}
