package web

import (
	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/selection"
)

type dayCell struct {
	Day       int
	Key       string
	Available bool
	Selected  bool
}

type slotCell struct {
	StartTime string
	EndTime   string
	Available bool
	Selected  bool
}

type calendarPage struct {
	Title      string
	Username   string
	MonthLabel string
	PrevKey    string
	NextKey    string
	Weekdays   []string
	Blanks     []int
	Cells      []dayCell
	DateLabel  string
	DateKey    string
	Slots      []slotCell
	CanConfirm bool
	Flash      string
	FlashOK    bool
}

var weekdays = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// buildCalendarPage turns a machine snapshot into template data: one
// cell per day of the displayed month, enabled only when the day's date
// key has an availability record, plus the selected day's slot list.
func buildCalendarPage(v selection.View, flash string, flashOK bool) calendarPage {
	month := booking.MonthStart(v.Month)
	p := calendarPage{
		Title:      "Select a Date & Time",
		Username:   v.User.Username,
		MonthLabel: month.Format("January 2006"),
		PrevKey:    booking.MonthKey(booking.PrevMonth(month)),
		NextKey:    booking.MonthKey(booking.NextMonth(month)),
		Weekdays:   weekdays,
		Flash:      flash,
		FlashOK:    flashOK,
	}
	for i := 0; i < int(month.Weekday()); i++ {
		p.Blanks = append(p.Blanks, i)
	}

	selKey := ""
	if v.HasSelection() {
		selKey = booking.DateKey(v.SelectedDate)
	}
	for d := month; d.Month() == month.Month(); d = d.AddDate(0, 0, 1) {
		key := booking.DateKey(d)
		_, avail := v.Index[key]
		p.Cells = append(p.Cells, dayCell{
			Day:       d.Day(),
			Key:       key,
			Available: avail,
			Selected:  key == selKey,
		})
	}

	if selKey != "" {
		p.DateKey = selKey
		p.DateLabel = v.SelectedDate.Format("Monday, January 2")
		if rec, ok := v.Index[selKey]; ok {
			for _, s := range rec.TimeSlots {
				p.Slots = append(p.Slots, slotCell{
					StartTime: s.StartTime,
					EndTime:   s.EndTime,
					Available: s.IsAvailable,
					Selected:  v.SelectedSlot != nil && v.SelectedSlot.StartTime == s.StartTime,
				})
			}
		}
		p.CanConfirm = v.SelectedSlot != nil
	}
	return p
}
