package domain

import "time"

const DateLayout = "2006-01-02"

// DateOf drops the wall-clock part of t, keeping its location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns local midnight of the Monday that opens the week containing now.
func WeekStart(now time.Time) time.Time {
	day := int(now.Weekday())

	offset := 1 - day
	switch day {
	case int(time.Monday):
		offset = 0
	case int(time.Sunday):
		offset = -6
	}

	return DateOf(now).AddDate(0, 0, offset)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a YYYY-MM-DD value as a local date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
