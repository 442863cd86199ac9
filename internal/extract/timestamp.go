package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var thaiMonths = map[string]time.Month{
	"มกราคม": time.January, "ม.ค.": time.January,
	"กุมภาพันธ์": time.February, "ก.พ.": time.February,
	"มีนาคม": time.March, "มี.ค.": time.March,
	"เมษายน": time.April, "เม.ย.": time.April,
	"พฤษภาคม": time.May, "พ.ค.": time.May,
	"มิถุนายน": time.June, "มิ.ย.": time.June,
	"กรกฎาคม": time.July, "ก.ค.": time.July,
	"สิงหาคม": time.August, "ส.ค.": time.August,
	"กันยายน": time.September, "ก.ย.": time.September,
	"ตุลาคม": time.October, "ต.ค.": time.October,
	"พฤศจิกายน": time.November, "พ.ย.": time.November,
	"ธันวาคม": time.December, "ธ.ค.": time.December,
}

var (
	numericStamp = regexp.MustCompile(`^(\d{2})[/-](\d{2})[/-](\d{4}) (\d{2}):(\d{2})$`)
	thaiStamp    = regexp.MustCompile(`^(\d{1,2}) ([ก-๙.]+) (\d{2,4}),? (\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// ParseTimestamp converts a timestamp captured by the timestamp rules into
// a time in loc. Buddhist-era years, including the two-digit short form
// used on transfer slips, are converted to the Gregorian calendar.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}

	if m := numericStamp.FindStringSubmatch(s); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), gregorianYear(m[3])
		return build(year, time.Month(month), day, atoi(m[4]), atoi(m[5]), 0, loc)
	}

	if m := thaiStamp.FindStringSubmatch(s); m != nil {
		month, ok := thaiMonths[m[2]]
		if !ok {
			return time.Time{}, false
		}
		sec := 0
		if m[6] != "" {
			sec = atoi(m[6])
		}
		return build(gregorianYear(m[3]), month, atoi(m[1]), atoi(m[4]), atoi(m[5]), sec, loc)
	}

	return time.Time{}, false
}

func gregorianYear(s string) int {
	y := atoi(s)
	switch {
	case len(s) == 2:
		return 2500 + y - 543
	case y > 2400:
		return y - 543
	}
	return y
}

// build rejects dates that time.Date would silently normalize.
func build(year int, month time.Month, day, hour, min, sec int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, min, sec, 0, loc)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
