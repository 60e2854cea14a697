package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	longDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// IsToday reports whether a free-text publish date means "today" in the
// system's local timezone. Yad2 renders either the literal Hebrew word or a
// DD/MM/YY / DD/MM/YYYY date. Anything unparsable is not today.
func IsToday(dateStr string) bool {
	return isTodayAt(dateStr, time.Now())
}

func isTodayAt(dateStr string, now time.Time) bool {
	if dateStr == "" {
		return false
	}

	dateStr = strings.ToLower(NormalizeText(dateStr))

	if strings.Contains(dateStr, "היום") {
		return true
	}

	var day, month, year int
	if m := shortDateRe.FindStringSubmatch(dateStr); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		year = 2000 + yy
	} else if m := longDateRe.FindStringSubmatch(dateStr); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		return false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}

	y, mo, d := now.Date()
	return year == y && time.Month(month) == mo && day == d
}
