package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
)

var weekdayAliases = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// WeekdayName returns the lowercase name used in habit frequency sets.
func WeekdayName(wd time.Weekday) string {
	return constants.Weekdays[wd]
}

// ParseWeekday accepts a full name, a common abbreviation or a number (0=Sunday, 6=Saturday).
// Matching is case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	part := strings.TrimSpace(strings.ToLower(s))
	if wd, ok := weekdayAliases[part]; ok {
		return wd, nil
	}
	num, err := strconv.Atoi(part)
	if err == nil && num >= 0 && num <= 6 {
		return time.Weekday(num), nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// NormalizeFrequency parses weekday tokens and returns canonical names, deduplicated and
// ordered Sunday first. The shorthands "daily", "weekdays" and "weekends" expand in place.
func NormalizeFrequency(tokens []string) ([]string, error) {
	seen := make(map[time.Weekday]bool, 7)
	for _, tok := range tokens {
		tok = strings.TrimSpace(strings.ToLower(tok))
		if tok == "" {
			continue
		}
		switch tok {
		case "daily", "everyday":
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				seen[wd] = true
			}
			continue
		case "weekdays":
			for wd := time.Monday; wd <= time.Friday; wd++ {
				seen[wd] = true
			}
			continue
		case "weekends":
			seen[time.Saturday] = true
			seen[time.Sunday] = true
			continue
		}
		wd, err := ParseWeekday(tok)
		if err != nil {
			return nil, err
		}
		seen[wd] = true
	}

	days := make([]int, 0, len(seen))
	for wd := range seen {
		days = append(days, int(wd))
	}
	sort.Ints(days)

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = constants.Weekdays[d]
	}
	return names, nil
}

// ParseWeekdays parses a comma-separated list of weekdays into a frequency set.
func ParseWeekdays(s string) ([]string, error) {
	return NormalizeFrequency(strings.Split(s, ","))
}

// FormatFrequency renders a frequency set for display.
func FormatFrequency(frequency []string) string {
	normalized, err := NormalizeFrequency(frequency)
	if err != nil || len(normalized) == 0 {
		return "never"
	}
	if len(normalized) == 7 {
		return "daily"
	}
	days := make([]string, len(normalized))
	for i, name := range normalized {
		days[i] = name[:3]
	}
	return strings.Join(days, ",")
}
