// Package reward picks and remembers the photo a habit unlocks on a given day.
package reward

import "unicode/utf16"

// Hash folds s into seed with h = h*31 + c over UTF-16 code units, wrapping at 32 bits,
// and returns the absolute value. It is not cryptographic.
func Hash(seed int64, s string) int64 {
	h := int32(seed)
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// DateSeed hashes an ISO calendar day such as "2025-03-15".
func DateSeed(day string) int64 {
	return Hash(0, day)
}

// HabitSeed extends a day seed with the habit id. The result is stable for one habit on
// one day and changes with either.
func HabitSeed(habitID string, dateSeed int64) int64 {
	return Hash(dateSeed, habitID)
}

// SeedFor is HabitSeed(habitID, DateSeed(day)).
func SeedFor(habitID, day string) int64 {
	return HabitSeed(habitID, DateSeed(day))
}
