package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clockRe    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	meridiemRe = regexp.MustCompile(`(?i)^(\d{1,2})(:(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)$`)
	phoneRe    = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	timeRe     = regexp.MustCompile(`(?i)^\d{1,2}(:\d{2})?\s*(AM|PM)$`)
)

// NormalizeTime converts free-form time expressions to the canonical
// "H:MM AM/PM" representation. Unrecognized input is returned unchanged;
// validation downstream decides whether to re-prompt.
func NormalizeTime(raw string) string {
	if raw == "" {
		return raw
	}

	// 24-hour-ish "H:MM" with no meridiem.
	if clockRe.MatchString(raw) {
		parts := strings.SplitN(raw, ":", 2)
		hour, _ := strconv.Atoi(parts[0])
		minute, _ := strconv.Atoi(parts[1])
		period := "AM"
		if hour >= 12 {
			period = "PM"
		}
		hour = hour % 12
		if hour == 0 {
			hour = 12
		}
		return fmt.Sprintf("%d:%02d %s", hour, minute, period)
	}

	// Already carries a meridiem, possibly as "a.m."/"p.m." and without minutes.
	if m := meridiemRe.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := m[3]
		if minute == "" {
			minute = "00"
		}
		period := "AM"
		if strings.HasPrefix(strings.ToLower(m[4]), "p") {
			period = "PM"
		}
		return fmt.Sprintf("%d:%s %s", hour, minute, period)
	}

	return raw
}

// ValidPhone reports whether phone matches the required 123-456-7890 format.
func ValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// ValidTime reports whether t matches "H AM/PM" or "H:MM AM/PM", case-insensitive.
func ValidTime(t string) bool {
	return timeRe.MatchString(t)
}
