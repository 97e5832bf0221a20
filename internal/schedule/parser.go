package schedule

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNotUnderstood signals that a phrase carried no recognizable date/time.
var ErrNotUnderstood = errors.New("schedule: date/time phrase not understood")

// timePattern matches "15:30", "15h30" and "15h".
var timePattern = regexp.MustCompile(`(\d{1,2})[:h](\d{2})?`)

const (
	keywordTomorrow      = "amanhã"
	keywordAfterTomorrow = "depois de amanhã"
	keywordFriday        = "sexta"
)

// Parser extracts an appointment instant from a free-text Portuguese phrase.
// The keyword set and precedence are a fixed conversational contract; callers
// must not expect full natural-language parsing.
type Parser struct {
	loc *time.Location
}

// NewParser builds a parser anchored to the shop's timezone.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse resolves a phrase like "amanhã às 14:00" or "sexta 10h30" relative to
// now. A bare time-of-day that already passed today means tomorrow at that
// time. Returns ErrNotUnderstood when no time token is present or the values
// are out of range.
func (p *Parser) Parse(phrase string, now time.Time) (time.Time, error) {
	text := strings.ToLower(strings.TrimSpace(phrase))
	now = now.In(p.loc)
	day := now
	dayShifted := true

	switch {
	case strings.Contains(text, keywordAfterTomorrow):
		day = day.AddDate(0, 0, 2)
	case strings.Contains(text, keywordTomorrow):
		day = day.AddDate(0, 0, 1)
	case strings.Contains(text, keywordFriday):
		daysToAdd := int(time.Friday - day.Weekday())
		if daysToAdd <= 0 {
			// "sexta" said on a Friday means next Friday, not today.
			daysToAdd += 7
		}
		day = day.AddDate(0, 0, daysToAdd)
	default:
		dayShifted = false
	}

	match := timePattern.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, ErrNotUnderstood
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, ErrNotUnderstood
	}
	minute := 0
	if match[2] != "" {
		if minute, err = strconv.Atoi(match[2]); err != nil {
			return time.Time{}, ErrNotUnderstood
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, ErrNotUnderstood
	}

	result := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.loc)
	if !dayShifted && !result.After(now) {
		result = result.AddDate(0, 0, 1)
	}
	return result, nil
}
