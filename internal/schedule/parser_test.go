package schedule

import (
	"errors"
	"testing"
	"time"
)

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}()

// refNow is a Monday at 12:00 local time.
func refNow() time.Time {
	return time.Date(2024, time.July, 1, 12, 0, 0, 0, saoPaulo)
}

func TestParseBareTimeStillAhead(t *testing.T) {
	p := NewParser(saoPaulo)
	got, err := p.Parse("pode ser 15:30?", refNow())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2024, time.July, 1, 15, 30, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseBareTimeAlreadyPassedRollsToTomorrow(t *testing.T) {
	p := NewParser(saoPaulo)
	got, err := p.Parse("10:00", refNow())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2024, time.July, 2, 10, 0, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseTomorrow(t *testing.T) {
	p := NewParser(saoPaulo)
	got, err := p.Parse("amanhã às 10:00", refNow())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2024, time.July, 2, 10, 0, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseDayAfterTomorrowWinsOverTomorrow(t *testing.T) {
	p := NewParser(saoPaulo)
	got, err := p.Parse("depois de amanhã 9h", refNow())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2024, time.July, 3, 9, 0, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseFridayFromMonday(t *testing.T) {
	p := NewParser(saoPaulo)
	got, err := p.Parse("sexta às 10:00", refNow())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	// Monday + 4 days.
	want := time.Date(2024, time.July, 5, 10, 0, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseFridayOnFridayMeansNextFriday(t *testing.T) {
	p := NewParser(saoPaulo)
	friday := time.Date(2024, time.July, 5, 8, 0, 0, 0, saoPaulo)
	got, err := p.Parse("sexta 10:00", friday)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2024, time.July, 12, 10, 0, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseHourLetterFormats(t *testing.T) {
	p := NewParser(saoPaulo)
	cases := map[string]time.Time{
		"amanhã 14h":   time.Date(2024, time.July, 2, 14, 0, 0, 0, saoPaulo),
		"amanhã 14h45": time.Date(2024, time.July, 2, 14, 45, 0, 0, saoPaulo),
	}
	for phrase, want := range cases {
		got, err := p.Parse(phrase, refNow())
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", phrase, err)
		}
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %s, want %s", phrase, got, want)
		}
	}
}

func TestParseNotUnderstood(t *testing.T) {
	p := NewParser(saoPaulo)
	for _, phrase := range []string{"quero cortar o cabelo", "amanhã de manhã", "25:00", "10:75"} {
		if _, err := p.Parse(phrase, refNow()); !errors.Is(err, ErrNotUnderstood) {
			t.Fatalf("Parse(%q) error = %v, want ErrNotUnderstood", phrase, err)
		}
	}
}
