package main

import (
	"encoding/json"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func TestSessionLinesStartWithStats(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	faker := gofakeit.New(42)
	fleet := []*carrier{
		{callsign: "XZW-331", carrierID: 3700000001, name: "PEQUOD", fuel: 500},
		{callsign: "QQT-904", carrierID: 3700000002, name: "NOSTROMO", fuel: 800},
	}

	events = 20
	clock := time.Now().UTC()
	lines, err := sessionLines(fleet, rng, faker, &clock)
	if err != nil {
		t.Fatalf("sessionLines() error = %v", err)
	}
	if len(lines) != 22 {
		t.Fatalf("got %d lines, want 22", len(lines))
	}

	for i := 0; i < 2; i++ {
		var rec map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if rec["event"] != "CarrierStats" {
			t.Errorf("line %d event = %v, want CarrierStats", i, rec["event"])
		}
	}

	for i, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if rec["timestamp"] == "" || rec["event"] == "" {
			t.Errorf("line %d missing timestamp or event: %s", i, line)
		}
	}
}

func TestRandomCallsignFormat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pattern := regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)
	for i := 0; i < 50; i++ {
		cs := randomCallsign(rng)
		if !pattern.MatchString(cs) {
			t.Errorf("callsign %q does not match XXX-NNN", cs)
		}
	}
}

func TestInjectDuplicatesAddsVerbatimCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lines := []string{`{"event":"a"}`, `{"event":"b"}`}

	out := injectDuplicates(lines, rng, 3)
	if len(out) != 5 {
		t.Fatalf("got %d lines, want 5", len(out))
	}
	for _, dup := range out[2:] {
		if dup != lines[0] && dup != lines[1] {
			t.Errorf("duplicate %q is not a verbatim copy", dup)
		}
	}
}

func TestInjectTruncatedProducesInvalidJSON(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lines := []string{`{"timestamp":"2024-03-01T10:00:00Z","event":"CarrierJump","StarSystem":"Sol"}`}

	out := injectTruncated(lines, rng, 1)
	if len(out) != 2 {
		t.Fatalf("got %d lines, want 2", len(out))
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(out[1]), &v); err == nil {
		t.Error("truncated line unexpectedly parsed as JSON")
	}
}
