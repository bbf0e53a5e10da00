package model

import (
	"errors"
	"testing"
	"time"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func mustRate(t *testing.T, kind RateKind, rate float64, eff time.Time, createdAt time.Time) RateRecord {
	t.Helper()
	rec, err := NewRateRecord(kind, rate, eff, nil, "", "tester", createdAt)
	if err != nil {
		t.Fatalf("new rate record: %v", err)
	}
	return rec
}

func TestRateRecordIsEffective(t *testing.T) {
	end := day0.AddDate(0, 1, 0)
	rec := RateRecord{EffectiveDate: day0, EndDate: &end}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", day0.Add(-time.Second), false},
		{"at start", day0, true},
		{"inside", day0.AddDate(0, 0, 10), true},
		{"at end is exclusive", end, false},
		{"after end", end.AddDate(0, 0, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rec.IsEffective(tc.at); got != tc.want {
				t.Fatalf("IsEffective(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}

	open := RateRecord{EffectiveDate: day0}
	if !open.IsEffective(day0.AddDate(10, 0, 0)) {
		t.Fatalf("expected open-ended record to stay effective")
	}
}

func TestCurrentRatePicksLatestEffective(t *testing.T) {
	records := []RateRecord{
		mustRate(t, RateKindPublished, 100, day0, day0),
		mustRate(t, RateKindPublished, 120, day0.AddDate(0, 6, 0), day0),
		mustRate(t, RateKindDefaultBill, 300, day0.AddDate(0, 1, 0), day0),
		mustRate(t, RateKindPublished, 150, day0.AddDate(1, 0, 0), day0),
	}

	got, ok := CurrentRate(records, RateKindPublished, day0.AddDate(0, 7, 0))
	if !ok || got.Rate != 120 {
		t.Fatalf("expected 120, got %v (ok=%v)", got.Rate, ok)
	}

	if _, ok := CurrentRate(records, RateKindPublished, day0.Add(-time.Hour)); ok {
		t.Fatalf("expected no rate before first effective date")
	}

	got, ok = CurrentRate(records, RateKindDefaultBill, day0.AddDate(0, 2, 0))
	if !ok || got.Rate != 300 {
		t.Fatalf("expected default bill 300, got %v", got.Rate)
	}
}

func TestCurrentRateTieBreaksOnCreation(t *testing.T) {
	older := mustRate(t, RateKindPublished, 100, day0, day0)
	newer := mustRate(t, RateKindPublished, 110, day0, day0.Add(time.Hour))

	got, ok := CurrentRate([]RateRecord{newer, older}, RateKindPublished, day0.AddDate(0, 0, 1))
	if !ok || got.Rate != 110 {
		t.Fatalf("expected most recently created record, got %v", got.Rate)
	}
}

func TestAddRateClosesPreviousRecord(t *testing.T) {
	var history []RateRecord
	var err error

	for i, rate := range []float64{100, 110, 125} {
		rec := mustRate(t, RateKindPublished, rate, day0.AddDate(0, i*3, 0), day0)
		history, err = AddRate(history, rec)
		if err != nil {
			t.Fatalf("add rate %v: %v", rate, err)
		}
	}

	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	ordered := RateHistory(history, RateKindPublished)
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].EndDate == nil || !ordered[i].EndDate.Equal(ordered[i+1].EffectiveDate) {
			t.Fatalf("record %d should end when the next begins, got %v", i, ordered[i].EndDate)
		}
	}
	if ordered[2].EndDate != nil {
		t.Fatalf("latest record must stay open")
	}
}

func TestAddRateNeverOverlaps(t *testing.T) {
	var history []RateRecord
	offsets := []int{0, 40, 41, 90, 200, 365}
	for _, off := range offsets {
		rec := mustRate(t, RateKindDefaultBill, float64(100+off), day0.AddDate(0, 0, off), day0)
		next, err := AddRate(history, rec)
		if err != nil {
			t.Fatalf("add rate at +%d: %v", off, err)
		}
		history = next
	}
	// interleave another kind to make sure it is not touched
	other := mustRate(t, RateKindPublished, 90, day0.AddDate(0, 0, 10), day0)
	history, _ = AddRate(history, other)

	for at := day0.AddDate(0, 0, -5); at.Before(day0.AddDate(2, 0, 0)); at = at.AddDate(0, 0, 1) {
		effective := 0
		for _, rec := range history {
			if rec.Kind == RateKindDefaultBill && rec.IsEffective(at) {
				effective++
			}
		}
		if effective > 1 {
			t.Fatalf("found %d overlapping records at %s", effective, at)
		}
	}

	for _, rec := range history {
		if rec.Kind == RateKindPublished && rec.EndDate != nil {
			t.Fatalf("published record end-dated by a default bill rate")
		}
	}
}

func TestAddRateRejectsInvalidInputWithoutMutation(t *testing.T) {
	first := mustRate(t, RateKindPublished, 100, day0.AddDate(0, 3, 0), day0)
	history, err := AddRate(nil, first)
	if err != nil {
		t.Fatalf("add first: %v", err)
	}

	backdated := mustRate(t, RateKindPublished, 90, day0, day0)
	if _, err := AddRate(history, backdated); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for backdated rate, got %v", err)
	}
	if history[0].EndDate != nil {
		t.Fatalf("failed add must leave history untouched")
	}

	zero := first
	zero.Rate = 0
	zero.EffectiveDate = day0.AddDate(1, 0, 0)
	if _, err := AddRate(history, zero); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero rate, got %v", err)
	}
}

func TestNewRateRecordValidation(t *testing.T) {
	before := day0.Add(-time.Hour)
	cases := []struct {
		name  string
		kind  RateKind
		rate  float64
		eff   time.Time
		end   *time.Time
		actor string
	}{
		{"negative rate", RateKindPublished, -1, day0, nil, "tester"},
		{"zero effective date", RateKindPublished, 10, time.Time{}, nil, "tester"},
		{"end before effective", RateKindPublished, 10, day0, &before, "tester"},
		{"unknown kind", RateKind("BOGUS"), 10, day0, nil, "tester"},
		{"missing actor", RateKindPublished, 10, day0, nil, " "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRateRecord(tc.kind, tc.rate, tc.eff, tc.end, "", tc.actor, day0)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
