package models

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStreakDays(t *testing.T) {
	now := day("2025-03-10").Add(9 * time.Hour)

	tests := []struct {
		name string
		days []string
		want int
	}{
		{name: "empty", days: nil, want: 0},
		{name: "only today", days: []string{"2025-03-10"}, want: 1},
		{name: "today and yesterday", days: []string{"2025-03-09", "2025-03-10"}, want: 2},
		{name: "ends yesterday", days: []string{"2025-03-08", "2025-03-09"}, want: 2},
		{name: "broken before yesterday", days: []string{"2025-03-07", "2025-03-08"}, want: 0},
		{name: "gap resets", days: []string{"2025-03-06", "2025-03-08", "2025-03-09", "2025-03-10"}, want: 3},
	}

	for _, tt := range tests {
		var days []time.Time
		for _, d := range tt.days {
			days = append(days, day(d))
		}
		if got := StreakDays(days, now); got != tt.want {
			t.Fatalf("%s: StreakDays = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEntitlementRecordIsActiveAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	var nilRec *EntitlementRecord
	if nilRec.IsActiveAt(now) {
		t.Fatalf("nil record must not be active")
	}
	if (&EntitlementRecord{IsPremium: false}).IsActiveAt(now) {
		t.Fatalf("flag off must not be active")
	}
	if (&EntitlementRecord{IsPremium: true, PremiumExpiresAt: &past}).IsActiveAt(now) {
		t.Fatalf("expired record must not be active")
	}
	if !(&EntitlementRecord{IsPremium: true}).IsActiveAt(now) {
		t.Fatalf("flag on without expiry must be active")
	}
	if !(&EntitlementRecord{IsPremium: true, PremiumExpiresAt: &future}).IsActiveAt(now) {
		t.Fatalf("future expiry must be active")
	}
}
