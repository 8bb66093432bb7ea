package domain

import (
	"testing"
	"time"
)

func TestAutosaveTitle(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "single digit month and day",
			now:  time.Date(2026, 3, 7, 9, 15, 0, 0, time.UTC),
			want: "[tabsaver] autosave @ 3/7/2026",
		},
		{
			name: "double digit month and day",
			now:  time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC),
			want: "[tabsaver] autosave @ 10/19/2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutosaveTitle(tt.now); got != tt.want {
				t.Errorf("AutosaveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAutosaveTitleIsDayGranular(t *testing.T) {
	morning := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 19, 22, 30, 12, 0, time.UTC)

	if AutosaveTitle(morning) != AutosaveTitle(evening) {
		t.Errorf("same-day autosave titles differ: %q vs %q",
			AutosaveTitle(morning), AutosaveTitle(evening))
	}
	if AutosaveKey(morning) != AutosaveKey(evening) {
		t.Errorf("same-day autosave keys differ: %q vs %q",
			AutosaveKey(morning), AutosaveKey(evening))
	}

	nextDay := morning.Add(24 * time.Hour)
	if AutosaveTitle(morning) == AutosaveTitle(nextDay) {
		t.Error("autosave titles on different days should differ")
	}
}

func TestForceSaveTitle(t *testing.T) {
	tests := []struct {
		name  string
		count int
		now   time.Time
		want  string
	}{
		{
			name:  "afternoon",
			count: 3,
			now:   time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC),
			want:  "[tabsaver] 3 @ 10/19/2026, 3:04:05 PM",
		},
		{
			name:  "midnight hour",
			count: 12,
			now:   time.Date(2026, 1, 2, 0, 7, 9, 0, time.UTC),
			want:  "[tabsaver] 12 @ 1/2/2026, 12:07:09 AM",
		},
		{
			name:  "no tabs",
			count: 0,
			now:   time.Date(2026, 1, 2, 11, 0, 0, 0, time.UTC),
			want:  "[tabsaver] 0 @ 1/2/2026, 11:00:00 AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForceSaveTitle(tt.count, tt.now); got != tt.want {
				t.Errorf("ForceSaveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestISOTimestamp(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2026, 10, 19, 17, 4, 5, 123456789, loc)

	if got, want := ISOTimestamp(ts), "2026-10-19T15:04:05.123Z"; got != want {
		t.Errorf("ISOTimestamp() = %q, want %q", got, want)
	}
}

func TestIsTabsaverTitle(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

	if !IsTabsaverTitle(AutosaveTitle(now)) {
		t.Error("autosave title should be recognised")
	}
	if !IsTabsaverTitle(ForceSaveTitle(2, now)) {
		t.Error("force save title should be recognised")
	}
	if IsTabsaverTitle("Reading list") {
		t.Error("unrelated title should not be recognised")
	}
	if IsTabsaverTitle("[tabsaver]") {
		t.Error("bare prefix should not be recognised")
	}
}
