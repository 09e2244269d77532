package timeslot

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "08:00", want: 480},
		{in: "13:30", want: 810},
		{in: "00:00", want: 0},
		{in: "23:59", want: 1439},
		{in: "8:00", wantErr: true},
		{in: "08:0", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "08:00:00", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("round trip of %q gave %q", tt.in, got.String())
		}
	}
}

func TestTimeOfDayOrderingIsNumeric(t *testing.T) {
	// "9:00" > "10:00" lexically; minutes compare correctly.
	nine := MustTimeOfDay(9, 0)
	ten := MustTimeOfDay(10, 0)
	if !(nine < ten) {
		t.Fatal("expected 09:00 before 10:00")
	}
}

func TestIntervalOverlapHalfOpen(t *testing.T) {
	a := Interval{Start: MustTimeOfDay(9, 0), End: MustTimeOfDay(9, 30)}
	touching := Interval{Start: MustTimeOfDay(9, 30), End: MustTimeOfDay(10, 0)}
	oneMinute := Interval{Start: MustTimeOfDay(9, 29), End: MustTimeOfDay(10, 0)}
	inside := Interval{Start: MustTimeOfDay(9, 10), End: MustTimeOfDay(9, 20)}

	if a.Overlaps(touching) || touching.Overlaps(a) {
		t.Error("intervals sharing only an endpoint must not overlap")
	}
	if !a.Overlaps(oneMinute) || !oneMinute.Overlaps(a) {
		t.Error("a one minute overlap must be detected")
	}
	if !a.Overlaps(inside) || !a.Contains(inside) {
		t.Error("nested interval must overlap and be contained")
	}
	if a.Contains(oneMinute) {
		t.Error("partially outside interval must not be contained")
	}
}

func TestNewIntervalRejectsEmpty(t *testing.T) {
	if _, err := NewInterval(MustTimeOfDay(10, 0), MustTimeOfDay(10, 0)); err == nil {
		t.Error("expected error for zero-length interval")
	}
	if _, err := NewInterval(MustTimeOfDay(10, 0), MustTimeOfDay(9, 0)); err == nil {
		t.Error("expected error for reversed interval")
	}
}

func TestIntervalSplit(t *testing.T) {
	shift := Interval{Start: MustTimeOfDay(8, 0), End: MustTimeOfDay(12, 0)}
	slots := shift.Split(30)
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	if slots[0].String() != "08:00-08:30" || slots[7].String() != "11:30-12:00" {
		t.Errorf("unexpected boundaries: %s .. %s", slots[0], slots[7])
	}

	// 4h in 90 minute slots leaves a 60 minute remainder that is dropped.
	if got := len(shift.Split(90)); got != 2 {
		t.Errorf("expected 2 slots of 90 minutes, got %d", got)
	}
}

func TestIntervalGrains(t *testing.T) {
	iv := Interval{Start: MustTimeOfDay(10, 0), End: MustTimeOfDay(11, 0)}
	grains := iv.Grains(30)
	if len(grains) != 2 || grains[0] != MustTimeOfDay(10, 0) || grains[1] != MustTimeOfDay(10, 30) {
		t.Errorf("unexpected grains %v", grains)
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2025-06-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("2025-06-02 is a Monday, got %s", d.Weekday())
	}
	if d.AddDays(6).String() != "2025-06-08" {
		t.Errorf("unexpected AddDays result %s", d.AddDays(6))
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Error("date ordering is wrong")
	}
	if _, err := ParseDate("2025-6-2"); err == nil {
		t.Error("expected error for unpadded date")
	}

	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC) // 03:00 on the 2nd in UTC+7
	if got := Today(now, loc); got != d {
		t.Errorf("Today in UTC+7 = %s, want %s", got, d)
	}
}

func TestJSONEncoding(t *testing.T) {
	payload := struct {
		Date Date     `json:"date"`
		Slot Interval `json:"slot"`
	}{
		Date: NewDate(2025, 6, 2),
		Slot: Interval{Start: MustTimeOfDay(8, 0), End: MustTimeOfDay(8, 30)},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"date":"2025-06-02","slot":{"start":"08:00","end":"08:30"}}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	var back struct {
		Start TimeOfDay `json:"start"`
	}
	if err := json.Unmarshal([]byte(`{"start":"9:00"}`), &back); err == nil {
		t.Error("expected unpadded time to be rejected")
	}
}
