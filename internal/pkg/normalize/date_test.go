package normalize

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "2024-3-5", want: "2024-03-05", wantOK: true},
		{in: "2024-03-05", want: "2024-03-05", wantOK: true},
		{in: "5-3-2024", want: "2024-03-05", wantOK: true},
		{in: "05/03/2024", want: "2024-03-05", wantOK: true},
		{in: "5.3.2024", want: "2024-03-05", wantOK: true},
		{in: "2024/12/31", want: "2024-12-31", wantOK: true},
		{in: " 1-1-2025 ", want: "2025-01-01", wantOK: true},
		{in: "03-25-2024", wantOK: false},
		{in: "2024-13-01", wantOK: false},
		{in: "2023-02-29", wantOK: false},
		{in: "tomorrow", wantOK: false},
		{in: "", wantOK: false},
		{in: "24-3-5", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Date(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("Date(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if !ok {
				if !got.IsZero() {
					t.Fatalf("expected zero time on failure, got %v", got)
				}
				return
			}
			if s := got.Format("2006-01-02"); s != tc.want {
				t.Fatalf("Date(%q) = %s, want %s", tc.in, s, tc.want)
			}
		})
	}
}

func TestDateDayFirstConvention(t *testing.T) {
	got, ok := Date("5-3-2024")
	if !ok {
		t.Fatal("expected day-first date to parse")
	}
	if got.Day() != 5 || got.Month() != time.March {
		t.Fatalf("expected 5 March, got %v", got)
	}
}

func TestFlexDateUnmarshal(t *testing.T) {
	var payload struct {
		In  FlexDate `json:"in"`
		Out FlexDate `json:"out"`
		Bad FlexDate `json:"bad"`
	}
	if err := json.Unmarshal([]byte(`{"in": "10/11/2024", "out": null, "bad": "soon"}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.In.Valid || payload.In.Time.Format("2006-01-02") != "2024-11-10" {
		t.Fatalf("unexpected check-in: %+v", payload.In)
	}
	if payload.Out.Valid || payload.Out.NullTime().Valid {
		t.Fatal("null date must be invalid")
	}
	if payload.Bad.Valid || !payload.Bad.Discarded() || payload.Bad.Input != "soon" {
		t.Fatalf("unparsable date must be invalid and discarded: %+v", payload.Bad)
	}
	if payload.Out.Discarded() || payload.In.Discarded() {
		t.Fatal("null or valid dates are not discarded")
	}
}
