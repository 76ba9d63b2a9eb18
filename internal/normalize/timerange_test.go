package normalize

import "testing"

func TestTimeRangeDocumentedForms(t *testing.T) {
	cases := []struct {
		in        string
		wantStart string
		wantEnd   string
	}{
		{"7P-11PM", "7PM", "11PM"},
		{"1M-5PM", "1AM", "5PM"},
		{"11AM-LATE", "11AM", "LATE"},
		{"3;30PM-7PM", "3:30PM", "7PM"},
		{"3PM", "3PM", "3PM"},
	}

	for _, tc := range cases {
		start, end := TimeRange(tc.in)
		if start != tc.wantStart || end != tc.wantEnd {
			t.Fatalf("TimeRange(%q) = (%q, %q), want (%q, %q)",
				tc.in, start, end, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestTimeRangeStandardForms(t *testing.T) {
	cases := []struct {
		in        string
		wantStart string
		wantEnd   string
	}{
		{"12PM-12AM", "12PM", "12AM"},
		{"11:30AM-3:30PM", "11:30AM", "3:30PM"},
		{"5:30 pm - 12 am", "5:30PM", "12AM"},
		{"Scarlett 10AM-3PM", "10AM", "3PM"},
	}

	for _, tc := range cases {
		start, end := TimeRange(tc.in)
		if start != tc.wantStart || end != tc.wantEnd {
			t.Fatalf("TimeRange(%q) = (%q, %q), want (%q, %q)",
				tc.in, start, end, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestTimeRangeNoTime(t *testing.T) {
	for _, in := range []string{"", "Scarlett", "OFF", "CALL"} {
		start, end := TimeRange(in)
		if start != "" || end != "" {
			t.Fatalf("TimeRange(%q) = (%q, %q), want empty pair", in, start, end)
		}
	}
}

func TestTimeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"7P", "7PM"},
		{"1M", "1AM"},
		{"1A", "1AM"},
		{"11 pm", "11PM"},
		{"3;30pm", "3:30PM"},
		{"LATE", "LATE"},
		{"noon", "NOON"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Time(tc.in); got != tc.want {
			t.Fatalf("Time(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
