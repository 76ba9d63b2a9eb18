package normalize

import "testing"

func TestName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LETICIA EVA", "Leticia Eva"},
		{"daisy dukes", "Daisy Dukes"},
		{"  AHRI ", "Ahri"},
		{"o'hara", "O'Hara"},
		{"MARY-ANNE", "Mary-Anne"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Name(tc.in); got != tc.want {
			t.Fatalf("Name(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTier(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ELITE", "Elite"},
		{"VIP", "VIP"},
		{"ultra vip", "Ultra VIP"},
		{"PLATINUM VIP", "Platinum VIP"},
		{"Sapphire", "Sapphire"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Tier(tc.in); got != tc.want {
			t.Fatalf("Tier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWeightConvertsPounds(t *testing.T) {
	// round(130 * 0.453592) = 59
	if got := Weight("130 lbs"); got != "59 kg" {
		t.Fatalf("Weight(130 lbs) = %q, want 59 kg", got)
	}
	if got := Weight("130lbs"); got != "59 kg" {
		t.Fatalf("Weight(130lbs) = %q, want 59 kg", got)
	}
	// Bare numbers are assumed to be pounds.
	if got := Weight("128"); got != "58 kg" {
		t.Fatalf("Weight(128) = %q, want 58 kg", got)
	}
}

func TestWeightCanonicalIsNoOp(t *testing.T) {
	once := Weight("130 lbs")
	twice := Weight(once)
	if once != twice {
		t.Fatalf("re-normalizing %q changed it to %q", once, twice)
	}
	if got := Weight("55 kg"); got != "55 kg" {
		t.Fatalf("Weight(55 kg) = %q, want 55 kg", got)
	}
	if got := Weight("55kg"); got != "55 kg" {
		t.Fatalf("Weight(55kg) = %q, want 55 kg", got)
	}
}

func TestWeightPassesThroughUnparseable(t *testing.T) {
	if got := Weight("slim"); got != "slim" {
		t.Fatalf("Weight(slim) = %q, want passthrough", got)
	}
	if got := Weight(""); got != "" {
		t.Fatalf("Weight(empty) = %q, want empty", got)
	}
}

func TestHeight(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5'9", "5'9"},
		{"5'9\"", "5'9"},
		{"5’9”", "5'9"}, // curly quotes
		{"5,4", "5'4"},
		{"5\"7", "5'7"},
		{"5`6", "5'6"},
		{"170 cm", "170 cm"},
		{"170cm", "170 cm"},
		{"tall", "tall"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Height(tc.in); got != tc.want {
			t.Fatalf("Height(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMeasurements(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"34DD/25/34", "34DD-25-34"},
		{"34DD- 26-36", "34DD-26-36"},
		{"32D-23- 35", "32D-23-35"},
		{"34C2636", "34C-26-36"},
		{"36C–25–36", "36C-25-36"}, // en-dashes
		{"34 D-26-36", "34D-26-36"},
		{"34dd-25-34", "34DD-25-34"},
		{"35-27-36", "35-27-36"}, // no cup letter: left as-is
		{"", ""},
	}

	for _, tc := range cases {
		if got := Measurements(tc.in); got != tc.want {
			t.Fatalf("Measurements(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBustSize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"34DD", "34 DD"},
		{"32b", "32 B"},
		{"34 DD", "34 DD"},
		{"curvy", "CURVY"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := BustSize(tc.in); got != tc.want {
			t.Fatalf("BustSize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestServiceType(t *testing.T) {
	if got := ServiceType("GF ENTERTAINER"); got != "GFE" {
		t.Fatalf("ServiceType(GF ENTERTAINER) = %q, want GFE", got)
	}
	if got := ServiceType("gfe"); got != "GFE" {
		t.Fatalf("ServiceType(gfe) = %q, want GFE", got)
	}
	if got := ServiceType(" gfe  &  pse "); got != "GFE & PSE" {
		t.Fatalf("ServiceType = %q, want GFE & PSE", got)
	}
}

func TestColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BROWN", "Brown"},
		{"dark brown", "Dark Brown"},
		{"Blue/ Green", "Blue/Green"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Color(tc.in); got != tc.want {
			t.Fatalf("Color(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
