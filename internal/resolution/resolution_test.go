package resolution

import "testing"

func TestTimeframe(t *testing.T) {
	cases := []struct {
		token Resolution
		want  string
	}{
		{Min1, "M1"},
		{Min5, "M5"},
		{Min15, "M15"},
		{Min30, "M30"},
		{Hour1, "H1"},
		{Hour4, "H4"},
		{Day1, "D1"},
		{Week1, "W1"},
		{Month, "MN1"},
		{"7", DefaultTimeframe},
		{"", DefaultTimeframe},
	}

	for _, tc := range cases {
		if got := Timeframe(tc.token); got != tc.want {
			t.Errorf("Timeframe(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestToken_RoundTrips(t *testing.T) {
	for r := range table {
		if got := Token(Timeframe(r)); got != r {
			t.Errorf("Token(Timeframe(%q)) = %q", r, got)
		}
	}
	if got := Token("H12"); got != Min15 {
		t.Errorf("Token(H12) = %q, want fallback %q", got, Min15)
	}
}

func TestSeconds(t *testing.T) {
	cases := []struct {
		token Resolution
		want  int64
	}{
		{Min1, 60},
		{Hour1, 3600},
		{Day1, 86400},
		{Week1, 604800},
		{"bogus", 900}, // fallback: M15
	}

	for _, tc := range cases {
		if got := Seconds(tc.token); got != tc.want {
			t.Errorf("Seconds(%q) = %d, want %d", tc.token, got, tc.want)
		}
	}
}

func TestSupportedCoversTable(t *testing.T) {
	for _, tok := range Supported() {
		if !Known(Resolution(tok)) {
			t.Errorf("Supported() lists unknown token %q", tok)
		}
	}
	if len(Supported()) != len(table) {
		t.Errorf("Supported() has %d tokens, table has %d", len(Supported()), len(table))
	}
}
