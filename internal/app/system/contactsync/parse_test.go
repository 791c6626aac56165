package contactsync

import "testing"

func TestSplitCity(t *testing.T) {
	tests := []struct {
		in         string
		wantPostal string
		wantCity   string
		wantOK     bool
	}{
		{"75011 Paris", "75011", "Paris", true},
		{"  75011 Paris  ", "75011", "Paris", true},
		{"13001 Marseille 1er", "13001", "Marseille 1er", true},
		{"Paris", "", "Paris", false},
		{"75011", "", "75011", false},
		{"7501 Paris", "", "7501 Paris", false},
		{"750112 Paris", "", "750112 Paris", false},
		{"Paris 75011", "", "Paris 75011", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			postal, city, ok := SplitCity(tt.in)
			if postal != tt.wantPostal || city != tt.wantCity || ok != tt.wantOK {
				t.Errorf("SplitCity(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, postal, city, ok, tt.wantPostal, tt.wantCity, tt.wantOK)
			}
		})
	}
}

func TestJoinCity(t *testing.T) {
	tests := []struct {
		postal, city, want string
	}{
		{"75011", "Paris", "75011 Paris"},
		{"", "Paris", "Paris"},
		{"75011", "", "75011"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := JoinCity(tt.postal, tt.city); got != tt.want {
			t.Errorf("JoinCity(%q, %q) = %q, want %q", tt.postal, tt.city, got, tt.want)
		}
	}
}

func TestSplitJoin_RoundTrip(t *testing.T) {
	postal, city, ok := SplitCity(JoinCity("75011", "Paris"))
	if !ok || postal != "75011" || city != "Paris" {
		t.Errorf("round trip = (%q, %q, %v), want (75011, Paris, true)", postal, city, ok)
	}

	// Without a postal code the split cannot recover it.
	postal, city, ok = SplitCity(JoinCity("", "Saint-Denis"))
	if ok || postal != "" || city != "Saint-Denis" {
		t.Errorf("lossy round trip = (%q, %q, %v)", postal, city, ok)
	}
}

func TestExtractEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "iframe snippet",
			in:   `<iframe src="https://www.google.com/maps/embed?pb=abc" width="600" height="450"></iframe>`,
			want: "https://www.google.com/maps/embed?pb=abc",
		},
		{
			name: "single quoted src",
			in:   `<iframe src='https://www.google.com/maps/embed?pb=xyz'></iframe>`,
			want: "https://www.google.com/maps/embed?pb=xyz",
		},
		{
			name: "raw url",
			in:   "  https://www.google.com/maps/embed?pb=abc  ",
			want: "https://www.google.com/maps/embed?pb=abc",
		},
		{
			name: "raw url with trailing attributes",
			in:   `https://www.google.com/maps/embed?pb=abc" width="600"`,
			want: "https://www.google.com/maps/embed?pb=abc",
		},
		{
			name: "other url passes through",
			in:   "https://example.com/map",
			want: "https://example.com/map",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEmbedURL(tt.in); got != tt.want {
				t.Errorf("ExtractEmbedURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsMapsEmbed(t *testing.T) {
	if !IsMapsEmbed("https://www.google.com/maps/embed?pb=abc") {
		t.Error("maps embed url should match")
	}
	if IsMapsEmbed("https://example.com/map") || IsMapsEmbed("") {
		t.Error("non maps urls should not match")
	}
}
