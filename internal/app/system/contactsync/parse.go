package contactsync

import (
	"regexp"
	"strings"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
	embedPrefix  = "https://www.google.com/maps/embed"
	embedURLRe   = regexp.MustCompile(`^(https://www\.google\.com/maps/embed\?[^"\s]+)`)
	iframeSrcRe  = regexp.MustCompile(`src=["']([^"']+)["']`)
)

// SplitCity splits a display string such as "75011 Paris" on its first space.
// ok is true only when the first token is a five digit postal code and a
// city follows it; otherwise city is the whole trimmed input.
func SplitCity(s string) (postal, city string, ok bool) {
	s = strings.TrimSpace(s)
	head, tail, found := strings.Cut(s, " ")
	if found && postalCodeRe.MatchString(head) {
		return head, tail, true
	}
	return "", s, false
}

// JoinCity is the display form written into the contact page: "75011 Paris".
func JoinCity(postal, city string) string {
	return strings.TrimSpace(postal + " " + city)
}

// ExtractEmbedURL accepts a raw map embed URL or a pasted iframe snippet and
// returns the URL. Anything else comes back trimmed but otherwise unchanged.
func ExtractEmbedURL(input string) string {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, embedPrefix) {
		if m := embedURLRe.FindStringSubmatch(input); m != nil {
			return m[1]
		}
		return input
	}
	if m := iframeSrcRe.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// IsMapsEmbed reports whether url points at the maps embed endpoint.
func IsMapsEmbed(url string) bool {
	return url != "" && strings.Contains(url, "google.com/maps/embed")
}
