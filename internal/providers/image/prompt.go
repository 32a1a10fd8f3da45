package image

import (
	"sort"
	"strings"
)

// Style names accepted by image generation.
const (
	StyleNatural        = "natural"
	StylePhotorealistic = "photorealistic"
	StyleArtistic       = "artistic"
	StyleCorporate      = "corporate"
	StyleCybersecurity  = "cybersecurity"
)

// stylePrefixes steer the model toward a visual direction. Natural leaves the
// prompt untouched.
var stylePrefixes = map[string]string{
	StyleNatural:        "",
	StylePhotorealistic: "photorealistic, high resolution, professional photography",
	StyleArtistic:       "artistic, creative, beautiful art style",
	StyleCorporate:      "professional, business, corporate style, clean",
	StyleCybersecurity:  "cybersecurity themed, high-tech, digital, secure",
}

// Styles lists the known style names in sorted order.
func Styles() []string {
	out := make([]string, 0, len(stylePrefixes))
	for name := range stylePrefixes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// StylePrompt prefixes prompt with the direction for style. Unknown or empty
// styles return the trimmed prompt.
func StylePrompt(prompt, style string) string {
	prompt = strings.TrimSpace(prompt)
	prefix := stylePrefixes[strings.ToLower(strings.TrimSpace(style))]
	if prefix == "" {
		return prompt
	}
	return prefix + ", " + prompt
}
