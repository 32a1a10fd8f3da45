package image

import "testing"

func TestStylePrompt(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{style: "", want: "a lighthouse at dusk"},
		{style: "natural", want: "a lighthouse at dusk"},
		{style: "Photorealistic", want: "photorealistic, high resolution, professional photography, a lighthouse at dusk"},
		{style: "corporate", want: "professional, business, corporate style, clean, a lighthouse at dusk"},
		{style: "cybersecurity", want: "cybersecurity themed, high-tech, digital, secure, a lighthouse at dusk"},
		{style: "vaporwave", want: "a lighthouse at dusk"},
	}
	for _, tt := range tests {
		if got := StylePrompt("  a lighthouse at dusk ", tt.style); got != tt.want {
			t.Errorf("StylePrompt(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestStylesSorted(t *testing.T) {
	styles := Styles()
	if len(styles) != 5 || styles[0] != "artistic" || styles[4] != "photorealistic" {
		t.Fatalf("styles = %v", styles)
	}
}
