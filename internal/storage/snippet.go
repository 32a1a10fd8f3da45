package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// Snippet describes the HTML embed written next to an artifact.
type Snippet struct {
	Capability string
	URL        string
	Title      string
	Metadata   map[string]string
}

// SnippetComponent renders the embed markup for a persisted artifact.
func SnippetComponent(s Snippet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		src := templ.EscapeString(s.URL)
		title := templ.EscapeString(s.Title)
		if _, err := fmt.Fprintf(w, "<div class=\"generated-%s\">\n", templ.EscapeString(s.Capability)); err != nil {
			return err
		}
		var media string
		switch s.Capability {
		case "image":
			media = fmt.Sprintf("  <img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n", src, title)
		case "video":
			media = fmt.Sprintf("  <video controls preload=\"metadata\" title=\"%s\">\n    <source src=\"%s\" type=\"video/mp4\">\n  </video>\n", title, src)
		case "speech":
			media = fmt.Sprintf("  <audio controls title=\"%s\">\n    <source src=\"%s\" type=\"audio/mpeg\">\n  </audio>\n", title, src)
		default:
			media = fmt.Sprintf("  <a href=\"%s\">%s</a>\n", src, title)
		}
		if _, err := io.WriteString(w, media); err != nil {
			return err
		}
		if len(s.Metadata) > 0 {
			keys := make([]string, 0, len(s.Metadata))
			for k := range s.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if _, err := io.WriteString(w, "  <dl>\n"); err != nil {
				return err
			}
			for _, k := range keys {
				if _, err := fmt.Fprintf(w, "    <dt>%s</dt><dd>%s</dd>\n", templ.EscapeString(k), templ.EscapeString(s.Metadata[k])); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "  </dl>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

// RenderSnippet renders s to bytes.
func RenderSnippet(ctx context.Context, s Snippet) ([]byte, error) {
	var buf bytes.Buffer
	if err := SnippetComponent(s).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("storage: render snippet: %w", err)
	}
	return buf.Bytes(), nil
}
