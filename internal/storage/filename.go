package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 40

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
	"video/mp4":  "mp4",
	"video/webm": "webm",
	"audio/mpeg": "mp3",
	"audio/mp3":  "mp3",
	"audio/wav":  "wav",
	"audio/ogg":  "ogg",
}

// ExtensionFor maps a content type to a file extension, or returns fallback.
func ExtensionFor(contentType, fallback string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext, ok := extensions[ct]; ok {
		return ext
	}
	return strings.TrimPrefix(fallback, ".")
}

// Slug reduces free text to a short lowercase ASCII token suitable for a file name.
func Slug(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// FileName builds "<capability>_<yyyymmdd>_<hhmmss>_<nanos>[_<slug>].<ext>".
func FileName(capability string, at time.Time, hint, ext string) string {
	stamp := fmt.Sprintf("%s_%09d", at.UTC().Format("20060102_150405"), at.Nanosecond())
	name := capability + "_" + stamp
	if slug := Slug(hint); slug != "" {
		name += "_" + slug
	}
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

// withSuffix inserts "-n" before the extension.
func withSuffix(name string, n int) string {
	if n == 0 {
		return name
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return fmt.Sprintf("%s-%d%s", name[:i], n, name[i:])
	}
	return fmt.Sprintf("%s-%d", name, n)
}
