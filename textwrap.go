package main

import (
	"math"
	"strings"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// measureWidth measures s with face. Faces without a font source get an
// approximation of 0.6x size per rune so layout can run headless.
func measureWidth(s string, face text.Face) float64 {
	if gf, ok := face.(*text.GoTextFace); ok && gf.Source == nil {
		return float64(len([]rune(s))) * (gf.Size * 0.6)
	}
	w, _ := text.Measure(s, face, 0)
	return w
}

// wrapText splits s into lines no wider than maxWidth. Words stay intact
// unless a single word is wider than a line, and runs of spaces are kept.
func wrapText(s string, face text.Face, maxWidth float64) (int, []string) {
	var (
		lines   []string
		maxUsed float64
	)
	flush := func(b *strings.Builder, w float64) {
		if w > maxUsed {
			maxUsed = w
		}
		lines = append(lines, b.String())
		b.Reset()
	}
	for _, para := range strings.Split(s, "\n") {
		var b strings.Builder
		cur := 0.0
		for _, tok := range strings.SplitAfter(para, " ") {
			if tok == "" {
				continue
			}
			w := measureWidth(tok, face)
			if cur+w <= maxWidth {
				b.WriteString(tok)
				cur += w
				continue
			}
			if b.Len() > 0 {
				flush(&b, cur)
				cur = 0
			}
			if w <= maxWidth {
				b.WriteString(tok)
				cur = w
				continue
			}
			for _, r := range tok {
				rw := measureWidth(string(r), face)
				if cur+rw > maxWidth && b.Len() > 0 {
					flush(&b, cur)
					cur = 0
				}
				b.WriteRune(r)
				cur += rw
			}
		}
		flush(&b, cur)
	}
	return int(math.Ceil(maxUsed)), lines
}
