package main

import (
	"bytes"
	"fmt"
	"math"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const mainFontSize = 14

var mainFont text.Face

func initFont() error {
	regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	mainFont = &text.GoTextFace{Source: regular, Size: mainFontSize}
	return nil
}

// lineHeight is the advance between text rows for face. Faces without a
// font source (tests) fall back to an estimate from the size.
func lineHeight(face text.Face) float64 {
	if gf, ok := face.(*text.GoTextFace); ok && gf.Source == nil {
		return math.Ceil(gf.Size * 1.4)
	}
	m := face.Metrics()
	return math.Ceil(m.HAscent + m.HDescent + 2)
}
