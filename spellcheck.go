package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/f1monkey/spellchecker"
)

const spellcheckFile = "spellcheck_words.txt"

var (
	sc   *spellchecker.Spellchecker
	scMu sync.RWMutex
)

// textSpan marks runes [Start, End) of a string.
type textSpan struct {
	Start, End int
}

// commonWords is a small built-in dictionary so the checker works without a
// word list. A larger one is read from spellcheck_words.txt in the data
// directory when present.
var commonWords = []string{
	"the", "be", "to", "of", "and", "a", "in", "that", "have", "i", "it", "for", "not", "on", "with", "he",
	"as", "you", "do", "at", "this", "but", "his", "by", "from", "they", "we", "say", "her", "she",
	"or", "an", "will", "my", "one", "all", "would", "there", "their", "is", "are", "was", "me",
	"hello", "hi", "world", "anyone", "looking", "group", "party", "join", "selling", "buying",
	"cheap", "price", "free", "company", "recruiting", "welcome", "new", "players", "come", "now",
	"please", "thanks", "thank", "help", "need", "want", "trade", "offer", "message", "tell",
	// Game terms
	"linkshell", "alliance", "shout", "yell", "duty", "raid", "dungeon", "trial", "tank", "healer", "dps",
	"gil", "retainer", "housing", "plot", "glamour", "materia", "crafter", "gatherer", "fc", "lfg", "lfm",
}

func loadSpellcheck() {
	checker, err := spellchecker.New("abcdefghijklmnopqrstuvwxyz'", spellchecker.WithMaxErrors(1))
	if err != nil {
		logWarn("spellcheck: %v", err)
		return
	}
	checker.Add(commonWords...)
	path := filepath.Join(dataDirPath, spellcheckFile)
	if f, err := os.Open(path); err == nil {
		if err := checker.AddFrom(f); err != nil {
			logWarn("spellcheck: read %s: %v", path, err)
		}
		_ = f.Close()
	}
	scMu.Lock()
	sc = checker
	scMu.Unlock()
}

func currentChecker() *spellchecker.Spellchecker {
	scMu.RLock()
	defer scMu.RUnlock()
	return sc
}

// findMisspellings returns the rune spans of words the checker rejects.
func findMisspellings(s string) []textSpan {
	checker := currentChecker()
	if checker == nil {
		return nil
	}
	rs := []rune(s)
	var spans []textSpan
	start := -1
	check := func(end int) {
		word := strings.ToLower(string(rs[start:end]))
		if !checker.IsCorrect(word) {
			spans = append(spans, textSpan{Start: start, End: end})
		}
		start = -1
	}
	for i, r := range rs {
		if unicode.IsLetter(r) || r == '\'' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			check(i)
		}
	}
	if start != -1 {
		check(len(rs))
	}
	return spans
}

func suggestCorrections(word string, n int) []string {
	checker := currentChecker()
	if checker == nil {
		return nil
	}
	suggestions, err := checker.Suggest(word, n)
	if err != nil {
		return nil
	}
	return suggestions
}
