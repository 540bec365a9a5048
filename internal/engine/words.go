package engine

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	_ "embed"
)

var ErrInsufficientVocabulary = errors.New("insufficient vocabulary")

//go:embed words.txt
var wordsFile string

// WordBank is the static vocabulary the engine samples round words from.
type WordBank struct {
	words []string
}

// LoadWordBank parses the embedded vocabulary, one word per line. A bank too
// small to offer a full set of choices is a build misconfiguration, caught at
// startup rather than mid-game.
func LoadWordBank() (*WordBank, error) {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(wordsFile))
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading embedded vocabulary: %w", err)
	}
	if len(words) < wordChoiceCount {
		return nil, ErrInsufficientVocabulary
	}
	return &WordBank{words: words}, nil
}

// NewWordBank wraps an explicit word list; used by tests.
func NewWordBank(words []string) *WordBank {
	return &WordBank{words: words}
}

func (b *WordBank) Size() int { return len(b.words) }

// Sample draws n distinct words uniformly without replacement.
func (b *WordBank) Sample(rng *rand.Rand, n int) ([]string, error) {
	if len(b.words) < n {
		return nil, ErrInsufficientVocabulary
	}
	out := make([]string, n)
	for i, j := range rng.Perm(len(b.words))[:n] {
		out[i] = b.words[j]
	}
	return out, nil
}
