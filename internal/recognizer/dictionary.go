// Package recognizer implements aspect-ratio-bucketed CRNN+CTC text-line
// recognition: model routing by crop width/height ratio, the character
// dictionary, and greedy CTC decoding.
package recognizer

import (
	"bufio"
	"fmt"
	"os"
)

// Dictionary maps model output channel indices to characters. Index 0 is
// always the CTC blank token, which is not present in the on-disk file and
// is prepended here.
type Dictionary struct {
	chars []string // chars[0] is the blank sentinel, chars[1:] are the file's non-empty lines in order
}

// LoadDictionary reads a newline-delimited character list and prepends the
// CTC blank token.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path) //nolint:gosec // model-relative path, not user input
	if err != nil {
		return nil, fmt.Errorf("recognizer: open dictionary %s: %w", path, err)
	}
	defer f.Close()

	chars := []string{""} // index 0: blank
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		chars = append(chars, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("recognizer: read dictionary %s: %w", path, err)
	}
	return &Dictionary{chars: chars}, nil
}

// Len returns the number of entries including the blank token.
func (d *Dictionary) Len() int { return len(d.chars) }

// At returns the character for class index i, or "" for the blank token /
// an out-of-range index.
func (d *Dictionary) At(i int) string {
	if i < 0 || i >= len(d.chars) {
		return ""
	}
	return d.chars[i]
}

// CheckModelChannels returns an error if the model's output channel count
// does not match this dictionary's size — a mismatch here means the wrong
// dictionary was paired with the model and decoding would be silently
// wrong rather than simply failing, so this check is fatal rather than
// best-effort.
func (d *Dictionary) CheckModelChannels(channels int) error {
	if channels != d.Len() {
		return fmt.Errorf("recognizer: dictionary has %d entries but model emits %d channels", d.Len(), channels)
	}
	return nil
}
