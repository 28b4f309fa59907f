package transcript

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Load decodes a JSON word list of the form [{word, start, end, speaker?}, ...]
func Load(r io.Reader) (*Transcript, error) {
	var words []Word
	if err := json.NewDecoder(r).Decode(&words); err != nil {
		return nil, fmt.Errorf("%w: decode word list: %v", ErrInvalidTranscript, err)
	}
	return New(words)
}

// LoadFile reads a word list JSON file
func LoadFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	tr, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tr, nil
}
