package transcript

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

var (
	// ErrInvalidTranscript is returned when a word list cannot back a transcript.
	ErrInvalidTranscript = errors.New("invalid transcript")
)

// Word is a single timestamped word of the transcript
type Word struct {
	Text    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker *string `json:"speaker"`
}

// UnmarshalJSON accepts numeric speaker ids as well as strings
func (w *Word) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text    string          `json:"word"`
		Start   float64         `json:"start"`
		End     float64         `json:"end"`
		Speaker json.RawMessage `json:"speaker"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	speaker, err := parseSpeaker(raw.Speaker)
	if err != nil {
		return fmt.Errorf("word %q: %w", raw.Text, err)
	}

	*w = Word{Text: raw.Text, Start: raw.Start, End: raw.End, Speaker: speaker}
	return nil
}

func parseSpeaker(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("speaker must be a string or a number: %s", string(raw))
	}
	s = strconv.FormatFloat(n, 'f', -1, 64)
	return &s, nil
}

// Transcript is an ordered, read-only sequence of words.
// Words are expected to be sorted by start time; this is not checked.
type Transcript struct {
	words []Word
}

// New builds a transcript from a copy of words
func New(words []Word) (*Transcript, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no words", ErrInvalidTranscript)
	}

	for i, w := range words {
		if w.Start < 0 {
			return nil, fmt.Errorf("%w: word %d (%q) starts at negative time %v", ErrInvalidTranscript, i, w.Text, w.Start)
		}
		if w.End < w.Start {
			return nil, fmt.Errorf("%w: word %d (%q) ends at %v before it starts at %v", ErrInvalidTranscript, i, w.Text, w.End, w.Start)
		}
	}

	cp := make([]Word, len(words))
	copy(cp, words)
	return &Transcript{words: cp}, nil
}

// StartTime is the start of the first word
func (t *Transcript) StartTime() float64 {
	return t.words[0].Start
}

// EndTime is the end of the last word
func (t *Transcript) EndTime() float64 {
	return t.words[len(t.words)-1].End
}

// Duration is EndTime minus StartTime
func (t *Transcript) Duration() float64 {
	return t.EndTime() - t.StartTime()
}

func (t *Transcript) Len() int {
	return len(t.words)
}

func (t *Transcript) At(i int) Word {
	return t.words[i]
}

// WordNearTime returns the first word that starts after time, or whose span
// strictly contains it. When no word matches, the last word is returned.
func (t *Transcript) WordNearTime(time float64) (int, Word) {
	for i, w := range t.words {
		if time < w.Start || (time > w.Start && time < w.End) {
			return i, w
		}
	}

	last := len(t.words) - 1
	return last, t.words[last]
}

// Slice returns a copy of the words in [lo, hi). Out of range bounds are
// clamped and an inverted range yields an empty slice.
func (t *Transcript) Slice(lo, hi int) []Word {
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.words) {
		hi = len(t.words)
	}
	if lo >= hi {
		return []Word{}
	}

	out := make([]Word, hi-lo)
	copy(out, t.words[lo:hi])
	return out
}
