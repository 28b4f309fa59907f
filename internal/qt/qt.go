// Package qt reads the legacy QT utterance export and flattens it into the
// word list the task server loads.
package qt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"trax/internal/transcript"
)

// SpeakerID accepts both numeric and string speaker ids
type SpeakerID string

func (s *SpeakerID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = SpeakerID(str)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("spk_id must be a string or a number: %s", string(data))
	}
	*s = SpeakerID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Word is a word inside an utterance's word_list. Keys other than
// word/start/end are kept in Extra and written back out by Convert.
type Word struct {
	Word  string
	Start float64
	End   float64
	Extra map[string]json.RawMessage
}

func (w *Word) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("word_list entry: %w", err)
	}

	for key, dst := range map[string]any{"word": &w.Word, "start": &w.Start, "end": &w.End} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("word_list entry %q: %w", key, err)
		}
		delete(fields, key)
	}

	w.Extra = nil
	if len(fields) > 0 {
		w.Extra = fields
	}
	return nil
}

// Utterance is one speaker turn of a QT export
type Utterance struct {
	UttID     int       `json:"utt_id"`
	SpeakerID SpeakerID `json:"spk_id"`
	Start     float64   `json:"utt_start"`
	End       float64   `json:"utt_end"`
	Words     []Word    `json:"word_list"`
}

// Decode reads a QT export
func Decode(r io.Reader) ([]Utterance, error) {
	var utts []Utterance
	if err := json.NewDecoder(r).Decode(&utts); err != nil {
		return nil, fmt.Errorf("decode utterances: %w", err)
	}
	return utts, nil
}

// Flatten concatenates the words of all utterances. The speaker is set on
// the first word of each utterance only; following words carry none.
func Flatten(utts []Utterance) []transcript.Word {
	words := make([]transcript.Word, 0)
	for _, u := range utts {
		for i, w := range u.Words {
			word := transcript.Word{Text: w.Word, Start: w.Start, End: w.End}
			if i == 0 && u.SpeakerID != "" {
				speaker := string(u.SpeakerID)
				word.Speaker = &speaker
			}
			words = append(words, word)
		}
	}
	return words
}

// records flattens like Flatten but keeps every extra key of each word
func records(utts []Utterance) []map[string]any {
	out := make([]map[string]any, 0)
	for _, u := range utts {
		for i, w := range u.Words {
			rec := make(map[string]any, len(w.Extra)+4)
			for k, v := range w.Extra {
				rec[k] = v
			}
			rec["word"] = w.Word
			rec["start"] = w.Start
			rec["end"] = w.End
			if i == 0 && u.SpeakerID != "" {
				rec["speaker"] = string(u.SpeakerID)
			}
			out = append(out, rec)
		}
	}
	return out
}

// Convert reads a QT export from r and writes the flattened word list to w.
// Unknown keys on words are passed through unchanged.
func Convert(r io.Reader, w io.Writer) (int, error) {
	utts, err := Decode(r)
	if err != nil {
		return 0, err
	}

	words := records(utts)
	enc := json.NewEncoder(w)
	if err := enc.Encode(words); err != nil {
		return 0, fmt.Errorf("encode word list: %w", err)
	}
	return len(words), nil
}
