package sampler

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"trax/internal/transcript"
)

// Rand is the source of randomness used for one sampler.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// globalRand uses the package-level math/rand/v2 functions, which are safe
// for concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// Segment is a contiguous run of words with its time bounds.
type Segment struct {
	Start float64           `json:"start"`
	End   float64           `json:"end"`
	Words []transcript.Word `json:"words"`
}

// Segments are the three parts of a task. Only Body is meant to be edited.
type Segments struct {
	Before Segment `json:"before"`
	Body   Segment `json:"body"`
	After  Segment `json:"after"`
}

// Task is one randomly sampled unit of annotation work
type Task struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"type"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Segments Segments `json:"segments"`
}

// Sampler draws tasks from a transcript. It keeps no state between calls
// and is safe for concurrent use as long as its Rand is.
type Sampler struct {
	tr    *transcript.Transcript
	cfg   Config
	rnd   Rand
	newID func() string
}

// Option customizes a Sampler
type Option func(*Sampler)

// WithRand sets the random source, e.g. a seeded *rand.Rand in tests.
func WithRand(r Rand) Option {
	return func(s *Sampler) {
		s.rnd = r
	}
}

// WithIDFunc sets the task id generator
func WithIDFunc(fn func() string) Option {
	return func(s *Sampler) {
		s.newID = fn
	}
}

// NewTaskID returns a random UUID as 32 hex characters
func NewTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// New creates a sampler. The transcript must be at least as long as
// cfg.MaxTaskDuration, otherwise there is no room to place a task.
func New(tr *transcript.Transcript, cfg Config, opts ...Option) (*Sampler, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transcript", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tr.Duration() < cfg.MaxTaskDuration {
		return nil, fmt.Errorf("%w: transcript lasts %.2fs, shorter than max task duration %.2fs",
			ErrConfiguration, tr.Duration(), cfg.MaxTaskDuration)
	}

	s := &Sampler{
		tr:    tr,
		cfg:   cfg,
		rnd:   globalRand{},
		newID: NewTaskID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the sampling bounds in use
func (s *Sampler) Config() Config {
	return s.cfg
}

// Len is the number of words tasks are drawn from
func (s *Sampler) Len() int {
	return s.tr.Len()
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rnd.Float64()
}

// RandomTask picks a random window of the transcript, snaps it to word
// boundaries and pads it with random amounts of context on both sides.
func (s *Sampler) RandomTask() (Task, error) {
	duration := s.uniform(s.cfg.MinTaskDuration, s.cfg.MaxTaskDuration)
	maxStart := s.tr.EndTime() - duration
	if maxStart < s.tr.StartTime() {
		return Task{}, fmt.Errorf("%w: no room for a %.2fs task in [%.2f, %.2f]",
			ErrConfiguration, duration, s.tr.StartTime(), s.tr.EndTime())
	}

	start := s.uniform(s.tr.StartTime(), maxStart)
	end := start + duration

	startIdx, startWord := s.tr.WordNearTime(start)
	endIdx, endWord := s.tr.WordNearTime(end)
	if endIdx < startIdx {
		endIdx, endWord = startIdx, startWord
	}

	body := Segment{
		Start: startWord.Start,
		End:   endWord.End,
		Words: s.tr.Slice(startIdx, endIdx+1),
	}
	before := s.before(startIdx, body.Start)
	after := s.after(endIdx, body.End)

	task := Task{
		ID:       s.newID(),
		Kind:     s.kind(),
		Start:    before.Start,
		End:      after.End,
		Segments: Segments{Before: before, Body: body, After: after},
	}
	return task, nil
}

// before builds the leading context ending right before the word at startIdx.
func (s *Sampler) before(startIdx int, bodyStart float64) Segment {
	t := bodyStart - s.uniform(s.cfg.MinContextPad, s.cfg.MaxContextPad)
	if t < 0 {
		t = 0
	}
	idx, _ := s.tr.WordNearTime(t)

	return newSegment(s.tr.Slice(idx, startIdx), bodyStart)
}

// after builds the trailing context starting right after the word at endIdx.
// The snapped word itself is excluded.
func (s *Sampler) after(endIdx int, bodyEnd float64) Segment {
	t := bodyEnd + s.uniform(s.cfg.MinContextPad, s.cfg.MaxContextPad)
	if t > s.tr.EndTime() {
		t = s.tr.EndTime()
	}
	idx, _ := s.tr.WordNearTime(t)

	return newSegment(s.tr.Slice(endIdx+1, idx), bodyEnd)
}

func (s *Sampler) kind() Kind {
	kinds := s.cfg.kinds()
	if len(kinds) == 1 {
		return kinds[0]
	}
	return kinds[s.rnd.IntN(len(kinds))]
}

// newSegment bounds a segment by its words, or collapses it onto fallback
// when there are none.
func newSegment(words []transcript.Word, fallback float64) Segment {
	if len(words) == 0 {
		return Segment{Start: fallback, End: fallback, Words: words}
	}
	return Segment{
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Words: words,
	}
}
