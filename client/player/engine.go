// Package player is the playback state machine: queue, shuffle, repeat and
// wall-clock position tracking. It owns no audio output; it models what is
// playing and where, and lets the UI and play-count bookkeeping hang off it.
package player

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// State is the engine lifecycle.
type State int

const (
	// Idle means no track is loaded.
	Idle State = iota
	// Loaded means a track is ready at position zero.
	Loaded
	// Playing means position advances with the clock.
	Playing
	// Paused means position is frozen.
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// RepeatMode controls what happens when a track ends.
type RepeatMode int

const (
	// RepeatNone stops at the end of the queue.
	RepeatNone RepeatMode = iota
	// RepeatOne replays the current track.
	RepeatOne
	// RepeatAll wraps from the last track to the first.
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	}
	return "none"
}

// PlaybackError means a track's media could not be read. The engine stays
// paused on the failed track so the user sees what broke.
type PlaybackError struct {
	TrackID string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("cannot play track %s: %v", e.TrackID, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// TrackLoader resolves track ids to metadata.
type TrackLoader interface {
	ByID(ctx context.Context, id string) (*model.Music, error)
}

// Snapshot is a point-in-time view of the engine.
type Snapshot struct {
	State      State
	Track      *model.Music
	PositionMs int64
	QueueIndex int
	QueueLen   int
	Shuffle    bool
	Repeat     RepeatMode
}

// Engine is the playback state machine. All methods are safe for concurrent
// use; a single mutex serializes every transition.
type Engine struct {
	loader TrackLoader

	mu         sync.Mutex
	queue      []*model.Music
	original   []*model.Music
	index      int
	state      State
	repeat     RepeatMode
	shuffle    bool
	positionMs int64
	lastTick   time.Time

	now    func() time.Time
	probe  func(path string) error
	onPlay func(trackID string)
	rng    *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the time source. Tests use a fake clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithProbe injects the media readability check. The default stats the
// track's path.
func WithProbe(probe func(path string) error) Option {
	return func(e *Engine) { e.probe = probe }
}

// WithOnPlay registers a callback fired whenever playback starts on a track.
// The play-count bookkeeping hangs off this.
func WithOnPlay(fn func(trackID string)) Option {
	return func(e *Engine) { e.onPlay = fn }
}

// WithRandSource injects the shuffle randomness source.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) }
}

// NewEngine builds an idle engine.
func NewEngine(loader TrackLoader, opts ...Option) *Engine {
	e := &Engine{
		loader: loader,
		now:    time.Now,
		probe: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadTrack replaces the queue with a single track and loads it.
func (e *Engine) LoadTrack(ctx context.Context, trackID string) error {
	track, err := e.loader.ByID(ctx, trackID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = []*model.Music{track}
	e.original = []*model.Music{track}
	e.index = 0
	return e.loadLocked(track)
}

// SetQueue replaces the queue with the given tracks and loads the one at
// start. Unknown ids fail the whole call.
func (e *Engine) SetQueue(ctx context.Context, trackIDs []string, start int) error {
	if len(trackIDs) == 0 {
		return apperr.New(apperr.Validation, "Queue is empty")
	}
	if start < 0 || start >= len(trackIDs) {
		return apperr.New(apperr.Validation, "Start index out of range")
	}

	tracks := make([]*model.Music, 0, len(trackIDs))
	for _, id := range trackIDs {
		track, err := e.loader.ByID(ctx, id)
		if err != nil {
			return err
		}
		tracks = append(tracks, track)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = tracks
	e.original = append([]*model.Music(nil), tracks...)
	e.index = start
	e.shuffle = false
	return e.loadLocked(tracks[start])
}

// loadLocked prepares the current track. An unreadable source leaves the
// engine paused on the failed track.
func (e *Engine) loadLocked(track *model.Music) error {
	e.positionMs = 0
	if err := e.probe(track.Path); err != nil {
		e.state = Paused
		return &PlaybackError{TrackID: track.ID, Err: err}
	}
	e.state = Loaded
	return nil
}

// Play starts or resumes playback.
func (e *Engine) Play() error {
	e.mu.Lock()

	switch e.state {
	case Playing:
		e.mu.Unlock()
		return nil
	case Idle:
		e.mu.Unlock()
		return apperr.New(apperr.Playback, "No track loaded")
	}

	e.state = Playing
	e.lastTick = e.now()
	var trackID string
	if e.onPlay != nil {
		trackID = e.queue[e.index].ID
	}
	e.mu.Unlock()

	if trackID != "" {
		e.onPlay(trackID)
	}
	return nil
}

// Pause freezes playback. Pausing while not playing is a no-op.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing {
		return
	}
	e.accrueLocked()
	e.state = Paused
}

// SeekTo moves the position, clamped to the track bounds. Unknown durations
// clamp only at zero.
func (e *Engine) SeekTo(positionMs int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle {
		return apperr.New(apperr.Playback, "No track loaded")
	}

	if positionMs < 0 {
		positionMs = 0
	}
	if d := e.queue[e.index].DurationMs; d > 0 && positionMs > d {
		positionMs = d
	}
	e.positionMs = positionMs
	e.lastTick = e.now()
	return nil
}

// Stop unloads the current track. The queue survives so play can restart it.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Idle
	e.positionMs = 0
}

// Tick advances the position from the wall clock and auto-advances at track
// end. Call it periodically while playing; RunTicker does so every second.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing {
		return
	}
	e.accrueLocked()

	d := e.queue[e.index].DurationMs
	if d <= 0 || e.positionMs < d {
		return
	}
	e.advanceLocked(1)
}

// accrueLocked folds elapsed wall time into the position.
func (e *Engine) accrueLocked() {
	now := e.now()
	e.positionMs += now.Sub(e.lastTick).Milliseconds()
	e.lastTick = now
}

// SkipToNext moves forward in the queue.
func (e *Engine) SkipToNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle {
		return
	}
	e.advanceLocked(1)
}

// SkipToPrevious moves back in the queue.
func (e *Engine) SkipToPrevious() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle {
		return
	}
	e.advanceLocked(-1)
}

// advanceLocked moves the queue cursor honoring the repeat mode. Running off
// either end with RepeatNone stops playback.
func (e *Engine) advanceLocked(step int) {
	wasPlaying := e.state == Playing

	if e.repeat == RepeatOne {
		e.restartCurrentLocked(wasPlaying)
		return
	}

	next := e.index + step
	switch {
	case next >= len(e.queue):
		if e.repeat != RepeatAll {
			e.state = Idle
			e.positionMs = 0
			return
		}
		next = 0
	case next < 0:
		if e.repeat != RepeatAll {
			next = 0
		} else {
			next = len(e.queue) - 1
		}
	}

	e.index = next
	e.restartCurrentLocked(wasPlaying)
}

func (e *Engine) restartCurrentLocked(resume bool) {
	e.positionMs = 0
	e.lastTick = e.now()
	if err := e.probe(e.queue[e.index].Path); err != nil {
		e.state = Paused
		return
	}
	if resume {
		e.state = Playing
	} else {
		e.state = Loaded
	}
}

// ToggleShuffle permutes the tracks after the current one, or restores the
// original order. The current track never moves.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return false
	}

	if e.shuffle {
		current := e.queue[e.index]
		e.queue = append([]*model.Music(nil), e.original...)
		for i, t := range e.queue {
			if t.ID == current.ID {
				e.index = i
				break
			}
		}
		e.shuffle = false
		return false
	}

	rest := e.queue[e.index+1:]
	e.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	e.shuffle = true
	return true
}

// ToggleRepeatMode cycles none, one, all.
func (e *Engine) ToggleRepeatMode() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repeat = (e.repeat + 1) % 3
	return e.repeat
}

// Snapshot returns the current engine view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:      e.state,
		PositionMs: e.positionMs,
		QueueIndex: e.index,
		QueueLen:   len(e.queue),
		Shuffle:    e.shuffle,
		Repeat:     e.repeat,
	}
	if e.state == Playing {
		snap.PositionMs += e.now().Sub(e.lastTick).Milliseconds()
	}
	if e.state != Idle && e.index < len(e.queue) {
		snap.Track = e.queue[e.index]
	}
	return snap
}

// RunTicker drives Tick once a second until the context ends.
func (e *Engine) RunTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}
