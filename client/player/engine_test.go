package player

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

type fakeLoader struct {
	tracks map[string]*model.Music
}

func (f *fakeLoader) ByID(_ context.Context, id string) (*model.Music, error) {
	track, ok := f.tracks[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Music not found")
	}
	return track, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLoader(ids ...string) *fakeLoader {
	loader := &fakeLoader{tracks: map[string]*model.Music{}}
	for _, id := range ids {
		loader.tracks[id] = &model.Music{
			ID:         id,
			Title:      "Track " + id,
			Path:       "/music/" + id + ".mp3",
			DurationMs: 10000,
		}
	}
	return loader
}

func newTestEngine(loader *fakeLoader, clock *fakeClock, opts ...Option) *Engine {
	base := []Option{
		WithClock(clock.Now),
		WithProbe(func(string) error { return nil }),
		WithRandSource(rand.NewSource(1)),
	}
	return NewEngine(loader, append(base, opts...)...)
}

func TestLoadUnknownTrack(t *testing.T) {
	engine := newTestEngine(newTestLoader("a"), &fakeClock{})

	err := engine.LoadTrack(context.Background(), "missing")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if engine.Snapshot().State != Idle {
		t.Fatalf("engine should stay idle after a failed load")
	}
}

func TestLoadUnreadableSource(t *testing.T) {
	loader := newTestLoader("a")
	engine := newTestEngine(loader, &fakeClock{}, WithProbe(func(string) error {
		return errors.New("permission denied")
	}))

	err := engine.LoadTrack(context.Background(), "a")
	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PlaybackError, got %v", err)
	}
	if pe.TrackID != "a" {
		t.Fatalf("expected track id a, got %s", pe.TrackID)
	}
	if engine.Snapshot().State != Paused {
		t.Fatalf("engine should pause on the failed track")
	}
}

func TestPlayAccruesPosition(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a"), clock)

	if err := engine.LoadTrack(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if err := engine.Play(); err != nil {
		t.Fatal(err)
	}

	clock.Advance(3 * time.Second)
	engine.Tick()

	snap := engine.Snapshot()
	if snap.State != Playing {
		t.Fatalf("expected playing, got %s", snap.State)
	}
	if snap.PositionMs != 3000 {
		t.Fatalf("expected position 3000, got %d", snap.PositionMs)
	}
}

func TestPauseFreezesPosition(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a"), clock)

	engine.LoadTrack(context.Background(), "a")
	engine.Play()
	clock.Advance(2 * time.Second)
	engine.Pause()

	clock.Advance(5 * time.Second)
	engine.Tick()

	snap := engine.Snapshot()
	if snap.State != Paused {
		t.Fatalf("expected paused, got %s", snap.State)
	}
	if snap.PositionMs != 2000 {
		t.Fatalf("paused position should not advance, got %d", snap.PositionMs)
	}
}

func TestPlayWhilePlayingIsNoop(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	plays := 0
	engine := newTestEngine(newTestLoader("a"), clock, WithOnPlay(func(string) { plays++ }))

	engine.LoadTrack(context.Background(), "a")
	engine.Play()
	engine.Play()

	if plays != 1 {
		t.Fatalf("expected one play callback, got %d", plays)
	}
}

func TestPlayWithoutTrack(t *testing.T) {
	engine := newTestEngine(newTestLoader(), &fakeClock{})
	if err := engine.Play(); !apperr.Is(err, apperr.Playback) {
		t.Fatalf("expected Playback error, got %v", err)
	}
}

func TestSeekClamps(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a"), clock)
	engine.LoadTrack(context.Background(), "a")

	if err := engine.SeekTo(99999); err != nil {
		t.Fatal(err)
	}
	if got := engine.Snapshot().PositionMs; got != 10000 {
		t.Fatalf("seek past end should clamp to duration, got %d", got)
	}

	if err := engine.SeekTo(-500); err != nil {
		t.Fatal(err)
	}
	if got := engine.Snapshot().PositionMs; got != 0 {
		t.Fatalf("negative seek should clamp to zero, got %d", got)
	}
}

func TestSeekWhileIdle(t *testing.T) {
	engine := newTestEngine(newTestLoader(), &fakeClock{})
	if err := engine.SeekTo(1000); !apperr.Is(err, apperr.Playback) {
		t.Fatalf("expected Playback error, got %v", err)
	}
}

func TestAutoAdvanceAtTrackEnd(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b"}, 0)
	engine.Play()

	clock.Advance(11 * time.Second)
	engine.Tick()

	snap := engine.Snapshot()
	if snap.Track == nil || snap.Track.ID != "b" {
		t.Fatalf("expected auto-advance to b, got %+v", snap.Track)
	}
	if snap.State != Playing {
		t.Fatalf("auto-advance should keep playing, got %s", snap.State)
	}
	if snap.PositionMs != 0 {
		t.Fatalf("next track should start at zero, got %d", snap.PositionMs)
	}
}

func TestRepeatNoneEndsQueue(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a"), clock)

	engine.SetQueue(context.Background(), []string{"a"}, 0)
	engine.Play()

	clock.Advance(11 * time.Second)
	engine.Tick()

	if got := engine.Snapshot().State; got != Idle {
		t.Fatalf("queue end with repeat none should idle, got %s", got)
	}
}

func TestRepeatOneReplays(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b"}, 0)
	if mode := engine.ToggleRepeatMode(); mode != RepeatOne {
		t.Fatalf("expected repeat one, got %s", mode)
	}
	engine.Play()

	clock.Advance(11 * time.Second)
	engine.Tick()

	snap := engine.Snapshot()
	if snap.Track.ID != "a" {
		t.Fatalf("repeat one should replay a, got %s", snap.Track.ID)
	}
	if snap.PositionMs != 0 {
		t.Fatalf("replay should start at zero, got %d", snap.PositionMs)
	}
}

func TestRepeatAllWraps(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b"}, 1)
	engine.ToggleRepeatMode() // one
	engine.ToggleRepeatMode() // all
	engine.Play()

	engine.SkipToNext()

	snap := engine.Snapshot()
	if snap.Track.ID != "a" {
		t.Fatalf("repeat all should wrap to a, got %s", snap.Track.ID)
	}
	if snap.State != Playing {
		t.Fatalf("skip while playing should keep playing, got %s", snap.State)
	}
}

func TestSkipPreviousAtStartStaysOnFirst(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b"}, 0)
	engine.SkipToPrevious()

	snap := engine.Snapshot()
	if snap.Track.ID != "a" {
		t.Fatalf("expected to stay on a, got %s", snap.Track.ID)
	}
	if snap.PositionMs != 0 {
		t.Fatalf("skip previous should restart the track, got %d", snap.PositionMs)
	}
}

func TestShuffleKeepsCurrentAndRestoresOrder(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b", "c", "d", "e"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b", "c", "d", "e"}, 1)

	if !engine.ToggleShuffle() {
		t.Fatal("expected shuffle on")
	}
	snap := engine.Snapshot()
	if snap.Track.ID != "b" {
		t.Fatalf("shuffle must not move the current track, got %s", snap.Track.ID)
	}

	if engine.ToggleShuffle() {
		t.Fatal("expected shuffle off")
	}
	snap = engine.Snapshot()
	if snap.Track.ID != "b" {
		t.Fatalf("restore must keep the current track, got %s", snap.Track.ID)
	}
	if snap.QueueIndex != 1 {
		t.Fatalf("restore should find the original index, got %d", snap.QueueIndex)
	}
}

func TestToggleRepeatModeCycles(t *testing.T) {
	engine := newTestEngine(newTestLoader(), &fakeClock{})

	modes := []RepeatMode{RepeatOne, RepeatAll, RepeatNone}
	for _, want := range modes {
		if got := engine.ToggleRepeatMode(); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestStopKeepsQueue(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	engine := newTestEngine(newTestLoader("a", "b"), clock)

	engine.SetQueue(context.Background(), []string{"a", "b"}, 0)
	engine.Play()
	engine.Stop()

	snap := engine.Snapshot()
	if snap.State != Idle {
		t.Fatalf("expected idle after stop, got %s", snap.State)
	}
	if snap.QueueLen != 2 {
		t.Fatalf("stop should keep the queue, got %d", snap.QueueLen)
	}
}
