package srv

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jfavier/luffy/internal/srv/config"
	"github.com/jfavier/luffy/internal/srv/device"
	"github.com/jfavier/luffy/internal/srv/event"
)

type fakeEngine struct {
	loaded   []string
	paused   bool
	volume   int64
	loadErr  error
	position time.Duration
	duration time.Duration
	hasTrack bool
}

func (e *fakeEngine) Start()            {}
func (e *fakeEngine) StopSendingEvent() {}
func (e *fakeEngine) Stop()             {}

func (e *fakeEngine) Load(track device.Track) error {
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded = append(e.loaded, track.Path)
	e.hasTrack = true
	e.paused = true
	return nil
}

func (e *fakeEngine) Play()                 { e.paused = false }
func (e *fakeEngine) Pause()                { e.paused = true }
func (e *fakeEngine) SetVolume(volume int64) { e.volume = volume }

func (e *fakeEngine) Position() (time.Duration, time.Duration, bool) {
	return e.position, e.duration, e.hasTrack
}

type fakeDisplay struct {
	mu     sync.Mutex
	frames int
}

func (d *fakeDisplay) Start() {}
func (d *fakeDisplay) Stop()  {}

func (d *fakeDisplay) ShowImage(img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
}

func (d *fakeDisplay) renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func newTestApp(t *testing.T, trackCount int) (*PlayerApp, *fakeEngine, *fakeDisplay) {
	t.Helper()

	dir := t.TempDir()
	for i := 0; i < trackCount; i++ {
		name := filepath.Join(dir, fmt.Sprintf("track%d.mp3", i))
		if err := os.WriteFile(name, []byte("stub"), 0660); err != nil {
			t.Fatal(err)
		}
	}
	catalog, err := device.NewCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}

	engine := &fakeEngine{}
	display := &fakeDisplay{}

	app := &PlayerApp{
		currentStatus:    STOPPED_STATUS,
		currentVolume:    50,
		loadedTrackIndex: -1,
		displayDevice:    display,
		audioPlayer:      engine,
		catalog:          catalog,
		eventQueue:       event.NewQueue(eventQueueCapacity),
		refreshTick:      time.Second,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		PlayerConfig: &config.PlayerConfig{
			PlayerParam: &config.PlayerParam{},
			PlayerState: config.NewPlayerState(filepath.Join(t.TempDir(), "state.yaml")),
		},
	}
	return app, engine, display
}

func press(app *PlayerApp, buttonId event.ButtonId) {
	app.handleEvent(event.PlayerEvent{Data: event.ButtonPressedData{ButtonId: buttonId}})
}

func mediaEnded(app *PlayerApp) {
	app.handleEvent(event.PlayerEvent{Data: event.MediaEndedData{}})
}

func TestPlayPauseFromStopped(t *testing.T) {
	app, engine, display := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON)

	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing", app.currentStatus)
	}
	if app.currentTrackIndex != 0 {
		t.Errorf("trackIndex = %d, want 0", app.currentTrackIndex)
	}
	if len(engine.loaded) != 1 {
		t.Fatalf("engine loaded %d tracks, want 1", len(engine.loaded))
	}
	if engine.paused {
		t.Error("engine should be playing")
	}
	if display.renders() == 0 {
		t.Error("transition should trigger a render")
	}
}

func TestPlayPauseToggles(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON)
	press(app, event.PLAY_PAUSE_BUTTON)

	if app.currentStatus != PAUSED_STATUS {
		t.Errorf("status = %v, want paused", app.currentStatus)
	}
	if !engine.paused {
		t.Error("engine should be paused")
	}

	press(app, event.PLAY_PAUSE_BUTTON)

	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing", app.currentStatus)
	}
	if engine.paused {
		t.Error("engine should have resumed")
	}
	// Resume must not reload the track.
	if len(engine.loaded) != 1 {
		t.Errorf("engine loaded %d tracks, want 1", len(engine.loaded))
	}
}

func TestNextWhileStoppedOnlyMovesIndex(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	press(app, event.NEXT_BUTTON)

	if app.currentStatus != STOPPED_STATUS {
		t.Errorf("status = %v, want stopped", app.currentStatus)
	}
	if app.currentTrackIndex != 1 {
		t.Errorf("trackIndex = %d, want 1", app.currentTrackIndex)
	}
	if len(engine.loaded) != 0 {
		t.Errorf("engine loaded %d tracks, want 0", len(engine.loaded))
	}
}

func TestNextWrapsAround(t *testing.T) {
	app, _, _ := newTestApp(t, 4)

	for i := 0; i < 4; i++ {
		press(app, event.NEXT_BUTTON)
	}

	if app.currentTrackIndex != 0 {
		t.Errorf("trackIndex = %d, want 0 after full cycle", app.currentTrackIndex)
	}
}

func TestNextWhilePlayingLoadsNextTrack(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON)
	press(app, event.NEXT_BUTTON)

	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing", app.currentStatus)
	}
	if app.currentTrackIndex != 1 {
		t.Errorf("trackIndex = %d, want 1", app.currentTrackIndex)
	}
	if len(engine.loaded) != 2 {
		t.Fatalf("engine loaded %d tracks, want 2", len(engine.loaded))
	}
	if filepath.Base(engine.loaded[1]) != "track1.mp3" {
		t.Errorf("loaded %s, want track1.mp3", engine.loaded[1])
	}
}

func TestResumeAfterNextWhilePausedStartsSelectedTrack(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON) // playing track0
	press(app, event.PLAY_PAUSE_BUTTON) // paused
	press(app, event.NEXT_BUTTON)       // index moves, engine untouched

	if len(engine.loaded) != 1 {
		t.Fatalf("engine loaded %d tracks, want 1", len(engine.loaded))
	}

	press(app, event.PLAY_PAUSE_BUTTON) // resume: must play track1

	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing", app.currentStatus)
	}
	if len(engine.loaded) != 2 || filepath.Base(engine.loaded[1]) != "track1.mp3" {
		t.Errorf("resume after next should load track1, loaded: %v", engine.loaded)
	}
}

func TestVolumeStepsAndClamping(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	for i := 0; i < 3; i++ {
		press(app, event.VOLUME_DOWN_BUTTON)
	}
	if app.currentVolume != 35 {
		t.Errorf("volume = %d, want 35", app.currentVolume)
	}
	if engine.volume != 35 {
		t.Errorf("engine volume = %d, want 35", engine.volume)
	}

	// Clamp at 100, never 103.
	app.currentVolume = 98
	press(app, event.VOLUME_UP_BUTTON)
	if app.currentVolume != 100 {
		t.Errorf("volume = %d, want 100", app.currentVolume)
	}
	press(app, event.VOLUME_UP_BUTTON)
	if app.currentVolume != 100 {
		t.Errorf("volume = %d, want 100 after second press", app.currentVolume)
	}

	// Clamp at 0.
	app.currentVolume = 2
	press(app, event.VOLUME_DOWN_BUTTON)
	if app.currentVolume != 0 {
		t.Errorf("volume = %d, want 0", app.currentVolume)
	}
}

func TestVolumeChangeDoesNotTouchPlayback(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON)
	press(app, event.VOLUME_UP_BUTTON)

	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing", app.currentStatus)
	}
	if len(engine.loaded) != 1 {
		t.Errorf("volume change reloaded the track: %v", engine.loaded)
	}
}

func TestMediaEndedEqualsNextWhilePlaying(t *testing.T) {
	manual, manualEngine, _ := newTestApp(t, 4)
	auto, autoEngine, _ := newTestApp(t, 4)

	press(manual, event.PLAY_PAUSE_BUTTON)
	press(auto, event.PLAY_PAUSE_BUTTON)

	press(manual, event.NEXT_BUTTON)
	mediaEnded(auto)

	if manual.currentStatus != auto.currentStatus {
		t.Errorf("status: manual %v, auto %v", manual.currentStatus, auto.currentStatus)
	}
	if manual.currentTrackIndex != auto.currentTrackIndex {
		t.Errorf("trackIndex: manual %d, auto %d", manual.currentTrackIndex, auto.currentTrackIndex)
	}
	if len(manualEngine.loaded) != len(autoEngine.loaded) {
		t.Errorf("loads: manual %v, auto %v", manualEngine.loaded, autoEngine.loaded)
	}
}

func TestMediaEndedIgnoredWhenNotPlaying(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)

	mediaEnded(app)
	if app.currentTrackIndex != 0 || app.currentStatus != STOPPED_STATUS {
		t.Error("media ended while stopped should be absorbed")
	}

	press(app, event.PLAY_PAUSE_BUTTON)
	press(app, event.PLAY_PAUSE_BUTTON) // paused
	mediaEnded(app)

	if app.currentTrackIndex != 0 {
		t.Errorf("trackIndex = %d, want 0: media ended while paused should not advance", app.currentTrackIndex)
	}
	if app.currentStatus != PAUSED_STATUS {
		t.Errorf("status = %v, want paused", app.currentStatus)
	}
	if len(engine.loaded) != 1 {
		t.Errorf("engine loaded %d tracks, want 1", len(engine.loaded))
	}
}

func TestLoadFailureRevertsToStopped(t *testing.T) {
	app, engine, _ := newTestApp(t, 4)
	engine.loadErr = errors.New("codec exploded")

	press(app, event.PLAY_PAUSE_BUTTON)

	if app.currentStatus != STOPPED_STATUS {
		t.Errorf("status = %v, want stopped after load failure", app.currentStatus)
	}

	// The loop keeps processing events afterwards.
	engine.loadErr = nil
	press(app, event.PLAY_PAUSE_BUTTON)
	if app.currentStatus != PLAYING_STATUS {
		t.Errorf("status = %v, want playing after recovery", app.currentStatus)
	}
}

// The scripted walk of the whole transition table.
func TestPlaybackScenario(t *testing.T) {
	app, _, _ := newTestApp(t, 4)

	press(app, event.PLAY_PAUSE_BUTTON)
	if app.currentStatus != PLAYING_STATUS || app.currentTrackIndex != 0 {
		t.Fatalf("after play: %v@%d, want playing@0", app.currentStatus, app.currentTrackIndex)
	}

	press(app, event.NEXT_BUTTON)
	if app.currentStatus != PLAYING_STATUS || app.currentTrackIndex != 1 {
		t.Fatalf("after next: %v@%d, want playing@1", app.currentStatus, app.currentTrackIndex)
	}

	for i := 0; i < 3; i++ {
		press(app, event.VOLUME_DOWN_BUTTON)
	}
	if app.currentVolume != 35 {
		t.Fatalf("volume = %d, want 35", app.currentVolume)
	}
	if app.currentStatus != PLAYING_STATUS {
		t.Fatalf("volume presses changed status to %v", app.currentStatus)
	}

	press(app, event.PLAY_PAUSE_BUTTON)
	if app.currentStatus != PAUSED_STATUS || app.currentTrackIndex != 1 {
		t.Fatalf("after pause: %v@%d, want paused@1", app.currentStatus, app.currentTrackIndex)
	}

	mediaEnded(app)
	if app.currentStatus != PAUSED_STATUS || app.currentTrackIndex != 1 {
		t.Fatalf("after stray media end: %v@%d, want paused@1", app.currentStatus, app.currentTrackIndex)
	}
}

func TestIdleLoopSynthesizesRefreshPerTick(t *testing.T) {
	app, _, display := newTestApp(t, 4)
	app.refreshTick = 50 * time.Millisecond

	go app.eventLoop()
	time.Sleep(180 * time.Millisecond)
	app.eventLoopAskDone <- true
	<-app.eventLoopDone

	renders := display.renders()
	if renders < 2 {
		t.Errorf("renders = %d, want at least 2 over 3+ idle ticks", renders)
	}
	if renders > 5 {
		t.Errorf("renders = %d, want one per tick, not a burst", renders)
	}
}

func TestRefreshRequestedRendersWithoutStateChange(t *testing.T) {
	app, _, display := newTestApp(t, 4)

	app.handleEvent(event.PlayerEvent{Data: event.RefreshRequestedData{}})

	if display.renders() != 1 {
		t.Errorf("renders = %d, want 1", display.renders())
	}
	if app.currentStatus != STOPPED_STATUS || app.currentTrackIndex != 0 || app.currentVolume != 50 {
		t.Error("refresh request must not change state")
	}
}
