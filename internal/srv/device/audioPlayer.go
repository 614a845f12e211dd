package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"

	"github.com/jfavier/luffy/internal/srv/event"
)

// Engine is the contract between the event loop and the audio backend. The
// backend reports end-of-stream by enqueuing a MediaEnded event, never by
// calling back into the loop.
type Engine interface {
	Start()
	StopSendingEvent()
	Stop()
	Load(track Track) error
	Play()
	Pause()
	SetVolume(volume int64)
	Position() (position time.Duration, duration time.Duration, ok bool)
}

// All decoded streams are resampled to one mixer rate so that the speaker
// is initialized exactly once.
const mixerSampleRate = beep.SampleRate(44100)

const resampleQuality = 4

// AudioPlayer plays local audio files through the beep speaker. One track is
// loaded at a time; loading a new track supersedes the previous one and
// detaches its end-of-stream notification.
type AudioPlayer struct {
	lock       sync.Mutex
	eventQueue *event.Queue

	// generation invalidates the end-of-stream callback of a superseded
	// track. Read from the speaker goroutine, hence atomic.
	generation uint64
	sendEvent  int32

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	volumePercent int64
}

func NewAudioPlayer(eventQueue *event.Queue) *AudioPlayer {
	return &AudioPlayer{
		eventQueue:    eventQueue,
		sendEvent:     1,
		volumePercent: 50,
	}
}

func (d *AudioPlayer) Start() {
	logrus.Infof("Start audio player device")

	err := speaker.Init(mixerSampleRate, mixerSampleRate.N(100*time.Millisecond))
	if err != nil {
		logrus.Fatalf("Unable to initialize speaker: %v", err)
	}
}

func (d *AudioPlayer) StopSendingEvent() {
	logrus.Infof("Stop sending events for audio player device")

	atomic.StoreInt32(&d.sendEvent, 0)
}

func (d *AudioPlayer) Stop() {
	logrus.Infof("Stop audio player device")

	d.lock.Lock()
	defer d.lock.Unlock()

	atomic.AddUint64(&d.generation, 1)
	speaker.Clear()
	d.release()
	speaker.Close()
}

// Load decodes the track and hands it to the speaker, paused. Any previously
// loaded track is released first and its end-of-stream subscription detached,
// so a late completion of the old track is never mistaken for the new one.
func (d *AudioPlayer) Load(track Track) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	generation := atomic.AddUint64(&d.generation, 1)
	speaker.Clear()
	d.release()

	f, err := os.Open(track.Path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %v", track.Path, err)
	}

	streamer, format, err := decodeAudioFile(f, track.Path)
	if err != nil {
		f.Close()
		return fmt.Errorf("unable to decode %s: %v", track.Path, err)
	}

	d.file = f
	d.streamer = streamer
	d.format = format

	var resampled beep.Streamer = streamer
	if format.SampleRate != mixerSampleRate {
		resampled = beep.Resample(resampleQuality, format.SampleRate, mixerSampleRate, streamer)
	}

	d.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	d.volume = &effects.Volume{
		Streamer: d.ctrl,
		Base:     2,
		Volume:   volumeGain(d.volumePercent),
		Silent:   d.volumePercent == 0,
	}

	speaker.Play(beep.Seq(d.volume, beep.Callback(func() {
		if atomic.LoadUint64(&d.generation) != generation {
			logrus.Debugf("End of superseded track ignored")
			return
		}
		if atomic.LoadInt32(&d.sendEvent) == 0 {
			return
		}
		d.eventQueue.Offer(event.PlayerEvent{Data: event.MediaEndedData{}})
	})))

	logrus.Infof("Loaded track: %s", track.Path)

	return nil
}

func (d *AudioPlayer) Play() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
}

func (d *AudioPlayer) Pause() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
}

// SetVolume applies the volume to the live stream; the track never restarts.
func (d *AudioPlayer) SetVolume(volume int64) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.volumePercent = volume
	if d.volume == nil {
		return
	}
	speaker.Lock()
	d.volume.Volume = volumeGain(volume)
	d.volume.Silent = volume == 0
	speaker.Unlock()
}

// Position reports the current offset and total duration of the loaded
// track. ok is false when no track is loaded.
func (d *AudioPlayer) Position() (time.Duration, time.Duration, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.streamer == nil {
		return 0, 0, false
	}
	speaker.Lock()
	position := d.format.SampleRate.D(d.streamer.Position())
	duration := d.format.SampleRate.D(d.streamer.Len())
	speaker.Unlock()
	return position, duration, true
}

func (d *AudioPlayer) release() {
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.ctrl = nil
	d.volume = nil
}

// volumeGain converts a 0..100 percentage to the logarithmic gain expected
// by effects.Volume (base 2): 100% is unity, each 12.5 points halve the
// loudness.
func volumeGain(percent int64) float64 {
	return (float64(percent) - 100) / 12.5
}

func decodeAudioFile(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %s", path)
}
