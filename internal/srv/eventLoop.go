package srv

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jfavier/luffy/internal/srv/event"
)

// eventLoop is the only goroutine that reads or writes the playback state
// and the only caller of the renderer. Everything else talks to it through
// the event queue.
func (s *PlayerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.eventQueue.C():
			s.handleEvent(ev)
		case <-time.After(s.refreshTick):
			// No event for a full tick: synthesize a refresh so the
			// elapsed time display stays live during playback.
			s.handleEvent(event.PlayerEvent{Data: event.RefreshRequestedData{}})
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *PlayerApp) handleEvent(ev event.PlayerEvent) {
	switch data := ev.Data.(type) {
	case event.ButtonPressedData:
		logrus.Debugf("Receive button event: %s", data.ButtonId)
		s.handleButton(data.ButtonId)
	case event.MediaEndedData:
		s.handleMediaEnded()
	case event.RefreshRequestedData:
		s.refreshDisplay()
	}
}

func (s *PlayerApp) handleButton(buttonId event.ButtonId) {
	switch buttonId {
	case event.PLAY_PAUSE_BUTTON:
		s.togglePlayback()
	case event.NEXT_BUTTON:
		s.nextTrack()
	case event.VOLUME_DOWN_BUTTON:
		s.adjustVolume(-VolumeStep)
	case event.VOLUME_UP_BUTTON:
		s.adjustVolume(VolumeStep)
	}
}

func (s *PlayerApp) togglePlayback() {
	switch s.currentStatus {
	case STOPPED_STATUS:
		s.startPlayback()
	case PLAYING_STATUS:
		s.audioPlayer.Pause()
		s.currentStatus = PAUSED_STATUS
		logrus.Infof("Playback paused")
	case PAUSED_STATUS:
		if s.loadedTrackIndex != s.currentTrackIndex {
			// The selection moved while paused: resuming means starting
			// the selected track, not the stale one.
			s.startPlayback()
		} else {
			s.audioPlayer.Play()
			s.currentStatus = PLAYING_STATUS
			logrus.Infof("Playback resumed")
		}
	}
	s.refreshDisplay()
}

// startPlayback loads and plays the current track. An engine failure is not
// fatal: it is logged and the player falls back to Stopped.
func (s *PlayerApp) startPlayback() {
	track := s.catalog.Track(s.currentTrackIndex)

	if err := s.audioPlayer.Load(track); err != nil {
		logrus.Warnf("Unable to load track %s: %v", track.Path, err)
		s.currentStatus = STOPPED_STATUS
		return
	}
	s.loadedTrackIndex = s.currentTrackIndex

	s.audioPlayer.SetVolume(s.currentVolume)
	s.audioPlayer.Play()
	s.currentStatus = PLAYING_STATUS
	logrus.Infof("Started playing: %s", track.Path)
}

func (s *PlayerApp) nextTrack() {
	s.currentTrackIndex = (s.currentTrackIndex + 1) % s.catalog.Len()
	if s.currentStatus == PLAYING_STATUS {
		s.startPlayback()
	}
	logrus.Infof("Switched to track: %s", s.catalog.Track(s.currentTrackIndex).Path)
	s.refreshDisplay()
}

func (s *PlayerApp) adjustVolume(delta int64) {
	volume := s.currentVolume + delta
	if volume > 100 {
		volume = 100
	}
	if volume < 0 {
		volume = 0
	}
	s.currentVolume = volume
	s.PlayerState.SetVolume(volume)
	s.audioPlayer.SetVolume(volume)
	logrus.Infof("Volume adjusted to %d%%", volume)
	s.refreshDisplay()
}

func (s *PlayerApp) handleMediaEnded() {
	if s.currentStatus != PLAYING_STATUS {
		// End notification of a track that was paused or superseded
		// meanwhile: absorb it.
		logrus.Debugf("Media ended while not playing, ignored")
		return
	}
	logrus.Debugf("Receive media ended event")
	s.nextTrack()
}
