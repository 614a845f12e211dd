package srv

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/jfavier/luffy/internal/srv/device"
	"github.com/jfavier/luffy/internal/version"
)

const panelSize = 240

// frameState is the snapshot handed to the renderer: plain values only, the
// renderer never reaches back into the player.
type frameState struct {
	status      PlaybackStatus
	trackName   string
	volume      int64
	position    time.Duration
	duration    time.Duration
	hasPosition bool
	artwork     image.Image
}

func (s *PlayerApp) refreshDisplay() {
	track := s.catalog.Track(s.currentTrackIndex)

	if track.Path != s.artworkPath {
		s.artworkPath = track.Path
		s.artwork = device.TrackArtwork(track.Path)
	}

	position, duration, ok := s.audioPlayer.Position()

	frame := renderFrame(frameState{
		status:      s.currentStatus,
		trackName:   track.Name,
		volume:      s.currentVolume,
		position:    position,
		duration:    duration,
		hasPosition: ok && s.currentStatus == PLAYING_STATUS,
		artwork:     s.artwork,
	})
	s.displayDevice.ShowImage(frame)
}

// renderFrame builds the 240x240 frame for a snapshot. Pure: no player
// state, no side effects.
func renderFrame(state frameState) *image.RGBA {
	img := newFrame()

	if state.artwork != nil {
		draw.Draw(img, img.Bounds(), state.artwork, state.artwork.Bounds().Min, draw.Src)
	}

	AddLabel(img, 10, 30, whiteColor, "Now Playing:")

	var nameColor color.RGBA
	if state.status == PLAYING_STATUS {
		nameColor = greenColor
	} else {
		nameColor = redColor
	}
	AddLabel(img, 10, 55, nameColor, state.trackName)

	AddLabel(img, 10, 95, whiteColor, fmt.Sprintf("Volume: %d%%", state.volume))
	AddGauge(img, image.Rect(10, 103, 230, 115), float64(state.volume)/100)

	if state.hasPosition {
		AddLabel(img, 10, 140, whiteColor,
			fmt.Sprintf("Time: %ds / %ds", int(state.position.Seconds()), int(state.duration.Seconds())))
	}

	controls := []string{
		"A: Play/Pause",
		"B: Next Track",
		"X: Vol Down",
		"Y: Vol Up",
	}
	for i, control := range controls {
		AddLabel(img, 10, 170+i*16, greyColor, control)
	}

	return img
}

func renderSplashFrame() *image.RGBA {
	img := newFrame()
	AddCenteredLabel(img, 110, whiteColor, "luffy")
	AddCenteredLabel(img, 130, greyColor, "version "+version.AppVersion.String())
	return img
}

func renderFarewellFrame() *image.RGBA {
	img := newFrame()
	AddCenteredLabel(img, 120, whiteColor, "See you!")
	return img
}

func newFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, panelSize, panelSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{blackColor}, image.Point{}, draw.Src)
	return img
}
