package srv

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func TestRenderFrameSize(t *testing.T) {
	frame := renderFrame(frameState{
		status:    STOPPED_STATUS,
		trackName: "track0",
		volume:    50,
	})
	bounds := frame.Bounds()
	if bounds.Dx() != panelSize || bounds.Dy() != panelSize {
		t.Errorf("frame is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), panelSize, panelSize)
	}
}

func TestRenderFrameWithArtworkBackground(t *testing.T) {
	artwork := image.NewRGBA(image.Rect(0, 0, panelSize, panelSize))
	for y := 0; y < panelSize; y++ {
		for x := 0; x < panelSize; x++ {
			artwork.Set(x, y, color.RGBA{R: 40, G: 10, B: 60, A: 255})
		}
	}

	frame := renderFrame(frameState{
		status:      PLAYING_STATUS,
		trackName:   "track0",
		volume:      80,
		position:    42 * time.Second,
		duration:    180 * time.Second,
		hasPosition: true,
		artwork:     artwork,
	})

	// A corner away from any text should show the artwork, not black.
	r, g, b, _ := frame.At(panelSize-1, panelSize-1).RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("artwork background missing from rendered frame")
	}
}

func TestRenderFrameWithoutArtworkIsBlackBackground(t *testing.T) {
	frame := renderFrame(frameState{
		status:    STOPPED_STATUS,
		trackName: "track0",
		volume:    50,
	})

	r, g, b, _ := frame.At(panelSize-1, panelSize-1).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Error("background should be black when no artwork is available")
	}
}

func TestRenderFrameVolumeGauge(t *testing.T) {
	empty := renderFrame(frameState{trackName: "t", volume: 0})
	full := renderFrame(frameState{trackName: "t", volume: 100})

	// Sample inside the gauge body, past the border.
	x, y := 120, 109
	_, eg, _, _ := empty.At(x, y).RGBA()
	_, fg, _, _ := full.At(x, y).RGBA()
	if eg >= fg {
		t.Error("full gauge should be brighter than empty gauge at midpoint")
	}
}

func TestRenderSplashAndFarewellFrames(t *testing.T) {
	for _, frame := range []image.Image{renderSplashFrame(), renderFarewellFrame()} {
		if frame == nil {
			t.Fatal("frame is nil")
		}
		bounds := frame.Bounds()
		if bounds.Dx() != panelSize || bounds.Dy() != panelSize {
			t.Errorf("frame is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), panelSize, panelSize)
		}
	}
}
