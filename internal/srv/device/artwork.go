package device

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/dhowden/tag"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

const artworkSize = 240

// Pictures are dimmed so that the text drawn on top stays readable.
const artworkDimming = 0.3

// TrackArtwork extracts the embedded picture of an audio file, scaled and
// dimmed to serve as a 240x240 display background. It returns nil when the
// file carries no usable picture; the caller falls back to a solid
// background.
func TrackArtwork(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	picture := meta.Picture()
	if picture == nil || len(picture.Data) == 0 {
		return nil
	}

	art, _, err := image.Decode(bytes.NewReader(picture.Data))
	if err != nil {
		logrus.Debugf("Unable to decode artwork of %s: %v", path, err)
		return nil
	}

	return fitArtwork(art)
}

// fitArtwork scales the picture to fit the panel, centers it on black and
// dims it.
func fitArtwork(art image.Image) image.Image {
	srcBounds := art.Bounds()
	if srcBounds.Dx() == 0 || srcBounds.Dy() == 0 {
		return nil
	}

	dstW, dstH := artworkSize, artworkSize
	if srcBounds.Dx() > srcBounds.Dy() {
		dstH = srcBounds.Dy() * artworkSize / srcBounds.Dx()
	} else {
		dstW = srcBounds.Dx() * artworkSize / srcBounds.Dy()
	}

	background := image.NewRGBA(image.Rect(0, 0, artworkSize, artworkSize))
	draw.Draw(background, background.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	target := image.Rect(0, 0, dstW, dstH).Add(image.Pt((artworkSize-dstW)/2, (artworkSize-dstH)/2))
	draw.ApproxBiLinear.Scale(background, target, art, srcBounds, draw.Src, nil)

	for i := 0; i < len(background.Pix); i += 4 {
		background.Pix[i] = uint8(float64(background.Pix[i]) * artworkDimming)
		background.Pix[i+1] = uint8(float64(background.Pix[i+1]) * artworkDimming)
		background.Pix[i+2] = uint8(float64(background.Pix[i+2]) * artworkDimming)
	}

	return background
}
