package device

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// In-repo driver for the Sitronix ST7789 240x240 panel of the Pirate Audio
// HAT, driven over SPI with a separate data/command line.

const (
	panelWidth  = 240
	panelHeight = 240
)

// Linux spidev transfers are capped to one page by default.
const spiChunkSize = 4096

const (
	st7789SWRESET = 0x01
	st7789SLPOUT  = 0x11
	st7789NORON   = 0x13
	st7789INVON   = 0x21
	st7789DISPOFF = 0x28
	st7789DISPON  = 0x29
	st7789CASET   = 0x2A
	st7789RASET   = 0x2B
	st7789RAMWR   = 0x2C
	st7789MADCTL  = 0x36
	st7789COLMOD  = 0x3A
)

type ST7789 struct {
	conn      spi.Conn
	dc        gpio.PinIO
	reset     gpio.PinIO
	backlight gpio.PinIO
}

// NewST7789 connects to the panel and runs the init sequence. reset may be
// nil when the board ties the line high, as the Pirate Audio HAT does.
func NewST7789(port spi.Port, dc, reset, backlight gpio.PinIO, rotation int, speed physic.Frequency) (*ST7789, error) {
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to spi port: %v", err)
	}

	d := &ST7789{
		conn:      conn,
		dc:        dc,
		reset:     reset,
		backlight: backlight,
	}

	if err := d.dc.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("unable to drive dc pin: %v", err)
	}

	if d.reset != nil {
		if err := d.reset.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("unable to drive reset pin: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if err := d.reset.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("unable to drive reset pin: %v", err)
		}
		time.Sleep(120 * time.Millisecond)
	}

	madctl, err := madctlValue(rotation)
	if err != nil {
		return nil, err
	}

	if err := d.command(st7789SWRESET); err != nil {
		return nil, err
	}
	time.Sleep(150 * time.Millisecond)
	if err := d.command(st7789SLPOUT); err != nil {
		return nil, err
	}
	time.Sleep(120 * time.Millisecond)
	if err := d.command(st7789COLMOD, 0x55); err != nil {
		return nil, err
	}
	if err := d.command(st7789MADCTL, madctl); err != nil {
		return nil, err
	}
	if err := d.command(st7789INVON); err != nil {
		return nil, err
	}
	if err := d.command(st7789NORON); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.command(st7789DISPON); err != nil {
		return nil, err
	}
	time.Sleep(100 * time.Millisecond)

	if d.backlight != nil {
		if err := d.backlight.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("unable to drive backlight pin: %v", err)
		}
	}

	return d, nil
}

func madctlValue(rotation int) (byte, error) {
	switch rotation {
	case 0:
		return 0x00, nil
	case 90:
		return 0x60, nil
	case 180:
		return 0xC0, nil
	case 270:
		return 0xA0, nil
	}
	return 0, fmt.Errorf("unsupported display rotation: %d", rotation)
}

// Draw pushes a full frame to the panel.
func (d *ST7789) Draw(img image.Image) error {
	if err := d.command(st7789CASET, 0, 0, 0, panelWidth-1); err != nil {
		return err
	}
	if err := d.command(st7789RASET, 0, 0, 0, panelHeight-1); err != nil {
		return err
	}
	if err := d.command(st7789RAMWR); err != nil {
		return err
	}
	return d.data(rgb565Frame(img))
}

// Halt switches the panel and backlight off.
func (d *ST7789) Halt() error {
	if err := d.command(st7789DISPOFF); err != nil {
		return err
	}
	if d.backlight != nil {
		return d.backlight.Out(gpio.Low)
	}
	return nil
}

func (d *ST7789) command(cmd byte, args ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return d.data(args)
}

func (d *ST7789) data(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		chunk := data
		if len(chunk) > spiChunkSize {
			chunk = chunk[:spiChunkSize]
		}
		if err := d.conn.Tx(chunk, nil); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// rgb565Frame converts a frame to the panel's big-endian 16 bit format.
func rgb565Frame(img image.Image) []byte {
	buf := make([]byte, panelWidth*panelHeight*2)
	min := img.Bounds().Min
	i := 0
	for y := 0; y < panelHeight; y++ {
		for x := 0; x < panelWidth; x++ {
			r, g, b, _ := img.At(min.X+x, min.Y+y).RGBA()
			pixel := uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
			buf[i] = byte(pixel >> 8)
			buf[i+1] = byte(pixel)
			i += 2
		}
	}
	return buf
}
