package device

import (
	"image"
	"log"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"periph.io/x/conn/v3/spi"

	"github.com/jfavier/luffy/internal/srv/config"
)

type Display struct {
	param   config.DisplayParam
	spiPort spi.PortCloser
	panel   *ST7789

	lock           sync.RWMutex
	simulationMode bool
	lastImg        image.Image

	simulationWindow *app.Window

	askDone chan bool
	askImg  chan image.Image
	done    chan bool
}

func (d *Display) startSimulation() {
	d.simulationWindow = app.NewWindow(
		app.Size(unit.Px(panelWidth), unit.Px(panelHeight)),
		app.MinSize(unit.Px(panelWidth/2), unit.Px(panelHeight/2)))
	go func() {
		if err := d.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()
}

func (d *Display) invalidateSimulationWindow() {
	d.simulationWindow.Invalidate()
}

func (d *Display) closeSimulationWindow() {
	d.simulationWindow.Close()
}

func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			d.lock.RLock()
			lastImg := d.lastImg
			d.lock.RUnlock()

			if lastImg != nil {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}
