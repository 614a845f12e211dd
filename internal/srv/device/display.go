package device

import (
	"image"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/jfavier/luffy/internal/srv/config"
)

func NewDisplay(param config.DisplayParam, simulationMode bool) *Display {
	device := Display{
		param:          param,
		simulationMode: simulationMode,
		askDone:        make(chan bool),
		askImg:         make(chan image.Image),
		done:           make(chan bool),
	}

	return &device
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	if d.simulationMode {
		d.startSimulation()
		return
	}

	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize periph host: %v", err)
	}

	var err error
	d.spiPort, err = spireg.Open(d.param.SpiPort)
	if err != nil {
		logrus.Fatalf("Unable to open spi port %s: %v\n", d.param.SpiPort, err)
	}

	var resetPin gpio.PinIO
	if d.param.ResetPin != "" {
		resetPin = displayPin(d.param.ResetPin)
	}

	d.panel, err = NewST7789(
		d.spiPort,
		displayPin(d.param.DcPin),
		resetPin,
		displayPin(d.param.BacklightPin),
		d.param.Rotation,
		physic.Frequency(d.param.SpiHz)*physic.Hertz,
	)
	if err != nil {
		logrus.Fatalf("Unable to initialize lcd panel: %v\n", err)
	}

	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			case newImg := <-d.askImg:
				if err := d.panel.Draw(newImg); err != nil {
					logrus.Warnf("Unable to push frame to lcd panel: %v", err)
				}
			}
		}
		if err := d.panel.Halt(); err != nil {
			logrus.Warnf("Unable to halt lcd panel: %v", err)
		}
		d.spiPort.Close()
		d.done <- true
	}()
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if d.simulationMode {
		d.closeSimulationWindow()
	} else {
		d.askDone <- true
		<-d.done
	}
}

// ShowImage hands a frame to the panel goroutine. The last frame is kept so
// the simulation window can repaint on demand.
func (d *Display) ShowImage(img image.Image) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.lastImg = img
	if d.simulationMode {
		d.invalidateSimulationWindow()
	} else {
		d.askImg <- img
	}
}

func displayPin(name string) gpio.PinIO {
	pin := gpioreg.ByName(name)
	if pin == nil {
		logrus.Fatalf("Failed to find display pin %s", name)
	}
	return pin
}
