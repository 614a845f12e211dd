package device

import (
	"image"
	"sync"

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

	askDone chan bool
	askImg  chan image.Image
	done    chan bool
}

func (d *Display) startSimulation() {
}

func (d *Display) invalidateSimulationWindow() {
}

func (d *Display) closeSimulationWindow() {
}
