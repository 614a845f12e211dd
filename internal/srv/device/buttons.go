package device

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/jfavier/luffy/internal/srv/config"
	"github.com/jfavier/luffy/internal/srv/event"
)

// edgePollTimeout bounds WaitForEdge so the watch goroutines can observe a
// stop request.
const edgePollTimeout = 500 * time.Millisecond

// debouncer suppresses electrical bounce: at most one logical press per
// window, whatever the number of edges the line produces.
type debouncer struct {
	window time.Duration
	last   time.Time
}

func (d *debouncer) accept(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}

type Button struct {
	buttonId event.ButtonId
	pin      gpio.PinIO
	debounce debouncer
}

func NewButton(buttonId event.ButtonId, name string, debounceWindow time.Duration) *Button {
	button := &Button{
		buttonId: buttonId,
		pin:      gpioreg.ByName(name),
		debounce: debouncer{window: debounceWindow},
	}

	if button.pin == nil {
		logrus.Fatalf("Failed to find %s button pin %s", buttonId, name)
	}

	// Input with the internal pull up resistor, interrupt on press:
	if err := button.pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		logrus.Fatalf("Failed to setup %s button pin %s: %v", buttonId, name, err)
	}
	return button
}

// watch blocks on the line's falling edges and enqueues one ButtonPressed
// per debounced press. It does nothing else: no state access, no rendering.
func (b *Button) watch(eventQueue *event.Queue, askDone chan struct{}) {
	for {
		select {
		case <-askDone:
			return
		default:
		}
		if !b.pin.WaitForEdge(edgePollTimeout) {
			continue
		}
		if b.pin.Read() != gpio.Low {
			continue
		}
		if !b.debounce.accept(time.Now()) {
			continue
		}
		logrus.Debugf("Button %s pressed", b.buttonId)
		eventQueue.Offer(event.PlayerEvent{Data: event.ButtonPressedData{ButtonId: b.buttonId}})
	}
}

type Buttons struct {
	eventQueue *event.Queue
	param      config.ButtonsParam
	debounce   time.Duration
	simulation bool

	buttons []*Button
	askDone chan struct{}
	wg      sync.WaitGroup
}

func NewButtons(eventQueue *event.Queue, param config.ButtonsParam, debounce time.Duration, simulation bool) *Buttons {
	return &Buttons{
		eventQueue: eventQueue,
		param:      param,
		debounce:   debounce,
		simulation: simulation,
		askDone:    make(chan struct{}),
	}
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	if d.simulation {
		return
	}

	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize gpio host: %v", err)
	}

	d.buttons = append(d.buttons, NewButton(event.PLAY_PAUSE_BUTTON, d.param.PlayPausePin, d.debounce))
	d.buttons = append(d.buttons, NewButton(event.NEXT_BUTTON, d.param.NextPin, d.debounce))
	d.buttons = append(d.buttons, NewButton(event.VOLUME_DOWN_BUTTON, d.param.VolumeDownPin, d.debounce))
	d.buttons = append(d.buttons, NewButton(event.VOLUME_UP_BUTTON, d.param.VolumeUpPin, d.debounce))

	for _, button := range d.buttons {
		button := button
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			button.watch(d.eventQueue, d.askDone)
		}()
	}
}

func (d *Buttons) Stop() {
	logrus.Infof("Stop buttons device")

	close(d.askDone)
	d.wg.Wait()

	for _, button := range d.buttons {
		if err := button.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			logrus.Warnf("Unable to deconfigure %s button pin: %v", button.buttonId, err)
		}
	}
}
