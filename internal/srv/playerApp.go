package srv

import (
	"image"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jfavier/luffy/internal/srv/config"
	"github.com/jfavier/luffy/internal/srv/device"
	"github.com/jfavier/luffy/internal/srv/event"
	"github.com/jfavier/luffy/internal/version"
)

type PlaybackStatus int64

const (
	STOPPED_STATUS PlaybackStatus = iota
	PLAYING_STATUS
	PAUSED_STATUS
)

func (s PlaybackStatus) String() string {
	switch s {
	case STOPPED_STATUS:
		return "stopped"
	case PLAYING_STATUS:
		return "playing"
	case PAUSED_STATUS:
		return "paused"
	}
	return "unknown"
}

const VolumeStep = 5

const eventQueueCapacity = 32

// FrameDisplay is what the player needs from the display device.
type FrameDisplay interface {
	Start()
	Stop()
	ShowImage(img image.Image)
}

type PlayerApp struct {
	*config.PlayerConfig

	displayDevice FrameDisplay
	buttonsDevice *device.Buttons
	audioPlayer   device.Engine
	catalog       *device.Catalog

	// Playback state, owned by the event loop goroutine. No lock: the
	// loop is the single writer and the single reader.
	currentStatus     PlaybackStatus
	currentTrackIndex int
	loadedTrackIndex  int
	currentVolume     int64

	artworkPath string
	artwork     image.Image

	eventQueue  *event.Queue
	refreshTick time.Duration

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewPlayerApp(configDir string, debugMode bool, simulationMode bool) *PlayerApp {

	logrus.Debugf("Creation of luffy player %s ...", version.AppVersion.String())

	app := &PlayerApp{
		currentStatus:    STOPPED_STATUS,
		loadedTrackIndex: -1,
		eventQueue:       event.NewQueue(eventQueueCapacity),
		refreshTick:      time.Second,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		PlayerConfig:     config.NewPlayerConfig(configDir, debugMode, simulationMode),
	}

	catalog, err := device.NewCatalog(app.GetCompleteLibraryFolder())
	if err != nil {
		logrus.Fatalf("Unable to build the track catalog: %v", err)
	}
	app.catalog = catalog

	app.currentVolume = clampVolume(app.PlayerState.Volume())

	app.displayDevice = device.NewDisplay(app.PlayerParam.DisplayParam, app.SimulationMode)
	app.audioPlayer = device.NewAudioPlayer(app.eventQueue)
	app.buttonsDevice = device.NewButtons(
		app.eventQueue,
		app.PlayerParam.ButtonsParam,
		time.Duration(app.DebounceMs)*time.Millisecond,
		app.SimulationMode)

	logrus.Debugln("Player created")

	return app
}

func (s *PlayerApp) Start() {
	logrus.Printf("Starting luffy player ...")

	// Init random generator
	rand.Seed(time.Now().UnixNano())
	if s.RandomStart {
		s.currentTrackIndex = rand.Intn(s.catalog.Len())
	}

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display startup screen
	s.displayDevice.ShowImage(renderSplashFrame())
	time.Sleep(2 * time.Second)

	// Start audio player device
	s.audioPlayer.Start()
	s.audioPlayer.SetVolume(s.currentVolume)

	// Start event loop
	go s.eventLoop()

	// Start buttons device
	s.buttonsDevice.Start()

	// Show the initial track
	s.eventQueue.Offer(event.PlayerEvent{Data: event.RefreshRequestedData{}})
}

func (s *PlayerApp) Stop() {
	logrus.Printf("Stopping luffy player ...")

	// Stop buttons device
	s.buttonsDevice.Stop()

	// Stop audio player events
	s.audioPlayer.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Display farewell image
	s.displayDevice.ShowImage(renderFarewellFrame())

	// Stop audio player
	s.audioPlayer.Stop()

	// Stop display device
	s.displayDevice.Stop()

	// Flush state backup
	s.PlayerState.FlushSave()

	logrus.Printf("Player stopped")

	os.Exit(0)
}

func clampVolume(volume int64) int64 {
	if volume > 100 {
		return 100
	}
	if volume < 0 {
		return 0
	}
	return volume
}
