package config

import (
	"io/ioutil"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultVolume = 50

// PlayerState holds the settings that survive a restart: currently only the
// volume. Writes are coalesced into a deferred save so that a burst of
// volume presses does not hammer the SD card.
type PlayerState struct {
	playerStateConfig     PlayerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewPlayerState(completeStateFilename string) *PlayerState {
	playerState := &PlayerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := ioutil.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &playerState.playerStateConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret state file: %v\n", err)
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		playerState.SetVolume(DefaultVolume)
	}

	return playerState
}

func (ps *PlayerState) Volume() int64 {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	return ps.playerStateConfig.Volume
}

func (ps *PlayerState) SetVolume(volume int64) {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	ps.playerStateConfig.Volume = volume
	ps.scheduleSave()
}

func (ps *PlayerState) scheduleSave() {
	if ps.backupTimer == nil {
		ps.backupTimer = time.AfterFunc(10*time.Second, func() {
			ps.lock.Lock()
			defer ps.lock.Unlock()
			ps.save()
		})
	} else {
		ps.backupTimer.Reset(10 * time.Second)
	}
}

func (ps *PlayerState) save() {
	logrus.Infof("Save state file: %s", ps.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ps.playerStateConfig)
	if err != nil {
		logrus.Errorf("Unable to serialize state file: %v\n", err)
		return
	}
	err = ioutil.WriteFile(ps.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Errorf("Unable to save state file: %v\n", err)
	}
}

func (ps *PlayerState) FlushSave() {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	if ps.backupTimer != nil {
		if ps.backupTimer.Stop() {
			ps.save()
		}
	}
}

type PlayerStateConfig struct {
	Volume int64 `yaml:"volume"`
}
