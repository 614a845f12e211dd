package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"

type PlayerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*PlayerParam
	*PlayerState
}

func NewPlayerConfig(configDir string, debugMode bool, simulationMode bool) *PlayerConfig {
	playerConfig := &PlayerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				logrus.Fatalf("Unable to create config folder: %v\n", err)
			}
		} else {
			logrus.Fatalf("Unable to access config folder: %s", configDir)
		}
	}

	// Open param file
	rawConfig, err := ioutil.ReadFile(playerConfig.GetCompleteParamFilename())
	if err == nil {
		// Interpret param file
		playerConfig.PlayerParam = &PlayerParam{}
		err = yaml.Unmarshal(rawConfig, playerConfig.PlayerParam)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}
	} else {
		// Create default param file
		logrus.Infof("Create default param file")
		playerConfig.PlayerParam = &PlayerParam{}

		err = yaml.Unmarshal(ParamDefaultFile, playerConfig.PlayerParam)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}

		playerConfig.SaveParam()
	}

	// Open state file
	playerConfig.PlayerState = NewPlayerState(playerConfig.GetCompleteStateFilename())

	return playerConfig
}

func (pc *PlayerConfig) GetCompleteParamFilename() string {
	return filepath.Join(pc.ConfigDir, paramFilename)
}

func (pc *PlayerConfig) GetCompleteStateFilename() string {
	return filepath.Join(pc.ConfigDir, stateFilename)
}

// GetCompleteLibraryFolder resolves the audio library location: an absolute
// path is used as-is, a relative one lives under the config folder.
func (pc *PlayerConfig) GetCompleteLibraryFolder() string {
	if filepath.IsAbs(pc.LibraryFolder) {
		return pc.LibraryFolder
	}
	return filepath.Join(pc.ConfigDir, pc.LibraryFolder)
}

func (pc *PlayerConfig) SaveParam() {
	logrus.Debugf("Save param file: %s", pc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*pc.PlayerParam)
	if err != nil {
		logrus.Fatalf("Unable to serialize param file: %v\n", err)
	}
	err = ioutil.WriteFile(pc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save param file: %v\n", err)
	}
}
