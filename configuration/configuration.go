package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/bospay/bosledger/natsclient"
	"github.com/bospay/bosledger/repohelper"
	"github.com/bospay/bosledger/server"
)

// Configuration is the main configuration of the application that corresponds to the *.yaml file
// that holds the configuration.
type Configuration struct {
	Server        server.Config       `yaml:"server"`
	Database      repohelper.DBConfig `yaml:"database"`
	Nats          natsclient.Config   `yaml:"nats"`
	TelemetryPort int                 `yaml:"telemetry_port"`
}

// Read reads the configuration from the file and returns the Configuration with set fields according to the yaml setup.
func Read(path string) (Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}

	var main Configuration
	err = yaml.Unmarshal(buf, &main)
	if err != nil {
		return Configuration{}, fmt.Errorf("in file %q: %w", path, err)
	}

	return main, err
}
