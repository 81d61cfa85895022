package tracker

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultTopicName = "fleet-tracking"

// Config defines the broadcast topics the tracker serves. Multi-route
// deployments add topics here rather than changing code; with no config
// file a single default tracking topic exists.
type Config struct {
	Topics []TopicConfig `yaml:"topics"`
}

type TopicConfig struct {
	Name    string `yaml:"name"`
	Default bool   `yaml:"default"`
}

func DefaultConfig() *Config {
	return &Config{
		Topics: []TopicConfig{
			{Name: defaultTopicName, Default: true},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	configYaml, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(configYaml))
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	if len(config.Topics) == 0 {
		return nil, fmt.Errorf("topics config %s defines no topics", path)
	}

	return &config, nil
}

// DefaultTopic returns the topic sessions join when the client does not
// name one.
func (config *Config) DefaultTopic() string {
	for _, topic := range config.Topics {
		if topic.Default {
			return topic.Name
		}
	}

	return config.Topics[0].Name
}

// ResolveTopic maps a client-requested topic name onto a configured
// topic. Unknown names are rejected rather than silently creating new
// groups.
func (config *Config) ResolveTopic(name string) (string, bool) {
	if name == "" {
		return config.DefaultTopic(), true
	}

	for _, topic := range config.Topics {
		if topic.Name == name {
			return topic.Name, true
		}
	}

	return "", false
}
