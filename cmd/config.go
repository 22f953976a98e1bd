package cmd

import (
	"errors"
	"time"

	"github.com/andig/vinfast/server"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type config struct {
	URI            string
	Log            string
	Levels         map[string]string
	Interval       time.Duration
	ChargeInterval time.Duration
	Budget         time.Duration
	Failures       int // consecutive failed cycles until unavailable
	Vehicle        map[string]interface{}
	Mqtt           server.MQTTConfig
	Influx         server.InfluxConfig
	Database       dbConfig
}

type dbConfig struct {
	Path string
}

// loadConfigFile unmarshals the viper-loaded config file
func loadConfigFile(cfgFile string) (config, error) {
	var conf config

	if cfgFile == "" {
		return conf, errors.New("missing config file")
	}

	log.INFO.Println("using config file", cfgFile)

	err := viper.Unmarshal(&conf, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))

	return conf, err
}
