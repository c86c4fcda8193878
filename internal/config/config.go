package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
	DBPath        string        `envconfig:"DB_PATH" default:"./data/planner.db"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`        // debug|info|warn|error
	Policy        string        `envconfig:"SCHEDULE_POLICY" default:"split"` // split|fixed-bath
	StudyMin      int           `envconfig:"STUDY_MIN" default:"30"`          // minutes
	StudyMax      int           `envconfig:"STUDY_MAX" default:"60"`          // minutes
	ArrivalStep   int           `envconfig:"ARRIVAL_STEP" default:"10"`       // arrival minute granularity
	VAPIDSubject  string        `envconfig:"VAPID_SUBJECT" default:"mailto:planner@example.com"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
