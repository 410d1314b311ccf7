package environment

import (
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/minthotspot/hotspot-agent/internal/constants"
)

type Environment struct {
	Agent
}

type Agent struct {
	LogfilePath    string
	LogLevel       string
	StatusFilePath string
	PIDFilePath    string
	CountryCode    string
}

func New() (e Environment, err error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("HOTSPOT")

	e.Agent.LogfilePath = v.GetString("LOG_FILE")
	if lo.IsEmpty(e.Agent.LogfilePath) {
		e.Agent.LogfilePath = constants.DefaultLogfilePath
	}

	e.Agent.LogLevel = v.GetString("LOG_LEVEL")
	if lo.IsEmpty(e.Agent.LogLevel) {
		e.Agent.LogLevel = "info"
	}

	e.Agent.StatusFilePath = v.GetString("STATUS_FILE")
	if lo.IsEmpty(e.Agent.StatusFilePath) {
		e.Agent.StatusFilePath = constants.StatusFilePath
	}

	e.Agent.PIDFilePath = v.GetString("PID_FILE")
	if lo.IsEmpty(e.Agent.PIDFilePath) {
		e.Agent.PIDFilePath = constants.PIDFilePath
	}

	// used for best-effort regulatory domain adjustment in concurrent mode
	e.Agent.CountryCode = v.GetString("COUNTRY")

	return e, nil
}

func (e Agent) IsDebug() bool {
	return e.LogLevel == "debug"
}
