package logging

import "time"

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	DropWarnInterval time.Duration
	JSON             JSONConfig
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}
