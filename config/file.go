package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	ncerr "cloudpilot/internal/errors"
)

// LoadFile overlays a TOML, YAML or JSON config file onto cfg.  Keys
// match the long flag names (host, port, name, read-timeout, ...).
// Keys absent from the file leave cfg untouched.  Durations may be
// written as Go duration strings or as a number of seconds.
func LoadFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return &ncerr.ConfigError{
			Field:   "config",
			Value:   path,
			Message: err.Error(),
			Hint:    "supported formats: .toml, .yaml, .json",
		}
	}

	l := fileLoader{v: v}
	l.setString("host", &cfg.Host)
	l.setInt("port", &cfg.Port)
	l.setBool("no-dns", &cfg.NoDNS)
	l.setDuration("timeout", &cfg.Timeout)
	l.setDuration("read-timeout", &cfg.ReadTimeout)
	l.setInt("retries", &cfg.ConnectRetries)

	l.setString("name", &cfg.Name)
	l.setString("color", &cfg.Color)
	l.setBool("interactive", &cfg.Interactive)
	l.setDuration("pause", &cfg.Pause)
	l.setFloat("strength", &cfg.Strength)
	l.setString("history-file", &cfg.HistoryFile)

	l.setString("tunnel", &cfg.TunnelSpec)
	l.setString("ssh-key", &cfg.SSHKeyPath)
	l.setBool("ssh-password", &cfg.SSHPassword)
	l.setBool("ssh-agent", &cfg.UseSSHAgent)
	l.setBool("strict-hostkey", &cfg.StrictHostKey)
	l.setString("known-hosts", &cfg.KnownHostsPath)

	l.setString("trace-file", &cfg.TraceFile)
	l.setInt("verbose", &cfg.Verbose)

	if l.err != nil {
		return l.err
	}
	cfg.ConfigFile = path
	return nil
}

// fileLoader copies typed values out of viper and keeps the first
// conversion error.
type fileLoader struct {
	v   *viper.Viper
	err error
}

func (l *fileLoader) fail(key string, raw interface{}, err error) {
	if l.err == nil {
		l.err = &ncerr.ConfigError{Field: key, Value: raw, Message: err.Error()}
	}
}

func (l *fileLoader) setString(key string, dst *string) {
	if !l.v.IsSet(key) {
		return
	}
	s, err := cast.ToStringE(l.v.Get(key))
	if err != nil {
		l.fail(key, l.v.Get(key), err)
		return
	}
	*dst = s
}

func (l *fileLoader) setInt(key string, dst *int) {
	if !l.v.IsSet(key) {
		return
	}
	n, err := cast.ToIntE(l.v.Get(key))
	if err != nil {
		l.fail(key, l.v.Get(key), err)
		return
	}
	*dst = n
}

func (l *fileLoader) setFloat(key string, dst *float64) {
	if !l.v.IsSet(key) {
		return
	}
	f, err := cast.ToFloat64E(l.v.Get(key))
	if err != nil {
		l.fail(key, l.v.Get(key), err)
		return
	}
	*dst = f
}

func (l *fileLoader) setBool(key string, dst *bool) {
	if !l.v.IsSet(key) {
		return
	}
	b, err := cast.ToBoolE(l.v.Get(key))
	if err != nil {
		l.fail(key, l.v.Get(key), err)
		return
	}
	*dst = b
}

func (l *fileLoader) setDuration(key string, dst *time.Duration) {
	if !l.v.IsSet(key) {
		return
	}
	raw := l.v.Get(key)
	d, err := parseDuration(raw)
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = d
}

// parseDuration treats bare numbers as seconds.
func parseDuration(raw interface{}) (time.Duration, error) {
	switch x := raw.(type) {
	case string:
		s := strings.TrimSpace(x)
		if sec, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(sec * float64(time.Second)), nil
		}
		return time.ParseDuration(s)
	case time.Duration:
		return x, nil
	}
	sec, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %v", raw)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
