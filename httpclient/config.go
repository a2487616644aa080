package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Environment keys read by ConfigFromEnv, relative to the prefix.
const (
	envTimeout               = "timeout"
	envDialTimeout           = "dial_timeout"
	envKeepAlive             = "keep_alive"
	envTLSHandshakeTimeout   = "tls_handshake_timeout"
	envResponseHeaderTimeout = "response_header_timeout"
	envIdleConnTimeout       = "idle_conn_timeout"
	envMaxIdleConns          = "max_idle_conns"
	envMaxIdleConnsPerHost   = "max_idle_conns_per_host"
	envDisableCompression    = "disable_compression"
)

// ConfigFromEnv returns DefaultConfig() overridden by environment
// variables named PREFIX_KEY, e.g. NETWORKER_TIMEOUT=5s or
// NETWORKER_MAX_IDLE_CONNS_PER_HOST=20. Durations use time.ParseDuration
// syntax.
//
// Unset variables keep their default; malformed values are an error.
func ConfigFromEnv(prefix string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault(envTimeout, def.Timeout)
	v.SetDefault(envDialTimeout, def.DialTimeout)
	v.SetDefault(envKeepAlive, def.KeepAlive)
	v.SetDefault(envTLSHandshakeTimeout, def.TLSHandshakeTimeout)
	v.SetDefault(envResponseHeaderTimeout, def.ResponseHeaderTimeout)
	v.SetDefault(envIdleConnTimeout, def.IdleConnTimeout)
	v.SetDefault(envMaxIdleConns, def.MaxIdleConns)
	v.SetDefault(envMaxIdleConnsPerHost, def.MaxIdleConnsPerHost)
	v.SetDefault(envDisableCompression, def.DisableCompression)

	var cfg Config
	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{envTimeout, &cfg.Timeout},
		{envDialTimeout, &cfg.DialTimeout},
		{envKeepAlive, &cfg.KeepAlive},
		{envTLSHandshakeTimeout, &cfg.TLSHandshakeTimeout},
		{envResponseHeaderTimeout, &cfg.ResponseHeaderTimeout},
		{envIdleConnTimeout, &cfg.IdleConnTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = cast.ToDurationE(v.Get(d.key)); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", envName(prefix, d.key), err)
		}
	}

	if cfg.MaxIdleConns, err = cast.ToIntE(v.Get(envMaxIdleConns)); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", envName(prefix, envMaxIdleConns), err)
	}
	if cfg.MaxIdleConnsPerHost, err = cast.ToIntE(v.Get(envMaxIdleConnsPerHost)); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", envName(prefix, envMaxIdleConnsPerHost), err)
	}
	if cfg.DisableCompression, err = cast.ToBoolE(v.Get(envDisableCompression)); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", envName(prefix, envDisableCompression), err)
	}

	return cfg, nil
}

func envName(prefix, key string) string {
	if prefix == "" {
		return strings.ToUpper(key)
	}
	return strings.ToUpper(prefix + "_" + key)
}
