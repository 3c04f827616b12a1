package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"SweepGo/internal/port"
	"SweepGo/internal/target"
)

const (
	DefaultTimeout  = "0.5"
	DefaultOutput   = "scan.csv"
	DefaultWorkers  = 64
	DefaultInflight = 256
)

// Config 汇总一次扫描所需的全部参数，命令行参数覆盖环境变量默认值。
type Config struct {
	Target   string
	Ports    string
	Output   string
	Timeout  string
	Iface    string
	Workers  int
	Inflight int
	HostOnly bool
	Verbose  bool
	Silent   bool
}

// Plan 是校验通过后的配置
type Plan struct {
	Block    target.Block
	Ports    []uint16
	Timeout  time.Duration
	Output   string
	Iface    string
	Workers  int
	Inflight int
}

// ConfigError 表示用户输入无法使用，Field 为出错的参数名。
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load 从环境变量构建默认配置。
func Load() *Config {
	return &Config{
		Output:   getenv("SWEEPGO_OUTPUT", DefaultOutput),
		Timeout:  getenv("SWEEPGO_TIMEOUT", DefaultTimeout),
		Iface:    getenv("SWEEPGO_IFACE", ""),
		Workers:  intEnv("SWEEPGO_WORKERS", DefaultWorkers),
		Inflight: intEnv("SWEEPGO_INFLIGHT", DefaultInflight),
	}
}

// Validate 解析网段、端口和超时，任何一项不合法都返回 *ConfigError。
func (c *Config) Validate() (*Plan, error) {
	if strings.TrimSpace(c.Target) == "" {
		return nil, &ConfigError{Field: "target", Err: errors.New("network is required")}
	}
	block, err := target.ParseBlock(c.Target, c.HostOnly)
	if err != nil {
		return nil, &ConfigError{Field: "target", Err: err}
	}
	ports, err := port.ParseSpec(c.Ports)
	if err != nil {
		return nil, &ConfigError{Field: "ports", Err: err}
	}
	timeout, err := ParseTimeout(c.Timeout)
	if err != nil {
		return nil, &ConfigError{Field: "timeout", Err: err}
	}
	if c.Workers <= 0 {
		return nil, &ConfigError{Field: "workers", Err: fmt.Errorf("must be positive, got %d", c.Workers)}
	}
	if c.Inflight <= 0 {
		return nil, &ConfigError{Field: "inflight", Err: fmt.Errorf("must be positive, got %d", c.Inflight)}
	}
	if strings.TrimSpace(c.Output) == "" {
		return nil, &ConfigError{Field: "output", Err: errors.New("path is empty")}
	}
	return &Plan{
		Block:    block,
		Ports:    ports,
		Timeout:  timeout,
		Output:   c.Output,
		Iface:    strings.TrimSpace(c.Iface),
		Workers:  c.Workers,
		Inflight: c.Inflight,
	}, nil
}

// ParseTimeout 接受浮点秒数（"0.5"）或 Go duration（"500ms"），结果必须大于 0。
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty timeout")
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs > math.MaxInt64/float64(time.Second) {
			return 0, fmt.Errorf("timeout %q out of range", s)
		}
		d = time.Duration(secs * float64(time.Second))
	} else {
		parsed, derr := time.ParseDuration(s)
		if derr != nil {
			return 0, fmt.Errorf("timeout %q is neither seconds nor a duration", s)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", s)
	}
	return d, nil
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func intEnv(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
