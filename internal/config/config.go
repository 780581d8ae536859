// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/33VM/RajaMantri/internal/room"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. RMCS_LISTEN.
const EnvPrefix = "RMCS"

// Registry backends for peer address lookup.
const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"
	RegistryStatic = "static"
)

// Config holds everything the host and join commands need.
type Config struct {
	Name string
	Code string

	Listen    string
	Advertise string

	Registry  string
	RedisAddr string
	RedisDB   int
	HostAddr  string

	GeminiKey         string
	GeminiModel       string
	CommentaryTimeout time.Duration

	Seed    int64
	Verbose bool
}

// ValidateHost checks the settings for running a room.
func (c *Config) ValidateHost() error {
	var errs []error
	if err := c.validateCommon(); err != nil {
		errs = append(errs, err)
	}
	if c.Listen == "" {
		errs = append(errs, errors.New("--listen is required to host a room"))
	}
	if c.Code != "" {
		if _, err := room.Parse(c.Code); err != nil {
			errs = append(errs, fmt.Errorf("--code: %w", err))
		}
	}
	if c.CommentaryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid commentary timeout (must be positive): %s", c.CommentaryTimeout))
	}
	return errors.Join(errs...)
}

// ValidateJoin checks the settings for joining someone else's room.
func (c *Config) ValidateJoin() error {
	var errs []error
	if err := c.validateCommon(); err != nil {
		errs = append(errs, err)
	}
	if _, err := room.Parse(c.Code); err != nil {
		errs = append(errs, fmt.Errorf("room code: %w", err))
	}
	switch c.Registry {
	case RegistryMemory:
		errs = append(errs, errors.New("the memory registry cannot reach a host in another process; use redis or static"))
	case RegistryStatic:
		if c.HostAddr == "" {
			errs = append(errs, errors.New("--host-addr is required with the static registry"))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateCommon() error {
	switch c.Registry {
	case RegistryMemory, RegistryStatic:
	case RegistryRedis:
		if c.RedisAddr == "" {
			return errors.New("--redis-addr is required with the redis registry")
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("invalid redis db: %d", c.RedisDB)
		}
	default:
		return fmt.Errorf("unknown registry %q (want %s, %s or %s)", c.Registry, RegistryMemory, RegistryRedis, RegistryStatic)
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("--name must not be blank")
	}
	return nil
}

// RegisterCommon adds the flags both commands share.
func RegisterCommon(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Name, "name", "n", "Player", "display name (env: RMCS_NAME)")
	fs.StringVar(&cfg.Registry, "registry", RegistryStatic, "peer registry: static, redis or memory (env: RMCS_REGISTRY)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "redis server for the redis registry (env: RMCS_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database index (env: RMCS_REDIS_DB)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log protocol traffic (env: RMCS_VERBOSE)")
}

// RegisterHost adds the host-only flags.
func RegisterHost(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Code, "code", "c", "", "room code to claim, random if empty (env: RMCS_CODE)")
	fs.StringVarP(&cfg.Listen, "listen", "l", "0.0.0.0:7420", "address to accept players on (env: RMCS_LISTEN)")
	fs.StringVar(&cfg.Advertise, "advertise", "", "address players should dial, defaults to the listen address (env: RMCS_ADVERTISE)")
	fs.StringVar(&cfg.GeminiKey, "gemini-key", "", "Gemini API key for round commentary (env: RMCS_GEMINI_KEY, GEMINI_API_KEY or API_KEY)")
	fs.StringVar(&cfg.GeminiModel, "gemini-model", "gemini-2.5-flash", "Gemini model for round commentary (env: RMCS_GEMINI_MODEL)")
	fs.DurationVar(&cfg.CommentaryTimeout, "commentary-timeout", 15*time.Second, "how long to wait for commentary (env: RMCS_COMMENTARY_TIMEOUT)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "deal seed, random if zero (env: RMCS_SEED)")
}

// RegisterJoin adds the join-only flags.
func RegisterJoin(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.HostAddr, "host-addr", "", "host's address for the static registry (env: RMCS_HOST_ADDR)")
}

// BindEnv normalises flag names and lets RMCS_* variables fill any flag not
// given on the command line. The Gemini key also honours GEMINI_API_KEY and
// API_KEY.
func BindEnv(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name == "gemini-key" {
			_ = v.BindEnv(f.Name, EnvPrefix+"_GEMINI_KEY", "GEMINI_API_KEY", "API_KEY")
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
