package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseHost builds a host-style command the way cmd/rmcs does and parses args.
func parseHost(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg := &Config{}
	cmd := &cobra.Command{Use: "host", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterCommon(cmd.Flags(), cfg)
	RegisterHost(cmd.Flags(), cfg)
	require.NoError(t, cmd.ParseFlags(args))
	BindEnv(cmd)
	return cfg
}

func parseJoin(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg := &Config{}
	cmd := &cobra.Command{Use: "join", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterCommon(cmd.Flags(), cfg)
	RegisterJoin(cmd.Flags(), cfg)
	require.NoError(t, cmd.ParseFlags(args))
	BindEnv(cmd)
	return cfg
}

func TestHostDefaults(t *testing.T) {
	cfg := parseHost(t)
	assert.Equal(t, "Player", cfg.Name)
	assert.Equal(t, RegistryStatic, cfg.Registry)
	assert.Equal(t, "0.0.0.0:7420", cfg.Listen)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 15*time.Second, cfg.CommentaryTimeout)
	assert.NoError(t, cfg.ValidateHost())
}

func TestEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("RMCS_NAME", "Zoya")
	t.Setenv("RMCS_LISTEN", "127.0.0.1:9000")
	t.Setenv("RMCS_COMMENTARY_TIMEOUT", "3s")
	t.Setenv("RMCS_REGISTRY", "redis")

	cfg := parseHost(t, "--listen", "127.0.0.1:9100")
	assert.Equal(t, "Zoya", cfg.Name)
	assert.Equal(t, "127.0.0.1:9100", cfg.Listen, "flags beat env")
	assert.Equal(t, 3*time.Second, cfg.CommentaryTimeout)
	assert.Equal(t, RegistryRedis, cfg.Registry)
}

func TestGeminiKeyFallbacks(t *testing.T) {
	t.Setenv("API_KEY", "from-api-key")
	assert.Equal(t, "from-api-key", parseHost(t).GeminiKey)

	t.Setenv("GEMINI_API_KEY", "from-gemini")
	assert.Equal(t, "from-gemini", parseHost(t).GeminiKey)

	t.Setenv("RMCS_GEMINI_KEY", "from-rmcs")
	assert.Equal(t, "from-rmcs", parseHost(t).GeminiKey)

	assert.Equal(t, "from-flag", parseHost(t, "--gemini-key", "from-flag").GeminiKey)
}

func TestUnderscoreFlagsNormalise(t *testing.T) {
	cfg := &Config{}
	cmd := &cobra.Command{Use: "join"}
	RegisterCommon(cmd.Flags(), cfg)
	RegisterJoin(cmd.Flags(), cfg)
	BindEnv(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--host_addr", "10.1.1.1:7420"}))
	assert.Equal(t, "10.1.1.1:7420", cfg.HostAddr)
}

func TestValidateHost(t *testing.T) {
	cfg := parseHost(t, "--code", "ab12")
	assert.NoError(t, cfg.ValidateHost())

	cfg = parseHost(t, "--code", "TOOLONG")
	assert.ErrorContains(t, cfg.ValidateHost(), "--code")

	cfg = parseHost(t, "--registry", "etcd")
	assert.ErrorContains(t, cfg.ValidateHost(), "unknown registry")

	cfg = parseHost(t, "--name", "  ", "--commentary-timeout", "0s", "--listen", "")
	err := cfg.ValidateHost()
	assert.ErrorContains(t, err, "--name")
	assert.ErrorContains(t, err, "commentary timeout")
	assert.ErrorContains(t, err, "--listen")
}

func TestValidateJoin(t *testing.T) {
	cfg := parseJoin(t, "--host-addr", "192.168.0.4:7420")
	cfg.Code = "k7q2"
	assert.NoError(t, cfg.ValidateJoin())

	cfg = parseJoin(t)
	cfg.Code = "K7Q2"
	assert.ErrorContains(t, cfg.ValidateJoin(), "--host-addr")

	cfg = parseJoin(t, "--registry", "redis")
	cfg.Code = "K7Q2"
	assert.NoError(t, cfg.ValidateJoin())

	cfg = parseJoin(t, "--registry", "memory")
	cfg.Code = "K7Q2"
	assert.ErrorContains(t, cfg.ValidateJoin(), "memory registry")

	cfg = parseJoin(t, "--registry", "redis")
	cfg.Code = "K7"
	assert.ErrorContains(t, cfg.ValidateJoin(), "room code")
}
