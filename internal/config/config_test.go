package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/transform"
)

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "less"), 0o750))
	path := filepath.Join(dir, "lesswatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return dir, path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir, path := writeConfig(t, `
profiles:
  - name: site
    source_dir: less
    output_dirs: [public/css, build/css]
    exclude: "_*"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, EngineExec, cfg.Engine.Kind)
	assert.Equal(t, transform.DefaultCommand, cfg.Engine.Command)
	assert.Equal(t, 30*time.Second, cfg.Engine.TimeoutDuration())
	assert.Equal(t, time.Second, cfg.Relocation.PromptIntervalDuration())
	assert.True(t, cfg.ConfirmState().HasDefaults())
	assert.True(t, cfg.Daemon.IgnoreGitignored)
	assert.Zero(t, cfg.Daemon.SweepDuration())
	assert.Equal(t, "lesswatch.jobs", cfg.NATS.Subject)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)

	profiles := cfg.ToProfiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, "site", profiles[0].Name)
	assert.Equal(t, []string{
		filepath.Join(dir, "public/css"),
		filepath.Join(dir, "build/css"),
	}, profiles[0].OutputRoots)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("LESSWATCH_TEST_OUT", "/srv/css")
	t.Setenv("LESSWATCH_TEST_NATS", "nats://example:4222")
	_, path := writeConfig(t, `
profiles:
  - name: site
    source_dir: less
    output_dirs: ["${LESSWATCH_TEST_OUT}"]
nats:
  enabled: true
  url: ${LESSWATCH_TEST_NATS}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/css"}, cfg.ToProfiles()[0].OutputRoots)
	assert.Equal(t, "nats://example:4222", cfg.NATS.URL)
}

func TestLoadReadsEnvFileWithoutOverriding(t *testing.T) {
	t.Setenv("LESSWATCH_TEST_KEEP", "from-env")
	dir, path := writeConfig(t, `
profiles:
  - name: ${LESSWATCH_TEST_NAME}
    source_dir: less
    include: ${LESSWATCH_TEST_KEEP}
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("LESSWATCH_TEST_NAME=from-file\nLESSWATCH_TEST_KEEP=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LESSWATCH_TEST_NAME") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Profiles[0].Name)
	assert.Equal(t, "from-env", cfg.Profiles[0].Include)
}

func TestLoadRelocationOverrides(t *testing.T) {
	_, path := writeConfig(t, `
profiles:
  - name: site
    source_dir: less
relocation:
  delete: {do: false, prompt: false}
  prompt_interval: 3s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	state := cfg.ConfirmState()
	assert.False(t, state.Delete.Do)
	assert.False(t, state.Delete.Prompt)
	assert.True(t, state.Move.Do)
	assert.True(t, state.Move.Prompt)
	assert.Equal(t, 3*time.Second, cfg.Relocation.PromptIntervalDuration())
}

func TestLoadNormalizesEnums(t *testing.T) {
	_, path := writeConfig(t, `
profiles:
  - name: site
    source_dir: less
engine:
  kind: " COPY "
logging:
  level: DEBUG
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineCopy, cfg.Engine.Kind)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.IsType(t, transform.CopyEngine{}, cfg.NewEngine())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no profiles", "version: \"1\"\n"},
		{"bad version", "version: \"2\"\nprofiles: [{name: a, source_dir: less}]\n"},
		{"empty name", "profiles: [{source_dir: less}]\n"},
		{"duplicate name", "profiles: [{name: a, source_dir: less}, {name: a, source_dir: less}]\n"},
		{"missing source", "profiles: [{name: a}]\n"},
		{"source not a dir", "profiles: [{name: a, source_dir: nowhere}]\n"},
		{"empty output entry", "profiles: [{name: a, source_dir: less, output_dirs: [\"\"]}]\n"},
		{"unknown engine", "profiles: [{name: a, source_dir: less}]\nengine: {kind: sass}\n"},
		{"bad log level", "profiles: [{name: a, source_dir: less}]\nlogging: {level: loud}\n"},
		{"bad duration", "profiles: [{name: a, source_dir: less}]\ndaemon: {debounce: soon}\n"},
		{"negative duration", "profiles: [{name: a, source_dir: less}]\nengine: {timeout: -1s}\n"},
		{"nats without url", "profiles: [{name: a, source_dir: less}]\nnats: {enabled: true}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, path := writeConfig(t, tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation), "got %v", err)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("profiles: [unterminated"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warn "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel(""))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesswatch.yaml")

	require.NoError(t, Init(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "site", cfg.Profiles[0].Name)
	assert.True(t, cfg.Profiles[1].Compress)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	require.NoError(t, Init(path, true))
}
