package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/settingsx/core/log"
)

func TestEnvSource_Load_WithPrefix(t *testing.T) {
	t.Setenv("SETTINGSX_TEST_SAMPLE__SAMPLEKEY", "one")
	t.Setenv("OTHER_SAMPLE__SAMPLEKEY", "two")

	config, err := NewEnvSource(EnvOptions{Prefix: "SETTINGSX_TEST_"}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "one", config["SAMPLE__SAMPLEKEY"])
	_, ok := config["OTHER_SAMPLE__SAMPLEKEY"]
	assert.False(t, ok)
	assert.Equal(t, "sample.samplekey", NormalizeKey("SAMPLE__SAMPLEKEY"))
}

func TestEnvSource_Load_NoPrefix(t *testing.T) {
	t.Setenv("SETTINGSX_TEST_PLAIN", "v")

	config, err := NewEnvSource(EnvOptions{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v", config["SETTINGSX_TEST_PLAIN"])
}

func TestIdleWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NewMapSource(nil).Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel was not closed")
	}
}

func TestMapSource_LoadReturnsCopy(t *testing.T) {
	values := map[string]string{"a": "1"}
	src := NewMapSource(values)
	values["a"] = "2"

	first, err := src.Load(context.Background())
	require.NoError(t, err)
	first["a"] = "3"

	second, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", second["a"])
}

func TestYAMLSource_Load(t *testing.T) {
	src := NewYAMLSource([]byte(`
Sample:
  SampleKey: one
  SampleNumber: 2
  Hosts:
    - a
    - b
`))
	config, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Sample.SampleKey":    "one",
		"Sample.SampleNumber": "2",
		"Sample.Hosts.0":      "a",
		"Sample.Hosts.1":      "b",
	}, config)
}

func TestYAMLSource_Invalid(t *testing.T) {
	_, err := NewYAMLSource([]byte("a: [unclosed")).Load(context.Background())
	assert.Error(t, err)
}

func TestFlagSource_OnlyChangedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("sample.samplekey", "default", "")
	fs.Int("sample.samplenumber", 0, "")
	require.NoError(t, fs.Parse([]string{"--sample.samplekey=one"}))

	config, err := NewFlagSource(fs).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sample.samplekey": "one"}, config)
}

func TestFlagSource_NilFlagSet(t *testing.T) {
	config, err := NewFlagSource(nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, config)
}

func TestDetectFileFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"config.yaml", "yaml"},
		{"config.YML", "yaml"},
		{"config.toml", "toml"},
		{"config.json", "json"},
		{"config", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFileFormat(tt.path))
		})
	}
}

func TestFileSource_Load_NonExistent(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"), FileOptions{})
	config, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, config)
}

func TestFileSource_Load_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "appsettings.yaml", "sample:\n  samplekey: one\n  samplenumber: 2\n"},
		{"json", "appsettings.json", `{"Sample": {"SampleKey": "one", "SampleNumber": 2}}`},
		{"toml", "appsettings.toml", "[sample]\nsamplekey = \"one\"\nsamplenumber = 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			config, err := NewFileSource(path, FileOptions{}).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "one", config["sample.samplekey"])
			assert.Equal(t, "2", config["sample.samplenumber"])
		})
	}
}

func TestFileSource_Load_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileSource(path, FileOptions{}).Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "appsettings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample:\n  samplekey: one\n"), 0o600))

	ch, err := NewFileSource(path, FileOptions{Watch: true, Logger: log.Nop()}).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("sample:\n  samplekey: two\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case config := <-ch:
			if config["sample.samplekey"] == "two" {
				return
			}
		case <-deadline:
			t.Fatal("no update observed")
		}
	}
}
