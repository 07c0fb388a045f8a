package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "courses.json", cfg.Cache.CoursesFile)
	assert.Equal(t, "course_users", cfg.Cache.UsersDir)
	assert.Equal(t, 1, cfg.Scan.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Moodle.Timeout)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodle.yaml")
	content := []byte(`
moodle:
  base_url: https://lms.example.org
  token: from-file
scan:
  workers: 4
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("MOODLE_TOKEN", "from-env")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://lms.example.org", cfg.Moodle.BaseURL)
	assert.Equal(t, "https://lms.example.org", cfg.Moodle.PublicURL)
	assert.Equal(t, "from-env", cfg.Moodle.Token)
	assert.Equal(t, 4, cfg.Scan.Workers)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Moodle: MoodleConfig{BaseURL: "https://x", Token: "t"}, Scan: ScanConfig{Workers: 1}}, false},
		{"no url", Config{Moodle: MoodleConfig{Token: "t"}, Scan: ScanConfig{Workers: 1}}, true},
		{"no token", Config{Moodle: MoodleConfig{BaseURL: "https://x"}, Scan: ScanConfig{Workers: 1}}, true},
		{"no workers", Config{Moodle: MoodleConfig{BaseURL: "https://x", Token: "t"}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// chdir changes the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
