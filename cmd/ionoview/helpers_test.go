package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const testSounding = `z0 = 90
dz = 5
TIME = 15.06.2020 10:30:00 UT
Frequency Set
1.0
1.1
1.21
1.331
END
DATA
1 2 3
4 5 6
7 8 9
10 11 12
END
`

const testConfig = `station:
  name: iion
  latitude: 49.676
  longitude: 36.292
  gyrofrequency: 1.2
  dip: 66.7
parser:
  raw_transform: identity
  strip_time_zone: true
sunspot:
  table: sunspot.txt
database:
  dir: db
`

// testEnv is a directory holding a config file, a sunspot table and one
// sounding.
type testEnv struct {
	dir      string
	config   string
	sounding string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		config:   writeTestFile(t, dir, "ionoview.yaml", testConfig),
		sounding: writeTestFile(t, dir, "20200615_1030_iono.txt", testSounding),
	}
	writeTestFile(t, dir, "sunspot.txt", "2020 6 14 30\n2020 6 15 45\n")
	return env
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// run executes the root command with the env's config file and returns
// stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("ionoview %v: %v", args, err)
	}
	return out
}
