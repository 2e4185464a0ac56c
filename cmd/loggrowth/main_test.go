package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

// accessLog has three hour buckets with 3, 2 and 1 errors, a duplicate and a
// malformed line.
const accessLog = `1.1.1.1 - - [10/Oct/2023:10:00:00 +0000] "GET / HTTP/1.1" 200 1000 "-" "UA"
1.1.1.1 - - [10/Oct/2023:10:05:00 +0000] "GET /a HTTP/1.1" 500 200 "-" "UA"
1.1.1.1 - - [10/Oct/2023:10:05:00 +0000] "GET /dup HTTP/1.1" 500 200 "-" "UA"
not a log line
1.1.1.1 - - [10/Oct/2023:10:10:00 +0000] "GET /b HTTP/1.1" 404 50 "-" "UA"
1.1.1.1 - - [10/Oct/2023:10:20:00 +0000] "GET /c HTTP/1.1" 503 50 "-" "UA"
2.2.2.2 - - [10/Oct/2023:11:00:00 +0000] "GET /d HTTP/1.1" 404 10 "-" "UA"
2.2.2.2 - - [10/Oct/2023:11:30:00 +0000] "GET /e HTTP/1.1" 500 10 "-" "UA"
2.2.2.2 - - [10/Oct/2023:11:40:00 +0000] "GET /f HTTP/1.1" 200 10 "-" "UA"
3.3.3.3 - - [10/Oct/2023:12:00:00 +0000] "GET /g HTTP/1.1" 404 10 "-" "UA"
3.3.3.3 - - [10/Oct/2023:12:10:00 +0000] "GET /h HTTP/1.1" 200 10 "-" "UA"
`

type fixture struct {
	dir    string
	logDir string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.Mkdir(logDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "access.log"), []byte(accessLog), 0o644))

	config := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(config, []byte("log-level: error\nwidth: 320\nheight: 200\n"), 0o644))
	return fixture{dir: dir, logDir: logDir, config: config}
}

func runApp(t *testing.T, args ...string) (*app, string, error) {
	t.Helper()
	a := &app{}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := execute(a, cmd)
	return a, out.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	_, out, err := runApp(t, args...)
	return out, err
}

func TestCumulativeWritesPlot(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.dir, "images", "plot.png")
	export := filepath.Join(f.dir, "report.json")

	out, err := run(t, "cumulative", "time", "errors", "hour",
		"--config", f.config, "--log-dir", f.logDir, "--output", output, "--export", export)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Avg Distance of points:")

	img, err := os.Open(output)
	require.NoError(t, err)
	defer img.Close()
	cfg, err := png.DecodeConfig(img)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	data, err := os.ReadFile(export)
	require.NoError(t, err)
	var report struct {
		Ingest struct {
			Records    int `json:"records"`
			Duplicates int `json:"duplicates"`
			Malformed  int `json:"malformed"`
		} `json:"ingest"`
		Series struct {
			Empirical []struct{ X, Y float64 } `json:"empirical"`
			Model     []struct{ X, Y float64 } `json:"model"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 9, report.Ingest.Records)
	assert.Equal(t, 1, report.Ingest.Duplicates)
	assert.Equal(t, 1, report.Ingest.Malformed)
	require.Len(t, report.Series.Empirical, 3)
	assert.Equal(t, []float64{0, 3, 5}, []float64{
		report.Series.Empirical[0].Y, report.Series.Empirical[1].Y, report.Series.Empirical[2].Y,
	})
	assert.Len(t, report.Series.Model, 3)
}

func TestEveryPlotMode(t *testing.T) {
	f := newFixture(t)
	tests := [][]string{
		{"by", "time", "errors", "hour"},
		{"by", "hits", "users", "hour"},
		{"ratio", "time", "hits", "hour"},
		{"cumulative_ratio", "sessions", "hour"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			output := filepath.Join(f.dir, strings.Join(args, "_")+".png")
			full := append(args, "--config", f.config, "--log-dir", f.logDir, "--output", output)
			out, err := run(t, full...)
			require.NoError(t, err, out)
			assert.FileExists(t, output)
		})
	}
}

func TestStatsCommand(t *testing.T) {
	f := newFixture(t)
	export := filepath.Join(f.dir, "stats.yaml")

	out, err := run(t, "stats", "day", "--config", f.config, "--log-dir", f.logDir, "--export", export)
	require.NoError(t, err)
	assert.Contains(t, out, "9 records in 1 day buckets")
	assert.Contains(t, out, "Totals")
	assert.Contains(t, out, "Internal Server Error")
	assert.Contains(t, out, "Request Patterns")
	assert.Contains(t, out, "Logs Analyzed for Patterns")
	assert.Contains(t, out, "2023|10|10")

	data, err := os.ReadFile(export)
	require.NoError(t, err)
	var report struct {
		Patterns struct {
			Unique   int `yaml:"unique"`
			Analyzed int `yaml:"analyzed"`
			Top      []struct {
				Template string `yaml:"template"`
				Count    int    `yaml:"count"`
			} `yaml:"top"`
		} `yaml:"request_patterns"`
	}
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, 9, report.Patterns.Analyzed)
	assert.Positive(t, report.Patterns.Unique)
	assert.NotEmpty(t, report.Patterns.Top)
}

func TestCumulativeWithoutModel(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.dir, "hits.png")

	out, err := run(t, "cumulative", "hits", "users", "hour",
		"--config", f.config, "--log-dir", f.logDir, "--output", output)
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Avg Distance of points:")
	assert.Contains(t, out, "distance not computed")
}

func TestLogFileClosedOnFailure(t *testing.T) {
	f := newFixture(t)
	logFile := filepath.Join(f.dir, "loggrowth.log")

	a, _, err := runApp(t, "fit", "hour", "--config", f.config, "--log-dir", f.logDir,
		"--model", "weibull", "--log-level", "info", "--log-file", logFile)
	require.ErrorContains(t, err, "unknown model")
	assert.Nil(t, a.closeLog, "log file left open after a failed command")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logs loaded")
}

func TestFitAndCompare(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "fit", "hour", "--config", f.config, "--log-dir", f.logDir, "--model", "go")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Model go")

	out, err = run(t, "compare", "hour", "--config", f.config, "--log-dir", f.logDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Model scwind")
	assert.Contains(t, out, "Model go")
}

func TestEnvOverridesModel(t *testing.T) {
	f := newFixture(t)
	t.Setenv("LOGGROWTH_MODEL", "weibull")

	_, err := run(t, "fit", "hour", "--config", f.config, "--log-dir", f.logDir)
	assert.ErrorContains(t, err, "unknown model")
}

func TestErrors(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, "stats", "fortnight", "--config", f.config, "--log-dir", f.logDir)
	assert.ErrorContains(t, err, "unknown granularity")

	_, err = run(t, "stats", "day", "--config", f.config, "--log-dir", filepath.Join(f.dir, "missing"))
	assert.ErrorContains(t, err, "failed to read log directory")

	_, err = run(t, "by", "time", "hour", "--config", f.config)
	assert.Error(t, err)
}
