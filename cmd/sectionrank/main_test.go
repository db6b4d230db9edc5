package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/sectionrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const citiesText = `Comprehensive Guide to Coastal Cities
Nice offers a long promenade along the sea with many cafes and markets.
Marseille is the oldest city in France and has a busy old port.
Nightlife and Entertainment
The bars in Antibes stay open late and host live music every weekend.`

const jobJSON = `{
  "challenge_info": {"challenge_id": "round_1b_002"},
  "documents": [
    {"filename": "cities.txt", "title": "South of France - Cities"},
    {"filename": "missing.pdf", "title": "Missing"}
  ],
  "persona": {"role": "Travel Planner"},
  "job_to_be_done": {"task": "Plan a trip of 4 days for a group of 10 college friends."}
}`

func writeJob(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities.txt"), []byte(citiesText), 0o644))
	path := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(path, []byte(jobJSON), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"sectionrank"}, args...))
	return out.String(), err
}

func TestReadJob(t *testing.T) {
	job, err := readJob(writeJob(t))
	require.NoError(t, err)

	assert.Equal(t, "Travel Planner", job.Persona)
	assert.Equal(t, "Plan a trip of 4 days for a group of 10 college friends.", job.Task)
	assert.Equal(t, []string{"cities.txt", "missing.pdf"}, job.Filenames())
	assert.Equal(t, "South of France - Cities", job.Documents[0].Title)
}

func TestReadJob_Errors(t *testing.T) {
	_, err := readJob(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = readJob(path)
	assert.Error(t, err)
}

func TestRankCommand(t *testing.T) {
	input := writeJob(t)
	outDir := t.TempDir()
	output := filepath.Join(outDir, "result.json")
	metrics := filepath.Join(outDir, "metrics.prom")

	_, err := runApp(t, "--log-level", "error", "rank",
		"--input", input, "--output", output, "--provider", "none", "--top-n", "1", "--metrics-file", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var result core.Result
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "Travel Planner", result.Metadata.Persona)
	assert.Equal(t, []string{"cities.txt", "missing.pdf"}, result.Metadata.InputDocuments)
	require.Len(t, result.Sections, 1)
	assert.Equal(t, 1, result.Sections[0].ImportanceRank)
	assert.Equal(t, "cities.txt", result.Sections[0].Document)
	require.Len(t, result.Subsections, 1)

	require.Len(t, result.Metadata.Warnings, 2)
	assert.Contains(t, result.Metadata.Warnings[0], "missing.pdf")
	assert.Contains(t, result.Metadata.Warnings[1], core.ErrScorerDegradation.Error())

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `sectionrank_jobs_total{outcome="complete"} 1`)
}

func TestRankCommand_Stdout(t *testing.T) {
	out, err := runApp(t, "--log-level", "error", "rank", "--input", writeJob(t), "--provider", "none")
	require.NoError(t, err)

	var result core.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Sections, 2)
}

func TestRankCommand_InvalidProvider(t *testing.T) {
	_, err := runApp(t, "--log-level", "error", "rank", "--input", writeJob(t), "--provider", "carrier-pigeon")
	assert.Error(t, err)
}

func TestRankCommand_InputRequired(t *testing.T) {
	_, err := runApp(t, "rank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestSectionsCommand(t *testing.T) {
	out, err := runApp(t, "--log-level", "error", "sections", "--input", writeJob(t))
	require.NoError(t, err)

	var summaries []sectionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "Comprehensive Guide to Coastal Cities", summaries[0].Title)
	assert.Equal(t, core.SectionTypeGuide, summaries[0].Type)
	assert.Equal(t, 26, summaries[0].WordCount)
	assert.Equal(t, "Nightlife and Entertainment", summaries[1].Title)
}

func TestSetupLogger(t *testing.T) {
	_, err := runApp(t, "--log-level", "verbose", "sections", "--input", writeJob(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestReembedCommand_RequiresCache(t *testing.T) {
	_, err := runApp(t, "--log-level", "error", "reembed", "--input", writeJob(t), "--provider", "none")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding cache path is required")
}

func TestReembedCommand_RequiresEmbedder(t *testing.T) {
	_, err := runApp(t, "--log-level", "error", "reembed", "--input", writeJob(t),
		"--provider", "none", "--cache", filepath.Join(t.TempDir(), "cache"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding cache required")
}
