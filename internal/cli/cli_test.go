package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contentDir, backend string) string {
	t.Helper()
	abs, err := filepath.Abs(contentDir)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "content:\n  dir: " + abs + "\nstreak:\n  backend: " + backend + "\n  dir: " + t.TempDir() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateAcceptsValidDir(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "memory")

	out, err := runCLI(t, "", "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    ")
	assert.Contains(t, out, "2 documents valid")
}

func TestValidateReportsFieldAndValue(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "memory")

	out, err := runCLI(t, "", "validate", "--config", cfg, "../content/testdata/invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents invalid")
	assert.Contains(t, out, "FAIL  ../content/testdata/invalid/2024-02-01-broken-quiz.yaml")
	assert.Contains(t, out, "field: meta.category, value: cooking")
}

func TestPublishRefusesInvalidContent(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/invalid", "memory")

	_, err := runCLI(t, "", "publish", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to publish")
}

func TestPlayRecordsStreak(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "file")

	out, err := runCLI(t, "x\n2\n1\n", "play", "--config", cfg, "--quiz", "space-facts", "--player", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Space Facts (science, easy) - 2 questions, 150 points")
	assert.Contains(t, out, "Enter a number between 1 and 4.")
	assert.Contains(t, out, "Correct! +100")
	assert.Contains(t, out, "Wrong. The answer was: Jupiter")
	assert.Contains(t, out, "Score: 100/150")
	assert.Contains(t, out, "Badge unlocked: 🎯 Beginner")

	out, err = runCLI(t, "", "streak", "--config", cfg, "--player", "alice", "--json")
	require.NoError(t, err)
	var stats domain.StreakStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.TotalCompleted)

	out, err = runCLI(t, "", "streak", "--config", cfg, "--player", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Quizzes completed: 0")
}

func TestPlayReplayKeepsTotals(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "file")

	_, err := runCLI(t, "1\n", "play", "--config", cfg, "--quiz", "web-history")
	require.NoError(t, err)
	out, err := runCLI(t, "2\n", "play", "--config", cfg, "--quiz", "web-history")
	require.NoError(t, err)
	assert.Contains(t, out, "You already played this quiz (100/100)")
	assert.Contains(t, out, "1 quizzes completed")
}

func TestPlayStopsOnClosedInput(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "memory")

	_, err := runCLI(t, "", "play", "--config", cfg, "--quiz", "space-facts")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPlayUnknownDate(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "memory")

	_, err := runCLI(t, "", "play", "--config", cfg, "--date", "2030-01-01")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestStreakRequiresConfiguredBackend(t *testing.T) {
	cfg := writeConfig(t, "../content/testdata/valid", "redis")

	_, err := runCLI(t, "", "streak", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires redis.addr")
}

func TestPickQuiz(t *testing.T) {
	catalog, err := content.LoadDir("../content/testdata/valid")
	require.NoError(t, err)
	ctx := context.Background()
	today := time.Date(2024, 1, 6, 8, 0, 0, 0, time.Local)

	quiz, err := pickQuiz(ctx, catalog, playOptions{}, today)
	require.NoError(t, err)
	assert.Equal(t, "web-history", quiz.Meta.ID)

	quiz, err = pickQuiz(ctx, catalog, playOptions{date: "2024-01-05"}, today)
	require.NoError(t, err)
	assert.Equal(t, "space-facts", quiz.Meta.ID)

	_, err = pickQuiz(ctx, catalog, playOptions{quizID: "nope"}, today)
	assert.True(t, errors.Is(err, domain.ErrQuizNotFound))
}
