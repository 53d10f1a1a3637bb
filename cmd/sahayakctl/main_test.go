package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak-api/internal/config"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

func testCLIConfig() config.Config {
	return config.Config{
		HistoryCap:     10,
		ActivityLogCap: 20,
	}
}

// runCLI executes the app with captured stdout.
func runCLI(t *testing.T, kv kvstore.Store, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	app := newCLIApp(kv, testCLIConfig())
	runErr := app.Run(append([]string{"sahayakctl"}, args...))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestHistoryCommandDumpsEntries(t *testing.T) {
	kv := kvstore.NewMemory()
	histories := history.NewProvider(kv, 10, zerolog.Nop())
	store := histories("teacher-1").Module(history.ModuleWorksheets)

	first := history.NewEntry(map[string]any{"subject": "Maths"})
	second := history.NewEntry(map[string]any{"subject": "Science"})
	_, err := store.Append(context.Background(), first)
	require.NoError(t, err)
	_, err = store.Append(context.Background(), second)
	require.NoError(t, err)

	out, err := runCLI(t, kv, "history", "worksheets", "--user", "teacher-1")
	require.NoError(t, err)

	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].ID)
	require.Equal(t, first.ID, entries[1].ID)
}

func TestHistoryCommandEmptyStore(t *testing.T) {
	out, err := runCLI(t, kvstore.NewMemory(), "history", "questions", "--user", "teacher-1")
	require.NoError(t, err)

	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Empty(t, entries)
}

func TestHistoryCommandRejectsUnknownModule(t *testing.T) {
	_, err := runCLI(t, kvstore.NewMemory(), "history", "podcasts", "--user", "teacher-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown module")
}
