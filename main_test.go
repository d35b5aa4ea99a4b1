package main

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotux/log-parser/internal/config"
	apperrors "github.com/iotux/log-parser/internal/errors"
	"github.com/iotux/log-parser/internal/extractor"
	"github.com/iotux/log-parser/internal/filter"
	"github.com/iotux/log-parser/internal/models"
	"github.com/iotux/log-parser/internal/parser"
	"github.com/iotux/log-parser/internal/render"
)

// parsePipeline runs extract+parse over in-memory log text, the same
// sequence run() drives over a file or stdin.
func parsePipeline(t *testing.T, input, trigger string) []*models.Record {
	t.Helper()
	blocks, err := extractor.ExtractAll(strings.NewReader(input), trigger, extractor.Options{})
	require.NoError(t, err)

	p := parser.New(nil)
	records := make([]*models.Record, 0, len(blocks))
	for _, block := range blocks {
		records = append(records, p.ParseRecord(block.Text))
	}
	return records
}

func TestPipeline_EndToEnd(t *testing.T) {
	input := `Tag { a: 1, b: [1,2], c: { d: "x" } }` + "\n"

	records := parsePipeline(t, input, "Tag")
	require.Len(t, records, 1)
	assert.Equal(t, `{"a":1,"b":[1,2],"c":{"d":"x"}}`, records[0].EncodeCompact())
}

func TestPipeline_FilterAndRender(t *testing.T) {
	input := strings.Join([]string{
		`Req { user: "alice", path: "/a", status: 200 }`,
		`Req { user: "alice", path: "/a", status: 200 }`,
		`Req { user: "bob", path: "/b", status: 404 }`,
		`Req { user: "alice", path: "/c", status: 200 }`,
		"unrelated noise",
	}, "\n")

	records := parsePipeline(t, input, "Req")
	require.Len(t, records, 4)

	records = filter.DedupAdjacent(records, []string{"user", "path"})
	require.Len(t, records, 3)

	records = filter.Project(records, []string{"user", "status"})
	out, err := render.New(render.Options{Format: render.FormatCSV}).Render(records)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"user,status",
		"alice,200",
		"bob,404",
		"alice,200",
	}, "\n"), out)
}

func TestPipeline_UnterminatedRecordYieldsNothing(t *testing.T) {
	input := "Tag { a: 1,\n  b: 2\n"
	records := parsePipeline(t, input, "Tag")
	assert.Empty(t, records)
}

func TestExtractAndParse_NoMatchingRecordsIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("noise only\nmore noise\n"), 0644))

	prev := CLI.Input
	CLI.Input = path
	defer func() { CLI.Input = prev }()

	cfg := config.NewConfig()
	cfg.Trigger = "Tag"

	_, err := extractAndParse(cfg, newLogger(false))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrNoRecords))
}

func TestExtractAndParse_MatchingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("Tag { a: 1 }\n"), 0644))

	prev := CLI.Input
	CLI.Input = path
	defer func() { CLI.Input = prev }()

	cfg := config.NewConfig()
	cfg.Trigger = "Tag"

	records, err := extractAndParse(cfg, newLogger(false))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `{"a":1}`, records[0].EncodeCompact())
}

func TestApplyFilters_Order(t *testing.T) {
	mk := func(user string, status float64) *models.Record {
		r := models.NewRecord()
		r.Set("user", user)
		r.Set("status", status)
		return r
	}
	records := []*models.Record{
		mk("alice", 200),
		mk("alice", 200),
		mk("bob", 404),
	}

	cfg := config.NewConfig()
	cfg.Filter.Key = "user"
	cfg.Filter.Unique = true
	cfg.Filter.Project = []string{"user"}
	cfg.Filter.DedupKeys = []string{"user"}

	filtered := applyFilters(cfg, records)
	// Unique removes the repeated alice record before projection; the
	// adjacent dedup then sees distinct tuples only.
	require.Len(t, filtered, 2)
	assert.Equal(t, `{"user":"alice"}`, filtered[0].EncodeCompact())
	assert.Equal(t, `{"user":"bob"}`, filtered[1].EncodeCompact())
}

func TestNewLogger_Levels(t *testing.T) {
	assert.NotNil(t, newLogger(false))
	assert.NotNil(t, newLogger(true))
}
