package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/store/sqlite"
)

// setup writes a config pointing at a temp database seeded with a template.
func setup(t *testing.T) (configPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	dbPath := filepath.Join(dir, "planning.db")

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, generic.Person{ID: "p1", Name: "Alain"}))
	require.NoError(t, store.SaveTemplate(ctx, generic.Template{Kind: "ramasse", Slots: []generic.TemplateSlot{
		{Day: generic.Monday, Slot: "chauffeur", Nominee: "p1"},
		{Day: generic.Tuesday, Slot: "chauffeur", Nominee: "p1"},
	}}))
	require.NoError(t, store.SaveAbsence(ctx, generic.AbsenceRange{
		PersonID: "p1",
		Period:   generic.Period{Start: generic.NewTimePoint(2025, 3, 4), End: generic.NewTimePoint(2025, 3, 4)},
	}))
	require.NoError(t, store.Close())

	configPath = filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"storage:\n  path: "+dbPath+"\n"+
			"backup:\n  directory: "+filepath.Join(dir, "backups")+"\n  keep: 2\n"+
			"log:\n  level: error\n"), 0o600))
	return configPath, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateAndReconcile(t *testing.T) {
	cfg, _ := setup(t)

	out, err := run(t, "--config", cfg, "generate", "ramasse", "2025", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "ramasse 2025-W10 generated (2 seats)")
	assert.Regexp(t, `lundi\s+2025-03-03\s+chauffeur\s+p1\s+non\s+non`, out)
	assert.Regexp(t, `mardi\s+2025-03-04\s+chauffeur\s+p1\s+oui\s+non`, out)
	assert.Less(t, strings.Index(out, "lundi"), strings.Index(out, "mardi"))

	// WHEN: generating the same week again without confirmation
	_, err = run(t, "--config", cfg, "generate", "ramasse", "2025", "10")
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrRosterExists)
	assert.Contains(t, err.Error(), "--confirm")

	_, err = run(t, "--config", cfg, "generate", "ramasse", "2025", "10", "--confirm")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "reconcile", "2025", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-W10: 1 rosters, 0 flags changed, 0 failed")
}

func TestGenerateEmptyTemplate(t *testing.T) {
	cfg, _ := setup(t)

	out, err := run(t, "--config", cfg, "generate", "pesee", "2025", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "pesee has no template")
}

func TestGenerateInvalidArguments(t *testing.T) {
	cfg, _ := setup(t)

	_, err := run(t, "--config", cfg, "generate", "ramasse", "2025", "54")
	assert.ErrorIs(t, err, generic.ErrInvalidWeek)

	_, err = run(t, "--config", cfg, "generate", "brocante", "2025", "10")
	assert.ErrorIs(t, err, generic.ErrUnknownKind)

	_, err = run(t, "--config", cfg, "generate", "ramasse")
	assert.Error(t, err)
}

func TestBackup(t *testing.T) {
	cfg, dir := setup(t)

	out, err := run(t, "--config", cfg, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, "backup written: planning-")

	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
