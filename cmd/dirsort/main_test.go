package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"dirsort/internal/config"
	serr "dirsort/internal/errors"
	"dirsort/internal/organize"
	"dirsort/internal/rules"
	"dirsort/pkg/testutils"
	"dirsort/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns its output
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.Execute()
	return testutils.StripANSI(buf.String()), err
}

const classicConfig = `
# sorted downloads
LOG_LEVEL: info

RULE:
  TARGET_PATH: docs/pdf
  PRIORITY: 10
  APPLIES_TO: file
  CONDITIONS:
    EXTENSION: .pdf
  END_CONDITIONS
END_RULE

RULE:
  TARGET_PATH: docs/txt
  PRIORITY: 20
  CONDITIONS:
    EXTENSION: .txt
  END_CONDITIONS
END_RULE
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setupTree(t *testing.T) (src, dst, conf string) {
	t.Helper()
	tmp := t.TempDir()
	src = filepath.Join(tmp, "src")
	dst = filepath.Join(tmp, "dst")
	testutils.CreateSizedFile(t, filepath.Join(src, "a.pdf"), 500)
	testutils.CreateSizedFile(t, filepath.Join(src, "b.txt"), 50)
	conf = writeFile(t, filepath.Join(tmp, "organizer.conf"), classicConfig)
	return src, dst, conf
}

func TestVersionFlag(t *testing.T) {
	output, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "dirsort version dev")
}

func TestHelpListsCommands(t *testing.T) {
	output, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"organize", "rules", "validate"} {
		assert.Contains(t, output, name)
	}
}

func TestOrganizeCommand(t *testing.T) {
	src, dst, conf := setupTree(t)

	output, err := runCLI(t, "organize", "--config", conf, "--target", dst, src)
	require.NoError(t, err, output)

	testutils.AssertExists(t, filepath.Join(dst, "docs", "pdf", "a.pdf"))
	testutils.AssertExists(t, filepath.Join(dst, "docs", "txt", "b.txt"))
	assert.Regexp(t, `Files moved:\s+2`, output)
	assert.Contains(t, output, "run_id=")
	assert.Contains(t, output, "Organization complete.")
}

func TestOrganizeCommandDryRun(t *testing.T) {
	src, dst, conf := setupTree(t)

	output, err := runCLI(t, "organize", "--config", conf, "-s", src, "-t", dst, "--dry-run")
	require.NoError(t, err, output)

	testutils.AssertExists(t, filepath.Join(src, "a.pdf"))
	testutils.AssertNotExists(t, dst)
	assert.Contains(t, output, "[DRY RUN] Would move file")
	assert.Regexp(t, `Files would move:\s+2`, output)
}

func TestOrganizeCommandYAMLAndJSONLogs(t *testing.T) {
	src, dst, _ := setupTree(t)
	conf := writeFile(t, filepath.Join(t.TempDir(), "config.yaml"), `
settings:
  source_dir: `+src+`
  target_dir: `+dst+`
rules:
  - target: everything
`)
	logFile := filepath.Join(t.TempDir(), "logs", "run.log")

	output, err := runCLI(t, "organize", "--config", conf, "--json-logs", "--log-file", logFile, "--exclude", "*.txt")
	require.NoError(t, err, output)

	testutils.AssertExists(t, filepath.Join(dst, "everything", "a.pdf"))
	testutils.AssertExists(t, filepath.Join(src, "b.txt"))
	assert.Contains(t, output, `"run_id"`)
	assert.Regexp(t, `Excluded:\s+1`, output)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message"`)
}

func TestOrganizeCommandRequiresRules(t *testing.T) {
	src, dst, _ := setupTree(t)
	conf := writeFile(t, filepath.Join(t.TempDir(), "empty.conf"), "# no rules\n")

	_, err := runCLI(t, "organize", "--config", conf, "-s", src, "-t", dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rules")
	testutils.AssertExists(t, filepath.Join(src, "a.pdf"))
}

func TestOrganizeCommandInvalidConfig(t *testing.T) {
	_, _, conf := setupTree(t)

	_, err := runCLI(t, "organize", "--config", conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source directory is required")

	_, err = runCLI(t, "organize", "--config", filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestOrganizeCommandReportsErrors(t *testing.T) {
	src, _, conf := setupTree(t)
	blocker := writeFile(t, filepath.Join(t.TempDir(), "blocker"), "file")

	output, err := runCLI(t, "organize", "--config", conf, "-s", src, "-t", filepath.Join(blocker, "dst"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 errors")
	assert.Regexp(t, `Errors:\s+1`, output)
}

type fakeOrganizer struct {
	cfg     *config.Config
	rules   *rules.RuleSet
	dryRun  bool
	logger  organize.Logger
	stats   types.Statistics
	ranWith bool
}

func (f *fakeOrganizer) Run() types.Statistics {
	f.ranWith = f.logger != nil
	f.stats = types.Statistics{FilesProcessed: 3, FilesMoved: 3}
	return f.stats
}
func (f *fakeOrganizer) Statistics() types.Statistics    { return f.stats }
func (f *fakeOrganizer) ResetStatistics()                 { f.stats = types.Statistics{} }
func (f *fakeOrganizer) SetDryRun(dryRun bool)            { f.dryRun = dryRun }
func (f *fakeOrganizer) IsDryRun() bool                   { return f.dryRun }
func (f *fakeOrganizer) SetLogger(logger organize.Logger) { f.logger = logger }

func TestOrganizeCommandUsesFactory(t *testing.T) {
	src, dst, conf := setupTree(t)

	fake := &fakeOrganizer{}
	organize.SetOrganizerFactory(func(c *config.Config, set *rules.RuleSet) organize.Organizer {
		fake.cfg = c
		fake.rules = set
		fake.dryRun = c.Settings.DryRun
		return fake
	})
	defer organize.ResetOrganizerFactory()

	output, err := runCLI(t, "organize", "--config", conf, "-s", src, "-t", dst, "-n")
	require.NoError(t, err, output)

	assert.True(t, fake.ranWith, "logger injected before Run")
	assert.Equal(t, src, fake.cfg.Settings.SourceDir)
	assert.Equal(t, dst, fake.cfg.Settings.TargetDir)
	assert.True(t, fake.dryRun)
	assert.Equal(t, 2, fake.rules.Len())
	assert.Regexp(t, `Files would move:\s+3`, output)
	testutils.AssertExists(t, filepath.Join(src, "a.pdf"))
}

func TestRulesCommand(t *testing.T) {
	conf := writeFile(t, filepath.Join(t.TempDir(), "config.yml"), `
rules:
  - target: later
    priority: 50
    conditions:
      size_greater_than: 1mb
  - target: sooner
    priority: 5
    applies_to: folder
    conditions:
      name_matches: "project-*"
`)

	output, err := runCLI(t, "rules", "--config", conf)
	require.NoError(t, err, output)

	assert.Contains(t, output, "2 rules")
	assert.Contains(t, output, "1. Rule (priority=5, target='sooner') with conditions: name matches 'project-*' [applies to: folder]")
	assert.Contains(t, output, "2. Rule (priority=50, target='later') with conditions: size greater than 1.0 MiB")
}

func TestRulesConditionsCommand(t *testing.T) {
	output, err := runCLI(t, "rules", "conditions")
	require.NoError(t, err)
	for _, key := range rules.NewRegistry().Keys() {
		assert.Contains(t, output, key)
	}
}

func TestValidateCommand(t *testing.T) {
	src, dst, _ := setupTree(t)

	good := writeFile(t, filepath.Join(t.TempDir(), "good.conf"),
		"SOURCE_DIR: "+src+"\nTARGET_BASE_DIR: "+dst+"\n"+classicConfig)
	output, err := runCLI(t, "validate", "--config", good)
	require.NoError(t, err, output)
	assert.Contains(t, output, "Configuration is valid: 2 rules")

	badRule := writeFile(t, filepath.Join(t.TempDir(), "bad.conf"),
		"SOURCE_DIR: "+src+"\nTARGET_BASE_DIR: "+dst+"\nRULE:\nTARGET_PATH: x\nCONDITIONS:\nCOLOR: blue\nEND_CONDITIONS\nEND_RULE\n")
	output, err = runCLI(t, "validate", "--config", badRule)
	require.Error(t, err)
	assert.ErrorIs(t, err, serr.ErrInvalidRule)
	assert.Contains(t, output, "unknown condition type: COLOR")

	missingDirs := writeFile(t, filepath.Join(t.TempDir(), "dirs.conf"), classicConfig)
	output, err = runCLI(t, "validate", "--config", missingDirs)
	require.Error(t, err)
	assert.ErrorIs(t, err, serr.ErrInvalidConfig)
	assert.Contains(t, output, "source directory is required")
}

func TestOrganizeCommandLogsInvalidRules(t *testing.T) {
	src, dst, _ := setupTree(t)

	badAge := writeFile(t, filepath.Join(t.TempDir(), "age.conf"),
		"SOURCE_DIR: "+src+"\nTARGET_BASE_DIR: "+dst+"\nRULE:\nTARGET_PATH: old\nCONDITIONS:\nAGE_OLDER_THAN: 1000y\nEND_CONDITIONS\nEND_RULE\n")
	output, err := runCLI(t, "organize", "--config", badAge)
	require.Error(t, err)
	assert.True(t, serr.IsKind(err, serr.InvalidValue))
	assert.Contains(t, output, "Invalid rules")
	testutils.AssertNotExists(t, filepath.Join(dst, "old"))
}
