package organize

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dirsort/internal/config"
	serr "dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/internal/rules"
	"dirsort/pkg/types"

	"github.com/bmatcuk/doublestar/v4"
)

// Logger is what the engine needs to report progress
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var _ Logger = (*log.Logger)(nil)

// Engine walks a source tree and moves every entry matching a rule into
// the target tree. It is single-threaded; one Run at a time per Engine.
type Engine struct {
	sourceDir string
	targetDir string
	rules     *rules.RuleSet
	dryRun    bool
	exclude   []string
	logger    Logger
	stats     types.Statistics
}

// New creates an engine moving entries from sourceDir into targetDir
func New(sourceDir, targetDir string, ruleSet *rules.RuleSet) *Engine {
	return &Engine{
		sourceDir: sourceDir,
		targetDir: targetDir,
		rules:     ruleSet,
		logger:    log.Default(),
	}
}

// NewWithConfig creates an engine from the configured settings
func NewWithConfig(cfg *config.Config, ruleSet *rules.RuleSet) *Engine {
	e := New(cfg.Settings.SourceDir, cfg.Settings.TargetDir, ruleSet)
	e.dryRun = cfg.Settings.DryRun
	e.exclude = append([]string(nil), cfg.Settings.Exclude...)
	return e
}

// SetDryRun sets whether moves should be performed or just counted
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// SetLogger replaces the logger; nil restores the package default
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = log.Default()
	}
	e.logger = l
}

// SetExclude sets doublestar patterns, relative to the source directory,
// for entries that are never considered. An excluded directory is pruned
// with its whole subtree.
func (e *Engine) SetExclude(patterns []string) {
	e.exclude = append([]string(nil), patterns...)
}

// SetRules replaces the rule set
func (e *Engine) SetRules(ruleSet *rules.RuleSet) {
	if ruleSet != nil {
		ruleSet.SortByPriority()
	}
	e.rules = ruleSet
}

// SourceDir returns the directory being organized
func (e *Engine) SourceDir() string {
	return e.sourceDir
}

// TargetDir returns the root of the organized tree
func (e *Engine) TargetDir() string {
	return e.targetDir
}

// Statistics returns the counters of the last run
func (e *Engine) Statistics() types.Statistics {
	return e.stats
}

// ResetStatistics zeroes all counters
func (e *Engine) ResetStatistics() {
	e.stats = types.Statistics{}
}

// Run organizes the source tree and returns the run's statistics.
// Failures never escape: they are logged and counted in Errors. Only a
// missing source directory or an uncreatable target directory stop the run
// before any entry is processed.
func (e *Engine) Run() types.Statistics {
	e.ResetStatistics()
	e.logger.Infof("Starting file organization: source=%s target=%s rules=%d dry_run=%t",
		e.sourceDir, e.targetDir, e.rules.Len(), e.dryRun)

	info, err := os.Stat(e.sourceDir)
	if err != nil || !info.IsDir() {
		e.abort(serr.NewFileError("source directory does not exist or is not a directory", e.sourceDir, serr.SourceMissing, err))
		return e.stats
	}

	if !e.dryRun {
		if err := os.MkdirAll(e.targetDir, 0755); err != nil {
			e.abort(serr.NewFileError("failed to create target base directory", e.targetDir, serr.TargetUncreatable, err))
			return e.stats
		}
	}

	root, targetAbs, err := e.resolveRoots()
	if err != nil {
		e.abort(err)
		return e.stats
	}

	// Collect everything first: moving a directory removes its descendants
	// from the live tree.
	paths := e.snapshot(root)
	e.logger.Debugf("Collected %d entries under %s", len(paths), root)

	for _, path := range paths {
		e.processItem(path, targetAbs)
	}

	e.logSummary()
	return e.stats
}

func (e *Engine) abort(err error) {
	e.logger.Errorf("Organization aborted: %v", err)
	e.stats.Errors++
}

func (e *Engine) snapshot(root string) []string {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			e.logger.Errorf("Error scanning %s: %v", path, err)
			e.stats.Errors++
			return nil
		}
		if path == root {
			return nil
		}
		if e.excluded(root, path) {
			e.stats.Excluded++
			e.logger.Debugf("Excluded %s", path)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		e.logger.Errorf("Error scanning source directory: %v", err)
		e.stats.Errors++
	}
	return paths
}

func (e *Engine) excluded(root, path string) bool {
	if len(e.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range e.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (e *Engine) processItem(path, targetAbs string) {
	// Already relocated together with an ancestor directory
	if !types.Exists(path) {
		return
	}

	item := types.Inspect(path)
	if item.Kind == types.KindOther {
		e.logger.Debugf("Skipping unsupported item type: %s", path)
		return
	}
	if isWithin(path, targetAbs) {
		e.logger.Debugf("Skipping item already in target directory: %s", path)
		return
	}

	e.countProcessed(item.Kind)

	rule, ok := e.rules.FirstMatch(item)
	if !ok {
		e.logger.Debugf("No matching rule found for %s: %s", item.Kind, item.Name)
		e.countSkipped(item.Kind)
		return
	}

	dest := filepath.Join(e.targetDir, rule.Target(), item.Name)
	e.logger.Debugf("%s '%s' matches %s", item.Kind, item.Name, rule.Describe())

	final, err := e.moveItem(item, dest)
	if err != nil {
		e.logger.Errorf("Failed to move %s '%s': %v", item.Kind, path, err)
		e.stats.Errors++
		e.countSkipped(item.Kind)
		return
	}

	e.countMoved(item.Kind)
	if e.dryRun {
		e.logger.Infof("[DRY RUN] Would move %s '%s' to '%s'", item.Kind, path, final)
	} else {
		e.logger.Infof("Moved %s '%s' to '%s'", item.Kind, path, final)
	}
}

// moveItem renames item to dest, or to a suffixed sibling of dest when dest
// is taken, and returns the path actually used. A directory moves with its
// whole subtree in one rename.
func (e *Engine) moveItem(item types.ItemMetadata, dest string) (string, error) {
	if e.dryRun {
		return dest, nil
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", serr.NewFileError("failed to create destination directory", parent, serr.DirectoryCreateFailed, err)
	}

	final := dest
	_, err := os.Lstat(dest)
	switch {
	case err == nil:
		final, err = uniqueDestination(dest)
		if err != nil {
			return "", err
		}
		e.logger.Warnf("Target already exists, using: %s", final)
	case !os.IsNotExist(err):
		return "", serr.NewFileError("error checking destination", dest, serr.MoveFailed, err)
	}

	if err := os.Rename(item.Path, final); err != nil {
		return "", serr.NewFileError("failed to move item", item.Path, serr.MoveFailed, err)
	}
	return final, nil
}

func (e *Engine) countProcessed(kind types.ItemKind) {
	if kind == types.KindDirectory {
		e.stats.DirectoriesProcessed++
	} else {
		e.stats.FilesProcessed++
	}
}

func (e *Engine) countSkipped(kind types.ItemKind) {
	if kind == types.KindDirectory {
		e.stats.DirectoriesSkipped++
	} else {
		e.stats.FilesSkipped++
	}
}

func (e *Engine) countMoved(kind types.ItemKind) {
	if kind == types.KindDirectory {
		e.stats.DirectoriesMoved++
	} else {
		e.stats.FilesMoved++
	}
}

func (e *Engine) logSummary() {
	verb := "moved"
	if e.dryRun {
		verb = "would be moved"
	}
	s := e.stats
	e.logger.Infof("Organization process completed")
	e.logger.Infof("Files processed: %d, %s: %d, skipped: %d", s.FilesProcessed, verb, s.FilesMoved, s.FilesSkipped)
	e.logger.Infof("Directories processed: %d, %s: %d, skipped: %d", s.DirectoriesProcessed, verb, s.DirectoriesMoved, s.DirectoriesSkipped)
	if s.Excluded > 0 {
		e.logger.Infof("Excluded: %d", s.Excluded)
	}
	e.logger.Infof("Errors: %d", s.Errors)
}

// resolveRoots returns the directory to walk and the absolute target used to
// skip entries already organized. WalkDir does not descend into a symlinked
// root, so such a root is replaced by the directory it points at and the
// target is resolved the same way to stay comparable.
func (e *Engine) resolveRoots() (string, string, error) {
	targetAbs, err := filepath.Abs(e.targetDir)
	if err != nil {
		targetAbs = filepath.Clean(e.targetDir)
	}

	info, err := os.Lstat(e.sourceDir)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return e.sourceDir, targetAbs, nil
	}

	root, err := filepath.EvalSymlinks(e.sourceDir)
	if err != nil {
		return "", "", serr.NewFileError("failed to resolve source directory", e.sourceDir, serr.SourceMissing, err)
	}
	if resolved, err := filepath.EvalSymlinks(targetAbs); err == nil {
		targetAbs = resolved
	}
	e.logger.Debugf("Source %s resolves to %s", e.sourceDir, root)
	return root, targetAbs, nil
}

// isWithin reports whether path is dirAbs or lies below it
func isWithin(path, dirAbs string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dirAbs, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
