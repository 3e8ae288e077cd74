package checks

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/minigame-lab/gamecheck/internal/config"
	"github.com/minigame-lab/gamecheck/internal/project"
	"github.com/minigame-lab/gamecheck/internal/utils"
)

// Check identifiers, in checklist order.
const (
	CheckEntryFound        = "entry-found"
	CheckEngineReferenced  = "engine-referenced"
	CheckMainReferenced    = "main-script-referenced"
	CheckLocalScriptsExist = "local-scripts-exist"
	CheckMainResolved      = "main-script-resolved"
)

// GameChecker runs the fixed game project checklist.
type GameChecker struct {
	fs     afero.Fs
	cfg    config.Config
	logger *utils.Logger
}

func NewGameChecker(fsys afero.Fs, cfg config.Config, logger *utils.Logger) *GameChecker {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &GameChecker{fs: fsys, cfg: cfg, logger: logger.WithComponent("checks")}
}

// Run evaluates every check that can be evaluated with the data available.
// Missing files and unreadable content become failed checks, never errors.
func (g *GameChecker) Run() *Report {
	start := time.Now()
	cfg := g.cfg
	entryName := cfg.Entry.Name
	mainName := cfg.MainScript.Marker
	checklist := &Checklist{}

	entryPath, found, err := project.NewLocator(g.fs, entryName, cfg.Entry.Candidates).Locate(cfg.Root)
	if err != nil {
		g.logger.WithError(err).Debug("Entry file search failed")
	}
	checklist.Check(CheckEntryFound, found,
		"Found "+entryName,
		fmt.Sprintf("%s not found under %s", entryName, cfg.Root))

	extractor := project.NewExtractor(g.fs, cfg.RemoteSchemes)
	var refs []project.ScriptReference
	if found {
		g.logger.WithField("entry", entryPath).Debug("Located entry file")

		html, err := afero.ReadFile(g.fs, entryPath)
		if err != nil {
			g.logger.WithError(err).WithField("entry", entryPath).Warn("Failed to read entry file")
		}
		refs = extractor.Extract(entryPath, string(html))
		g.logger.WithField("references", len(refs)).Debug("Extracted script references")

		engine := cfg.EngineLabel()
		checklist.Check(CheckEngineReferenced, project.AnyContains(refs, cfg.Engine.Marker),
			engine+" script referenced",
			fmt.Sprintf("%s script not referenced in %s", engine, entryName))
		checklist.Check(CheckMainReferenced, project.AnyContains(refs, mainName),
			mainName+" referenced",
			fmt.Sprintf("%s not referenced in %s", mainName, entryName))
	}

	missing := project.Missing(refs)
	checklist.Check(CheckLocalScriptsExist, len(missing) == 0,
		"All local scripts exist",
		"Missing scripts: "+strings.Join(missing, ", "))

	mainPath, content, ok := g.loadMainScript(extractor, refs)
	checklist.Check(CheckMainResolved, ok,
		mainName+" resolved",
		mainName+" path could not be resolved")
	if ok {
		InspectMainScript(checklist, content, mainName, cfg.MainScript.Identifiers)
	}

	report := NewReport(cfg.Root, checklist)
	if found {
		report.EntryPath = entryPath
	}
	report.MainScript = mainPath
	report.Duration = time.Since(start)
	return report
}

func (g *GameChecker) loadMainScript(extractor *project.Extractor, refs []project.ScriptReference) (string, string, bool) {
	mainPath, ok := extractor.MainScript(refs, g.cfg.MainScript.Marker)
	if !ok {
		return "", "", false
	}
	data, err := afero.ReadFile(g.fs, mainPath)
	if err != nil {
		g.logger.WithError(err).WithField("path", mainPath).Warn("Failed to read main script")
		return "", "", false
	}
	g.logger.WithFields(map[string]interface{}{
		"path": filepath.ToSlash(mainPath),
		"size": humanize.Bytes(uint64(len(data))),
	}).Debug("Loaded main script")
	return mainPath, string(data), true
}
