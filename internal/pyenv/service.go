package pyenv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	supportedVersionFragmentConstant = "3.14"
	badVenvsHeadingConstant          = "Non-3.14 virtual environments detected:\n"
	badVenvEntryTemplateConstant     = "  %s: %s\n"
	noPythonFoundLabelConstant       = "no python found"
	goodVenvsSummaryTemplate         = "\n%d good repos\n"
	poetryScanHeadingTemplate        = "🔍 Scanning for Poetry-based repos in: %s\n"
	poetryNoneFoundMessageConstant   = "✅ No Poetry-based repos found among immediate subdirectories.\n"
	poetryHeadingConstant            = "\n📦 Repos still using Poetry:\n\n"
	poetryEntryTemplateConstant      = "📁 %s 🧪\n"
	poetrySummaryTemplateConstant    = "\n📊 Total Poetry repos: %d\n"
	poetryLockFileNameConstant       = "poetry.lock"
	pyprojectFileNameConstant        = "pyproject.toml"
)

// WorktreeVerifier confirms with git whether a directory is a repository.
type WorktreeVerifier interface {
	IsGitRepository(executionContext context.Context, repositoryPath string) (bool, error)
}

// VersionProber reads interpreter versions out of per-repository virtual environments.
type VersionProber interface {
	HasVirtualEnvironment(repositoryPath string) bool
	ProbeVersion(executionContext context.Context, repositoryPath string) string
}

// Service reports Python environment state across local repositories.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	verifier     WorktreeVerifier
	prober       VersionProber
	outputWriter io.Writer
}

// NewService constructs a Python environment scanning service.
func NewService(discoverer shared.RepositoryDiscoverer, verifier WorktreeVerifier, prober VersionProber, outputWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		verifier:     verifier,
		prober:       prober,
		outputWriter: outputWriter,
	}
}

type problemVenv struct {
	name    string
	version string
}

// RunVenvs probes every repository's .venv interpreter and reports those not on 3.14.
// Directories without a .venv are ignored; a venv whose interpreter cannot be
// executed reports as having no python.
func (service *Service) RunVenvs(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	goodCount := 0
	problems := make([]problemVenv, 0, len(candidates))
	for _, candidate := range candidates {
		if !service.prober.HasVirtualEnvironment(candidate.Path) {
			continue
		}

		versionOutput := service.prober.ProbeVersion(executionContext, candidate.Path)
		switch {
		case len(versionOutput) == 0:
			problems = append(problems, problemVenv{name: candidate.Name, version: noPythonFoundLabelConstant})
		case strings.Contains(versionOutput, supportedVersionFragmentConstant):
			goodCount++
		default:
			problems = append(problems, problemVenv{name: candidate.Name, version: versionOutput})
		}
	}

	if len(problems) > 0 {
		fmt.Fprint(service.outputWriter, badVenvsHeadingConstant)
		for _, problem := range problems {
			fmt.Fprintf(service.outputWriter, badVenvEntryTemplateConstant, problem.name, problem.version)
		}
	}
	fmt.Fprintf(service.outputWriter, goodVenvsSummaryTemplate, goodCount)
	return nil
}

// RunPoetry reports git repositories that still use Poetry, detected by a
// poetry.lock file or a [tool.poetry] table in pyproject.toml.
func (service *Service) RunPoetry(executionContext context.Context, configuration Configuration) error {
	cloneRoot := configuration.rootOrDefault()
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, cloneRoot)
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprintf(service.outputWriter, poetryScanHeadingTemplate, cloneRoot)

	poetryRepositories := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		insideWorktree, verificationError := service.verifier.IsGitRepository(executionContext, candidate.Path)
		if verificationError != nil || !insideWorktree {
			continue
		}
		if usesPoetry(candidate.Path) {
			poetryRepositories = append(poetryRepositories, candidate.Name)
		}
	}

	if len(poetryRepositories) == 0 {
		fmt.Fprint(service.outputWriter, poetryNoneFoundMessageConstant)
		return nil
	}

	fmt.Fprint(service.outputWriter, poetryHeadingConstant)
	for _, repositoryName := range poetryRepositories {
		fmt.Fprintf(service.outputWriter, poetryEntryTemplateConstant, repositoryName)
	}
	fmt.Fprintf(service.outputWriter, poetrySummaryTemplateConstant, len(poetryRepositories))
	return nil
}

// usesPoetry checks for a poetry.lock file, then for a [tool.poetry] table in
// pyproject.toml. A pyproject that fails to parse as TOML does not count.
func usesPoetry(repositoryPath string) bool {
	lockInfo, lockStatError := os.Stat(filepath.Join(repositoryPath, poetryLockFileNameConstant))
	if lockStatError == nil && lockInfo.Mode().IsRegular() {
		return true
	}

	pyprojectContents, readError := os.ReadFile(filepath.Join(repositoryPath, pyprojectFileNameConstant))
	if readError != nil {
		return false
	}

	var document struct {
		Tool map[string]interface{} `toml:"tool"`
	}
	if unmarshalError := toml.Unmarshal(pyprojectContents, &document); unmarshalError != nil {
		return false
	}
	_, poetryConfigured := document.Tool["poetry"]
	return poetryConfigured
}
