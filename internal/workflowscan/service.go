package workflowscan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	scanHeadingTemplateConstant   = "🔍 Scanning GitHub Actions workflows under repos in: %s\n"
	thresholdLineConstant         = "   Threshold: python-version < 3.14.0\n\n"
	noneFoundMessageConstant      = "✅ No workflows found using python-version below 3.14. 🐍\n"
	repositoryHeadingTemplate     = "📁 %s\n"
	workflowEntryTemplateConstant = "   ├─ %s ⚠️ python-version(s): %s\n"
	repositorySeparatorConstant   = "\n"
	summaryTemplateConstant       = "📊 Summary: %d repos, %d workflow file(s) using python-version < 3.14 🧮\n"
	workflowsRelativePathConstant = ".github/workflows"
	ymlExtensionConstant          = ".yml"
	yamlExtensionConstant         = ".yaml"
	toxPathFragmentConstant       = "tox"
	versionListSeparatorConstant  = ", "
)

// WorktreeVerifier confirms with git whether a directory is a repository.
type WorktreeVerifier interface {
	IsGitRepository(executionContext context.Context, repositoryPath string) (bool, error)
}

type legacyWorkflowFile struct {
	relativePath string
	versions     []string
}

type legacyRepository struct {
	name  string
	files []legacyWorkflowFile
}

// Service scans workflow files beneath local repositories for legacy python-version pins.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	verifier     WorktreeVerifier
	extractor    VersionExtractor
	outputWriter io.Writer
}

// NewService constructs a workflow scanning service.
func NewService(discoverer shared.RepositoryDiscoverer, verifier WorktreeVerifier, extractor VersionExtractor, outputWriter io.Writer) *Service {
	if extractor == nil {
		extractor = NewLineVersionExtractor()
	}
	return &Service{
		discoverer:   discoverer,
		verifier:     verifier,
		extractor:    extractor,
		outputWriter: outputWriter,
	}
}

// ExtractorForParser maps a configured parser name onto an extractor; unknown names fall back to the line scanner.
func ExtractorForParser(parserName string) VersionExtractor {
	if strings.EqualFold(strings.TrimSpace(parserName), YAMLParserName) {
		return NewYAMLVersionExtractor()
	}
	return NewLineVersionExtractor()
}

// Run reports workflow files pinned to python versions below 3.14, grouped by repository.
// Files on paths containing "tox" count toward the summary but are not listed.
func (service *Service) Run(executionContext context.Context, configuration Configuration) error {
	cloneRoot := configuration.rootOrDefault()
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, cloneRoot)
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprintf(service.outputWriter, scanHeadingTemplateConstant, cloneRoot)
	fmt.Fprint(service.outputWriter, thresholdLineConstant)

	legacyRepositories := make([]legacyRepository, 0, len(candidates))
	for _, candidate := range candidates {
		insideWorktree, verificationError := service.verifier.IsGitRepository(executionContext, candidate.Path)
		if verificationError != nil || !insideWorktree {
			continue
		}

		legacyFiles := service.scanRepositoryWorkflows(candidate.Path)
		if len(legacyFiles) > 0 {
			legacyRepositories = append(legacyRepositories, legacyRepository{name: candidate.Name, files: legacyFiles})
		}
	}

	if len(legacyRepositories) == 0 {
		fmt.Fprint(service.outputWriter, noneFoundMessageConstant)
		return nil
	}

	totalFiles := 0
	for _, repository := range legacyRepositories {
		fmt.Fprintf(service.outputWriter, repositoryHeadingTemplate, repository.name)
		for _, workflowFile := range repository.files {
			totalFiles++
			if strings.Contains(workflowFile.relativePath, toxPathFragmentConstant) {
				continue
			}
			fmt.Fprintf(service.outputWriter, workflowEntryTemplateConstant, workflowFile.relativePath, strings.Join(workflowFile.versions, versionListSeparatorConstant))
		}
		fmt.Fprint(service.outputWriter, repositorySeparatorConstant)
	}

	fmt.Fprintf(service.outputWriter, summaryTemplateConstant, len(legacyRepositories), totalFiles)
	return nil
}

// scanRepositoryWorkflows walks .github/workflows recursively for yml/yaml files with legacy pins.
func (service *Service) scanRepositoryWorkflows(repositoryPath string) []legacyWorkflowFile {
	workflowsDirectory := filepath.Join(repositoryPath, filepath.FromSlash(workflowsRelativePathConstant))
	directoryInfo, statError := os.Stat(workflowsDirectory)
	if statError != nil || !directoryInfo.IsDir() {
		return nil
	}

	legacyFiles := make([]legacyWorkflowFile, 0)
	_ = filepath.WalkDir(workflowsDirectory, func(walkPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil || entry.IsDir() {
			return nil
		}
		extension := strings.ToLower(filepath.Ext(entry.Name()))
		if extension != ymlExtensionConstant && extension != yamlExtensionConstant {
			return nil
		}

		workflowText, readError := os.ReadFile(walkPath)
		if readError != nil {
			return nil
		}
		legacyVersions := service.extractor.ExtractLegacyVersions(string(workflowText))
		if len(legacyVersions) == 0 {
			return nil
		}

		relativePath, relativeError := filepath.Rel(repositoryPath, walkPath)
		if relativeError != nil {
			relativePath = walkPath
		}
		legacyFiles = append(legacyFiles, legacyWorkflowFile{
			relativePath: filepath.ToSlash(relativePath),
			versions:     legacyVersions,
		})
		return nil
	})

	return legacyFiles
}
