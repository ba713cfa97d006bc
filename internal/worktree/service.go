package worktree

import (
	"context"
	"fmt"
	"io"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	strandedScanHeadingConstant          = "🔍 Checking for stranded work…\n"
	uncommittedGroupHeadingConstant      = "✏️ Repos with uncommitted changes:\n"
	uncommittedGroupEmptyConstant        = "✏️ No repos with uncommitted changes found.\n"
	unpushedGroupHeadingConstant         = "📤 Repos with unpushed commits:\n"
	unpushedGroupEmptyConstant           = "📤 No repos with unpushed commits found (for branches with an upstream).\n"
	cleanGroupHeadingConstant            = "✅ Clean repos (no uncommitted or unpushed work):\n"
	nonGitGroupHeadingConstant           = "📁 Non-git directories:\n"
	groupMemberTemplateConstant          = "  - %s\n"
	unpushedMemberTemplateConstant       = "  - %s (ahead by %d commit%s)\n"
	pluralSuffixConstant                 = "s"
	scanFailureTemplateConstant          = "❌ [%s] %v\n"
	completedWithErrorsMessageConstant   = "⚠️  Completed with errors. See stderr for details.\n"
	completedSuccessfullyMessageConstant = "✅ Completed successfully.\n"
	changesScanHeadingConstant           = "🔍 Scanning for git repositories with local changes...\n\n"
	cleanRepositoryTemplateConstant      = "✅ %s is clean.\n"
	changesInspectionFailureTemplate     = "💥 Error inspecting %s: %v\n"
	allRepositoriesCleanMessageConstant  = "✅ All git repositories are clean.\n"
	dirtyGroupHeadingConstant            = "⚠️ Repositories with local changes (would be picked up by `git add -A`):\n"
	dirtyRepositoryTemplateConstant      = "\n📁 %s (%d path(s) changed)\n"
	dirtyPathTemplateConstant            = "   • %s\n"
	changesFindingsFooterMessageConstant = "\n⚠️ Done. At least one repository has local changes.\n"
)

// Service scans clone folders for uncommitted and unpushed work.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	gitManager   shared.GitRepositoryManager
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a worktree scanning service.
func NewService(discoverer shared.RepositoryDiscoverer, gitManager shared.GitRepositoryManager, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		gitManager:   gitManager,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}
}

type unpushedFinding struct {
	name       string
	aheadCount int
}

// RunStranded reports repositories with uncommitted changes or unpushed commits.
// Per-repository failures are reported and accumulated without aborting the scan.
func (service *Service) RunStranded(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, strandedScanHeadingConstant)

	accumulator := shared.NewErrorAccumulator()
	var uncommitted []string
	var unpushed []unpushedFinding
	var clean []string
	var nonGit []string

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			nonGit = append(nonGit, candidate.Name)
			continue
		}

		worktreeClean, cleanlinessError := service.gitManager.CheckCleanWorktree(executionContext, candidate.Path)
		cleanlinessKnown := cleanlinessError == nil
		if cleanlinessError != nil {
			accumulator.Record(candidate.Name, cleanlinessError)
			fmt.Fprintf(service.errorWriter, scanFailureTemplateConstant, candidate.Name, cleanlinessError)
		} else if !worktreeClean {
			uncommitted = append(uncommitted, candidate.Name)
		}

		aheadCount, aheadError := service.gitManager.CountAheadCommits(executionContext, candidate.Path)
		aheadKnown := aheadError == nil
		if aheadError != nil {
			accumulator.Record(candidate.Name, aheadError)
			fmt.Fprintf(service.errorWriter, scanFailureTemplateConstant, candidate.Name, aheadError)
		} else if aheadCount > 0 {
			unpushed = append(unpushed, unpushedFinding{name: candidate.Name, aheadCount: aheadCount})
		}

		if cleanlinessKnown && worktreeClean && aheadKnown && aheadCount == 0 {
			clean = append(clean, candidate.Name)
		}
	}

	if len(uncommitted) > 0 {
		fmt.Fprint(service.outputWriter, uncommittedGroupHeadingConstant)
		for _, repositoryName := range uncommitted {
			fmt.Fprintf(service.outputWriter, groupMemberTemplateConstant, repositoryName)
		}
	} else {
		fmt.Fprint(service.outputWriter, uncommittedGroupEmptyConstant)
	}

	if len(unpushed) > 0 {
		fmt.Fprint(service.outputWriter, unpushedGroupHeadingConstant)
		for _, finding := range unpushed {
			fmt.Fprintf(service.outputWriter, unpushedMemberTemplateConstant, finding.name, finding.aheadCount, pluralSuffix(finding.aheadCount))
		}
	} else {
		fmt.Fprint(service.outputWriter, unpushedGroupEmptyConstant)
	}

	if configuration.Verbose {
		if len(clean) > 0 {
			fmt.Fprint(service.outputWriter, cleanGroupHeadingConstant)
			for _, repositoryName := range clean {
				fmt.Fprintf(service.outputWriter, groupMemberTemplateConstant, repositoryName)
			}
		}
		if len(nonGit) > 0 {
			fmt.Fprint(service.outputWriter, nonGitGroupHeadingConstant)
			for _, directoryName := range nonGit {
				fmt.Fprintf(service.outputWriter, groupMemberTemplateConstant, directoryName)
			}
		}
	}

	if accumulator.HasFailures() {
		fmt.Fprint(service.errorWriter, completedWithErrorsMessageConstant)
		return accumulator.Result()
	}
	fmt.Fprint(service.outputWriter, completedSuccessfullyMessageConstant)
	return nil
}

// RunChanges lists repositories whose worktrees contain uncommitted changes.
// Findings yield ErrFindingsDetected so the process exits non-zero.
func (service *Service) RunChanges(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, changesScanHeadingConstant)

	type dirtyFinding struct {
		name        string
		changeLines []string
	}
	var dirty []dirtyFinding

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		changeLines, changesError := service.gitManager.ListWorktreeChanges(executionContext, candidate.Path)
		if changesError != nil {
			fmt.Fprintf(service.outputWriter, changesInspectionFailureTemplate, candidate.Name, changesError)
			continue
		}

		if len(changeLines) > 0 {
			dirty = append(dirty, dirtyFinding{name: candidate.Name, changeLines: changeLines})
		} else if configuration.Verbose {
			fmt.Fprintf(service.outputWriter, cleanRepositoryTemplateConstant, candidate.Name)
		}
	}

	if len(dirty) == 0 {
		if !configuration.Verbose {
			fmt.Fprint(service.outputWriter, allRepositoriesCleanMessageConstant)
		}
		return nil
	}

	fmt.Fprint(service.outputWriter, dirtyGroupHeadingConstant)
	for _, finding := range dirty {
		fmt.Fprintf(service.outputWriter, dirtyRepositoryTemplateConstant, finding.name, len(finding.changeLines))
		for _, changeLine := range finding.changeLines {
			fmt.Fprintf(service.outputWriter, dirtyPathTemplateConstant, changeLine)
		}
	}

	fmt.Fprint(service.outputWriter, changesFindingsFooterMessageConstant)
	return shared.ErrFindingsDetected
}

func pluralSuffix(count int) string {
	if count == 1 {
		return ""
	}
	return pluralSuffixConstant
}
