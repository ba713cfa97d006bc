package inventory

import (
	"context"
	"fmt"
	"io"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	allSubfoldersGitMessageConstant    = "✔️ All subfolders are git repositories.\n"
	nonGitHeadingConstant              = "❌ Non-git directories detected:\n"
	nonGitMemberTemplateConstant       = "   • %s 🚫\n"
	abandonedScanHeadingTemplate       = "🔍 Scanning for repos with < %d commits in: %s\n"
	abandonedNoneFoundTemplateConstant = "✅ No repositories with fewer than %d commits found.\n"
	abandonedHeadingTemplateConstant   = "\n📉 Repositories with fewer than %d commits:\n\n"
	abandonedMemberTemplateConstant    = "📁 %s: %d commit(s) ⚠️\n"
	abandonedSummaryTemplateConstant   = "\n📊 Total repos with < %d commits: %d\n"
	repositoryFailureTemplateConstant  = "❌ [%s] %v\n"
	completedWithErrorsMessageConstant = "⚠️  Completed with errors. Some repositories could not be inspected.\n"
)

// WorktreeVerifier confirms with git whether a directory is a repository.
type WorktreeVerifier interface {
	IsGitRepository(executionContext context.Context, repositoryPath string) (bool, error)
}

// Service reports non-git clone folders and repositories with short histories.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	verifier     WorktreeVerifier
	gitManager   shared.GitRepositoryManager
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs an inventory service.
func NewService(discoverer shared.RepositoryDiscoverer, verifier WorktreeVerifier, gitManager shared.GitRepositoryManager, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		verifier:     verifier,
		gitManager:   gitManager,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}
}

// RunOrphans lists immediate subdirectories of the clone root that lack git metadata.
func (service *Service) RunOrphans(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	orphanNames := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.GitRepository {
			orphanNames = append(orphanNames, candidate.Name)
		}
	}

	if len(orphanNames) == 0 {
		fmt.Fprint(service.outputWriter, allSubfoldersGitMessageConstant)
		return nil
	}

	fmt.Fprint(service.outputWriter, nonGitHeadingConstant)
	for _, orphanName := range orphanNames {
		fmt.Fprintf(service.outputWriter, nonGitMemberTemplateConstant, orphanName)
	}
	return nil
}

type shortHistoryRepository struct {
	name        string
	commitCount int
}

// RunAbandoned lists repositories whose commit count falls below the configured threshold.
// Membership is confirmed with git itself; a repository whose count cannot be read counts as zero commits.
func (service *Service) RunAbandoned(executionContext context.Context, configuration Configuration) error {
	cloneRoot := configuration.rootOrDefault()
	commitThreshold := configuration.thresholdOrDefault()

	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, cloneRoot)
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprintf(service.outputWriter, abandonedScanHeadingTemplate, commitThreshold, cloneRoot)

	accumulator := shared.NewErrorAccumulator()
	shortRepositories := make([]shortHistoryRepository, 0, len(candidates))
	for _, candidate := range candidates {
		insideWorktree, verificationError := service.verifier.IsGitRepository(executionContext, candidate.Path)
		if verificationError != nil {
			fmt.Fprintf(service.errorWriter, repositoryFailureTemplateConstant, candidate.Name, verificationError)
			accumulator.Record(candidate.Name, verificationError)
			continue
		}
		if !insideWorktree {
			continue
		}

		commitCount, countError := service.gitManager.CountCommits(executionContext, candidate.Path)
		if countError != nil {
			commitCount = 0
		}
		if commitCount < commitThreshold {
			shortRepositories = append(shortRepositories, shortHistoryRepository{name: candidate.Name, commitCount: commitCount})
		}
	}

	if len(shortRepositories) == 0 {
		fmt.Fprintf(service.outputWriter, abandonedNoneFoundTemplateConstant, commitThreshold)
		return service.finish(accumulator)
	}

	fmt.Fprintf(service.outputWriter, abandonedHeadingTemplateConstant, commitThreshold)
	for _, repository := range shortRepositories {
		fmt.Fprintf(service.outputWriter, abandonedMemberTemplateConstant, repository.name, repository.commitCount)
	}
	fmt.Fprintf(service.outputWriter, abandonedSummaryTemplateConstant, commitThreshold, len(shortRepositories))
	return service.finish(accumulator)
}

func (service *Service) finish(accumulator *shared.ErrorAccumulator) error {
	if accumulator.HasFailures() {
		fmt.Fprint(service.errorWriter, completedWithErrorsMessageConstant)
		return shared.ErrScanCompletedWithErrors
	}
	return nil
}
