package syncer

import (
	"context"
	"fmt"
	"io"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	pullScanHeadingConstant        = "⬇️  Fetching and pulling all repositories…\n"
	pullRepositoryTemplateConstant = "📥 [%s] git fetch && git pull\n"
	pushScanHeadingConstant        = "⬆️  Pushing repositories with unpushed commits…\n"
	pushRepositoryTemplateConstant = "🚀 [%s] git push (ahead by %d commit%s)\n"
	pluralSuffixConstant           = "s"
	syncFailureTemplateConstant    = "❌ [%s] %v\n"
	completedWithErrorsMessage     = "⚠️  Completed with errors. See stderr for details.\n"
	completedSuccessfullyMessage   = "✅ Completed successfully.\n"
)

// Service synchronizes every git repository beneath a clone root with its upstream.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	gitManager   shared.GitRepositoryManager
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a synchronization service.
func NewService(discoverer shared.RepositoryDiscoverer, gitManager shared.GitRepositoryManager, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		gitManager:   gitManager,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}
}

// RunPull fetches all remotes and pulls the current branch in every repository.
func (service *Service) RunPull(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, pullScanHeadingConstant)
	accumulator := shared.NewErrorAccumulator()

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		fmt.Fprintf(service.outputWriter, pullRepositoryTemplateConstant, candidate.Name)

		if fetchError := service.gitManager.FetchAllRemotes(executionContext, candidate.Path); fetchError != nil {
			accumulator.Record(candidate.Name, fetchError)
			fmt.Fprintf(service.errorWriter, syncFailureTemplateConstant, candidate.Name, fetchError)
		}

		if pullError := service.gitManager.PullCurrentBranch(executionContext, candidate.Path); pullError != nil {
			accumulator.Record(candidate.Name, pullError)
			fmt.Fprintf(service.errorWriter, syncFailureTemplateConstant, candidate.Name, pullError)
		}
	}

	return service.finish(accumulator)
}

// RunPush pushes every repository with commits ahead of its upstream.
// Repositories with indeterminate ahead counts are skipped after the failure is recorded.
func (service *Service) RunPush(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, pushScanHeadingConstant)
	accumulator := shared.NewErrorAccumulator()

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		aheadCount, aheadError := service.gitManager.CountAheadCommits(executionContext, candidate.Path)
		if aheadError != nil {
			accumulator.Record(candidate.Name, aheadError)
			fmt.Fprintf(service.errorWriter, syncFailureTemplateConstant, candidate.Name, aheadError)
			continue
		}
		if aheadCount == 0 {
			continue
		}

		fmt.Fprintf(service.outputWriter, pushRepositoryTemplateConstant, candidate.Name, aheadCount, pluralSuffix(aheadCount))
		if pushError := service.gitManager.PushCurrentBranch(executionContext, candidate.Path); pushError != nil {
			accumulator.Record(candidate.Name, pushError)
			fmt.Fprintf(service.errorWriter, syncFailureTemplateConstant, candidate.Name, pushError)
		}
	}

	return service.finish(accumulator)
}

func (service *Service) finish(accumulator *shared.ErrorAccumulator) error {
	if accumulator.HasFailures() {
		fmt.Fprint(service.errorWriter, completedWithErrorsMessage)
		return accumulator.Result()
	}
	fmt.Fprint(service.outputWriter, completedSuccessfullyMessage)
	return nil
}

func pluralSuffix(count int) string {
	if count == 1 {
		return ""
	}
	return pluralSuffixConstant
}
