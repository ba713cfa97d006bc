package ciruns

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	failingScanHeadingConstant        = "🧪 Checking GitHub Actions for failing workflows…\n"
	failingRunTemplateConstant        = "💥 [%s] Most recent workflow is failing\n    • Name: %s\n    • Branch: %s\n    • SHA: %s\n    • Status: %s\n    • Conclusion: %s\n"
	noFailingRunsMessageConstant      = "✅ No failing workflows detected (based on most recent runs).\n"
	runQueryFailureTemplateConstant   = "❌ [%s] %v\n"
	failingConclusionValueConstant    = "failure"
	mostRecentRunLimitConstant        = 1
	cleanupStartTemplateConstant      = "🚀 Starting workflow run cleanup in %s (dry run: %t)\n"
	cleanupRepoHeadingTemplate        = "📦 Scanning repo: %s\n"
	cleanupNoMatchesTemplateConstant  = "✅ No %s runs found in %s\n"
	cleanupMatchCountTemplateConstant = "🔎 Found %d %s run(s) in %s\n"
	cleanupDryRunTemplateConstant     = "🧪 DRY RUN: would delete run %d (%s) in %s\n"
	cleanupDeletedTemplateConstant    = "🗑️ Deleted run %d (%s) in %s\n"
	cleanupDoneMessageConstant        = "🏁 Done.\n"
	completedWithErrorsMessage        = "⚠️  Completed with errors. See stderr for details.\n"
)

// Service inspects and deletes GitHub Actions workflow runs across a clone folder.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	hostedClient shared.HostedRepositoryClient
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a workflow run auditing service.
func NewService(discoverer shared.RepositoryDiscoverer, hostedClient shared.HostedRepositoryClient, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		hostedClient: hostedClient,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}
}

// RunFailing reports repositories whose most recent workflow run concluded with failure.
// An empty run list is not a failure.
func (service *Service) RunFailing(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, failingScanHeadingConstant)

	accumulator := shared.NewErrorAccumulator()
	anyReported := false

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		workflowRuns, listError := service.hostedClient.ListWorkflowRuns(executionContext, candidate.Path, mostRecentRunLimitConstant)
		if listError != nil {
			accumulator.Record(candidate.Name, listError)
			fmt.Fprintf(service.errorWriter, runQueryFailureTemplateConstant, candidate.Name, listError)
			continue
		}
		if len(workflowRuns) == 0 {
			continue
		}

		mostRecentRun := workflowRuns[0]
		if !strings.EqualFold(mostRecentRun.Conclusion, failingConclusionValueConstant) {
			continue
		}

		anyReported = true
		fmt.Fprintf(service.outputWriter, failingRunTemplateConstant,
			candidate.Name,
			mostRecentRun.WorkflowName,
			mostRecentRun.HeadBranch,
			mostRecentRun.HeadSHA,
			mostRecentRun.Status,
			mostRecentRun.Conclusion,
		)
	}

	if !anyReported {
		fmt.Fprint(service.outputWriter, noFailingRunsMessageConstant)
	}

	if accumulator.HasFailures() {
		fmt.Fprint(service.errorWriter, completedWithErrorsMessage)
		return accumulator.Result()
	}
	return nil
}

// RunCleanup deletes workflow runs whose display title starts with the configured prefix.
// With dry run enabled the runs are listed but never deleted.
func (service *Service) RunCleanup(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	titlePrefix := configuration.cleanupTitlePrefixOrDefault()
	fmt.Fprintf(service.outputWriter, cleanupStartTemplateConstant, configuration.rootOrDefault(), configuration.DryRun)

	accumulator := shared.NewErrorAccumulator()

	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}
		if strings.HasPrefix(candidate.Name, ".") {
			continue
		}

		fmt.Fprintf(service.outputWriter, cleanupRepoHeadingTemplate, candidate.Name)

		workflowRuns, listError := service.hostedClient.ListWorkflowRuns(executionContext, candidate.Path, configuration.cleanupRunLimitOrDefault())
		if listError != nil {
			accumulator.Record(candidate.Name, listError)
			fmt.Fprintf(service.errorWriter, runQueryFailureTemplateConstant, candidate.Name, listError)
			continue
		}

		matchCount := 0
		for _, workflowRun := range workflowRuns {
			if !strings.HasPrefix(workflowRun.DisplayTitle, titlePrefix) {
				continue
			}
			matchCount++
		}

		if matchCount == 0 {
			fmt.Fprintf(service.outputWriter, cleanupNoMatchesTemplateConstant, titlePrefix, candidate.Name)
			continue
		}

		fmt.Fprintf(service.outputWriter, cleanupMatchCountTemplateConstant, matchCount, titlePrefix, candidate.Name)

		for _, workflowRun := range workflowRuns {
			if !strings.HasPrefix(workflowRun.DisplayTitle, titlePrefix) {
				continue
			}

			if configuration.DryRun {
				fmt.Fprintf(service.outputWriter, cleanupDryRunTemplateConstant, workflowRun.DatabaseID, workflowRun.DisplayTitle, candidate.Name)
				continue
			}

			if deletionError := service.hostedClient.DeleteWorkflowRun(executionContext, candidate.Path, workflowRun.DatabaseID); deletionError != nil {
				accumulator.Record(candidate.Name, deletionError)
				fmt.Fprintf(service.errorWriter, runQueryFailureTemplateConstant, candidate.Name, deletionError)
				continue
			}
			fmt.Fprintf(service.outputWriter, cleanupDeletedTemplateConstant, workflowRun.DatabaseID, workflowRun.DisplayTitle, candidate.Name)
		}
	}

	fmt.Fprint(service.outputWriter, cleanupDoneMessageConstant)

	if accumulator.HasFailures() {
		fmt.Fprint(service.errorWriter, completedWithErrorsMessage)
		return accumulator.Result()
	}
	return nil
}
