package pypi

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	listingFailureMessageConstant = "ERROR: Could not enumerate projects via XML-RPC. This endpoint is rate-limited/unsupported and may be removed.\n"
	listingFailureDetailTemplate  = "Detail: %v\n"
	listingPivotMessageConstant   = "Pivot options: libraries.io or pypi.rs (PyPIrs) APIs.\n"
	noProjectsTemplateConstant    = "No projects found for user: %s\n"
	reportTitleTemplateConstant   = "# PyPI projects owned by '%s' that declare support for Python %s\n\n"
	supportedHeadingConstant      = "## Supported\n"
	supportedEntryTemplate        = "- %s: %s  (%s)\n"
	unsupportedHeadingConstant    = "\n## Not supported (no 3.14 classifier or compatible requires_python found)\n"
	unsupportedEntryTemplate      = "- %s\n"
	emptyGroupEntryConstant       = "- (none)\n"
)

// MetadataClient reads project and release metadata from PyPI.
type MetadataClient interface {
	ListUserProjects(executionContext context.Context, username string) ([]string, error)
	ProjectReleases(executionContext context.Context, projectName string) ([]string, error)
	ReleaseSupports(executionContext context.Context, projectName string, version string) (bool, string, error)
}

// SupportResult is the per-project outcome of the 3.14 support check.
type SupportResult struct {
	Name      string
	Supported bool
	Version   string
	Reason    string
}

// Service checks a user's PyPI projects for Python 3.14 support.
type Service struct {
	client       MetadataClient
	outputWriter io.Writer
}

// NewService constructs a PyPI support-checking service.
func NewService(client MetadataClient, outputWriter io.Writer) *Service {
	return &Service{client: client, outputWriter: outputWriter}
}

// Run checks every project of the configured user and prints a markdown report.
// Releases are inspected newest first; the first supporting release wins and
// stops that project's scan. Project checks fan out through a bounded pool.
func (service *Service) Run(executionContext context.Context, configuration Configuration) error {
	username, usernameError := shared.NewOwnerSlug(configuration.Username)
	if usernameError != nil {
		return ErrUsernameRequired
	}

	projectNames, listingError := service.client.ListUserProjects(executionContext, username.String())
	if listingError != nil {
		fmt.Fprint(service.outputWriter, listingFailureMessageConstant)
		fmt.Fprintf(service.outputWriter, listingFailureDetailTemplate, listingError)
		fmt.Fprint(service.outputWriter, listingPivotMessageConstant)
		return nil
	}

	if len(projectNames) == 0 {
		fmt.Fprintf(service.outputWriter, noProjectsTemplateConstant, username.String())
		return nil
	}

	results := make([]SupportResult, 0, len(projectNames))
	var resultsMutex sync.Mutex

	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(configuration.maxWorkersOrDefault())
	for _, projectName := range projectNames {
		projectName := projectName
		workerGroup.Go(func() error {
			result := service.checkProject(groupContext, projectName)
			resultsMutex.Lock()
			results = append(results, result)
			resultsMutex.Unlock()
			return nil
		})
	}
	if waitError := workerGroup.Wait(); waitError != nil {
		return waitError
	}

	sort.SliceStable(results, func(firstIndex int, secondIndex int) bool {
		return strings.ToLower(results[firstIndex].Name) < strings.ToLower(results[secondIndex].Name)
	})

	service.printReport(username.String(), results)
	return nil
}

// checkProject walks releases newest first until one declares support.
// Per-release failures count as unsupported rather than aborting the scan.
func (service *Service) checkProject(executionContext context.Context, projectName string) SupportResult {
	versions, releasesError := service.client.ProjectReleases(executionContext, projectName)
	if releasesError != nil {
		return SupportResult{Name: projectName}
	}

	for _, version := range versions {
		supported, reason, supportError := service.client.ReleaseSupports(executionContext, projectName, version)
		if supportError != nil {
			continue
		}
		if supported {
			return SupportResult{Name: projectName, Supported: true, Version: version, Reason: reason}
		}
	}
	return SupportResult{Name: projectName}
}

func (service *Service) printReport(username string, results []SupportResult) {
	fmt.Fprintf(service.outputWriter, reportTitleTemplateConstant, username, pythonThreeFourteenConstant)

	fmt.Fprint(service.outputWriter, supportedHeadingConstant)
	supportedCount := 0
	for _, result := range results {
		if result.Supported {
			supportedCount++
			fmt.Fprintf(service.outputWriter, supportedEntryTemplate, result.Name, result.Version, result.Reason)
		}
	}
	if supportedCount == 0 {
		fmt.Fprint(service.outputWriter, emptyGroupEntryConstant)
	}

	fmt.Fprint(service.outputWriter, unsupportedHeadingConstant)
	unsupportedCount := 0
	for _, result := range results {
		if !result.Supported {
			unsupportedCount++
			fmt.Fprintf(service.outputWriter, unsupportedEntryTemplate, result.Name)
		}
	}
	if unsupportedCount == 0 {
		fmt.Fprint(service.outputWriter, emptyGroupEntryConstant)
	}
}
