package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
)

const (
	executorRequiredMessageConstant  = "git executor is required"
	statusSubcommandConstant         = "status"
	porcelainFlagConstant            = "--porcelain"
	revListSubcommandConstant        = "rev-list"
	countFlagConstant                = "--count"
	headReferenceConstant            = "HEAD"
	upstreamRangeReferenceConstant   = "@{u}..HEAD"
	remoteSubcommandConstant         = "remote"
	getURLSubcommandConstant         = "get-url"
	fetchSubcommandConstant          = "fetch"
	fetchAllFlagConstant             = "--all"
	pullSubcommandConstant           = "pull"
	pushSubcommandConstant           = "push"
	revParseSubcommandConstant       = "rev-parse"
	abbreviatedReferenceFlagConstant = "--abbrev-ref"
	commitCountParseTemplateConstant = "unable to parse commit count %q: %w"
)

// GitExecutor is the subset of shell execution the repository manager requires.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations through a shell executor.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager using the provided executor.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// CheckCleanWorktree reports whether the repository has no uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// ListWorktreeChanges returns the porcelain status lines describing uncommitted changes.
func (manager *RepositoryManager) ListWorktreeChanges(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	var changeLines []string
	for _, statusLine := range strings.Split(executionResult.StandardOutput, "\n") {
		if len(strings.TrimSpace(statusLine)) == 0 {
			continue
		}
		changeLines = append(changeLines, strings.TrimRight(statusLine, "\r"))
	}
	return changeLines, nil
}

// CountCommits returns the total number of commits reachable from HEAD.
func (manager *RepositoryManager) CountCommits(executionContext context.Context, repositoryPath string) (int, error) {
	return manager.countRevisions(executionContext, repositoryPath, headReferenceConstant)
}

// CountAheadCommits returns the number of commits on HEAD that the upstream branch lacks.
// A missing upstream or any git failure yields an error; the count is indeterminate in that
// case and must never be reported as zero.
func (manager *RepositoryManager) CountAheadCommits(executionContext context.Context, repositoryPath string) (int, error) {
	return manager.countRevisions(executionContext, repositoryPath, upstreamRangeReferenceConstant)
}

func (manager *RepositoryManager) countRevisions(executionContext context.Context, repositoryPath string, revisionRange string) (int, error) {
	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revListSubcommandConstant, countFlagConstant, revisionRange},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return 0, executionError
	}
	trimmedCount := strings.TrimSpace(executionResult.StandardOutput)
	commitCount, parseError := strconv.Atoi(trimmedCount)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseTemplateConstant, trimmedCount, parseError)
	}
	return commitCount, nil
}

// GetRemoteURL returns the URL configured for the named remote.
// A remote that does not exist yields an empty URL without an error.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, getURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return "", nil
		}
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetCurrentBranch returns the abbreviated name of the checked-out branch.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// FetchAllRemotes updates remote tracking references for every configured remote.
func (manager *RepositoryManager) FetchAllRemotes(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{fetchSubcommandConstant, fetchAllFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// PullCurrentBranch integrates upstream changes into the checked-out branch.
func (manager *RepositoryManager) PullCurrentBranch(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{pullSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// PushCurrentBranch publishes the checked-out branch to its upstream.
func (manager *RepositoryManager) PushCurrentBranch(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}
