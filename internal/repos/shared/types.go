package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/githubcli"
)

const (
	// OriginRemoteNameConstant identifies the default upstream remote used for GitHub repositories.
	OriginRemoteNameConstant        = "origin"
	gitProtocolURLPrefixConstant    = "git@"
	sshProtocolURLPrefixConstant    = "ssh://"
	httpProtocolURLPrefixConstant   = "http://"
	httpsProtocolURLPrefixConstant  = "https://"
	ownerSlugEmptyMessageConstant   = "owner must not be empty"
	ownerSlugInvalidMessageConstant = "owner %q must not contain path separators"
	ownerSlugSeparatorConstant      = "/"
)

// RemoteProtocol enumerates clone URL scheme classifications.
type RemoteProtocol string

// Supported remote protocol classifications.
const (
	RemoteProtocolSSH   RemoteProtocol = "ssh"
	RemoteProtocolHTTPS RemoteProtocol = "https"
	RemoteProtocolOther RemoteProtocol = "other"
	RemoteProtocolNone  RemoteProtocol = "none"
)

// ClassifyRemoteProtocol maps a clone URL onto its protocol classification.
// Prefix comparison is case-insensitive; an empty URL classifies as none.
func ClassifyRemoteProtocol(remoteURL string) RemoteProtocol {
	trimmedURL := strings.TrimSpace(remoteURL)
	if len(trimmedURL) == 0 {
		return RemoteProtocolNone
	}
	loweredURL := strings.ToLower(trimmedURL)
	switch {
	case strings.HasPrefix(loweredURL, gitProtocolURLPrefixConstant), strings.HasPrefix(loweredURL, sshProtocolURLPrefixConstant):
		return RemoteProtocolSSH
	case strings.HasPrefix(loweredURL, httpProtocolURLPrefixConstant), strings.HasPrefix(loweredURL, httpsProtocolURLPrefixConstant):
		return RemoteProtocolHTTPS
	default:
		return RemoteProtocolOther
	}
}

// OwnerSlug is a validated GitHub account name.
type OwnerSlug string

// NewOwnerSlug validates and normalizes a GitHub account name.
func NewOwnerSlug(raw string) (OwnerSlug, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New(ownerSlugEmptyMessageConstant)
	}
	if strings.Contains(trimmed, ownerSlugSeparatorConstant) {
		return "", fmt.Errorf(ownerSlugInvalidMessageConstant, trimmed)
	}
	return OwnerSlug(trimmed), nil
}

// String returns the owner name.
func (slug OwnerSlug) String() string {
	return string(slug)
}

// EqualsFold reports whether the slug matches another owner name ignoring case.
func (slug OwnerSlug) EqualsFold(other string) bool {
	return strings.EqualFold(string(slug), strings.TrimSpace(other))
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes repository-level git operations.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	ListWorktreeChanges(executionContext context.Context, repositoryPath string) ([]string, error)
	CountCommits(executionContext context.Context, repositoryPath string) (int, error)
	CountAheadCommits(executionContext context.Context, repositoryPath string) (int, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	FetchAllRemotes(executionContext context.Context, repositoryPath string) error
	PullCurrentBranch(executionContext context.Context, repositoryPath string) error
	PushCurrentBranch(executionContext context.Context, repositoryPath string) error
}

// HostedRepositoryClient resolves hosted repository state via the GitHub CLI.
type HostedRepositoryClient interface {
	ResolveRepoProfile(executionContext context.Context, repository string) (githubcli.RepositoryProfile, error)
	ListOwnerRepositories(executionContext context.Context, owner string) ([]githubcli.RepositoryProfile, error)
	ListWorkflowRuns(executionContext context.Context, repositoryPath string, resultLimit int) ([]githubcli.WorkflowRun, error)
	DeleteWorkflowRun(executionContext context.Context, repositoryPath string, runIdentifier int64) error
}

// RepositoryDiscoverer locates Git repositories for bulk operations.
type RepositoryDiscoverer interface {
	DiscoverRepositories(executionContext context.Context, rootDirectory string) ([]RepositoryCandidate, error)
}

// RepositoryCandidate describes a directory found directly beneath a clone root.
type RepositoryCandidate struct {
	Name          string
	Path          string
	GitRepository bool
}
