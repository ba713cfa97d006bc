package ciruns_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/ciruns"
	"github.com/matthewdeanmartin/repokeeper/internal/githubcli"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

type stubDiscoverer struct {
	candidates []shared.RepositoryCandidate
}

func (discoverer *stubDiscoverer) DiscoverRepositories(executionContext context.Context, rootDirectory string) ([]shared.RepositoryCandidate, error) {
	return discoverer.candidates, nil
}

type stubHostedClient struct {
	runsByPath     map[string][]githubcli.WorkflowRun
	listErrors     map[string]error
	deletionErrors map[int64]error
	deletedRuns    []int64
}

func (client *stubHostedClient) ResolveRepoProfile(executionContext context.Context, repository string) (githubcli.RepositoryProfile, error) {
	return githubcli.RepositoryProfile{}, nil
}

func (client *stubHostedClient) ListOwnerRepositories(executionContext context.Context, owner string) ([]githubcli.RepositoryProfile, error) {
	return nil, nil
}

func (client *stubHostedClient) ListWorkflowRuns(executionContext context.Context, repositoryPath string, resultLimit int) ([]githubcli.WorkflowRun, error) {
	if listError, found := client.listErrors[repositoryPath]; found {
		return nil, listError
	}
	return client.runsByPath[repositoryPath], nil
}

func (client *stubHostedClient) DeleteWorkflowRun(executionContext context.Context, repositoryPath string, runIdentifier int64) error {
	if deletionError, found := client.deletionErrors[runIdentifier]; found {
		return deletionError
	}
	client.deletedRuns = append(client.deletedRuns, runIdentifier)
	return nil
}

func TestRunFailingReportsFailureConclusionCaseInsensitively(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "failing-repo", Path: "/clones/failing-repo", GitRepository: true},
		{Name: "passing-repo", Path: "/clones/passing-repo", GitRepository: true},
		{Name: "quiet-repo", Path: "/clones/quiet-repo", GitRepository: true},
	}}
	client := &stubHostedClient{runsByPath: map[string][]githubcli.WorkflowRun{
		"/clones/failing-repo": {{WorkflowName: "build", HeadBranch: "main", HeadSHA: "abc123", Status: "completed", Conclusion: "FAILURE"}},
		"/clones/passing-repo": {{WorkflowName: "build", Conclusion: "success"}},
		"/clones/quiet-repo":   {},
	}}

	outputBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunFailing(context.Background(), ciruns.DefaultConfiguration()))

	report := outputBuffer.String()
	require.Contains(testInstance, report, "💥 [failing-repo] Most recent workflow is failing")
	require.Contains(testInstance, report, "• Branch: main")
	require.Contains(testInstance, report, "• SHA: abc123")
	require.NotContains(testInstance, report, "passing-repo")
	require.NotContains(testInstance, report, "quiet-repo")
}

func TestRunFailingConfirmsWhenNothingFails(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "passing-repo", Path: "/clones/passing-repo", GitRepository: true},
	}}
	client := &stubHostedClient{runsByPath: map[string][]githubcli.WorkflowRun{
		"/clones/passing-repo": {{Conclusion: "success"}},
	}}

	outputBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunFailing(context.Background(), ciruns.DefaultConfiguration()))
	require.Contains(testInstance, outputBuffer.String(), "✅ No failing workflows detected (based on most recent runs).")
}

func TestRunFailingAccumulatesListFailures(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "broken-repo", Path: "/clones/broken-repo", GitRepository: true},
	}}
	client := &stubHostedClient{listErrors: map[string]error{"/clones/broken-repo": errors.New("gh unavailable")}}

	errorBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, &bytes.Buffer{}, errorBuffer)

	runError := service.RunFailing(context.Background(), ciruns.DefaultConfiguration())
	require.ErrorIs(testInstance, runError, shared.ErrScanCompletedWithErrors)
	require.Contains(testInstance, errorBuffer.String(), "❌ [broken-repo] gh unavailable")
}

func TestRunCleanupDeletesMatchingRuns(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "busy-repo", Path: "/clones/busy-repo", GitRepository: true},
	}}
	client := &stubHostedClient{runsByPath: map[string][]githubcli.WorkflowRun{
		"/clones/busy-repo": {
			{DatabaseID: 11, DisplayTitle: "[pre-commit.ci] pre-commit autoupdate"},
			{DatabaseID: 12, DisplayTitle: "fix parser"},
			{DatabaseID: 13, DisplayTitle: "[pre-commit.ci] auto fixes"},
		},
	}}

	outputBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunCleanup(context.Background(), ciruns.DefaultConfiguration()))
	require.Equal(testInstance, []int64{11, 13}, client.deletedRuns)

	report := outputBuffer.String()
	require.Contains(testInstance, report, "🔎 Found 2 [pre-commit.ci] run(s) in busy-repo")
	require.Contains(testInstance, report, "🗑️ Deleted run 11 ([pre-commit.ci] pre-commit autoupdate) in busy-repo")
	require.Contains(testInstance, report, "🏁 Done.")
}

func TestRunCleanupDryRunNeverDeletes(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "busy-repo", Path: "/clones/busy-repo", GitRepository: true},
	}}
	client := &stubHostedClient{runsByPath: map[string][]githubcli.WorkflowRun{
		"/clones/busy-repo": {{DatabaseID: 11, DisplayTitle: "[pre-commit.ci] pre-commit autoupdate"}},
	}}

	configuration := ciruns.DefaultConfiguration()
	configuration.DryRun = true

	outputBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunCleanup(context.Background(), configuration))
	require.Empty(testInstance, client.deletedRuns)
	require.Contains(testInstance, outputBuffer.String(), "🧪 DRY RUN: would delete run 11")
}

func TestRunCleanupReportsReposWithoutMatches(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "tidy-repo", Path: "/clones/tidy-repo", GitRepository: true},
		{Name: ".hidden", Path: "/clones/.hidden", GitRepository: true},
	}}
	client := &stubHostedClient{runsByPath: map[string][]githubcli.WorkflowRun{
		"/clones/tidy-repo": {{DatabaseID: 20, DisplayTitle: "release"}},
	}}

	outputBuffer := &bytes.Buffer{}
	service := ciruns.NewService(discoverer, client, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunCleanup(context.Background(), ciruns.DefaultConfiguration()))
	report := outputBuffer.String()
	require.Contains(testInstance, report, "✅ No [pre-commit.ci] runs found in tidy-repo")
	require.NotContains(testInstance, report, ".hidden")
}
