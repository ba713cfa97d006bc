package githubcli_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/githubcli"
)

type stubGitHubExecutor struct {
	responses        map[string]execshell.ExecutionResult
	failures         map[string]error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	commandKey := strings.Join(details.Arguments, " ")
	if failure, found := executor.failures[commandKey]; found {
		return execshell.ExecutionResult{}, failure
	}
	return executor.responses[commandKey], nil
}

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	_, creationError := githubcli.NewClient(nil)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
}

func TestResolveRepoProfile(testInstance *testing.T) {
	const profilePayload = `{
		"name": "hello",
		"nameWithOwner": "octocat/hello",
		"description": "example repository",
		"url": "https://github.com/octocat/hello",
		"isFork": true,
		"isArchived": false,
		"updatedAt": "2025-06-01T12:30:00Z",
		"owner": {"login": "octocat"},
		"parent": {"name": "hello", "owner": {"login": "upstream-org"}}
	}`

	executor := &stubGitHubExecutor{
		responses: map[string]execshell.ExecutionResult{
			"repo view octocat/hello --json name,nameWithOwner,owner,isFork,isArchived,updatedAt,parent,url,description": {StandardOutput: profilePayload},
		},
	}

	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	profile, resolveError := client.ResolveRepoProfile(context.Background(), "octocat/hello")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "octocat/hello", profile.NameWithOwner)
	require.Equal(testInstance, "octocat", profile.Owner)
	require.True(testInstance, profile.IsFork)
	require.Equal(testInstance, "upstream-org", profile.ParentOwner)
	require.Equal(testInstance, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), profile.UpdatedAt)
	require.Equal(testInstance, time.UTC, profile.UpdatedAt.Location())
}

func TestResolveRepoProfileValidatesRepository(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&stubGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, resolveError := client.ResolveRepoProfile(context.Background(), "  ")
	require.Error(testInstance, resolveError)
	require.IsType(testInstance, githubcli.InvalidInputError{}, resolveError)
}

func TestResolveRepoProfileWrapsDecodingFailures(testInstance *testing.T) {
	executor := &stubGitHubExecutor{
		responses: map[string]execshell.ExecutionResult{
			"repo view octocat/hello --json name,nameWithOwner,owner,isFork,isArchived,updatedAt,parent,url,description": {StandardOutput: "not-json"},
		},
	}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	_, resolveError := client.ResolveRepoProfile(context.Background(), "octocat/hello")
	require.Error(testInstance, resolveError)
	require.IsType(testInstance, githubcli.ResponseDecodingError{}, resolveError)
}

func TestListOwnerRepositories(testInstance *testing.T) {
	const listPayload = `[
		{"name": "alpha", "nameWithOwner": "octocat/alpha", "url": "https://github.com/octocat/alpha", "isFork": false, "isArchived": true, "updatedAt": "2024-01-15T08:00:00Z"},
		{"name": "beta", "nameWithOwner": "octocat/beta", "url": "https://github.com/octocat/beta", "isFork": true, "isArchived": false, "updatedAt": "2025-03-20T17:45:00Z"}
	]`

	executor := &stubGitHubExecutor{
		responses: map[string]execshell.ExecutionResult{
			"repo list octocat --limit 1000 --json name,nameWithOwner,isFork,isArchived,updatedAt,url": {StandardOutput: listPayload},
		},
	}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	repositories, listError := client.ListOwnerRepositories(context.Background(), "octocat")
	require.NoError(testInstance, listError)
	require.Len(testInstance, repositories, 2)
	require.Equal(testInstance, "alpha", repositories[0].Name)
	require.True(testInstance, repositories[0].IsArchived)
	require.Equal(testInstance, "octocat", repositories[0].Owner)
	require.True(testInstance, repositories[1].IsFork)
}

func TestListWorkflowRunsAppliesDefaultLimit(testInstance *testing.T) {
	const runsPayload = `[
		{"databaseId": 101, "name": "build", "displayTitle": "fix parser", "status": "completed", "conclusion": "failure", "headBranch": "main", "headSha": "abc123", "createdAt": "2025-05-02T09:00:00Z"},
		{"databaseId": 100, "name": "build", "displayTitle": "initial", "status": "completed", "conclusion": "success", "headBranch": "main", "headSha": "def456", "createdAt": "2025-05-01T09:00:00Z"}
	]`

	executor := &stubGitHubExecutor{
		responses: map[string]execshell.ExecutionResult{
			"run list --limit 20 --json databaseId,status,conclusion,name,displayTitle,headBranch,headSha,createdAt": {StandardOutput: runsPayload},
		},
	}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	workflowRuns, listError := client.ListWorkflowRuns(context.Background(), "/tmp/example", 0)
	require.NoError(testInstance, listError)
	require.Len(testInstance, workflowRuns, 2)
	require.Equal(testInstance, int64(101), workflowRuns[0].DatabaseID)
	require.Equal(testInstance, "failure", workflowRuns[0].Conclusion)
	require.Equal(testInstance, "/tmp/example", executor.recordedCommands[0].WorkingDirectory)
}

func TestDeleteWorkflowRun(testInstance *testing.T) {
	executor := &stubGitHubExecutor{responses: map[string]execshell.ExecutionResult{}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, client.DeleteWorkflowRun(context.Background(), "/tmp/example", 101))
	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"run", "delete", "101"}, executor.recordedCommands[0].Arguments)

	deletionError := client.DeleteWorkflowRun(context.Background(), "/tmp/example", 0)
	require.Error(testInstance, deletionError)
	require.IsType(testInstance, githubcli.InvalidInputError{}, deletionError)
}
