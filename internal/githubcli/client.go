package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
)

const (
	repoSubcommandConstant                   = "repo"
	viewSubcommandConstant                   = "view"
	runSubcommandConstant                    = "run"
	listSubcommandConstant                   = "list"
	deleteSubcommandConstant                 = "delete"
	jsonFlagConstant                         = "--json"
	limitFlagConstant                        = "--limit"
	repositoryFieldNameConstant              = "repository"
	ownerFieldNameConstant                   = "owner"
	runIdentifierFieldNameConstant           = "run_id"
	requiredValueMessageConstant             = "value required"
	positiveValueMessageConstant             = "value must be positive"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	repoViewJSONFieldsConstant               = "name,nameWithOwner,owner,isFork,isArchived,updatedAt,parent,url,description"
	repoListJSONFieldsConstant               = "name,nameWithOwner,isFork,isArchived,updatedAt,url"
	runListJSONFieldsConstant                = "databaseId,status,conclusion,name,displayTitle,headBranch,headSha,createdAt"
	ownerRepositoryListLimitConstant         = 1000
	workflowRunListDefaultLimitConstant      = 20
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	timestampParseErrorTemplateConstant      = "%s timestamp %q could not be parsed: %s"
	repositoryProfileOperationNameConstant   = OperationName("ResolveRepoProfile")
	ownerRepositoriesOperationNameConstant   = OperationName("ListOwnerRepositories")
	workflowRunListOperationNameConstant     = OperationName("ListWorkflowRuns")
	workflowRunDeletionOperationNameConstant = OperationName("DeleteWorkflowRun")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryProfile contains hosted repository details resolved from GitHub.
// Timestamps are normalized to UTC.
type RepositoryProfile struct {
	Name          string
	NameWithOwner string
	Owner         string
	Description   string
	URL           string
	IsFork        bool
	IsArchived    bool
	UpdatedAt     time.Time
	ParentOwner   string
	ParentName    string
}

// WorkflowRun represents minimal workflow run details returned by GitHub CLI.
type WorkflowRun struct {
	DatabaseID   int64
	WorkflowName string
	DisplayTitle string
	Status       string
	Conclusion   string
	HeadBranch   string
	HeadSHA      string
	CreatedAt    time.Time
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

type repositoryProfileResponse struct {
	Name          string `json:"name"`
	NameWithOwner string `json:"nameWithOwner"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	IsFork        bool   `json:"isFork"`
	IsArchived    bool   `json:"isArchived"`
	UpdatedAt     string `json:"updatedAt"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
	Parent struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"parent"`
}

// ResolveRepoProfile retrieves hosted repository details using gh repo view.
func (client *Client) ResolveRepoProfile(executionContext context.Context, repository string) (RepositoryProfile, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryProfile{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryProfile{}, OperationError{Operation: repositoryProfileOperationNameConstant, Cause: executionError}
	}

	var response repositoryProfileResponse
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryProfile{}, ResponseDecodingError{Operation: repositoryProfileOperationNameConstant, Cause: decodingError}
	}

	updatedAt, timestampError := parseTimestamp(repositoryProfileOperationNameConstant, response.UpdatedAt)
	if timestampError != nil {
		return RepositoryProfile{}, timestampError
	}

	return RepositoryProfile{
		Name:          response.Name,
		NameWithOwner: response.NameWithOwner,
		Owner:         response.Owner.Login,
		Description:   response.Description,
		URL:           response.URL,
		IsFork:        response.IsFork,
		IsArchived:    response.IsArchived,
		UpdatedAt:     updatedAt,
		ParentOwner:   response.Parent.Owner.Login,
		ParentName:    response.Parent.Name,
	}, nil
}

// ListOwnerRepositories enumerates repositories of the owner using gh repo list.
func (client *Client) ListOwnerRepositories(executionContext context.Context, owner string) ([]RepositoryProfile, error) {
	ownerIdentifier := strings.TrimSpace(owner)
	if len(ownerIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			listSubcommandConstant,
			ownerIdentifier,
			limitFlagConstant,
			strconv.Itoa(ownerRepositoryListLimitConstant),
			jsonFlagConstant,
			repoListJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: ownerRepositoriesOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Name          string `json:"name"`
		NameWithOwner string `json:"nameWithOwner"`
		URL           string `json:"url"`
		IsFork        bool   `json:"isFork"`
		IsArchived    bool   `json:"isArchived"`
		UpdatedAt     string `json:"updatedAt"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: ownerRepositoriesOperationNameConstant, Cause: decodingError}
	}

	repositories := make([]RepositoryProfile, 0, len(response))
	for _, repositoryEntry := range response {
		updatedAt, timestampError := parseTimestamp(ownerRepositoriesOperationNameConstant, repositoryEntry.UpdatedAt)
		if timestampError != nil {
			return nil, timestampError
		}
		repositories = append(repositories, RepositoryProfile{
			Name:          repositoryEntry.Name,
			NameWithOwner: repositoryEntry.NameWithOwner,
			Owner:         ownerIdentifier,
			URL:           repositoryEntry.URL,
			IsFork:        repositoryEntry.IsFork,
			IsArchived:    repositoryEntry.IsArchived,
			UpdatedAt:     updatedAt,
		})
	}

	return repositories, nil
}

// ListWorkflowRuns enumerates recent workflow runs for the repository at repositoryPath.
func (client *Client) ListWorkflowRuns(executionContext context.Context, repositoryPath string, resultLimit int) ([]WorkflowRun, error) {
	if resultLimit <= 0 {
		resultLimit = workflowRunListDefaultLimitConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			runSubcommandConstant,
			listSubcommandConstant,
			limitFlagConstant,
			strconv.Itoa(resultLimit),
			jsonFlagConstant,
			runListJSONFieldsConstant,
		},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: workflowRunListOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		DatabaseID   int64  `json:"databaseId"`
		Name         string `json:"name"`
		DisplayTitle string `json:"displayTitle"`
		Status       string `json:"status"`
		Conclusion   string `json:"conclusion"`
		HeadBranch   string `json:"headBranch"`
		HeadSHA      string `json:"headSha"`
		CreatedAt    string `json:"createdAt"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: workflowRunListOperationNameConstant, Cause: decodingError}
	}

	workflowRuns := make([]WorkflowRun, 0, len(response))
	for _, runEntry := range response {
		createdAt, timestampError := parseTimestamp(workflowRunListOperationNameConstant, runEntry.CreatedAt)
		if timestampError != nil {
			return nil, timestampError
		}
		workflowRuns = append(workflowRuns, WorkflowRun{
			DatabaseID:   runEntry.DatabaseID,
			WorkflowName: runEntry.Name,
			DisplayTitle: runEntry.DisplayTitle,
			Status:       runEntry.Status,
			Conclusion:   runEntry.Conclusion,
			HeadBranch:   runEntry.HeadBranch,
			HeadSHA:      runEntry.HeadSHA,
			CreatedAt:    createdAt,
		})
	}

	return workflowRuns, nil
}

// DeleteWorkflowRun removes the identified workflow run using gh run delete.
func (client *Client) DeleteWorkflowRun(executionContext context.Context, repositoryPath string, runIdentifier int64) error {
	if runIdentifier <= 0 {
		return InvalidInputError{FieldName: runIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			runSubcommandConstant,
			deleteSubcommandConstant,
			strconv.FormatInt(runIdentifier, 10),
		},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: workflowRunDeletionOperationNameConstant, Cause: executionError}
	}

	return nil
}

// parseTimestamp normalizes GitHub timestamps to UTC; empty values yield the zero time.
func parseTimestamp(operation OperationName, value string) (time.Time, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return time.Time{}, nil
	}
	parsedTimestamp, parseError := time.Parse(time.RFC3339, trimmedValue)
	if parseError != nil {
		return time.Time{}, ResponseDecodingError{Operation: operation, Cause: fmt.Errorf(timestampParseErrorTemplateConstant, operation, trimmedValue, parseError)}
	}
	return parsedTimestamp.UTC(), nil
}
