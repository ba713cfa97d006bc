package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	gitMetadataDirectoryNameConstant  = ".git"
	rootDirectoryRequiredMessage      = "clone root directory is required"
	rootDirectoryUnreadableTemplate   = "unable to read clone root %s: %w"
	entryInspectionWarningTemplate    = "Skipping unreadable entry"
	entryNameFieldNameConstant        = "entry"
	revParseSubcommandConstant        = "rev-parse"
	insideWorkTreeFlagConstant        = "--is-inside-work-tree"
	insideWorkTreeAffirmativeConstant = "true"
)

// FilesystemRepositoryDiscoverer enumerates the immediate children of a clone root directory.
type FilesystemRepositoryDiscoverer struct {
	logger *zap.Logger
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer that logs skipped entries to the provided logger.
func NewFilesystemRepositoryDiscoverer(logger *zap.Logger) *FilesystemRepositoryDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemRepositoryDiscoverer{logger: logger}
}

// DiscoverRepositories lists the directories directly beneath rootDirectory sorted case-insensitively by name.
// Each candidate is marked as a git repository when it contains a .git entry. An unreadable root is a fatal
// error; entries that cannot be inspected are skipped with a warning.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(executionContext context.Context, rootDirectory string) ([]shared.RepositoryCandidate, error) {
	trimmedRoot := strings.TrimSpace(rootDirectory)
	if len(trimmedRoot) == 0 {
		return nil, errors.New(rootDirectoryRequiredMessage)
	}

	directoryEntries, readError := os.ReadDir(trimmedRoot)
	if readError != nil {
		return nil, fmt.Errorf(rootDirectoryUnreadableTemplate, trimmedRoot, readError)
	}

	candidates := make([]shared.RepositoryCandidate, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if executionContext.Err() != nil {
			return nil, executionContext.Err()
		}

		entryInfo, entryError := directoryEntry.Info()
		if entryError != nil {
			discoverer.logger.Warn(entryInspectionWarningTemplate, zap.String(entryNameFieldNameConstant, directoryEntry.Name()), zap.Error(entryError))
			continue
		}
		if !entryInfo.IsDir() {
			continue
		}

		candidatePath := filepath.Join(trimmedRoot, directoryEntry.Name())
		candidates = append(candidates, shared.RepositoryCandidate{
			Name:          directoryEntry.Name(),
			Path:          candidatePath,
			GitRepository: containsGitMetadata(candidatePath),
		})
	}

	sort.SliceStable(candidates, func(firstIndex int, secondIndex int) bool {
		firstName := strings.ToLower(candidates[firstIndex].Name)
		secondName := strings.ToLower(candidates[secondIndex].Name)
		if firstName == secondName {
			return candidates[firstIndex].Name < candidates[secondIndex].Name
		}
		return firstName < secondName
	})

	return candidates, nil
}

func containsGitMetadata(candidatePath string) bool {
	metadataInfo, statError := os.Stat(filepath.Join(candidatePath, gitMetadataDirectoryNameConstant))
	if statError != nil {
		return false
	}
	// A .git file (worktree pointer) counts the same as a .git directory.
	return metadataInfo.Mode().IsDir() || metadataInfo.Mode().IsRegular()
}

// WorktreeVerifier confirms repository candidates with git itself.
type WorktreeVerifier struct {
	gitExecutor shared.GitExecutor
}

// NewWorktreeVerifier constructs a verifier backed by the provided executor.
func NewWorktreeVerifier(gitExecutor shared.GitExecutor) *WorktreeVerifier {
	return &WorktreeVerifier{gitExecutor: gitExecutor}
}

// IsGitRepository asks git whether the path sits inside a work tree.
// A non-zero exit from git answers false without surfacing an error.
func (verifier *WorktreeVerifier) IsGitRepository(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := verifier.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == insideWorkTreeAffirmativeConstant, nil
}
