package worktree_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
	"github.com/matthewdeanmartin/repokeeper/internal/worktree"
)

type stubDiscoverer struct {
	candidates []shared.RepositoryCandidate
	err        error
}

func (discoverer *stubDiscoverer) DiscoverRepositories(executionContext context.Context, rootDirectory string) ([]shared.RepositoryCandidate, error) {
	return discoverer.candidates, discoverer.err
}

type repositoryState struct {
	clean       bool
	cleanErr    error
	changeLines []string
	changesErr  error
	aheadCount  int
	aheadErr    error
}

type stubGitManager struct {
	states map[string]repositoryState
}

func (manager *stubGitManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	state := manager.states[repositoryPath]
	return state.clean, state.cleanErr
}

func (manager *stubGitManager) ListWorktreeChanges(executionContext context.Context, repositoryPath string) ([]string, error) {
	state := manager.states[repositoryPath]
	return state.changeLines, state.changesErr
}

func (manager *stubGitManager) CountCommits(executionContext context.Context, repositoryPath string) (int, error) {
	return 0, nil
}

func (manager *stubGitManager) CountAheadCommits(executionContext context.Context, repositoryPath string) (int, error) {
	state := manager.states[repositoryPath]
	return state.aheadCount, state.aheadErr
}

func (manager *stubGitManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	return "", nil
}

func (manager *stubGitManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	return "main", nil
}

func (manager *stubGitManager) FetchAllRemotes(executionContext context.Context, repositoryPath string) error {
	return nil
}

func (manager *stubGitManager) PullCurrentBranch(executionContext context.Context, repositoryPath string) error {
	return nil
}

func (manager *stubGitManager) PushCurrentBranch(executionContext context.Context, repositoryPath string) error {
	return nil
}

func TestRunStrandedGroupsFindings(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "dirty-repo", Path: "/clones/dirty-repo", GitRepository: true},
		{Name: "ahead-repo", Path: "/clones/ahead-repo", GitRepository: true},
		{Name: "clean-repo", Path: "/clones/clean-repo", GitRepository: true},
		{Name: "plain-folder", Path: "/clones/plain-folder", GitRepository: false},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/dirty-repo": {clean: false, aheadCount: 0},
		"/clones/ahead-repo": {clean: true, aheadCount: 3},
		"/clones/clean-repo": {clean: true, aheadCount: 0},
	}}

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, errorBuffer)

	runError := service.RunStranded(context.Background(), worktree.Configuration{Root: "/clones", Verbose: true})
	require.NoError(testInstance, runError)

	report := outputBuffer.String()
	require.Contains(testInstance, report, "✏️ Repos with uncommitted changes:")
	require.Contains(testInstance, report, "  - dirty-repo")
	require.Contains(testInstance, report, "📤 Repos with unpushed commits:")
	require.Contains(testInstance, report, "  - ahead-repo (ahead by 3 commits)")
	require.Contains(testInstance, report, "✅ Clean repos (no uncommitted or unpushed work):")
	require.Contains(testInstance, report, "  - clean-repo")
	require.Contains(testInstance, report, "📁 Non-git directories:")
	require.Contains(testInstance, report, "  - plain-folder")
	require.Contains(testInstance, report, "✅ Completed successfully.")
	require.Empty(testInstance, errorBuffer.String())
}

func TestRunStrandedSingularAheadCount(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "ahead-repo", Path: "/clones/ahead-repo", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/ahead-repo": {clean: true, aheadCount: 1},
	}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunStranded(context.Background(), worktree.Configuration{}))
	require.Contains(testInstance, outputBuffer.String(), "  - ahead-repo (ahead by 1 commit)")
}

func TestRunStrandedAccumulatesFailuresWithoutAborting(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "broken-repo", Path: "/clones/broken-repo", GitRepository: true},
		{Name: "healthy-repo", Path: "/clones/healthy-repo", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/broken-repo":  {cleanErr: errors.New("status failed"), aheadErr: errors.New("no upstream")},
		"/clones/healthy-repo": {clean: true, aheadCount: 0},
	}}

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, errorBuffer)

	runError := service.RunStranded(context.Background(), worktree.Configuration{})
	require.ErrorIs(testInstance, runError, shared.ErrScanCompletedWithErrors)

	diagnostics := errorBuffer.String()
	require.Contains(testInstance, diagnostics, "❌ [broken-repo] status failed")
	require.Contains(testInstance, diagnostics, "❌ [broken-repo] no upstream")
	require.Contains(testInstance, diagnostics, "⚠️  Completed with errors.")
	require.NotContains(testInstance, outputBuffer.String(), "✅ Completed successfully.")
}

func TestRunStrandedIndeterminateAheadNeverReportedAsZero(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "no-upstream", Path: "/clones/no-upstream", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/no-upstream": {clean: true, aheadErr: errors.New("no upstream configured")},
	}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	runError := service.RunStranded(context.Background(), worktree.Configuration{Verbose: true})
	require.ErrorIs(testInstance, runError, shared.ErrScanCompletedWithErrors)
	// Indeterminate ahead counts must keep the repo out of the clean listing.
	require.NotContains(testInstance, outputBuffer.String(), "  - no-upstream")
}

func TestRunChangesReportsDirtyWorktrees(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "dirty-repo", Path: "/clones/dirty-repo", GitRepository: true},
		{Name: "clean-repo", Path: "/clones/clean-repo", GitRepository: true},
		{Name: "plain-folder", Path: "/clones/plain-folder", GitRepository: false},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/dirty-repo": {changeLines: []string{" M service.go", "?? notes.txt"}},
		"/clones/clean-repo": {},
	}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	runError := service.RunChanges(context.Background(), worktree.Configuration{})
	require.ErrorIs(testInstance, runError, shared.ErrFindingsDetected)

	report := outputBuffer.String()
	require.Contains(testInstance, report, "📁 dirty-repo (2 path(s) changed)")
	require.Contains(testInstance, report, "   •  M service.go")
	require.Contains(testInstance, report, "   • ?? notes.txt")
	require.Contains(testInstance, report, "⚠️ Done. At least one repository has local changes.")
	require.NotContains(testInstance, report, "plain-folder")
}

func TestRunChangesConfirmsCleanTree(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "clean-repo", Path: "/clones/clean-repo", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{"/clones/clean-repo": {}}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunChanges(context.Background(), worktree.Configuration{}))
	require.Contains(testInstance, outputBuffer.String(), "✅ All git repositories are clean.")
}

func TestRunChangesVerboseListsCleanRepositories(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "clean-repo", Path: "/clones/clean-repo", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{"/clones/clean-repo": {}}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunChanges(context.Background(), worktree.Configuration{Verbose: true}))
	require.Contains(testInstance, outputBuffer.String(), "✅ clean-repo is clean.")
}

func TestRunChangesSurfacesInspectionFailuresInline(testInstance *testing.T) {
	discoverer := &stubDiscoverer{candidates: []shared.RepositoryCandidate{
		{Name: "broken-repo", Path: "/clones/broken-repo", GitRepository: true},
	}}
	manager := &stubGitManager{states: map[string]repositoryState{
		"/clones/broken-repo": {changesErr: errors.New("status failed")},
	}}

	outputBuffer := &bytes.Buffer{}
	service := worktree.NewService(discoverer, manager, outputBuffer, &bytes.Buffer{})

	require.NoError(testInstance, service.RunChanges(context.Background(), worktree.Configuration{}))
	require.Contains(testInstance, outputBuffer.String(), "💥 Error inspecting broken-repo: status failed")
}
