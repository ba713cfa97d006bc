package hosted

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matthewdeanmartin/repokeeper/internal/githubcli"
	"github.com/matthewdeanmartin/repokeeper/internal/gitrepo"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	forksScanHeadingTemplateConstant  = "🔍 Scanning for forked repos in: %s\n"
	forksNoneFoundMessageConstant     = "✅ No forks of other users' repos found (owned by you).\n"
	forksHeadingConstant              = "\n🍴 Forked repositories of other users (owned by you):\n\n"
	forkEntryTemplateConstant         = "📁 %s\n   ├─ Repo: %s/%s\n   └─ Forked from: %s\n\n"
	forksSummaryTemplateConstant      = "📊 Total forked repos of others: %d\n"
	profileQueryWarningTemplate       = "⚠️  Failed to query GitHub for %s: %v\n"
	unclonedLocalScanTemplateConstant = "🔍 Scanning local path: %s\n"
	unclonedQueryTemplateConstant     = "🌐 Querying GitHub user: %s\n"
	unclonedNoneFoundMessageConstant  = "✅ All non-fork, non-archived repos appear to be cloned here.\n"
	unclonedHeadingConstant           = "\n📋 Repos NOT cloned in this directory (sorted by last update):\n\n"
	unclonedEntryTemplateConstant     = "📦 %s  ⏱ %s  🔗 %s\n"
	archivedNoneFoundMessageConstant  = "✅ No local clones of archived GitHub repositories were found.\n"
	archivedHeadingConstant           = "🧊 Archived GitHub clones found (sorted by last update):\n"
	archivedEntryTemplateConstant     = "  🧊 %s/%s 📁 %s 🕒 updated %s\n"
	isoTimestampLayoutConstant        = "2006-01-02T15:04:05-07:00"
)

// WorktreeVerifier confirms with git whether a directory is a repository.
type WorktreeVerifier interface {
	IsGitRepository(executionContext context.Context, repositoryPath string) (bool, error)
}

// Service compares local clones against hosted GitHub repository state.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	verifier     WorktreeVerifier
	gitManager   shared.GitRepositoryManager
	hostedClient shared.HostedRepositoryClient
	outputWriter io.Writer
}

// NewService constructs a hosted comparison service.
func NewService(discoverer shared.RepositoryDiscoverer, verifier WorktreeVerifier, gitManager shared.GitRepositoryManager, hostedClient shared.HostedRepositoryClient, outputWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		verifier:     verifier,
		gitManager:   gitManager,
		hostedClient: hostedClient,
		outputWriter: outputWriter,
	}
}

type forkedRepository struct {
	directoryName string
	profile       githubcli.RepositoryProfile
}

// RunForks reports local clones that are forks of another user's repository.
// A repository counts when it is a fork, owned by the configured identity, and
// forked from a different identity; forks of the owner's own repositories do not.
func (service *Service) RunForks(executionContext context.Context, configuration Configuration) error {
	ownerSlug, ownerError := shared.NewOwnerSlug(configuration.Owner)
	if ownerError != nil {
		return ErrOwnerRequired
	}

	cloneRoot := configuration.rootOrDefault()
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, cloneRoot)
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprintf(service.outputWriter, forksScanHeadingTemplateConstant, cloneRoot)

	forkedRepositories := make([]forkedRepository, 0, len(candidates))
	for _, candidate := range candidates {
		insideWorktree, verificationError := service.verifier.IsGitRepository(executionContext, candidate.Path)
		if verificationError != nil || !insideWorktree {
			continue
		}

		profile, profileError := service.resolveProfileFromRemote(executionContext, candidate.Path)
		if profileError != nil {
			fmt.Fprintf(service.outputWriter, profileQueryWarningTemplate, candidate.Name, profileError)
			continue
		}

		if profile.IsFork && ownerSlug.EqualsFold(profile.Owner) && !ownerSlug.EqualsFold(profile.ParentOwner) {
			forkedRepositories = append(forkedRepositories, forkedRepository{directoryName: candidate.Name, profile: profile})
		}
	}

	if len(forkedRepositories) == 0 {
		fmt.Fprint(service.outputWriter, forksNoneFoundMessageConstant)
		return nil
	}

	fmt.Fprint(service.outputWriter, forksHeadingConstant)
	for _, forked := range forkedRepositories {
		parentFullName := forked.profile.ParentOwner + "/" + forked.profile.ParentName
		fmt.Fprintf(service.outputWriter, forkEntryTemplateConstant, forked.directoryName, forked.profile.Owner, forked.profile.Name, parentFullName)
	}
	fmt.Fprintf(service.outputWriter, forksSummaryTemplateConstant, len(forkedRepositories))
	return nil
}

// RunUncloned reports the owner's hosted repositories that have no same-named local directory.
// Forks and archived repositories are skipped; results sort newest-updated first.
func (service *Service) RunUncloned(executionContext context.Context, configuration Configuration) error {
	ownerSlug, ownerError := shared.NewOwnerSlug(configuration.Owner)
	if ownerError != nil {
		return ErrOwnerRequired
	}

	cloneRoot := configuration.rootOrDefault()
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, cloneRoot)
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprintf(service.outputWriter, unclonedLocalScanTemplateConstant, cloneRoot)
	localDirectoryNames := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		localDirectoryNames[candidate.Name] = struct{}{}
	}

	fmt.Fprintf(service.outputWriter, unclonedQueryTemplateConstant, ownerSlug.String())
	hostedRepositories, listError := service.hostedClient.ListOwnerRepositories(executionContext, ownerSlug.String())
	if listError != nil {
		return listError
	}

	uncloned := make([]githubcli.RepositoryProfile, 0, len(hostedRepositories))
	for _, hostedRepository := range hostedRepositories {
		if hostedRepository.IsFork || hostedRepository.IsArchived {
			continue
		}
		if _, clonedLocally := localDirectoryNames[hostedRepository.Name]; clonedLocally {
			continue
		}
		uncloned = append(uncloned, hostedRepository)
	}

	sort.SliceStable(uncloned, func(firstIndex int, secondIndex int) bool {
		return uncloned[firstIndex].UpdatedAt.After(uncloned[secondIndex].UpdatedAt)
	})

	if len(uncloned) == 0 {
		fmt.Fprint(service.outputWriter, unclonedNoneFoundMessageConstant)
		return nil
	}

	fmt.Fprint(service.outputWriter, unclonedHeadingConstant)
	for _, hostedRepository := range uncloned {
		fmt.Fprintf(service.outputWriter, unclonedEntryTemplateConstant, hostedRepository.Name, hostedRepository.UpdatedAt.Format(isoTimestampLayoutConstant), hostedRepository.URL)
	}
	return nil
}

type archivedClone struct {
	directoryName string
	profile       githubcli.RepositoryProfile
}

// RunArchived reports local clones whose hosted repository is archived, newest-updated first.
// Clones whose remote owner differs from the configured identity are skipped.
func (service *Service) RunArchived(executionContext context.Context, configuration Configuration) error {
	ownerSlug, ownerError := shared.NewOwnerSlug(configuration.Owner)
	if ownerError != nil {
		return ErrOwnerRequired
	}

	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	archivedClones := make([]archivedClone, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		remoteURL, remoteError := service.gitManager.GetRemoteURL(executionContext, candidate.Path, shared.OriginRemoteNameConstant)
		if remoteError != nil || len(strings.TrimSpace(remoteURL)) == 0 {
			continue
		}
		remoteIdentity, parseError := gitrepo.ParseRemoteIdentity(remoteURL)
		if parseError != nil {
			continue
		}
		if !ownerSlug.EqualsFold(remoteIdentity.Owner) {
			continue
		}

		profile, profileError := service.hostedClient.ResolveRepoProfile(executionContext, remoteIdentity.OwnerRepository())
		if profileError != nil {
			fmt.Fprintf(service.outputWriter, profileQueryWarningTemplate, candidate.Name, profileError)
			continue
		}
		if profile.IsArchived {
			archivedClones = append(archivedClones, archivedClone{directoryName: candidate.Name, profile: profile})
		}
	}

	sort.SliceStable(archivedClones, func(firstIndex int, secondIndex int) bool {
		return archivedClones[firstIndex].profile.UpdatedAt.After(archivedClones[secondIndex].profile.UpdatedAt)
	})

	if len(archivedClones) == 0 {
		fmt.Fprint(service.outputWriter, archivedNoneFoundMessageConstant)
		return nil
	}

	fmt.Fprint(service.outputWriter, archivedHeadingConstant)
	for _, clone := range archivedClones {
		fmt.Fprintf(service.outputWriter, archivedEntryTemplateConstant, clone.profile.Owner, clone.profile.Name, clone.directoryName, clone.profile.UpdatedAt.Format(isoTimestampLayoutConstant))
	}
	return nil
}

// resolveProfileFromRemote maps a clone's origin remote to its hosted profile.
func (service *Service) resolveProfileFromRemote(executionContext context.Context, repositoryPath string) (githubcli.RepositoryProfile, error) {
	remoteURL, remoteError := service.gitManager.GetRemoteURL(executionContext, repositoryPath, shared.OriginRemoteNameConstant)
	if remoteError != nil {
		return githubcli.RepositoryProfile{}, remoteError
	}
	remoteIdentity, parseError := gitrepo.ParseRemoteIdentity(remoteURL)
	if parseError != nil {
		return githubcli.RepositoryProfile{}, parseError
	}
	return service.hostedClient.ResolveRepoProfile(executionContext, remoteIdentity.OwnerRepository())
}
