package cloneprotocol

import (
	"context"
	"fmt"
	"io"

	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	scanHeadingConstant          = "🔍 Scanning git repositories for clone type...\n\n"
	groupHeadingTemplateConstant = "%s %s:\n"
	emptyGroupMemberConstant     = "   • (none)\n"
	groupMemberTemplateConstant  = "   • %s\n"
	groupMemberWithURLTemplate   = "   • %s → %s\n"
	groupSeparatorConstant       = "\n"
	doneMessageConstant          = "✅ Done.\n"
	remoteLookupFailureTemplate  = "💥 Error reading origin for %s: %v\n"
	sshGroupTitleConstant        = "SSH clones"
	sshGroupIconConstant         = "🔐"
	httpsGroupTitleConstant      = "HTTPS clones"
	httpsGroupIconConstant       = "🌐"
	otherGroupTitleConstant      = "Other/unknown URL schemes"
	otherGroupIconConstant       = "⚙️"
	noneGroupTitleConstant       = "No origin remote configured"
	noneGroupIconConstant        = "❓"
)

type classifiedRepository struct {
	name      string
	remoteURL string
}

// Service groups local clones by the protocol of their origin remote.
type Service struct {
	discoverer   shared.RepositoryDiscoverer
	gitManager   shared.GitRepositoryManager
	outputWriter io.Writer
}

// NewService constructs a clone protocol classification service.
func NewService(discoverer shared.RepositoryDiscoverer, gitManager shared.GitRepositoryManager, outputWriter io.Writer) *Service {
	return &Service{
		discoverer:   discoverer,
		gitManager:   gitManager,
		outputWriter: outputWriter,
	}
}

// Run classifies every git repository beneath the clone root and prints grouped results.
// Classification never mutates a URL; lookup failures classify as none.
func (service *Service) Run(executionContext context.Context, configuration Configuration) error {
	candidates, discoveryError := service.discoverer.DiscoverRepositories(executionContext, configuration.rootOrDefault())
	if discoveryError != nil {
		return discoveryError
	}

	fmt.Fprint(service.outputWriter, scanHeadingConstant)

	groups := map[shared.RemoteProtocol][]classifiedRepository{}
	for _, candidate := range candidates {
		if !candidate.GitRepository {
			continue
		}

		remoteURL, remoteError := service.gitManager.GetRemoteURL(executionContext, candidate.Path, shared.OriginRemoteNameConstant)
		if remoteError != nil {
			fmt.Fprintf(service.outputWriter, remoteLookupFailureTemplate, candidate.Name, remoteError)
			remoteURL = ""
		}

		protocol := shared.ClassifyRemoteProtocol(remoteURL)
		groups[protocol] = append(groups[protocol], classifiedRepository{name: candidate.Name, remoteURL: remoteURL})
	}

	service.printGroup(sshGroupTitleConstant, sshGroupIconConstant, groups[shared.RemoteProtocolSSH], configuration.ShowURLs)
	service.printGroup(httpsGroupTitleConstant, httpsGroupIconConstant, groups[shared.RemoteProtocolHTTPS], configuration.ShowURLs)
	service.printGroup(otherGroupTitleConstant, otherGroupIconConstant, groups[shared.RemoteProtocolOther], configuration.ShowURLs)
	service.printGroup(noneGroupTitleConstant, noneGroupIconConstant, groups[shared.RemoteProtocolNone], configuration.ShowURLs)

	fmt.Fprint(service.outputWriter, doneMessageConstant)
	return nil
}

func (service *Service) printGroup(title string, icon string, members []classifiedRepository, showURLs bool) {
	fmt.Fprintf(service.outputWriter, groupHeadingTemplateConstant, icon, title)
	if len(members) == 0 {
		fmt.Fprint(service.outputWriter, emptyGroupMemberConstant)
		return
	}
	for _, member := range members {
		if showURLs && len(member.remoteURL) > 0 {
			fmt.Fprintf(service.outputWriter, groupMemberWithURLTemplate, member.name, member.remoteURL)
		} else {
			fmt.Fprintf(service.outputWriter, groupMemberTemplateConstant, member.name)
		}
	}
	fmt.Fprint(service.outputWriter, groupSeparatorConstant)
}
