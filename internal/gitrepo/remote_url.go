package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshSchemePrefixConstant         = "ssh://"
	httpSchemePrefixConstant        = "http://"
	httpsSchemePrefixConstant       = "https://"
	scpUserPrefixConstant           = "git@"
	userHostDelimiterConstant       = "@"
	scpPathDelimiterConstant        = ":"
	pathSeparatorConstant           = "/"
	gitSuffixConstant               = ".git"
	parseErrorTemplateConstant      = "%s: %s"
	invalidRemoteURLMessageConstant = "invalid remote url"
	requiredValueMessageConstant    = "value is required"
	sshRemoteTemplateConstant       = "git@%s:%s/%s.git"
	httpsRemoteTemplateConstant     = "https://%s/%s/%s.git"
)

// RemoteIdentity is the owner and repository extracted from a clone URL.
type RemoteIdentity struct {
	Host       string
	Owner      string
	Repository string
}

// SSHRemoteURL renders the identity as an scp-style ssh clone URL.
func (identity RemoteIdentity) SSHRemoteURL() string {
	return fmt.Sprintf(sshRemoteTemplateConstant, identity.Host, identity.Owner, identity.Repository)
}

// HTTPSRemoteURL renders the identity as an https clone URL.
func (identity RemoteIdentity) HTTPSRemoteURL() string {
	return fmt.Sprintf(httpsRemoteTemplateConstant, identity.Host, identity.Owner, identity.Repository)
}

// OwnerRepository returns the owner/repository slug.
func (identity RemoteIdentity) OwnerRepository() string {
	return identity.Owner + pathSeparatorConstant + identity.Repository
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteIdentity extracts host, owner, and repository from ssh, scp-style, or http(s) clone URLs.
func ParseRemoteIdentity(remote string) (RemoteIdentity, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteIdentity{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	loweredRemote := strings.ToLower(trimmedRemote)
	switch {
	case strings.HasPrefix(loweredRemote, sshSchemePrefixConstant):
		return parseHostPathRemote(trimmedRemote[len(sshSchemePrefixConstant):], remote)
	case strings.HasPrefix(loweredRemote, httpsSchemePrefixConstant):
		return parseHostPathRemote(trimmedRemote[len(httpsSchemePrefixConstant):], remote)
	case strings.HasPrefix(loweredRemote, httpSchemePrefixConstant):
		return parseHostPathRemote(trimmedRemote[len(httpSchemePrefixConstant):], remote)
	case strings.HasPrefix(loweredRemote, scpUserPrefixConstant):
		return parseSCPRemote(trimmedRemote, remote)
	default:
		return RemoteIdentity{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// parseHostPathRemote handles host/owner/repo layouts such as ssh://git@host/owner/repo.git.
func parseHostPathRemote(hostAndPath string, originalInput string) (RemoteIdentity, error) {
	if userSplitIndex := strings.Index(hostAndPath, userHostDelimiterConstant); userSplitIndex != -1 {
		hostAndPath = hostAndPath[userSplitIndex+1:]
	}
	segments := strings.Split(hostAndPath, pathSeparatorConstant)
	if len(segments) < 3 {
		return RemoteIdentity{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	return buildIdentity(segments[0], segments[1], strings.Join(segments[2:], pathSeparatorConstant), originalInput)
}

// parseSCPRemote handles git@host:owner/repo.git.
func parseSCPRemote(remote string, originalInput string) (RemoteIdentity, error) {
	hostAndPath := remote[strings.Index(remote, userHostDelimiterConstant)+1:]
	pathSplitIndex := strings.Index(hostAndPath, scpPathDelimiterConstant)
	if pathSplitIndex == -1 {
		return RemoteIdentity{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:pathSplitIndex]
	pathSegments := strings.Split(hostAndPath[pathSplitIndex+1:], pathSeparatorConstant)
	if len(pathSegments) != 2 {
		return RemoteIdentity{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	return buildIdentity(host, pathSegments[0], pathSegments[1], originalInput)
}

func buildIdentity(host string, owner string, repository string, originalInput string) (RemoteIdentity, error) {
	normalizedRepository := strings.TrimSuffix(repository, gitSuffixConstant)
	if len(host) == 0 || len(owner) == 0 || len(normalizedRepository) == 0 {
		return RemoteIdentity{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteIdentity{Host: host, Owner: owner, Repository: normalizedRepository}, nil
}
