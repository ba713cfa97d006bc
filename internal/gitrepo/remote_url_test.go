package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/gitrepo"
)

func TestParseRemoteIdentity(testInstance *testing.T) {
	testCases := []struct {
		name             string
		remoteURL        string
		expectedIdentity gitrepo.RemoteIdentity
		expectError      bool
	}{
		{
			name:             "scp_style",
			remoteURL:        "git@github.com:octocat/hello.git",
			expectedIdentity: gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"},
		},
		{
			name:             "ssh_scheme",
			remoteURL:        "ssh://git@github.com/octocat/hello.git",
			expectedIdentity: gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"},
		},
		{
			name:             "https_scheme",
			remoteURL:        "https://github.com/octocat/hello.git",
			expectedIdentity: gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"},
		},
		{
			name:             "https_without_suffix",
			remoteURL:        "https://github.com/octocat/hello",
			expectedIdentity: gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"},
		},
		{
			name:             "http_scheme",
			remoteURL:        "http://github.com/octocat/hello.git",
			expectedIdentity: gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"},
		},
		{name: "empty_url", remoteURL: "", expectError: true},
		{name: "local_path", remoteURL: "/srv/mirrors/hello.git", expectError: true},
		{name: "scp_without_path", remoteURL: "git@github.com", expectError: true},
		{name: "https_missing_repository", remoteURL: "https://github.com/octocat", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			identity, parseError := gitrepo.ParseRemoteIdentity(testCase.remoteURL)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedIdentity, identity)
		})
	}
}

func TestRemoteIdentityRendering(testInstance *testing.T) {
	identity := gitrepo.RemoteIdentity{Host: "github.com", Owner: "octocat", Repository: "hello"}
	require.Equal(testInstance, "git@github.com:octocat/hello.git", identity.SSHRemoteURL())
	require.Equal(testInstance, "https://github.com/octocat/hello.git", identity.HTTPSRemoteURL())
	require.Equal(testInstance, "octocat/hello", identity.OwnerRepository())
}
