package pypi_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/pypi"
)

type stubMetadataClient struct {
	mutex           sync.Mutex
	projects        []string
	listingError    error
	releases        map[string][]string
	supportReleases map[string]string
	supportReasons  map[string]string
	checkedVersions []string
}

func (client *stubMetadataClient) ListUserProjects(executionContext context.Context, username string) ([]string, error) {
	return client.projects, client.listingError
}

func (client *stubMetadataClient) ProjectReleases(executionContext context.Context, projectName string) ([]string, error) {
	return client.releases[projectName], nil
}

func (client *stubMetadataClient) ReleaseSupports(executionContext context.Context, projectName string, version string) (bool, string, error) {
	client.mutex.Lock()
	client.checkedVersions = append(client.checkedVersions, projectName+"@"+version)
	client.mutex.Unlock()
	if client.supportReleases[projectName] == version {
		return true, client.supportReasons[projectName], nil
	}
	return false, "", nil
}

func configurationFor(username string) pypi.Configuration {
	configuration := pypi.DefaultConfiguration()
	configuration.Username = username
	return configuration
}

func TestRunRequiresUsername(testInstance *testing.T) {
	service := pypi.NewService(&stubMetadataClient{}, &bytes.Buffer{})
	require.ErrorIs(testInstance, service.Run(context.Background(), pypi.DefaultConfiguration()), pypi.ErrUsernameRequired)
}

func TestRunReportsSupportGroupsSortedByName(testInstance *testing.T) {
	client := &stubMetadataClient{
		projects: []string{"zeta-pkg", "Alpha-Pkg", "middle-pkg"},
		releases: map[string][]string{
			"zeta-pkg":   {"2.0.0", "1.0.0"},
			"Alpha-Pkg":  {"5.1.0"},
			"middle-pkg": {"0.3.0"},
		},
		supportReleases: map[string]string{
			"zeta-pkg":  "2.0.0",
			"Alpha-Pkg": "5.1.0",
		},
		supportReasons: map[string]string{
			"zeta-pkg":  "classifier",
			"Alpha-Pkg": "requires_python",
		},
	}

	outputBuffer := &bytes.Buffer{}
	service := pypi.NewService(client, outputBuffer)

	require.NoError(testInstance, service.Run(context.Background(), configurationFor("octocat")))

	report := outputBuffer.String()
	require.Contains(testInstance, report, "# PyPI projects owned by 'octocat' that declare support for Python 3.14")
	require.Contains(testInstance, report, "- Alpha-Pkg: 5.1.0  (requires_python)")
	require.Contains(testInstance, report, "- zeta-pkg: 2.0.0  (classifier)")
	require.Contains(testInstance, report, "## Not supported (no 3.14 classifier or compatible requires_python found)")
	require.Contains(testInstance, report, "- middle-pkg")
	require.Less(testInstance,
		bytes.Index(outputBuffer.Bytes(), []byte("Alpha-Pkg")),
		bytes.Index(outputBuffer.Bytes(), []byte("zeta-pkg")))
}

func TestRunStopsAtFirstSupportingRelease(testInstance *testing.T) {
	client := &stubMetadataClient{
		projects: []string{"layered-pkg"},
		releases: map[string][]string{
			"layered-pkg": {"3.0.0", "2.0.0", "1.0.0"},
		},
		supportReleases: map[string]string{"layered-pkg": "3.0.0"},
		supportReasons:  map[string]string{"layered-pkg": "classifier"},
	}

	service := pypi.NewService(client, &bytes.Buffer{})
	require.NoError(testInstance, service.Run(context.Background(), configurationFor("octocat")))
	require.Equal(testInstance, []string{"layered-pkg@3.0.0"}, client.checkedVersions)
}

func TestRunPrintsPlaceholderForEmptyGroups(testInstance *testing.T) {
	client := &stubMetadataClient{
		projects: []string{"orphan-pkg"},
		releases: map[string][]string{"orphan-pkg": {"1.0.0"}},
	}

	outputBuffer := &bytes.Buffer{}
	service := pypi.NewService(client, outputBuffer)

	require.NoError(testInstance, service.Run(context.Background(), configurationFor("octocat")))

	report := outputBuffer.String()
	require.Contains(testInstance, report, "## Supported\n- (none)\n")
	require.Contains(testInstance, report, "- orphan-pkg")
}

func TestRunReportsListingFailuresWithoutFailing(testInstance *testing.T) {
	client := &stubMetadataClient{listingError: errors.New("xml-rpc gone")}

	outputBuffer := &bytes.Buffer{}
	service := pypi.NewService(client, outputBuffer)

	require.NoError(testInstance, service.Run(context.Background(), configurationFor("octocat")))

	report := outputBuffer.String()
	require.Contains(testInstance, report, "ERROR: Could not enumerate projects via XML-RPC.")
	require.Contains(testInstance, report, "Detail: xml-rpc gone")
	require.Contains(testInstance, report, "Pivot options: libraries.io or pypi.rs (PyPIrs) APIs.")
}

func TestRunReportsWhenUserHasNoProjects(testInstance *testing.T) {
	client := &stubMetadataClient{}

	outputBuffer := &bytes.Buffer{}
	service := pypi.NewService(client, outputBuffer)

	require.NoError(testInstance, service.Run(context.Background(), configurationFor("octocat")))
	require.Contains(testInstance, outputBuffer.String(), "No projects found for user: octocat")
}
