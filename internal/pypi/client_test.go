package pypi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/pypi"
)

const userPackagesResponseBody = `<?xml version="1.0"?>
<methodResponse>
  <params>
    <param>
      <value>
        <array>
          <data>
            <value><array><data>
              <value><string>Owner</string></value>
              <value><string>zebra-tool</string></value>
            </data></array></value>
            <value><array><data>
              <value><string>Maintainer</string></value>
              <value><string>Apple-Kit</string></value>
            </data></array></value>
            <value><array><data>
              <value><string>Owner</string></value>
              <value><string>zebra-tool</string></value>
            </data></array></value>
          </data>
        </array>
      </value>
    </param>
  </params>
</methodResponse>`

func newTestClient(testInstance *testing.T, handler http.HandlerFunc) *pypi.Client {
	testInstance.Helper()
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)
	client := pypi.NewClient(server.URL)
	client.SetPause(func(time.Duration) {})
	return client
}

func TestListUserProjectsDeduplicatesAndSortsCaseInsensitively(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPost, request.Method)
		require.Equal(testInstance, "/pypi", request.URL.Path)
		_, _ = responseWriter.Write([]byte(userPackagesResponseBody))
	})

	projects, listError := client.ListUserProjects(context.Background(), "octocat")
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"Apple-Kit", "zebra-tool"}, projects)
}

func TestListUserProjectsSurfacesFaults(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		_, _ = responseWriter.Write([]byte(`<?xml version="1.0"?><methodResponse><fault><value><string>rate limited</string></value></fault></methodResponse>`))
	})

	_, listError := client.ListUserProjects(context.Background(), "octocat")
	require.Error(testInstance, listError)
	require.Contains(testInstance, listError.Error(), "fault")
}

func TestProjectReleasesSortsNewestFirstWithInvalidVersionsLast(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "/pypi/sample-project/json", request.URL.Path)
		_, _ = responseWriter.Write([]byte(`{"releases": {"1.2.0": [], "0.9.0": [], "2.0.0": [], "weird-tag": []}}`))
	})

	versions, releasesError := client.ProjectReleases(context.Background(), "sample-project")
	require.NoError(testInstance, releasesError)
	require.Equal(testInstance, []string{"2.0.0", "1.2.0", "0.9.0", "weird-tag"}, versions)
}

func TestProjectReleasesReturnsNothingForMissingProject(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNotFound)
	})

	versions, releasesError := client.ProjectReleases(context.Background(), "ghost-project")
	require.NoError(testInstance, releasesError)
	require.Empty(testInstance, versions)
}

func TestReleaseSupportsPrefersClassifierOverRequiresPython(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "/pypi/sample-project/2.0.0/json", request.URL.Path)
		_, _ = responseWriter.Write([]byte(`{"info": {"classifiers": ["Programming Language :: Python :: 3.14"], "requires_python": ">=3.9"}}`))
	})

	supported, reason, supportError := client.ReleaseSupports(context.Background(), "sample-project", "2.0.0")
	require.NoError(testInstance, supportError)
	require.True(testInstance, supported)
	require.Equal(testInstance, "classifier", reason)
}

func TestReleaseSupportsFallsBackToRequiresPython(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		_, _ = responseWriter.Write([]byte(`{"info": {"classifiers": ["Programming Language :: Python :: 3.12"], "requires_python": ">=3.9"}}`))
	})

	supported, reason, supportError := client.ReleaseSupports(context.Background(), "sample-project", "2.0.0")
	require.NoError(testInstance, supportError)
	require.True(testInstance, supported)
	require.Equal(testInstance, "requires_python", reason)
}

func TestReleaseSupportsAnswersFalseWithoutSignals(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		_, _ = responseWriter.Write([]byte(`{"info": {"classifiers": [], "requires_python": "<3.13"}}`))
	})

	supported, reason, supportError := client.ReleaseSupports(context.Background(), "sample-project", "2.0.0")
	require.NoError(testInstance, supportError)
	require.False(testInstance, supported)
	require.Empty(testInstance, reason)
}
