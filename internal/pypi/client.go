package pypi

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	xmlrpcPathConstant              = "/pypi"
	projectJSONPathTemplateConstant = "/pypi/%s/json"
	releaseJSONPathTemplateConstant = "/pypi/%s/%s/json"
	xmlrpcContentTypeConstant       = "text/xml"
	userPackagesMethodConstant      = "user_packages"
	requestTimeoutConstant          = 20 * time.Second
	listingPauseConstant            = time.Second
	pythonThreeFourteenTagConstant  = "Programming Language :: Python :: 3.14"
	pythonThreeFourteenConstant     = "3.14"
	classifierReasonConstant        = "classifier"
	requiresPythonReasonConstant    = "requires_python"
	xmlrpcRequestTemplateConstant   = `<?xml version="1.0"?><methodCall><methodName>%s</methodName><params><param><value><string>%s</string></value></param></params></methodCall>`
	unexpectedStatusTemplate        = "pypi request %s returned status %d"
	xmlrpcFaultTemplateConstant     = "pypi xml-rpc fault: %s"
	emptyResponseMessageConstant    = "pypi xml-rpc response carried no value"
)

// Client reads project metadata from PyPI's XML-RPC and JSON APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pause      func(time.Duration)
}

// NewClient constructs a PyPI metadata client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeoutConstant},
		baseURL:    strings.TrimRight(baseURL, "/"),
		pause:      time.Sleep,
	}
}

// SetPause overrides the pre-listing pause, for tests.
func (client *Client) SetPause(pause func(time.Duration)) {
	if pause != nil {
		client.pause = pause
	}
}

type xmlrpcValue struct {
	Array  *xmlrpcArray `xml:"array"`
	String string       `xml:"string"`
}

type xmlrpcArray struct {
	Values []xmlrpcValue `xml:"data>value"`
}

type xmlrpcMethodResponse struct {
	ParamValues []xmlrpcValue `xml:"params>param>value"`
	Fault       *struct {
		InnerXML string `xml:",innerxml"`
	} `xml:"fault"`
}

// ListUserProjects enumerates package names owned by the user via XML-RPC user_packages.
// The endpoint is rate limited, so a one-second pause precedes every call. Names are
// deduplicated and sorted case-insensitively.
func (client *Client) ListUserProjects(executionContext context.Context, username string) ([]string, error) {
	client.pause(listingPauseConstant)

	requestBody := fmt.Sprintf(xmlrpcRequestTemplateConstant, userPackagesMethodConstant, username)
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, client.baseURL+xmlrpcPathConstant, bytes.NewBufferString(requestBody))
	if requestError != nil {
		return nil, requestError
	}
	request.Header.Set("Content-Type", xmlrpcContentTypeConstant)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, responseError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusTemplate, xmlrpcPathConstant, response.StatusCode)
	}

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, readError
	}

	var methodResponse xmlrpcMethodResponse
	if decodeError := xml.Unmarshal(responseBody, &methodResponse); decodeError != nil {
		return nil, decodeError
	}
	if methodResponse.Fault != nil {
		return nil, fmt.Errorf(xmlrpcFaultTemplateConstant, strings.TrimSpace(methodResponse.Fault.InnerXML))
	}
	if len(methodResponse.ParamValues) == 0 || methodResponse.ParamValues[0].Array == nil {
		return nil, errors.New(emptyResponseMessageConstant)
	}

	// Each entry is a [role, package_name] pair.
	uniqueNames := map[string]struct{}{}
	for _, pairValue := range methodResponse.ParamValues[0].Array.Values {
		if pairValue.Array == nil || len(pairValue.Array.Values) < 2 {
			continue
		}
		packageName := pairValue.Array.Values[1].String
		if len(packageName) > 0 {
			uniqueNames[packageName] = struct{}{}
		}
	}

	projectNames := make([]string, 0, len(uniqueNames))
	for projectName := range uniqueNames {
		projectNames = append(projectNames, projectName)
	}
	sort.SliceStable(projectNames, func(firstIndex int, secondIndex int) bool {
		return strings.ToLower(projectNames[firstIndex]) < strings.ToLower(projectNames[secondIndex])
	})
	return projectNames, nil
}

type projectResponse struct {
	Releases map[string]json.RawMessage `json:"releases"`
}

// ProjectReleases returns the project's release versions sorted newest first.
// Versions that do not parse sort after every parseable version in their original order.
func (client *Client) ProjectReleases(executionContext context.Context, projectName string) ([]string, error) {
	requestPath := fmt.Sprintf(projectJSONPathTemplateConstant, projectName)
	responseBody, fetchError := client.fetchJSON(executionContext, requestPath)
	if fetchError != nil {
		return nil, fetchError
	}
	if responseBody == nil {
		return nil, nil
	}

	var project projectResponse
	if decodeError := json.Unmarshal(responseBody, &project); decodeError != nil {
		return nil, decodeError
	}

	versions := make([]string, 0, len(project.Releases))
	for version := range project.Releases {
		versions = append(versions, version)
	}
	sort.SliceStable(versions, func(firstIndex int, secondIndex int) bool {
		firstVersion, firstError := semver.NewVersion(versions[firstIndex])
		secondVersion, secondError := semver.NewVersion(versions[secondIndex])
		switch {
		case firstError == nil && secondError == nil:
			return firstVersion.GreaterThan(secondVersion)
		case firstError == nil:
			return true
		case secondError == nil:
			return false
		default:
			return versions[firstIndex] > versions[secondIndex]
		}
	})
	return versions, nil
}

type releaseResponse struct {
	Info struct {
		Classifiers    []string `json:"classifiers"`
		RequiresPython string   `json:"requires_python"`
	} `json:"info"`
}

// ReleaseSupports reports whether one release declares Python 3.14 support,
// either through the exact trove classifier or a requires-python specifier
// that admits 3.14.
func (client *Client) ReleaseSupports(executionContext context.Context, projectName string, version string) (bool, string, error) {
	requestPath := fmt.Sprintf(releaseJSONPathTemplateConstant, projectName, version)
	responseBody, fetchError := client.fetchJSON(executionContext, requestPath)
	if fetchError != nil {
		return false, "", fetchError
	}
	if responseBody == nil {
		return false, "", nil
	}

	var release releaseResponse
	if decodeError := json.Unmarshal(responseBody, &release); decodeError != nil {
		return false, "", decodeError
	}

	for _, classifier := range release.Info.Classifiers {
		if classifier == pythonThreeFourteenTagConstant {
			return true, classifierReasonConstant, nil
		}
	}
	if requirementAccepts(release.Info.RequiresPython, pythonThreeFourteenConstant) {
		return true, requiresPythonReasonConstant, nil
	}
	return false, "", nil
}

// fetchJSON returns the response body for a GET, nil body for non-200 statuses.
func (client *Client) fetchJSON(executionContext context.Context, requestPath string) ([]byte, error) {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, client.baseURL+requestPath, nil)
	if requestError != nil {
		return nil, requestError
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, responseError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, nil
	}
	return io.ReadAll(response.Body)
}
