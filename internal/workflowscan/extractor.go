package workflowscan

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	pythonVersionKeyConstant  = "python-version"
	keyValueDelimiterConstant = ":"
	commentPrefixConstant     = "#"
	thresholdMajorConstant    = 3
	thresholdMinorConstant    = 14
	thresholdPatchConstant    = 0
)

var (
	versionTokenPattern = regexp.MustCompile(`(\d+(?:\.\d+){1,2})`)
	exactVersionPattern = regexp.MustCompile(`^\d+(?:\.\d+){1,2}$`)
)

// VersionExtractor pulls python-version values out of a workflow file's text.
type VersionExtractor interface {
	ExtractLegacyVersions(workflowText string) []string
}

type versionTriple struct {
	major int
	minor int
	patch int
}

func (triple versionTriple) belowThreshold() bool {
	threshold := versionTriple{major: thresholdMajorConstant, minor: thresholdMinorConstant, patch: thresholdPatchConstant}
	if triple.major != threshold.major {
		return triple.major < threshold.major
	}
	if triple.minor != threshold.minor {
		return triple.minor < threshold.minor
	}
	return triple.patch < threshold.patch
}

// parseVersionTriple parses "3.10" or "3.13.1" into a zero-padded triple.
func parseVersionTriple(version string) (versionTriple, bool) {
	trimmedVersion := strings.TrimSpace(version)
	if !exactVersionPattern.MatchString(trimmedVersion) {
		return versionTriple{}, false
	}
	segments := strings.Split(trimmedVersion, ".")
	numbers := [3]int{}
	for segmentIndex, segment := range segments {
		parsedNumber, parseError := strconv.Atoi(segment)
		if parseError != nil {
			return versionTriple{}, false
		}
		numbers[segmentIndex] = parsedNumber
	}
	return versionTriple{major: numbers[0], minor: numbers[1], patch: numbers[2]}, true
}

// isLegacyVersion reports whether the token parses and falls below 3.14.0.
func isLegacyVersion(version string) bool {
	triple, parsed := parseVersionTriple(version)
	return parsed && triple.belowThreshold()
}

func extractVersionTokens(fragment string) []string {
	matches := versionTokenPattern.FindAllStringSubmatch(fragment, -1)
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		tokens = append(tokens, match[1])
	}
	return tokens
}

// LineVersionExtractor scans workflow text line by line without parsing YAML.
// It handles inline scalars, inline lists, and matrix-style blocks where the
// versions sit on more-indented lines below the python-version key.
type LineVersionExtractor struct{}

// NewLineVersionExtractor constructs the default extractor.
func NewLineVersionExtractor() *LineVersionExtractor {
	return &LineVersionExtractor{}
}

// ExtractLegacyVersions returns the distinct below-threshold versions found in the text.
func (extractor *LineVersionExtractor) ExtractLegacyVersions(workflowText string) []string {
	lines := strings.Split(workflowText, "\n")
	legacyVersions := newVersionSet()

	lineIndex := 0
	for lineIndex < len(lines) {
		line := lines[lineIndex]
		if !strings.Contains(line, pythonVersionKeyConstant) || !strings.Contains(line, keyValueDelimiterConstant) {
			lineIndex++
			continue
		}

		keyIndentation := len(line) - len(strings.TrimLeft(line, " \t"))
		afterColon := strings.TrimSpace(line[strings.Index(line, keyValueDelimiterConstant)+1:])

		if len(afterColon) > 0 {
			legacyVersions.addLegacyTokens(afterColon)
			lineIndex++
			continue
		}

		// Block form: consume more-indented lines until the first dedent.
		lineIndex++
		for lineIndex < len(lines) {
			blockLine := lines[lineIndex]
			strippedBlockLine := strings.TrimSpace(blockLine)
			if len(strippedBlockLine) == 0 || strings.HasPrefix(strippedBlockLine, commentPrefixConstant) {
				lineIndex++
				continue
			}
			blockIndentation := len(blockLine) - len(strings.TrimLeft(blockLine, " \t"))
			if blockIndentation <= keyIndentation {
				break
			}
			legacyVersions.addLegacyTokens(blockLine)
			lineIndex++
		}
	}

	return legacyVersions.sorted()
}

// YAMLVersionExtractor walks real YAML documents for python-version keys.
type YAMLVersionExtractor struct{}

// NewYAMLVersionExtractor constructs the document-walking extractor.
func NewYAMLVersionExtractor() *YAMLVersionExtractor {
	return &YAMLVersionExtractor{}
}

// ExtractLegacyVersions returns the distinct below-threshold versions found in the document.
// Text that fails to parse as YAML yields no versions.
func (extractor *YAMLVersionExtractor) ExtractLegacyVersions(workflowText string) []string {
	var documentRoot yaml.Node
	if unmarshalError := yaml.Unmarshal([]byte(workflowText), &documentRoot); unmarshalError != nil {
		return nil
	}

	legacyVersions := newVersionSet()
	collectPythonVersionNodes(&documentRoot, legacyVersions)
	return legacyVersions.sorted()
}

func collectPythonVersionNodes(node *yaml.Node, legacyVersions *versionSet) {
	if node == nil {
		return
	}
	if node.Kind == yaml.MappingNode {
		for pairIndex := 0; pairIndex+1 < len(node.Content); pairIndex += 2 {
			keyNode := node.Content[pairIndex]
			valueNode := node.Content[pairIndex+1]
			if keyNode.Value == pythonVersionKeyConstant {
				collectScalarVersions(valueNode, legacyVersions)
			}
			collectPythonVersionNodes(valueNode, legacyVersions)
		}
		return
	}
	for _, childNode := range node.Content {
		collectPythonVersionNodes(childNode, legacyVersions)
	}
}

func collectScalarVersions(node *yaml.Node, legacyVersions *versionSet) {
	if node == nil {
		return
	}
	if node.Kind == yaml.ScalarNode {
		legacyVersions.addLegacyTokens(node.Value)
		return
	}
	for _, childNode := range node.Content {
		collectScalarVersions(childNode, legacyVersions)
	}
}

type versionSet struct {
	members map[string]struct{}
}

func newVersionSet() *versionSet {
	return &versionSet{members: map[string]struct{}{}}
}

func (set *versionSet) addLegacyTokens(fragment string) {
	for _, token := range extractVersionTokens(fragment) {
		if isLegacyVersion(token) {
			set.members[token] = struct{}{}
		}
	}
}

func (set *versionSet) sorted() []string {
	if len(set.members) == 0 {
		return nil
	}
	versions := make([]string, 0, len(set.members))
	for version := range set.members {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}
