package pypi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	compatibleReleaseOperatorConstant = "~="
	doubleEqualsOperatorConstant      = "=="
	arbitraryEqualsOperatorConstant   = "==="
	clauseSeparatorConstant           = ","
	versionSegmentSeparatorConstant   = "."
	lowerBoundTemplateConstant        = ">=%s"
	upperBoundTemplateConstant        = "<%s"
)

// requirementAccepts reports whether a PEP 440 requires-python specifier admits the
// given version. PEP 440 forms with no semver equivalent (`~=`, `==X.Y.*`) are
// normalized before constraint parsing; specifiers that still fail to parse answer false.
func requirementAccepts(specifier string, version string) bool {
	trimmedSpecifier := strings.TrimSpace(specifier)
	if len(trimmedSpecifier) == 0 {
		return false
	}

	clauses := strings.Split(trimmedSpecifier, clauseSeparatorConstant)
	translatedClauses := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		trimmedClause := strings.TrimSpace(clause)
		if len(trimmedClause) == 0 {
			continue
		}
		translatedClause, translationError := translateClause(trimmedClause)
		if translationError != nil {
			return false
		}
		translatedClauses = append(translatedClauses, translatedClause)
	}
	if len(translatedClauses) == 0 {
		return false
	}

	constraintSet, constraintError := semver.NewConstraint(strings.Join(translatedClauses, clauseSeparatorConstant+" "))
	if constraintError != nil {
		return false
	}
	candidateVersion, versionError := semver.NewVersion(version)
	if versionError != nil {
		return false
	}
	return constraintSet.Check(candidateVersion)
}

// translateClause rewrites one PEP 440 clause into semver constraint syntax.
func translateClause(clause string) (string, error) {
	if strings.HasPrefix(clause, compatibleReleaseOperatorConstant) {
		return translateCompatibleRelease(strings.TrimSpace(clause[len(compatibleReleaseOperatorConstant):]))
	}
	if strings.HasPrefix(clause, arbitraryEqualsOperatorConstant) {
		return "=" + strings.TrimSpace(clause[len(arbitraryEqualsOperatorConstant):]), nil
	}
	if strings.HasPrefix(clause, doubleEqualsOperatorConstant) {
		return "=" + strings.TrimSpace(clause[len(doubleEqualsOperatorConstant):]), nil
	}
	return clause, nil
}

// translateCompatibleRelease maps `~=X.Y` to >=X.Y,<X+1 and `~=X.Y.Z` to >=X.Y.Z,<X.Y+1.
func translateCompatibleRelease(baseVersion string) (string, error) {
	segments := strings.Split(baseVersion, versionSegmentSeparatorConstant)
	if len(segments) < 2 {
		return "", fmt.Errorf("compatible release clause needs at least two segments: %q", baseVersion)
	}

	bumpIndex := len(segments) - 2
	bumpedValue, parseError := strconv.Atoi(segments[bumpIndex])
	if parseError != nil {
		return "", fmt.Errorf("compatible release clause segment %q is not numeric", segments[bumpIndex])
	}

	upperSegments := make([]string, bumpIndex+1)
	copy(upperSegments, segments[:bumpIndex])
	upperSegments[bumpIndex] = strconv.Itoa(bumpedValue + 1)

	lowerBound := fmt.Sprintf(lowerBoundTemplateConstant, baseVersion)
	upperBound := fmt.Sprintf(upperBoundTemplateConstant, strings.Join(upperSegments, versionSegmentSeparatorConstant))
	return lowerBound + clauseSeparatorConstant + " " + upperBound, nil
}
