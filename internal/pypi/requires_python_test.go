package pypi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequirementAccepts(testInstance *testing.T) {
	testCases := []struct {
		name      string
		specifier string
		expected  bool
	}{
		{name: "simple_lower_bound", specifier: ">=3.8", expected: true},
		{name: "excluding_upper_bound", specifier: ">=3.8, <3.13", expected: false},
		{name: "compatible_release_minor", specifier: "~=3.8", expected: true},
		{name: "compatible_release_patch", specifier: "~=3.13.1", expected: false},
		{name: "double_equals_match", specifier: "==3.14", expected: true},
		{name: "double_equals_mismatch", specifier: "==3.13", expected: false},
		{name: "wildcard_match", specifier: "==3.14.*", expected: true},
		{name: "wildcard_mismatch", specifier: "==3.9.*", expected: false},
		{name: "exclusion_of_other_version", specifier: ">=3.8, !=3.9", expected: true},
		{name: "empty_specifier", specifier: "", expected: false},
		{name: "unparsable_specifier", specifier: ">=banana", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, requirementAccepts(testCase.specifier, "3.14"))
		})
	}
}
