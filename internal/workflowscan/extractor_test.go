package workflowscan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/workflowscan"
)

const matrixWorkflowText = `name: CI
on: push
jobs:
  test:
    runs-on: ubuntu-latest
    strategy:
      matrix:
        python-version:
          # oldest supported
          - "3.9"

          - "3.13.1"
          - "3.14"
    steps:
      - uses: actions/setup-python@v5
        with:
          python-version: ${{ matrix.python-version }}
`

func TestLineExtractorCases(testInstance *testing.T) {
	testCases := []struct {
		name             string
		workflowText     string
		expectedVersions []string
	}{
		{
			name:             "inline_scalar",
			workflowText:     "      with:\n        python-version: \"3.10\"\n",
			expectedVersions: []string{"3.10"},
		},
		{
			name:             "inline_list",
			workflowText:     "        python-version: [\"3.10\", \"3.11\", \"3.14\"]\n",
			expectedVersions: []string{"3.10", "3.11"},
		},
		{
			name:             "matrix_block_with_comments_and_blanks",
			workflowText:     matrixWorkflowText,
			expectedVersions: []string{"3.13.1", "3.9"},
		},
		{
			name:             "block_ends_at_dedent",
			workflowText:     "    python-version:\n      - \"3.8\"\n    node-version:\n      - \"3.9\"\n",
			expectedVersions: []string{"3.8"},
		},
		{
			name:             "threshold_and_above_not_reported",
			workflowText:     "python-version: \"3.14\"\npython-version: \"3.14.1\"\npython-version: \"4.0\"\n",
			expectedVersions: nil,
		},
		{
			name:             "patch_below_threshold_reported",
			workflowText:     "python-version: \"3.13.9\"\n",
			expectedVersions: []string{"3.13.9"},
		},
		{
			name:             "non_numeric_tokens_ignored",
			workflowText:     "python-version: \"3.x\"\npython-version: pypy-3.9\n",
			expectedVersions: []string{"3.9"},
		},
		{
			name:             "no_python_version_key",
			workflowText:     "node-version: \"3.10\"\n",
			expectedVersions: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			extractor := workflowscan.NewLineVersionExtractor()
			require.Equal(testInstance, testCase.expectedVersions, extractor.ExtractLegacyVersions(testCase.workflowText))
		})
	}
}

func TestYAMLExtractorWalksDocuments(testInstance *testing.T) {
	extractor := workflowscan.NewYAMLVersionExtractor()

	versions := extractor.ExtractLegacyVersions(matrixWorkflowText)
	require.Equal(testInstance, []string{"3.13.1", "3.9"}, versions)
}

func TestYAMLExtractorIgnoresUnparsableText(testInstance *testing.T) {
	extractor := workflowscan.NewYAMLVersionExtractor()
	require.Empty(testInstance, extractor.ExtractLegacyVersions("python-version: [unclosed"))
}

func TestExtractorForParserSelection(testInstance *testing.T) {
	require.IsType(testInstance, &workflowscan.YAMLVersionExtractor{}, workflowscan.ExtractorForParser("yaml"))
	require.IsType(testInstance, &workflowscan.LineVersionExtractor{}, workflowscan.ExtractorForParser("line"))
	require.IsType(testInstance, &workflowscan.LineVersionExtractor{}, workflowscan.ExtractorForParser(""))
	require.IsType(testInstance, &workflowscan.LineVersionExtractor{}, workflowscan.ExtractorForParser("unknown"))
}
