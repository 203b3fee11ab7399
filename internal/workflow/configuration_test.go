package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/workflow"
)

func TestConfigurationValidate(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration workflow.Configuration
		expectedError any
	}{
		{
			name:          "empty_defaults_to_labels",
			configuration: workflow.Configuration{},
		},
		{
			name:          "labels_accepted",
			configuration: workflow.Configuration{StatusMethod: "labels"},
		},
		{
			name:          "status_field_rejected",
			configuration: workflow.Configuration{StatusMethod: "status_field"},
			expectedError: &workflow.UnsupportedStatusMethodError{},
		},
		{
			name: "unknown_required_sections_type_rejected",
			configuration: workflow.Configuration{
				RequiredSections: map[string][]string{"story": {"Summary"}},
			},
			expectedError: &workflow.UnknownIssueTypeError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			validationError := testCase.configuration.Validate()
			if testCase.expectedError != nil {
				require.ErrorAs(subtestInstance, validationError, testCase.expectedError)
				return
			}
			require.NoError(subtestInstance, validationError)
		})
	}
}

func TestRequiredSectionsForType(testInstance *testing.T) {
	defaultConfiguration := workflow.Configuration{}
	require.Equal(testInstance,
		[]string{"Summary", "Acceptance Criteria", "Milestone Plan"},
		defaultConfiguration.RequiredSectionsForType(workflow.IssueTypeEpic))
	require.Equal(testInstance,
		[]string{"Summary", "Acceptance Criteria", "Implementation Plan"},
		defaultConfiguration.RequiredSectionsForType(workflow.IssueTypeTask))
	require.Equal(testInstance,
		[]string{"Summary", "Acceptance Criteria"},
		defaultConfiguration.RequiredSectionsForType(workflow.IssueTypeSubtask))

	overriddenConfiguration := workflow.Configuration{
		RequiredSections: map[string][]string{"task": {"Summary", "Risks"}},
	}
	require.Equal(testInstance,
		[]string{"Summary", "Risks"},
		overriddenConfiguration.RequiredSectionsForType(workflow.IssueTypeTask))
	require.Equal(testInstance,
		[]string{"Summary", "Acceptance Criteria"},
		overriddenConfiguration.RequiredSectionsForType(workflow.IssueTypeSubtask))
}
