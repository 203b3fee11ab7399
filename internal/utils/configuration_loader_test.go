package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/utils"
)

const (
	testConfigurationNameConstant             = "ghoo"
	testConfigurationTypeConstant             = "yaml"
	testEnvironmentPrefixConstant             = "GHOOTEST"
	testConfigurationFileNameConstant         = "ghoo.yaml"
	testConfigurationContentConstant          = "common:\n  log_level: debug\nrepository: octocat/hello\n"
	testMalformedConfigurationConstant        = "common: [unterminated\n"
	testDefaultLogLevelConstant               = "info"
	testCommonLogLevelKeyConstant             = "common.log_level"
	testEnvironmentOverrideVariableConstant   = "GHOOTEST_REPOSITORY"
	testEnvironmentOverrideRepositoryConstant = "octocat/overridden"
)

type testLoaderConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Repository string `mapstructure:"repository"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name             string
		configuration    string
		useExplicitPath  bool
		environmentValue string
		expectError      bool
		verify           func(testInstance *testing.T, loaded testLoaderConfiguration, metadata utils.LoadedConfiguration)
	}{
		{
			name:          "file_values_override_defaults",
			configuration: testConfigurationContentConstant,
			verify: func(testInstance *testing.T, loaded testLoaderConfiguration, metadata utils.LoadedConfiguration) {
				require.Equal(testInstance, "debug", loaded.Common.LogLevel)
				require.Equal(testInstance, "octocat/hello", loaded.Repository)
				require.NotEmpty(testInstance, metadata.ConfigFileUsed)
			},
		},
		{
			name:            "explicit_path_used",
			configuration:   testConfigurationContentConstant,
			useExplicitPath: true,
			verify: func(testInstance *testing.T, loaded testLoaderConfiguration, metadata utils.LoadedConfiguration) {
				require.Equal(testInstance, "octocat/hello", loaded.Repository)
			},
		},
		{
			name: "missing_file_applies_defaults",
			verify: func(testInstance *testing.T, loaded testLoaderConfiguration, metadata utils.LoadedConfiguration) {
				require.Equal(testInstance, testDefaultLogLevelConstant, loaded.Common.LogLevel)
				require.Empty(testInstance, metadata.ConfigFileUsed)
			},
		},
		{
			name:          "malformed_file_reports_error",
			configuration: testMalformedConfigurationConstant,
			expectError:   true,
		},
		{
			name:             "environment_overrides_defaults",
			environmentValue: testEnvironmentOverrideRepositoryConstant,
			verify: func(testInstance *testing.T, loaded testLoaderConfiguration, metadata utils.LoadedConfiguration) {
				require.Equal(testInstance, testEnvironmentOverrideRepositoryConstant, loaded.Repository)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			temporaryDirectory := testInstance.TempDir()

			configurationFilePath := ""
			if len(testCase.configuration) > 0 {
				configurationFilePath = filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.configuration), 0o644))
			}

			if len(testCase.environmentValue) > 0 {
				testInstance.Setenv(testEnvironmentOverrideVariableConstant, testCase.environmentValue)
			}

			explicitPath := ""
			searchPaths := []string{temporaryDirectory}
			if testCase.useExplicitPath {
				explicitPath = configurationFilePath
				searchPaths = nil
			}

			loader := utils.NewConfigurationLoader(
				testConfigurationNameConstant,
				testConfigurationTypeConstant,
				testEnvironmentPrefixConstant,
				searchPaths,
			)

			defaultValues := map[string]any{
				testCommonLogLevelKeyConstant: testDefaultLogLevelConstant,
				"repository":                  "",
			}

			var loaded testLoaderConfiguration
			metadata, loadError := loader.LoadConfiguration(explicitPath, defaultValues, &loaded)

			if testCase.expectError {
				require.Error(testInstance, loadError)
				return
			}

			require.NoError(testInstance, loadError)
			require.NotNil(testInstance, testCase.verify)
			testCase.verify(testInstance, loaded, metadata)
		})
	}
}
