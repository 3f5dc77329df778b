package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cytodash/test/integration/harness"
)

func TestSettingsMeta(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	t.Run("table", func(t *testing.T) {
		result := harness.RunCommand(t, env, "settings")
		harness.AssertSuccess(t, result)
		harness.AssertStdoutContains(t, result, "Settings file:")
		harness.AssertStdoutContains(t, result, "cohort.treatment")
		harness.AssertStdoutContains(t, result, "Precedence:")
	})

	t.Run("json", func(t *testing.T) {
		result := harness.RunCommand(t, env, "settings", "meta", "--format", "json")
		harness.AssertSuccess(t, result)
		var meta map[string]any
		harness.AssertValidJSON(t, result, &meta)
		assert.Contains(t, meta, "settings_file")
		assert.Contains(t, meta, "format")
	})

	t.Run("does not create the store", func(t *testing.T) {
		harness.RunCommand(t, env, "settings")
		assert.NoFileExists(t, env.DBPath())
	})
}

func TestVersion(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	result := harness.RunCommand(t, env, "--version")
	harness.AssertSuccess(t, result)
	assert.NotEmpty(t, result.Stdout)
}
