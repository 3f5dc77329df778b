package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cytodash/test/integration/harness"
)

func TestInit(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	t.Run("creates a new store", func(t *testing.T) {
		result := harness.RunCommand(t, env, "init")
		harness.AssertSuccess(t, result)
		harness.AssertStdoutContains(t, result, "Initialized new store")
		assert.FileExists(t, env.DBPath())
	})

	t.Run("refuses an existing store without force", func(t *testing.T) {
		result := harness.RunCommand(t, env, "init")
		harness.AssertFailure(t, result)
		harness.AssertStderrContains(t, result, "--force")
	})

	t.Run("force recreates the store", func(t *testing.T) {
		loadCohort(t, env)

		result := harness.RunCommand(t, env, "init", "--force", "--yes")
		harness.AssertSuccess(t, result)
		harness.AssertStdoutContains(t, result, "Reinitialized store")

		ids := harness.RunCommand(t, env, "query", "ids")
		harness.AssertSuccess(t, ids)
		assert.Empty(t, harness.Lines(ids))
	})
}

func TestDBFlagAndEnv(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	custom := env.Home + "/custom/other.db"

	result := harness.RunCommand(t, env, "--db", custom, "init")
	harness.AssertSuccess(t, result)
	assert.FileExists(t, custom)
	assert.NoFileExists(t, env.DBPath())

	env.SetEnv("CYTODASH_DB", custom)
	result = harness.RunCommand(t, env, "init")
	harness.AssertFailure(t, result)
}

func TestSettingsDBPath(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	custom := env.Home + "/from-settings.db"
	env.WriteSettings(`{"db_path": "` + custom + `"}`)

	result := harness.RunCommand(t, env, "init")
	harness.AssertSuccess(t, result)
	assert.FileExists(t, custom)
}
