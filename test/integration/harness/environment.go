package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment provides an isolated test environment with its own CYTODASH_HOME.
type TestEnvironment struct {
	Home     string
	extraEnv map[string]string
	tb       testing.TB
}

// NewTestEnvironment creates an isolated test environment with a temp CYTODASH_HOME.
// The temp directory is automatically cleaned up when the test completes.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()

	return &TestEnvironment{
		Home:     tb.TempDir(),
		extraEnv: make(map[string]string),
		tb:       tb,
	}
}

// Environ returns environment variables configured for test isolation.
// It filters out CYTODASH_* variables and sets:
//   - CYTODASH_HOME to the temp directory
//   - CYTODASH_DEBUG to empty string (disables debug logging)
func (e *TestEnvironment) Environ() []string {
	env := make([]string, 0, len(os.Environ())+2+len(e.extraEnv))

	for _, kv := range os.Environ() {
		key := strings.SplitN(kv, "=", 2)[0]
		if strings.HasPrefix(key, "CYTODASH_") {
			continue
		}
		if _, overridden := e.extraEnv[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	env = append(env,
		"CYTODASH_HOME="+e.Home,
		"CYTODASH_DEBUG=",
	)

	for k, v := range e.extraEnv {
		env = append(env, k+"="+v)
	}

	return env
}

// DBPath returns the path to the test store.
func (e *TestEnvironment) DBPath() string {
	return filepath.Join(e.Home, "cell-count.db")
}

// CheckpointDir returns the directory checkpoints of the test store are written to.
func (e *TestEnvironment) CheckpointDir() string {
	return filepath.Join(e.Home, "checkpoints")
}

// SetEnv sets an additional environment variable for this test environment.
func (e *TestEnvironment) SetEnv(key, value string) {
	if e.extraEnv == nil {
		e.extraEnv = make(map[string]string)
	}
	e.extraEnv[key] = value
}

// WriteFile writes content to name inside the environment's home and returns the path.
func (e *TestEnvironment) WriteFile(name, content string) string {
	e.tb.Helper()
	path := filepath.Join(e.Home, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.tb.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteSettings writes settings.json into the environment's home.
func (e *TestEnvironment) WriteSettings(content string) {
	e.tb.Helper()
	e.WriteFile("settings.json", content)
}

// CohortCSV is a small six-sample source covering both responses, three
// projects and a non-cohort sample.
const CohortCSV = `project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte
prj1,sbj1,Melanoma,70,F,tr1,y,s1,PBMC,0,100,200,300,400,0
prj1,sbj2,melanoma,61,M,tr1,y,s2,PBMC,0,150,250,300,200,100
prj2,sbj3,melanoma,55,F,tr1,n,s3,PBMC,0,300,100,200,200,200
prj2,sbj4,melanoma,48,M,tr1,n,s4,PBMC,0,350,150,100,300,100
prj3,sbj5,melanoma,66,F,tr2,y,s5,PBMC,0,10,10,10,10,10
prj3,sbj6,carcinoma,52,M,tr1,n,s6,WB,7,20,20,20,20,20
`
