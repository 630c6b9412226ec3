package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/pkg/logger"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("OPSBOARD_CONFIG", "")
	t.Setenv("DATA_BACKEND", "memory")

	var out bytes.Buffer
	root := newRootCmd(logger.Discard())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportPrintsEmptyDashboard(t *testing.T) {
	out, err := runRoot(t, "report", "--unit", "6a8f4f1e-3b1c-4a59-9f43-1c0e0a1b2c3d", "--period", "ytd")
	require.NoError(t, err)

	var payload struct {
		Period      string `json:"period"`
		Granularity string `json:"granularity"`
		Summary     struct {
			Count int `json:"count"`
		} `json:"summary"`
		SeminarProfitability []json.RawMessage `json:"seminar_profitability"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "ytd", payload.Period)
	assert.Equal(t, "monthly", payload.Granularity)
	assert.Zero(t, payload.Summary.Count)
	assert.Empty(t, payload.SeminarProfitability)
}

func TestReportRejectsBadFlags(t *testing.T) {
	_, err := runRoot(t, "report", "--unit", "u-1", "--period", "quarter")
	assert.Error(t, err)

	_, err = runRoot(t, "report", "--unit", "u-1", "--granularity", "hourly")
	assert.Error(t, err)

	_, err = runRoot(t, "report")
	assert.Error(t, err)
}

func TestMigrateMemoryBackendIsNoop(t *testing.T) {
	_, err := runRoot(t, "migrate")
	assert.NoError(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
