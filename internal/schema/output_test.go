package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logonlog/internal/core"
	"logonlog/internal/record"
)

func TestRecordOutputAppends(t *testing.T) {
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("AEST", 10*60*60))
	ro := NewRecordOutput(record.Logon{Username: "jane", Time: at}, 3, time.Minute, []string{"identity"}, nil, at)
	ro.AddAppend("workstation", "/logs/w.xlsx", nil)
	ro.AddAppend("user", "/logs/u.xlsx", errors.New("share offline"))

	data, err := json.Marshal(ro)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "record", got["command"])
	assert.Equal(t, "1m0s", got["collect_timeout"])
	assert.Equal(t, "2023-12-31T22:00:00Z", got["timestamp_utc"])

	appends := got["appends"].([]any)
	require.Len(t, appends, 2)
	assert.Equal(t, true, appends[0].(map[string]any)["ok"])
	assert.NotContains(t, appends[0].(map[string]any), "error")
	assert.Equal(t, "share offline", appends[1].(map[string]any)["error"])
}

func TestDumpOutputEmpty(t *testing.T) {
	data, err := json.Marshal(NewDumpOutput("x.xlsx", "user", nil, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"dump","path":"x.xlsx","kind":"user","count":0,"dropped":2,"records":[]}`, string(data))
}

func TestArchiveOutputSince(t *testing.T) {
	meta := &core.PackageMetadata{Path: "out.tar.gz", FileCount: 2, BytesWritten: 10}
	ao := NewArchiveOutput("/logs", meta, false, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	ao.SetSince("7d", "2024-03-02T00:00:00Z")

	data, err := json.Marshal(ao)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"command": "archive",
		"root": "/logs",
		"archive_path": "out.tar.gz",
		"encrypted": false,
		"age_recipient_set": false,
		"file_count": 2,
		"bytes_written": 10,
		"timestamp_utc": "2024-03-09T00:00:00Z",
		"since": "7d",
		"since_normalized_utc": "2024-03-02T00:00:00Z"
	}`, string(data))
}
