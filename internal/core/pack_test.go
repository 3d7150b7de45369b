package core

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func listTar(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	gz, err := gzip.NewReader(r)
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	entries := make(map[string]string)
	for {
		h, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[h.Name] = string(body)
	}
	return entries
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fixture(t *testing.T) (root string, old, recent time.Time) {
	root = t.TempDir()
	recent = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	old = recent.AddDate(0, 0, -30)
	writeFile(t, filepath.Join(root, "workstation_log_2024-03-09.xlsx"), "ws", recent)
	writeFile(t, filepath.Join(root, "2024", "user_log_2024-02-08.xlsx"), "user", old)
	writeFile(t, filepath.Join(root, "notes.txt"), "skip me", recent)
	return root, old, recent
}

func TestBundleLogs(t *testing.T) {
	root, _, recent := fixture(t)
	out := t.TempDir()

	meta, err := BundleLogs(context.Background(), root, out, "Computer NEW", recent, time.Time{}, "")
	require.NoError(t, err)
	assert.False(t, meta.Encrypted)
	assert.Equal(t, 2, meta.FileCount)
	assert.Equal(t, filepath.Join(out, "logonlog_computer_new_20240309T100000Z.tar.gz"), meta.Path)

	f, err := os.Open(meta.Path)
	require.NoError(t, err)
	defer f.Close()
	entries := listTar(t, f)
	assert.Equal(t, []string{"logs/2024/user_log_2024-02-08.xlsx", "logs/workstation_log_2024-03-09.xlsx"}, keys(entries))
	assert.Equal(t, "ws", entries["logs/workstation_log_2024-03-09.xlsx"])
}

func TestBundleLogsSince(t *testing.T) {
	root, _, recent := fixture(t)

	meta, err := BundleLogs(context.Background(), root, t.TempDir(), "logs", recent, recent.AddDate(0, 0, -7), "")
	require.NoError(t, err)
	assert.Equal(t, 1, meta.FileCount)

	f, err := os.Open(meta.Path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"logs/workstation_log_2024-03-09.xlsx"}, keys(listTar(t, f)))
}

func TestBundleLogsEncrypted(t *testing.T) {
	root, _, recent := fixture(t)
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	meta, err := BundleLogs(context.Background(), root, t.TempDir(), "logs", recent, time.Time{}, id.Recipient().String())
	require.NoError(t, err)
	assert.True(t, meta.Encrypted)
	assert.Equal(t, ".age", filepath.Ext(meta.Path))

	f, err := os.Open(meta.Path)
	require.NoError(t, err)
	defer f.Close()
	plain, err := age.Decrypt(f, id)
	require.NoError(t, err)
	assert.Len(t, listTar(t, plain), 2)
}

func TestBundleLogsBadKeyLeavesNothing(t *testing.T) {
	root, _, recent := fixture(t)
	out := t.TempDir()

	_, err := BundleLogs(context.Background(), root, out, "logs", recent, time.Time{}, "age1notakey")
	require.Error(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBundleLogsCanceled(t *testing.T) {
	root, _, recent := fixture(t)
	out := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BundleLogs(ctx, root, out, "logs", recent, time.Time{}, "")
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateAgePublicKey(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	assert.NoError(t, ValidateAgePublicKey(id.Recipient().String()))
	assert.Error(t, ValidateAgePublicKey("ssh-ed25519 AAAA"))
	assert.Error(t, ValidateAgePublicKey("age1invalid"))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"ComputerNEW":           "computernew",
		`\\Server\Logs\UserNEW`: "server_logs_usernew",
		"  spaced   out ":       "spaced_out",
		"***":                   "unknown",
		"already_ok-1":          "already_ok-1",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}
