// Package schema defines the JSON documents printed by logonlog commands.
package schema

import (
	"time"

	"logonlog/internal/core"
	"logonlog/internal/record"
)

// AppendOutput reports one append to a daily document.
type AppendOutput struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RecordOutput is printed by the record command.
type RecordOutput struct {
	Command          string         `json:"command"`
	Record           record.Logon   `json:"record"`
	Parallelism      int            `json:"parallelism"`
	CollectTimeout   string         `json:"collect_timeout"`
	CollectorsRun    []string       `json:"collectors_run"`
	CollectorResults []core.Result  `json:"collector_results"`
	Appends          []AppendOutput `json:"appends"`
	TimestampUTC     string         `json:"timestamp_utc"`
}

// NewRecordOutput creates a RecordOutput for rec.
func NewRecordOutput(
	rec record.Logon,
	parallelism int,
	collectTimeout time.Duration,
	collectorsRun []string,
	collectorResults []core.Result,
	timestamp time.Time,
) *RecordOutput {
	return &RecordOutput{
		Command:          "record",
		Record:           rec,
		Parallelism:      parallelism,
		CollectTimeout:   collectTimeout.String(),
		CollectorsRun:    collectorsRun,
		CollectorResults: collectorResults,
		Appends:          []AppendOutput{},
		TimestampUTC:     timestamp.UTC().Format(time.RFC3339),
	}
}

// AddAppend records the outcome of one append.
func (ro *RecordOutput) AddAppend(kind, path string, err error) {
	out := AppendOutput{Kind: kind, Path: path, OK: err == nil}
	if err != nil {
		out.Error = err.Error()
	}
	ro.Appends = append(ro.Appends, out)
}

// DumpOutput is printed by the dump command.
type DumpOutput struct {
	Command string         `json:"command"`
	Path    string         `json:"path"`
	Kind    string         `json:"kind"`
	Count   int            `json:"count"`
	Dropped int            `json:"dropped"`
	Records []record.Logon `json:"records"`
}

// NewDumpOutput creates a DumpOutput. A nil records slice prints as [].
func NewDumpOutput(path, kind string, records []record.Logon, dropped int) *DumpOutput {
	if records == nil {
		records = []record.Logon{}
	}
	return &DumpOutput{
		Command: "dump",
		Path:    path,
		Kind:    kind,
		Count:   len(records),
		Dropped: dropped,
		Records: records,
	}
}

// ArchiveOutput is printed by the archive command.
type ArchiveOutput struct {
	Command         string `json:"command"`
	Root            string `json:"root"`
	ArchivePath     string `json:"archive_path"`
	Encrypted       bool   `json:"encrypted"`
	AgeRecipientSet bool   `json:"age_recipient_set"`
	FileCount       int    `json:"file_count"`
	BytesWritten    int64  `json:"bytes_written"`
	TimestampUTC    string `json:"timestamp_utc"`

	Since              string `json:"since,omitempty"`
	SinceNormalizedUTC string `json:"since_normalized_utc,omitempty"`
}

// NewArchiveOutput creates an ArchiveOutput from the bundle metadata.
func NewArchiveOutput(root string, meta *core.PackageMetadata, ageRecipientSet bool, timestamp time.Time) *ArchiveOutput {
	return &ArchiveOutput{
		Command:         "archive",
		Root:            root,
		ArchivePath:     meta.Path,
		Encrypted:       meta.Encrypted,
		AgeRecipientSet: ageRecipientSet,
		FileCount:       meta.FileCount,
		BytesWritten:    meta.BytesWritten,
		TimestampUTC:    timestamp.UTC().Format(time.RFC3339),
	}
}

// SetSince sets the since-related fields for the output.
func (ao *ArchiveOutput) SetSince(since, sinceNormalized string) {
	if since != "" {
		ao.Since = since
	}
	if sinceNormalized != "" {
		ao.SinceNormalizedUTC = sinceNormalized
	}
}
