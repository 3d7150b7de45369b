// Package ledger appends logon records to their daily log documents.
//
// An append reads the whole document, merges the new record in, sorts
// newest first and rewrites the document. Appends to the same path within
// one process are serialised; appends from different processes are not.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"logonlog/internal/metrics"
	"logonlog/internal/record"
	"logonlog/internal/sheet"
)

// ErrCanceled is returned when the context ends before the write phase.
var ErrCanceled = errors.New("append canceled")

// Engine performs appends. The zero value is not usable; call New.
type Engine struct {
	loc     *time.Location
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

// New returns an Engine that reads and writes timestamps in loc. The
// logger and metrics may be nil.
func New(loc *time.Location, logger *zap.SugaredLogger, m *metrics.Metrics) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		loc:     loc,
		logger:  logger,
		metrics: m,
		paths:   make(map[string]*sync.Mutex),
	}
}

// DailyName returns the logical document name for a log kind on day, in
// day's own location: "{kind}_log_{YYYY-MM-DD}".
func DailyName(kind string, day time.Time) string {
	return fmt.Sprintf("%s_log_%s", kind, day.Format("2006-01-02"))
}

// Path resolves the document path for a logical name under root.
func Path(root, name string) string {
	return filepath.Join(root, name+sheet.Ext)
}

// Append adds rec to the document root/name.xlsx, creating the document
// (and root itself, one level deep) when missing.
func (e *Engine) Append(ctx context.Context, root, name string, rec record.Logon, schema record.Schema) error {
	start := time.Now()
	rows, err := e.append(ctx, Path(root, name), rec, schema)
	e.metrics.ObserveAppend(schema.Name(), rows, time.Since(start), err)
	return err
}

func (e *Engine) append(ctx context.Context, path string, rec record.Logon, schema record.Schema) (int, error) {
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCanceled, path, err)
	}

	existing, dropped, err := sheet.ReadCounted(path, schema, e.loc)
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		e.logger.Warnw("Dropped unparseable rows", "path", path, "dropped", dropped)
		e.metrics.ObserveDropped(schema.Name(), dropped)
	}

	merged := Merge(existing, rec, schema)
	e.logger.Debugw("Merged log document", "path", path, "existing", len(existing), "rows", len(merged))

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCanceled, path, err)
	}

	if err := sheet.Write(path, schema, merged, e.loc); err != nil {
		return 0, err
	}

	e.logger.Infow("Appended logon record", "kind", schema.Name(), "path", path, "rows", len(merged))
	return len(merged), nil
}

// Merge returns existing plus rec, newest first. Records sharing a
// timestamp keep their relative order, with rec after the existing ones.
func Merge(existing []record.Logon, rec record.Logon, schema record.Schema) []record.Logon {
	merged := make([]record.Logon, 0, len(existing)+1)
	merged = append(merged, existing...)
	merged = append(merged, rec)
	slices.SortStableFunc(merged, func(a, b record.Logon) int {
		return schema.Timestamp(b).Compare(schema.Timestamp(a))
	})
	return merged
}

// lockFor returns the mutex guarding path, creating it on first use.
func (e *Engine) lockFor(path string) *sync.Mutex {
	key := filepath.Clean(path)

	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.paths[key]
	if !ok {
		l = &sync.Mutex{}
		e.paths[key] = l
	}
	return l
}
