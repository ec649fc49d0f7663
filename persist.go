package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Save pipeline stage identities.
var (
	saveID   = pipz.NewIdentity("save", "Encodes the value and writes it to the file")
	encodeID = pipz.NewIdentity("encode", "Serializes the value with the configured codec")
	writeID  = pipz.NewIdentity("write", "Atomically replaces the file with the encoded bytes")
)

// DefaultFileMode is the permission applied to the file on save.
const DefaultFileMode os.FileMode = 0o644

// validate is the shared struct-tag validator, used when StructValidation is
// enabled.
var validate = validator.New()

// Validator is implemented by values that check their own invariants.
// Loaded values that fail Validate are rejected like undecodable ones.
type Validator interface {
	Validate() error
}

var errIsDir = errors.New("path is a directory")

// newSavePipeline builds encode → write, wrapped by the caller's options.
func (m *Monitor[T]) newSavePipeline(opts []Option[T]) pipz.Chainable[*Request[T]] {
	var terminal pipz.Chainable[*Request[T]] = pipz.NewSequence[*Request[T]](saveID,
		pipz.Apply(encodeID, m.encode),
		pipz.Apply(writeID, m.write),
	)
	return buildPipeline(terminal, opts)
}

// encode serializes the request value. The file is not touched on failure.
func (m *Monitor[T]) encode(_ context.Context, req *Request[T]) (*Request[T], error) {
	data, err := m.codec.Marshal(req.Value)
	if err != nil {
		return req, &EncodeError{Path: req.Path, Err: err}
	}
	req.Data = data
	return req, nil
}

// write replaces the file with the encoded bytes and records its new
// modification time. It holds fileMu for the whole write so save can wait
// out a write that a timeout abandoned.
func (m *Monitor[T]) write(ctx context.Context, req *Request[T]) (*Request[T], error) {
	m.fileMu.Lock()
	defer m.fileMu.Unlock()
	modTime, err := writeFileAtomic(ctx, req.Path, req.Data, m.fileMode)
	if err != nil {
		return req, err
	}
	// Recorded now, not at commit, so a write whose save already gave up
	// is never read back as an external edit.
	m.store.recordModTime(modTime)
	req.ModTime = modTime
	return req, nil
}

// loaded is the outcome of one look at the file.
type loaded[T any] struct {
	missing bool
	skipped bool
	applied bool
	value   T
	modTime time.Time
	size    int
}

// load reconciles the file into the store. A missing file is not an error.
// The value is replaced only when the file is strictly newer than the
// recorded modification time, or when no time is recorded.
func (m *Monitor[T]) load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := m.clock.Now()

	res, err := m.readFile()
	if err != nil {
		return m.fail(ctx, opLoad, err, start)
	}

	switch {
	case res.missing:
		m.transition(ctx, StateMissing)
		capitan.Emit(ctx, FileMissing, KeyPath.Field(m.path))
	case res.skipped:
		capitan.Emit(ctx, FileLoadSkipped,
			KeyPath.Field(m.path),
			KeyModTime.Field(formatModTime(res.modTime)),
		)
	default:
		m.succeed(ctx)
		capitan.Emit(ctx, FileLoaded,
			KeyPath.Field(m.path),
			KeyModTime.Field(formatModTime(res.modTime)),
			KeySize.Field(res.size),
			KeyContentType.Field(m.codec.ContentType()),
		)
	}
	if m.metrics != nil {
		m.metrics.OnLoad(res.applied, m.clock.Since(start))
	}
	if res.applied {
		m.notify(res.value)
	}
	return nil
}

// readFile does the stat, read, decode and reconcile steps of a load under
// writeMu, so a load never observes a save between its rename and its
// reconcile. Hooks run after the lock is released.
//
// If the file is missing and had been mirrored before, the default value is
// restored; otherwise the current value (the default, or a local write whose
// save is still pending) is kept.
func (m *Monitor[T]) readFile() (loaded[T], error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	var res loaded[T]
	rev := m.store.currentRevision()

	info, err := os.Stat(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		res.missing = true
		if _, ok := m.store.lastModified(); ok {
			res.value = clone(m.defaults)
			res.applied = m.store.reconcile(rev, m.defaults, time.Time{}, false)
		}
		return res, nil
	}
	if err != nil {
		return res, &FileSystemError{Op: "stat", Path: m.path, Err: err}
	}
	if info.IsDir() {
		return res, &FileSystemError{Op: "stat", Path: m.path, Err: errIsDir}
	}

	res.modTime = info.ModTime()
	if last, ok := m.store.lastModified(); ok && !res.modTime.After(last) {
		res.skipped = true
		res.modTime = last
		return res, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return res, &FileSystemError{Op: "read", Path: m.path, Err: err}
	}
	res.size = len(data)

	if err := m.codec.Unmarshal(data, &res.value); err != nil {
		return res, &DecodeError{Path: m.path, Err: err}
	}
	if err := m.check(res.value); err != nil {
		return res, &DecodeError{Path: m.path, Err: fmt.Errorf("validation failed: %w", err)}
	}

	res.applied = m.store.reconcile(rev, res.value, res.modTime, true)
	return res, nil
}

// save writes the current value through the save pipeline. Saves are
// serialized so the file always ends up holding the newest snapshot taken.
func (m *Monitor[T]) save(ctx context.Context) error {
	start := m.clock.Now()
	out, changed, err := m.persist(ctx)
	if err != nil {
		return m.fail(ctx, opSave, err, start)
	}

	m.succeed(ctx)
	capitan.Emit(ctx, FileSaved,
		KeyPath.Field(m.path),
		KeyModTime.Field(formatModTime(out.ModTime)),
		KeySize.Field(len(out.Data)),
		KeyContentType.Field(m.codec.ContentType()),
	)
	if m.metrics != nil {
		m.metrics.OnSave(m.clock.Since(start))
	}
	if changed {
		m.notify(out.Value)
	}
	return nil
}

// persist runs the pipeline on a snapshot under writeMu and commits the
// result to the store. It reports whether middleware replaced the value
// and that replacement was kept.
func (m *Monitor[T]) persist(ctx context.Context) (*Request[T], bool, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	value, rev := m.store.snapshot()
	req := &Request[T]{Value: value, Revision: rev, Path: m.path}

	out, err := m.pipeline.Process(ctx, req)

	// A write abandoned by a timeout may still be running; let it finish or
	// back out before another save or load can touch the file.
	m.fileMu.Lock()
	m.fileMu.Unlock() //nolint:staticcheck // Barrier

	if err != nil {
		return nil, false, stageError[T](err)
	}

	applied := m.store.reconcile(rev, out.Value, out.ModTime, true)
	return out, applied && !reflect.DeepEqual(value, out.Value), nil
}

// check runs the value's own Validate method and, if enabled, struct tag
// validation.
func (m *Monitor[T]) check(value T) error {
	if v, ok := any(value).(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if m.structValidation {
		return validate.Struct(value)
	}
	return nil
}

// stageError strips pipz error wrappers so callers see the stage's own
// *EncodeError or *FileSystemError.
func stageError[T any](err error) error {
	for {
		var perr *pipz.Error[*Request[T]]
		if !errors.As(err, &perr) || perr.Err == nil {
			return err
		}
		err = perr.Err
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, creating parent directories as needed. Readers see either
// the old or the new content, never a partial write. It returns the
// modification time of the written content.
// The write is abandoned, leaving the old content, if ctx is done before the
// rename.
func writeFileAtomic(ctx context.Context, path string, data []byte, mode os.FileMode) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return time.Time{}, &FileSystemError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return time.Time{}, &FileSystemError{Op: "create", Path: dir, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return time.Time{}, &FileSystemError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return time.Time{}, &FileSystemError{Op: "sync", Path: tmpName, Err: err}
	}
	info, err := tmp.Stat()
	if err != nil {
		return time.Time{}, &FileSystemError{Op: "stat", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return time.Time{}, &FileSystemError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return time.Time{}, &FileSystemError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return time.Time{}, &FileSystemError{Op: "rename", Path: path, Err: err}
	}
	if dirHandle, err := os.Open(dir); err == nil {
		_ = dirHandle.Sync()
		_ = dirHandle.Close()
	}
	return info.ModTime(), nil
}

func formatModTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
