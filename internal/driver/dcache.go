package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/project"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// Increment when the payload format changes; stale entries then miss.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores per-run check artifacts keyed by input digests.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedNote is a diagnostic note with its span flattened to a path
// plus byte offsets; file IDs are not stable between runs.
type CachedNote struct {
	Message string
	Path    string
	Start   uint32
	End     uint32
}

// CachedDiag is one diagnostic flattened for storage.
type CachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Path     string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

// DiskPayload is the cached outcome of one full check run.
type DiskPayload struct {
	Schema      uint16
	Package     string
	Kind        uint8
	InputPaths  []string
	InputHashes []project.Digest
	Diags       []CachedDiag
	HadErrors   bool
	// Instances counts the scheduled monomorphic instances, kept so a
	// cache hit can still report pipeline summary numbers.
	Instances int
}

// OpenDiskCache initializes the cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes the cache in an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// A "runs" subdirectory keeps the cache root listable.
	return filepath.Join(c.dir, "runs", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes a payload.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; ok is false on miss or schema mismatch.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates every entry, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// runKey derives the cache key for one pipeline run: schema and package
// identity first, then every input digest in sorted path order.
func runKey(pkg string, kind uint8, inputs []loadedTree) project.Digest {
	h := sha256.New()
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[:2], diskCacheSchemaVersion)
	hdr[2] = kind
	h.Write(hdr[:3])
	h.Write([]byte(pkg))
	for _, in := range inputs {
		h.Write([]byte(in.Path))
		h.Write(in.Digest[:])
	}
	var out project.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// flattenDiags converts bag contents to their storable form.
func flattenDiags(bag *diag.Bag, fs *source.FileSet) []CachedDiag {
	items := bag.Items()
	if len(items) == 0 {
		return nil
	}
	out := make([]CachedDiag, 0, len(items))
	for _, d := range items {
		cd := CachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Path:     pathOf(fs, d.Primary),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{
				Message: n.Msg,
				Path:    pathOf(fs, n.Span),
				Start:   n.Span.Start,
				End:     n.Span.End,
			})
		}
		out = append(out, cd)
	}
	return out
}

// replayDiags rebuilds bag contents from storage, remapping paths onto
// the current run's file IDs.
func replayDiags(diags []CachedDiag, bag *diag.Bag, fs *source.FileSet) {
	for _, cd := range diags {
		d := diag.New(
			diag.Severity(cd.Severity),
			diag.Code(cd.Code),
			spanOf(fs, cd.Path, cd.Start, cd.End),
			cd.Message,
		)
		for _, n := range cd.Notes {
			d = d.WithNote(spanOf(fs, n.Path, n.Start, n.End), n.Message)
		}
		bag.Add(d)
	}
}

func pathOf(fs *source.FileSet, sp source.Span) string {
	if fs == nil || sp == (source.Span{}) {
		return ""
	}
	if f := fs.Get(sp.File); f != nil {
		return f.Path
	}
	return ""
}

func spanOf(fs *source.FileSet, path string, start, end uint32) source.Span {
	if fs == nil || path == "" {
		return source.Span{}
	}
	if f, ok := fs.GetByPath(path); ok {
		return source.Span{File: f.ID, Start: start, End: end}
	}
	return source.Span{}
}
