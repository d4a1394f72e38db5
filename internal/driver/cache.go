package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"weft/internal/project"
)

const stampSchemaVersion uint16 = 1

// stampPayload records what an artifact on disk was built from. A build
// whose digest matches the stamp skips rewriting the artifact.
type stampPayload struct {
	Schema   uint16
	Library  string
	Digest   project.Digest
	Artifact string
}

// Cache tracks per-library build stamps under the output directory.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache initializes the stamp directory under outDir.
func OpenCache(outDir string) (*Cache, error) {
	dir := filepath.Join(outDir, ".stamps")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(library string) string {
	return filepath.Join(c.dir, library+".stamp")
}

// Fresh reports whether library's artifact was built from exactly this
// digest and is still present. On a hit it returns the artifact path.
// Any unreadable or mismatched stamp is a miss.
func (c *Cache) Fresh(library string, digest project.Digest) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(library))
	if err != nil {
		return "", false
	}
	defer func() {
		_ = f.Close()
	}()

	var stamp stampPayload
	if err := msgpack.NewDecoder(f).Decode(&stamp); err != nil {
		return "", false
	}
	if stamp.Schema != stampSchemaVersion || stamp.Library != library || stamp.Digest != digest {
		return "", false
	}
	if _, err := os.Stat(stamp.Artifact); err != nil {
		return "", false
	}
	return stamp.Artifact, true
}

// Record stamps library's artifact with the digest it was built from.
// The stamp is replaced atomically so a crash never leaves a torn one.
func (c *Cache) Record(library string, digest project.Digest, artifact string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(library)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	stamp := stampPayload{
		Schema:   stampSchemaVersion,
		Library:  library,
		Digest:   digest,
		Artifact: artifact,
	}
	if err := msgpack.NewEncoder(f).Encode(&stamp); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Drop forgets one library's stamp. Absent stamps are fine.
func (c *Cache) Drop(library string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.pathFor(library))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
