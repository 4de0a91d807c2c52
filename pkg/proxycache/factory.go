package proxycache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/janus/pkg/proxygen"
)

var factoryLog = commonlog.GetLogger("janus.cache")

// Factory generates proxy artifacts on demand and reuses them by
// fingerprint: first from an in-memory cache, then from the optional
// store, generating only on a double miss. Safe for concurrent use.
type Factory struct {
	mu      sync.Mutex
	cache   map[string][]byte
	store   *Store
	dumpDir string
}

// NewFactory returns a factory with an empty cache and no store.
func NewFactory() *Factory {
	return &Factory{cache: make(map[string][]byte)}
}

// SetStore attaches a persistent artifact store. Pass nil to detach.
func (f *Factory) SetStore(s *Store) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store = s
}

// SetDumpDir enables dumping freshly generated artifacts to dir for
// inspection; empty disables.
func (f *Factory) SetDumpDir(dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dumpDir = dir
}

// Artifact returns the class-file bytes for the given generation
// request, generating them if no cached or stored copy exists.
func (f *Factory) Artifact(name string, flags uint16, contracts []*proxygen.Contract) ([]byte, error) {
	fp := Fingerprint(name, flags, contracts)

	f.mu.Lock()
	defer f.mu.Unlock()

	if data, ok := f.cache[fp]; ok {
		return data, nil
	}
	if f.store != nil {
		data, _, err := f.store.Get(fp)
		if err == nil {
			f.cache[fp] = data
			return data, nil
		}
		if !errors.Is(err, ErrArtifactNotFound) {
			factoryLog.Errorf("store lookup for %s failed: %s", name, err.Error())
		}
	}

	data, err := proxygen.Generate(name, flags, contracts)
	if err != nil {
		return nil, err
	}
	f.cache[fp] = data

	if f.store != nil {
		md := Metadata{
			ClassName:  name,
			Flags:      flags,
			Contracts:  contractNames(contracts),
			Signatures: contractSignatures(contracts),
			CreatedAt:  time.Now().UTC(),
		}
		if err := f.store.Put(fp, data, md); err != nil {
			factoryLog.Errorf("storing %s failed: %s", name, err.Error())
		}
	}
	proxygen.Dump(f.dumpDir, name, data)
	return data, nil
}

// Fingerprint derives the cache key for a generation request: a SHA-256
// over the class name, flags, and the ordered contract names and method
// signatures. Identical requests always fingerprint identically.
func Fingerprint(name string, flags uint16, contracts []*proxygen.Contract) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	var fb [2]byte
	binary.BigEndian.PutUint16(fb[:], flags)
	h.Write(fb[:])
	for _, c := range contracts {
		if c == nil {
			continue
		}
		h.Write([]byte{0})
		h.Write([]byte(c.Name))
		for i := range c.Methods {
			h.Write([]byte{1})
			h.Write([]byte(c.Methods[i].Signature()))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func contractNames(contracts []*proxygen.Contract) []string {
	names := make([]string, 0, len(contracts))
	for _, c := range contracts {
		if c != nil {
			names = append(names, c.Name)
		}
	}
	return names
}

func contractSignatures(contracts []*proxygen.Contract) []string {
	var sigs []string
	for _, c := range contracts {
		if c == nil {
			continue
		}
		for i := range c.Methods {
			sigs = append(sigs, c.Methods[i].Signature())
		}
	}
	return sigs
}
