package memory

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum        = "KVTMEM\x00\x00" // File format identifier
	snapshotVersion = 1                // Snapshot format version
)

// snapshot is the gob encoded body of a snapshot file
type snapshot struct {
	Strings map[string][]byte
	Lists   map[string][][]byte
	Sets    map[string][][]byte
	Hashes  map[string][]connection.RawEntry
	ZSets   map[string]map[string]float64
}

// Save writes a snapshot of the keyspace to w.
// The keyspace stays readable while the snapshot is taken.
func (f *ConnectionFactory) Save(w io.Writer) error {
	snap := f.takeSnapshot()

	bw := bufio.NewWriter(w)

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(snapshotVersion)); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(snap); err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	return bw.Flush()
}

// Load replaces the keyspace with the snapshot read from r
func (f *ConnectionFactory) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != snapshotVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, snapshotVersion)
	}

	var snap snapshot
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return fmt.Errorf("could not decode snapshot: %w", err)
	}

	f.restoreSnapshot(snap)
	return nil
}

// SaveFile writes a snapshot to path. The file is replaced atomically.
func (f *ConnectionFactory) SaveFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := f.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	Logger.Debugf("saved %d keys to %s", f.DBSize(), path)
	return nil
}

// LoadFile loads the snapshot at path. A missing file leaves the keyspace unchanged.
func (f *ConnectionFactory) LoadFile(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := f.Load(file); err != nil {
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	Logger.Debugf("loaded %d keys from %s", f.DBSize(), path)
	return nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

func (f *ConnectionFactory) takeSnapshot() snapshot {
	t := f.ks.mu.RLock()
	defer f.ks.mu.RUnlock(t)

	snap := snapshot{
		Strings: make(map[string][]byte),
		Lists:   make(map[string][][]byte),
		Sets:    make(map[string][][]byte),
		Hashes:  make(map[string][]connection.RawEntry),
		ZSets:   make(map[string]map[string]float64),
	}
	for key, v := range f.ks.data {
		switch v.typ {
		case typeString:
			snap.Strings[key] = clone(v.str)
		case typeList:
			snap.Lists[key] = cloneAll(v.list)
		case typeSet:
			snap.Sets[key] = cloneAll(v.set.members)
		case typeHash:
			entries := make([]connection.RawEntry, 0, v.hash.size())
			for _, field := range v.hash.fields {
				val, _ := v.hash.get(field)
				entries = append(entries, connection.RawEntry{Key: clone(field), Value: clone(val)})
			}
			snap.Hashes[key] = entries
		case typeZSet:
			z := make(map[string]float64, len(v.zset))
			for m, score := range v.zset {
				z[m] = score
			}
			snap.ZSets[key] = z
		}
	}
	return snap
}

func (f *ConnectionFactory) restoreSnapshot(snap snapshot) {
	data := make(map[string]*value)
	for key, str := range snap.Strings {
		data[key] = &value{typ: typeString, str: clone(str)}
	}
	for key, list := range snap.Lists {
		data[key] = &value{typ: typeList, list: cloneAll(list)}
	}
	for key, members := range snap.Sets {
		s := newOrderedSet()
		for _, m := range members {
			s.add(m)
		}
		data[key] = &value{typ: typeSet, set: s}
	}
	for key, entries := range snap.Hashes {
		h := newOrderedHash()
		for _, e := range entries {
			h.put(e.Key, e.Value)
		}
		data[key] = &value{typ: typeHash, hash: h}
	}
	for key, z := range snap.ZSets {
		data[key] = &value{typ: typeZSet, zset: z}
	}

	f.ks.mu.Lock()
	defer f.ks.mu.Unlock()
	f.ks.data = data
	f.ks.signalLocked()
}
