package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ntree/internal/dataset"
	"github.com/san-kum/ntree/internal/partition"
	"github.com/san-kum/ntree/internal/stats"
)

const (
	metadataFile = "metadata.json"
	objectsFile  = "objects.csv"
	nodesFile    = "nodes.csv"
)

type Store struct {
	baseDir string
	newID   func() string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, newID: uuid.NewString}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SnapshotMetadata struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Timestamp time.Time     `json:"timestamp"`
	Center    []float64     `json:"center"`
	Width     float64       `json:"width"`
	MaxDepth  int           `json:"max_depth"`
	Summary   stats.Summary `json:"summary"`
}

// Save writes a snapshot directory holding the metadata, the object set and
// the node table in traversal order. maxDepth is the limit the tree was
// built with, recorded so Rebuild reproduces the same tree.
func (s *Store) Save(name string, tree *partition.Tree, maxDepth int) (string, error) {
	id := s.newID()
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	region := tree.Region()
	meta := SnapshotMetadata{
		ID:        id,
		Name:      name,
		Timestamp: time.Now(),
		Center:    region.Center,
		Width:     region.Width,
		MaxDepth:  maxDepth,
		Summary:   stats.Summarize(tree),
	}

	if err := writeSnapshot(dir, meta, tree); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return id, nil
}

func writeSnapshot(dir string, meta SnapshotMetadata, tree *partition.Tree) error {
	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	if err := dataset.SaveCSV(filepath.Join(dir, objectsFile), tree.Objects()); err != nil {
		return err
	}
	return writeNodes(filepath.Join(dir, nodesFile), tree)
}

func writeNodes(path string, tree *partition.Tree) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)

	header := []string{"depth", "kind", "count", "width"}
	for a := 0; a < tree.Dim(); a++ {
		header = append(header, fmt.Sprintf("c%d", a))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	var werr error
	tree.Walk(func(n *partition.Node) bool {
		row := []string{
			strconv.Itoa(n.Depth()),
			n.Kind().String(),
			strconv.Itoa(n.Len()),
			strconv.FormatFloat(n.Width(), 'g', -1, 64),
		}
		for _, v := range n.Center() {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		werr = w.Write(row)
		return werr == nil
	})
	if werr != nil {
		return werr
	}

	w.Flush()
	return w.Error()
}

// List returns snapshots oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotMetadata{}, nil
		}
		return nil, err
	}

	snaps := make([]SnapshotMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, *meta)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps, nil
}

func (s *Store) Load(id string) (*SnapshotMetadata, error) {
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadObjects(id string) (partition.ObjectSet, error) {
	dir, err := s.dir(id)
	if err != nil {
		return partition.ObjectSet{}, err
	}
	return dataset.LoadCSV(filepath.Join(dir, objectsFile))
}

// Rebuild reconstructs the tree of a snapshot from its objects and recorded
// root region.
func (s *Store) Rebuild(id string, opts ...partition.Option) (*partition.Tree, *SnapshotMetadata, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, nil, err
	}
	objs, err := s.LoadObjects(id)
	if err != nil {
		return nil, nil, err
	}

	base := []partition.Option{
		partition.WithCenter(meta.Center),
		partition.WithWidth(meta.Width),
	}
	if meta.MaxDepth > 0 {
		base = append(base, partition.WithMaxDepth(meta.MaxDepth))
	}
	tree, err := partition.New(objs, append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return tree, meta, nil
}

func (s *Store) dir(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("storage: invalid snapshot id %q: %w", id, err)
	}
	return filepath.Join(s.baseDir, id), nil
}
