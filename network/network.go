// Package network reads, prunes and writes road networks.
package network

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Node is a network vertex.
type Node struct {
	ID    string    `json:"id"`
	Coord orb.Point `json:"coord"`
}

// Link is a directed network edge.
type Link struct {
	ID        string   `json:"id"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Length    float64  `json:"length"`
	Freespeed float64  `json:"freespeed"`
	Capacity  float64  `json:"capacity"`
	Lanes     float64  `json:"lanes"`
	Modes     []string `json:"modes"`
}

// Allows reports whether mode may use l.
func (l *Link) Allows(mode string) bool {
	for _, m := range l.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Network is a set of nodes and the links between them.
type Network struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`
}

// Validate checks that ids are unique and that every link connects known
// nodes.
func (n *Network) Validate() error {
	nodes := make(map[string]struct{}, len(n.Nodes))
	for _, node := range n.Nodes {
		if _, ok := nodes[node.ID]; ok {
			return errors.Errorf("duplicate node %s", node.ID)
		}
		nodes[node.ID] = struct{}{}
	}
	links := make(map[string]struct{}, len(n.Links))
	for _, l := range n.Links {
		if _, ok := links[l.ID]; ok {
			return errors.Errorf("duplicate link %s", l.ID)
		}
		links[l.ID] = struct{}{}
		if _, ok := nodes[l.From]; !ok {
			return errors.Errorf("link %s starts at unknown node %s", l.ID, l.From)
		}
		if _, ok := nodes[l.To]; !ok {
			return errors.Errorf("link %s ends at unknown node %s", l.ID, l.To)
		}
	}
	return nil
}

// RemoveMode removes every link which allows mode and then every node left
// without links. It returns the number of removed links and nodes.
func (n *Network) RemoveMode(mode string) (links, nodes int) {
	kept := n.Links[:0]
	for _, l := range n.Links {
		if l.Allows(mode) {
			links++
			continue
		}
		kept = append(kept, l)
	}
	n.Links = kept

	used := make(map[string]struct{}, len(n.Nodes))
	for _, l := range n.Links {
		used[l.From] = struct{}{}
		used[l.To] = struct{}{}
	}
	keptNodes := n.Nodes[:0]
	for _, node := range n.Nodes {
		if _, ok := used[node.ID]; !ok {
			nodes++
			continue
		}
		keptNodes = append(keptNodes, node)
	}
	n.Nodes = keptNodes
	return links, nodes
}

// Bound returns the bounding box of all nodes.
func (n *Network) Bound() orb.Bound {
	mp := make(orb.MultiPoint, len(n.Nodes))
	for i, node := range n.Nodes {
		mp[i] = node.Coord
	}
	return mp.Bound()
}

// Modes returns the sorted set of modes any link allows.
func (n *Network) Modes() []string {
	seen := make(map[string]struct{})
	for _, l := range n.Links {
		for _, m := range l.Modes {
			seen[m] = struct{}{}
		}
	}
	modes := make([]string, 0, len(seen))
	for m := range seen {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Decode reads a json encoded network from r.
func Decode(r io.Reader) (*Network, error) {
	n := &Network{}
	if err := json.NewDecoder(r).Decode(n); err != nil {
		return nil, errors.Wrap(err, "decoding network")
	}
	if err := n.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating network")
	}
	return n, nil
}

// Encode writes n as json to w.
func Encode(w io.Writer, n *Network) error {
	return errors.Wrap(json.NewEncoder(w).Encode(n), "encoding network")
}

// ReadFile reads the network at path, which is decompressed if its name ends
// in .gz.
func ReadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening network file")
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "decompressing network file")
		}
		defer gz.Close()
		r = gz
	}
	return Decode(r)
}

// WriteFile writes n to path, compressed if its name ends in .gz.
func WriteFile(path string, n *Network) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating network file")
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = errors.Wrap(cerr, "closing network file")
		}
	}()
	if !strings.HasSuffix(path, ".gz") {
		return Encode(f, n)
	}
	gz := gzip.NewWriter(f)
	if err := Encode(gz, n); err != nil {
		gz.Close()
		return err
	}
	return errors.Wrap(gz.Close(), "closing gzip stream")
}
