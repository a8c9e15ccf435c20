package network

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/qsimtools/upscale"
)

// Main removes the links of a mode from a network file.
type Main struct {
	Input   string `help:"Network file to read."`
	Output  string `help:"Network file to write. Ending in .gz compresses it."`
	Mode    string `help:"Links allowing this mode are removed, and with them the nodes left without links."`
	Verbose bool   `help:"Enable verbose logging."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Mode: upscale.ModePT,
	}
}

// Run reads, prunes and writes the network.
func (m *Main) Run() error {
	if m.Input == "" || m.Output == "" {
		return errors.New("need both input and output network files")
	}
	log, closer, err := upscale.OpenLogger("", m.Verbose)
	if err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer closer.Close()
	n, err := ReadFile(m.Input)
	if err != nil {
		return errors.Wrap(err, "reading network")
	}
	if err := Prune(n, m.Mode, log); err != nil {
		return err
	}
	return errors.Wrap(WriteFile(m.Output, n), "writing network")
}

// Prune removes mode from n and logs what was removed. A network without
// links of mode is left unchanged.
func Prune(n *Network, mode string, log upscale.Logger) error {
	if mode == "" {
		return errors.New("no mode to remove")
	}
	modes := n.Modes()
	if i := sort.SearchStrings(modes, mode); i == len(modes) || modes[i] != mode {
		log.Printf("network has no %s links, only %v", mode, modes)
		return nil
	}
	links, nodes := n.RemoveMode(mode)
	log.Printf("removed %d %s links and %d nodes, %d links and %d nodes with modes %v left within %v",
		links, mode, nodes, len(n.Links), len(n.Nodes), n.Modes(), n.Bound())
	return nil
}
