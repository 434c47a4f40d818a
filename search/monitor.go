package search

import (
	"github.com/poiesic/lmtune/core"
)

// SearchMonitor provides hooks to observe group generation.
// Implement this interface to track progress or inspect intermediate lookup tables.
type SearchMonitor interface {
	Start(numGroups int, seed int64)
	AfterVariables(index int, lookup core.Lookup)
	AfterGroup(index int, hparams *core.HParams)
	Finish(group core.Group)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ int, _ int64)                {}
func (n *noopMonitor) AfterVariables(_ int, _ core.Lookup) {}
func (n *noopMonitor) AfterGroup(_ int, _ *core.HParams)   {}
func (n *noopMonitor) Finish(_ core.Group)                 {}
