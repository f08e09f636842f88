package solver

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrActionOutOfRange is returned when a regret update targets an action
	// the node does not have.
	ErrActionOutOfRange = errors.New("action index out of range")
	// ErrActionCountMismatch is returned when an info set is reached with a
	// different number of legal actions than it was created with.
	ErrActionCountMismatch = errors.New("action count mismatch")
)

// RegretNode accumulates counterfactual regret and reach-weighted strategy
// for one information set. The action count is fixed at creation.
type RegretNode struct {
	mu          sync.Mutex
	regretSum   []float64
	strategySum []float64
	visits      int64
}

func newRegretNode(actions int) *RegretNode {
	return &RegretNode{
		regretSum:   make([]float64, actions),
		strategySum: make([]float64, actions),
	}
}

// NumActions returns the fixed action count of the node.
func (n *RegretNode) NumActions() int {
	return len(n.regretSum)
}

// Strategy returns the regret-matching strategy, adds it to the running
// strategy sum weighted by reach and counts a visit.
func (n *RegretNode) Strategy(reach float64) []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	strat := normalise(n.regretSum)
	for i, p := range strat {
		n.strategySum[i] += reach * p
	}
	n.visits++
	return strat
}

// CurrentStrategy returns the regret-matching strategy without recording a
// visit.
func (n *RegretNode) CurrentStrategy() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return normalise(n.regretSum)
}

// AverageStrategy returns the normalised strategy sum, the quantity that
// converges towards equilibrium.
func (n *RegretNode) AverageStrategy() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return normalise(n.strategySum)
}

// UpdateRegret adds value to the cumulative regret of action.
func (n *RegretNode) UpdateRegret(action int, value float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if action < 0 || action >= len(n.regretSum) {
		return fmt.Errorf("%w: %d of %d", ErrActionOutOfRange, action, len(n.regretSum))
	}
	n.regretSum[action] += value
	return nil
}

// Visits returns how many times Strategy has been called.
func (n *RegretNode) Visits() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visits
}

// Reset zeroes all accumulators.
func (n *RegretNode) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.regretSum)
	clear(n.strategySum)
	n.visits = 0
}

// normalise clips negatives to zero and scales to a distribution, falling
// back to uniform when nothing is positive.
func normalise(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		if v > 0 {
			out[i] = v
			total += v
		}
	}
	if total <= 0 {
		u := 1.0 / float64(len(out))
		for i := range out {
			out[i] = u
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

type nodeSnapshot struct {
	RegretSum   []float64
	StrategySum []float64
	Visits      int64
}

func (n *RegretNode) snapshot() nodeSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return nodeSnapshot{
		RegretSum:   append([]float64(nil), n.regretSum...),
		StrategySum: append([]float64(nil), n.strategySum...),
		Visits:      n.visits,
	}
}

func newRegretNodeFromSnapshot(snap nodeSnapshot) *RegretNode {
	return &RegretNode{
		regretSum:   append([]float64(nil), snap.RegretSum...),
		strategySum: append([]float64(nil), snap.StrategySum...),
		visits:      snap.Visits,
	}
}

const regretTableShardCount = 64
const regretTableShardMask = regretTableShardCount - 1

type regretShard struct {
	mu    sync.RWMutex
	nodes map[string]*RegretNode
}

// RegretTable maps info set keys to nodes using maps sharded by key hash.
type RegretTable struct {
	shards [regretTableShardCount]regretShard
}

// NewRegretTable returns an empty regret table ready for use.
func NewRegretTable() *RegretTable {
	table := &RegretTable{}
	for i := 0; i < regretTableShardCount; i++ {
		table.shards[i].nodes = make(map[string]*RegretNode)
	}
	return table
}

// Get returns the node for key, creating it with actionCount actions if it
// does not exist yet.
func (t *RegretTable) Get(key string, actionCount int) (*RegretNode, error) {
	if actionCount <= 0 {
		return nil, fmt.Errorf("%w: %s has no actions", ErrActionCountMismatch, key)
	}
	shard := t.shardFor(key)

	shard.mu.RLock()
	node, ok := shard.nodes[key]
	shard.mu.RUnlock()
	if !ok {
		shard.mu.Lock()
		if node, ok = shard.nodes[key]; !ok {
			node = newRegretNode(actionCount)
			shard.nodes[key] = node
		}
		shard.mu.Unlock()
	}

	if node.NumActions() != actionCount {
		return nil, fmt.Errorf("%w: %s has %d actions, got %d", ErrActionCountMismatch, key, node.NumActions(), actionCount)
	}
	return node, nil
}

// Lookup returns the node for key without creating it.
func (t *RegretTable) Lookup(key string) (*RegretNode, bool) {
	shard := t.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	node, ok := shard.nodes[key]
	return node, ok
}

// Nodes returns a snapshot of the key to node mapping.
func (t *RegretTable) Nodes() map[string]*RegretNode {
	out := make(map[string]*RegretNode)
	for i := 0; i < regretTableShardCount; i++ {
		shard := &t.shards[i]
		shard.mu.RLock()
		for k, v := range shard.nodes {
			out[k] = v
		}
		shard.mu.RUnlock()
	}
	return out
}

// Keys returns all keys in sorted order.
func (t *RegretTable) Keys() []string {
	nodes := t.Nodes()
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of info sets tracked.
func (t *RegretTable) Size() int {
	total := 0
	for i := 0; i < regretTableShardCount; i++ {
		shard := &t.shards[i]
		shard.mu.RLock()
		total += len(shard.nodes)
		shard.mu.RUnlock()
	}
	return total
}

// Clear drops every node.
func (t *RegretTable) Clear() {
	for i := 0; i < regretTableShardCount; i++ {
		shard := &t.shards[i]
		shard.mu.Lock()
		shard.nodes = make(map[string]*RegretNode)
		shard.mu.Unlock()
	}
}

// Clone returns a deep copy of the table.
func (t *RegretTable) Clone() *RegretTable {
	out := NewRegretTable()
	for i := 0; i < regretTableShardCount; i++ {
		src := &t.shards[i]
		src.mu.RLock()
		for k, v := range src.nodes {
			out.shards[i].nodes[k] = newRegretNodeFromSnapshot(v.snapshot())
		}
		src.mu.RUnlock()
	}
	return out
}

// MergeDelta adds to t everything worker accumulated on top of base. Workers
// start from a clone of base, so the difference is exactly their own
// contribution. Nodes missing from base are added whole.
func (t *RegretTable) MergeDelta(worker, base *RegretTable) error {
	for key, wn := range worker.Nodes() {
		ws := wn.snapshot()
		delta := ws
		if bn, ok := base.Lookup(key); ok {
			bs := bn.snapshot()
			if len(bs.RegretSum) != len(ws.RegretSum) {
				return fmt.Errorf("%w: %s", ErrActionCountMismatch, key)
			}
			delta = nodeSnapshot{
				RegretSum:   make([]float64, len(ws.RegretSum)),
				StrategySum: make([]float64, len(ws.StrategySum)),
				Visits:      ws.Visits - bs.Visits,
			}
			for i := range ws.RegretSum {
				delta.RegretSum[i] = ws.RegretSum[i] - bs.RegretSum[i]
				delta.StrategySum[i] = ws.StrategySum[i] - bs.StrategySum[i]
			}
		}

		node, err := t.Get(key, len(ws.RegretSum))
		if err != nil {
			return err
		}
		node.mu.Lock()
		for i := range delta.RegretSum {
			node.regretSum[i] += delta.RegretSum[i]
			node.strategySum[i] += delta.StrategySum[i]
		}
		node.visits += delta.Visits
		node.mu.Unlock()
	}
	return nil
}

func (t *RegretTable) shardFor(key string) *regretShard {
	h := hashKey(key)
	return &t.shards[h&regretTableShardMask]
}

func hashKey(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	var hash uint32 = offset32
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}
