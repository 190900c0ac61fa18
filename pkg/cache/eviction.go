package cache

import (
	"container/list"
)

// policy is the contract between the cache and an eviction strategy.
// The cache owns the entries; a policy only tracks the bookkeeping it
// needs to pick a victim.
type policy interface {
	// onInsert records a (re-)inserted key. A re-Set counts as a fresh
	// insertion: the key's previous position is discarded.
	onInsert(key string)

	// onAccess records a cache hit on key.
	onAccess(key string)

	// onRemove drops all bookkeeping for key, whatever the removal cause.
	onRemove(key string)

	// victim returns the next key to evict. ok is false when the policy
	// tracks no keys.
	victim() (key string, ok bool)
}

// newPolicy builds the policy for the given strategy. The strategy has been
// validated by Config.Validate.
func newPolicy(s Strategy) policy {
	switch s {
	case LFU:
		return newLFUPolicy()
	case FIFO:
		return newOrderPolicy(false)
	default:
		return newOrderPolicy(true)
	}
}

// orderPolicy implements LRU and FIFO with a doubly linked list.
// The front is the most recent position, the back is the victim.
// With refreshOnAccess set, hits move the key to the front (LRU);
// without it, only insertion order matters (FIFO).
type orderPolicy struct {
	order           *list.List
	elems           map[string]*list.Element
	refreshOnAccess bool
}

func newOrderPolicy(refreshOnAccess bool) *orderPolicy {
	return &orderPolicy{
		order:           list.New(),
		elems:           make(map[string]*list.Element),
		refreshOnAccess: refreshOnAccess,
	}
}

func (p *orderPolicy) onInsert(key string) {
	if elem, ok := p.elems[key]; ok {
		p.order.MoveToFront(elem)
		return
	}
	p.elems[key] = p.order.PushFront(key)
}

func (p *orderPolicy) onAccess(key string) {
	if !p.refreshOnAccess {
		return
	}
	if elem, ok := p.elems[key]; ok {
		p.order.MoveToFront(elem)
	}
}

func (p *orderPolicy) onRemove(key string) {
	if elem, ok := p.elems[key]; ok {
		p.order.Remove(elem)
		delete(p.elems, key)
	}
}

func (p *orderPolicy) victim() (string, bool) {
	back := p.order.Back()
	if back == nil {
		return "", false
	}
	return back.Value.(string), true
}

// lfuPolicy implements least-frequently-used eviction. Each key carries a
// hit counter and a monotonic insertion sequence; the victim is the key
// with the lowest counter, ties broken toward the oldest insertion so
// outcomes are reproducible.
type lfuPolicy struct {
	entries map[string]*lfuEntry
	nextSeq uint64
}

type lfuEntry struct {
	freq int64
	seq  uint64
}

func newLFUPolicy() *lfuPolicy {
	return &lfuPolicy{entries: make(map[string]*lfuEntry)}
}

func (p *lfuPolicy) onInsert(key string) {
	p.nextSeq++
	p.entries[key] = &lfuEntry{seq: p.nextSeq}
}

func (p *lfuPolicy) onAccess(key string) {
	if e, ok := p.entries[key]; ok {
		e.freq++
	}
}

func (p *lfuPolicy) onRemove(key string) {
	delete(p.entries, key)
}

func (p *lfuPolicy) victim() (string, bool) {
	var (
		victimKey string
		best      *lfuEntry
	)
	for key, e := range p.entries {
		if best == nil || e.freq < best.freq || (e.freq == best.freq && e.seq < best.seq) {
			victimKey = key
			best = e
		}
	}
	return victimKey, best != nil
}
