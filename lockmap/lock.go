// lockmap is a sharded lock map, keyed by block number.
//
// It behaves as if there were one lock per block: Acquire(bn) blocks until
// the lock for bn is free and takes it, Release(bn) gives it back. Lock
// state exists only while a block is held or waited for; shard i tracks the
// blocks with bn % NSHARD == i.
package lockmap

import (
	"sync"
)

type lockState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type lockShard struct {
	mu    *sync.Mutex
	state map[uint64]*lockState
}

func mkLockShard() *lockShard {
	return &lockShard{
		mu:    new(sync.Mutex),
		state: make(map[uint64]*lockState),
	}
}

func (shard *lockShard) acquire(bn uint64) {
	shard.mu.Lock()
	state, ok := shard.state[bn]
	if !ok {
		state = &lockState{cond: sync.NewCond(shard.mu)}
		shard.state[bn] = state
	}
	for state.held {
		state.waiters += 1
		state.cond.Wait()
		state.waiters -= 1
	}
	state.held = true
	shard.mu.Unlock()
}

func (shard *lockShard) release(bn uint64) {
	shard.mu.Lock()
	state, ok := shard.state[bn]
	if !ok || !state.held {
		panic("lockmap: release of unheld lock")
	}
	state.held = false
	if state.waiters > 0 {
		state.cond.Signal()
	} else {
		delete(shard.state, bn)
	}
	shard.mu.Unlock()
}

const NSHARD uint64 = 43

type LockMap struct {
	shards []*lockShard
}

func MkLockMap() *LockMap {
	shards := make([]*lockShard, NSHARD)
	for i := range shards {
		shards[i] = mkLockShard()
	}
	return &LockMap{shards: shards}
}

func (lmap *LockMap) Acquire(bn uint64) {
	lmap.shards[bn%NSHARD].acquire(bn)
}

func (lmap *LockMap) Release(bn uint64) {
	lmap.shards[bn%NSHARD].release(bn)
}
