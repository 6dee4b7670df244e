package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "foodsupply/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for one operation. Stores
// called with the ctx handed to fn participate in the transaction when the
// implementation supports one.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AtomicTx is implemented by StoreTx values whose RunInTx commits all writes
// made inside fn or none of them. With an atomic tx a failed retailer
// delivery rolls the listing update back and no compensation is written.
type AtomicTx interface {
	StoreTx
	Atomic() bool
}

func isAtomic(tx StoreTx) bool {
	a, ok := tx.(AtomicTx)
	return ok && a.Atomic()
}

// numTxShards bounds the lock table; keys hash onto shards.
const numTxShards = 128

// defaultTxTimeout is the maximum duration of one operation.
const defaultTxTimeout = 5 * time.Second

// keyedLocks stripes in-process mutexes over string keys.
type keyedLocks struct {
	shards [numTxShards]sync.Mutex
}

// lock blocks until key's shard is free and returns its unlock.
func (k *keyedLocks) lock(key string) func() {
	m := &k.shards[shardOf(key)]
	m.Lock()
	return m.Unlock
}

func shardOf(key string) int {
	if key == "" {
		return 0
	}
	return int(hashKey(key) % numTxShards)
}

// shardedTx serializes operations that share a key (listing or regulator id)
// within this process. It gives at-most-one-in-flight mutation per listing
// but no multi-key atomicity; version checks in the stores catch writers in
// other processes.
type shardedTx struct {
	locks   keyedLocks
	timeout time.Duration
}

func newShardedTx() *shardedTx {
	return &shardedTx{timeout: defaultTxTimeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	key, _ := ctx.Value(txKeyCtx).(string)
	unlock := t.locks.lock(key)
	defer unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// selectShard picks a shard from the key in context, or defaults to shard 0.
func (t *shardedTx) selectShard(ctx context.Context) int {
	key, _ := ctx.Value(txKeyCtx).(string)
	return shardOf(key)
}

func hashKey(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

type txKey struct{}

var txKeyCtx = txKey{}

// withTxKey names the aggregate an operation mutates so shardedTx can
// serialize on it.
func withTxKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txKeyCtx, key)
}
