// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's
// roctracer_start/roctracer_stop (gate + journal replay, activities
// disabled before callbacks on stop and the reverse on start) and
// set_stopped's single mutex-guarded flag.
//

package roctrace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Controller is C9: it owns the start/stop gate, the default pool slot,
// the per-domain [DomainState] registry, and the background flusher. One
// process-wide instance, [DefaultController], backs the package-level
// functions in api.go — matching spec §9's "no shared context object"
// design (state lives behind accessors, not a context threaded by hand).
type Controller struct {
	mu      sync.Mutex // serializes enable/disable/start/stop/pool-open/close
	logger  SLogger
	journal *Journal
	domains map[Domain]*DomainState

	running     atomic.Bool
	defaultPool atomicPoolPtr

	flushInterval time.Duration
	flushCancel   context.CancelFunc
	flushGroup    *errgroup.Group

	sessionID string
}

// NewController builds a Controller in the RUNNING state with an empty
// journal and no default pool. cfg supplies the logger and flush
// interval; pass [NewConfig] for the defaults.
func NewController(cfg *Config) *Controller {
	sessionID := NewSessionID()
	c := &Controller{
		logger:        WithSessionID(cfg.Logger, sessionID),
		journal:       NewJournal(),
		domains:       make(map[Domain]*DomainState),
		flushInterval: cfg.FlushInterval,
		sessionID:     sessionID,
	}
	for d := Domain(0); d < domainCount; d++ {
		c.domains[d] = NewDomainState(d)
	}
	c.running.Store(true)
	c.startFlusher()
	return c
}

func (c *Controller) startFlusher() {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	c.flushCancel = cancel
	c.flushGroup = group

	if c.flushInterval <= 0 {
		return
	}
	group.Go(func() error {
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.flushDefaultPool()
				reapGoroutineStates(goroutineStateIdleTimeout)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func (c *Controller) flushDefaultPool() {
	if p := c.defaultPool.Load(); p != nil {
		p.Flush()
	}
}

// domainState returns d's [DomainState], or nil if d is out of range.
func (c *Controller) domainState(d Domain) *DomainState {
	return c.domains[d]
}

// EnableOpCallback installs fn/arg for (domain, op), journals it, and —
// if the gate is RUNNING — makes it live immediately (I4).
func (c *Controller) EnableOpCallback(domain Domain, op Op, fn Callback, arg any) error {
	ds, err := c.checkOp(domain, op)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.InsertCallback(domain, op, fn, arg)
	if c.running.Load() {
		ds.callbacks.Set(op, fn, arg)
		ds.mask.callback.Store(int(op), true)
	}
	c.logger.Debug("enable_op_callback", "domain", domain.String(), "op", uint32(op))
	return nil
}

// DisableOpCallback removes (domain, op)'s callback subscription. After
// this returns, no further callback for that op starts (in-flight
// callbacks run to completion, per spec §5's linearizability note).
func (c *Controller) DisableOpCallback(domain Domain, op Op) error {
	ds, err := c.checkOp(domain, op)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.RemoveCallback(domain, op)
	ds.callbacks.Clear(op)
	ds.mask.callback.Store(int(op), false)
	c.logger.Debug("disable_op_callback", "domain", domain.String(), "op", uint32(op))
	return nil
}

// EnableDomainCallback enables fn/arg on every op of domain. Per spec §7
// it never fails for individual unimplemented ops — there is no
// "unimplemented" notion at this layer, so it always succeeds for a valid
// domain.
func (c *Controller) EnableDomainCallback(domain Domain, fn Callback, arg any) error {
	if !domain.Valid() {
		return newAPIError(StatusErrorInvalidDomainID, "enable_domain_callback: invalid domain %d", domain)
	}
	for op := Op(0); int(op) < domain.OpCount(); op++ {
		if err := c.EnableOpCallback(domain, op, fn, arg); err != nil {
			return err
		}
	}
	return nil
}

// DisableDomainCallback disables every op of domain.
func (c *Controller) DisableDomainCallback(domain Domain) error {
	if !domain.Valid() {
		return newAPIError(StatusErrorInvalidDomainID, "disable_domain_callback: invalid domain %d", domain)
	}
	for op := Op(0); int(op) < domain.OpCount(); op++ {
		if err := c.DisableOpCallback(domain, op); err != nil {
			return err
		}
	}
	return nil
}

// EnableOpActivity binds (domain, op)'s activity subscription to pool
// (the default pool if nil).
func (c *Controller) EnableOpActivity(domain Domain, op Op, pool *Pool) error {
	ds, err := c.checkOp(domain, op)
	if err != nil {
		return err
	}
	if pool == nil {
		pool = c.defaultPool.Load()
		if pool == nil {
			return newAPIError(StatusErrorDefaultPoolUndefined, "enable_op_activity: no default pool")
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.InsertActivity(domain, op, pool)
	if c.running.Load() {
		ds.activityPools[op].Store(pool)
		ds.mask.activity.Store(int(op), true)
	}
	c.logger.Debug("enable_op_activity", "domain", domain.String(), "op", uint32(op))
	return nil
}

// DisableOpActivity removes (domain, op)'s activity subscription.
func (c *Controller) DisableOpActivity(domain Domain, op Op) error {
	ds, err := c.checkOp(domain, op)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.RemoveActivity(domain, op)
	ds.activityPools[op].Store(nil)
	ds.mask.activity.Store(int(op), false)
	return nil
}

// EnableDomainActivity enables activity on every op of domain bound to
// pool (the default pool if nil).
func (c *Controller) EnableDomainActivity(domain Domain, pool *Pool) error {
	if !domain.Valid() {
		return newAPIError(StatusErrorInvalidDomainID, "enable_domain_activity: invalid domain %d", domain)
	}
	for op := Op(0); int(op) < domain.OpCount(); op++ {
		if err := c.EnableOpActivity(domain, op, pool); err != nil {
			return err
		}
	}
	return nil
}

// DisableDomainActivity disables activity on every op of domain.
func (c *Controller) DisableDomainActivity(domain Domain) error {
	if !domain.Valid() {
		return newAPIError(StatusErrorInvalidDomainID, "disable_domain_activity: invalid domain %d", domain)
	}
	for op := Op(0); int(op) < domain.OpCount(); op++ {
		if err := c.DisableOpActivity(domain, op); err != nil {
			return err
		}
	}
	return nil
}

// checkOp validates (domain, op) and returns its [DomainState].
func (c *Controller) checkOp(domain Domain, op Op) (*DomainState, error) {
	if !domain.Valid() {
		return nil, newAPIError(StatusErrorInvalidDomainID, "invalid domain %d", domain)
	}
	if int(op) >= domain.OpCount() {
		return nil, newAPIError(StatusErrorNotImplemented, "op %d not implemented on domain %s", op, domain)
	}
	return c.domains[domain], nil
}

// Start transitions the gate to RUNNING and replays every journaled
// subscription: callbacks first, then activities (spec §4.4's ordering).
// Idempotent.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return
	}
	c.journal.ForEachCallback(func(domain Domain, op Op, fn Callback, arg any) {
		ds := c.domains[domain]
		ds.callbacks.Set(op, fn, arg)
		ds.mask.callback.Store(int(op), true)
	})
	c.journal.ForEachActivity(func(domain Domain, op Op, pool *Pool) {
		ds := c.domains[domain]
		ds.activityPools[op].Store(pool)
		ds.mask.activity.Store(int(op), true)
	})
	c.running.Store(true)
	c.logger.Info("start")
}

// Stop transitions the gate to STOPPED: activities are disabled before
// callbacks (spec §4.4's ordering, preventing a callback from enqueuing a
// record into a buffer whose activity subscription was already torn
// down), without touching the journal. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return
	}
	for _, ds := range c.domains {
		for op := 0; op < len(ds.mask.activity); op++ {
			ds.mask.activity.Store(op, false)
			ds.activityPools[op].Store(nil)
		}
	}
	for _, ds := range c.domains {
		for op := 0; op < len(ds.mask.callback); op++ {
			ds.mask.callback.Store(op, false)
			ds.callbacks.Clear(Op(op))
		}
	}
	c.running.Store(false)
	c.logger.Info("stop")
}

// OpenPool opens a new [Pool] with props. If defaultSlot is true and a
// default pool is already open, this fails with
// [StatusErrorDefaultPoolAlreadyDefined]; if defaultSlot is true and no
// default pool is open, the newly opened pool becomes the default. With
// defaultSlot false the default slot is left untouched.
func (c *Controller) OpenPool(props PoolProperties, defaultSlot bool) (*Pool, error) {
	if defaultSlot {
		c.mu.Lock()
		existing := c.defaultPool.Load()
		c.mu.Unlock()
		if existing != nil {
			return nil, newAPIError(StatusErrorDefaultPoolAlreadyDefined, "open_pool: default pool already defined")
		}
	}
	pool, err := OpenPool(props)
	if err != nil {
		return nil, err
	}
	if defaultSlot {
		c.mu.Lock()
		c.defaultPool.Store(pool)
		c.mu.Unlock()
	}
	c.logger.Info("open_pool", "default", defaultSlot)
	return pool, nil
}

// ClosePool closes pool (the default pool if nil) and un-installs every
// activity subscription bound to it (P8), leaving all others intact.
// Closing a nil pool when no default pool exists is a no-op (spec §9's
// Open Question log: "keep this behavior").
func (c *Controller) ClosePool(pool *Pool) error {
	c.mu.Lock()
	isDefault := pool == nil
	if pool == nil {
		pool = c.defaultPool.Load()
		if pool == nil {
			c.mu.Unlock()
			return nil // idempotent no-op, see spec §9
		}
	} else if pool == c.defaultPool.Load() {
		isDefault = true
	}
	c.mu.Unlock()

	removed := c.journal.RemoveActivitiesForPool(pool)
	c.mu.Lock()
	for _, k := range removed {
		ds := c.domains[k.domain]
		ds.activityPools[k.op].Store(nil)
		ds.mask.activity.Store(int(k.op), false)
	}
	if isDefault {
		c.defaultPool.Store(nil)
	}
	c.mu.Unlock()

	c.logger.Info("close_pool", "default", isDefault)
	return pool.Close()
}

// DefaultPool returns the current default pool, or nil if none is open.
func (c *Controller) DefaultPool() *Pool {
	return c.defaultPool.Load()
}

// SetDefaultPool swaps in pool as the default and returns the previous
// one (default_pool_expl).
func (c *Controller) SetDefaultPool(pool *Pool) *Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.defaultPool.Load()
	c.defaultPool.Store(pool)
	return prev
}

// FlushActivity flushes pool (the default pool if nil), blocking until
// the consumer callback has returned for every record complete at call
// time (P7).
func (c *Controller) FlushActivity(pool *Pool) error {
	if pool == nil {
		pool = c.defaultPool.Load()
		if pool == nil {
			return newAPIError(StatusErrorDefaultPoolUndefined, "flush_activity: no default pool")
		}
	}
	pool.Flush()
	return nil
}

// Shutdown stops the background flusher goroutine. Intended for tests and
// for an embedding process's clean OnUnload path.
func (c *Controller) Shutdown() {
	c.flushCancel()
	_ = c.flushGroup.Wait()
}

// DefaultController is the process-wide [Controller] instance the
// package-level functions in api.go and onload.go operate on, matching
// spec §9's "no shared context object passed around" design.
var DefaultController = NewController(NewConfig())
