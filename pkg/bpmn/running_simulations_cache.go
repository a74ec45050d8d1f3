// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package bpmn

import (
	"sync"
)

type runningSimulation struct {
	mu      sync.Mutex
	holders int
}

// RunningSimulationsCache serializes work on one simulation key while
// different keys proceed in parallel.
type RunningSimulationsCache struct {
	simulations map[int64]*runningSimulation
	mu          sync.Mutex
}

func newRunningSimulationsCache() *RunningSimulationsCache {
	return &RunningSimulationsCache{
		simulations: map[int64]*runningSimulation{},
	}
}

func (c *RunningSimulationsCache) lockSimulation(key int64) {
	c.mu.Lock()
	sim, ok := c.simulations[key]
	if !ok {
		sim = &runningSimulation{}
		c.simulations[key] = sim
	}
	sim.holders++
	c.mu.Unlock()
	sim.mu.Lock()
}

func (c *RunningSimulationsCache) unlockSimulation(key int64) {
	c.mu.Lock()
	sim := c.simulations[key]
	sim.holders--
	if sim.holders == 0 {
		delete(c.simulations, key)
	}
	c.mu.Unlock()
	sim.mu.Unlock()
}

func (c *RunningSimulationsCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.simulations)
}
