// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "github.com/pdiddy/batchconv/pkg/types"

// Observer receives progress events from a run. The engine never calls an
// observer concurrently: run and wave events come from the orchestrating
// goroutine and outcomes from the reporter, and a wave's outcomes are all
// delivered before the next wave starts.
type Observer interface {
	// OnRunStart is called once the run guard is held.
	OnRunStart(res types.RunResult)
	// OnWaveStart is called before the workers of a wave are launched.
	OnWaveStart(wave, size int)
	// OnOutcome is called after the outcome has been applied to the list.
	OnOutcome(o types.Outcome)
	// OnRunDone is called with the final counts.
	OnRunDone(res types.RunResult)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnRunStart(types.RunResult) {}
func (NopObserver) OnWaveStart(int, int)       {}
func (NopObserver) OnOutcome(types.Outcome)    {}
func (NopObserver) OnRunDone(types.RunResult)  {}

type multiObserver []Observer

// Observers combines several observers into one, skipping nils. Events are
// delivered in argument order.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multiObserver) OnRunStart(res types.RunResult) {
	for _, o := range m {
		o.OnRunStart(res)
	}
}

func (m multiObserver) OnWaveStart(wave, size int) {
	for _, o := range m {
		o.OnWaveStart(wave, size)
	}
}

func (m multiObserver) OnOutcome(out types.Outcome) {
	for _, o := range m {
		o.OnOutcome(out)
	}
}

func (m multiObserver) OnRunDone(res types.RunResult) {
	for _, o := range m {
		o.OnRunDone(res)
	}
}
