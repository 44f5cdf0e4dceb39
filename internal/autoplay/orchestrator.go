// Package autoplay supervises continuous agent play: while armed it
// requests one agent action at a time until no agent is eligible or the
// round ends.
package autoplay

import (
	"time"

	"codenames-client/internal/eligibility"
	"codenames-client/internal/game"
)

// Orchestrator is a single-flight supervisor. Armed is the user's intent
// to keep agents playing; Busy means an agent-action request is
// outstanding and blocks further triggers until a terminal event clears
// it.
//
// All methods must be called from the engine goroutine. Timers fire on
// their own goroutines but only invoke the callbacks given to New, which
// are expected to post back into the engine loop; the orchestrator's own
// state is never touched off-loop.
type Orchestrator struct {
	armed bool
	busy  bool

	// delay between deciding to trigger an agent and sending the
	// request, so observers can follow the game.
	delay time.Duration
	// stall bounds how long Busy may stay set without a terminal
	// event; zero disables the watchdog.
	stall time.Duration

	trigger    *time.Timer
	stallTimer *time.Timer

	fire      func(agentID string)
	stallFire func()
}

// New builds an orchestrator. fire is invoked (off-loop) when the trigger
// delay elapses; stallFire when an outstanding request exceeds the stall
// bound.
func New(delay, stall time.Duration, fire func(agentID string), stallFire func()) *Orchestrator {
	return &Orchestrator{delay: delay, stall: stall, fire: fire, stallFire: stallFire}
}

func (o *Orchestrator) Armed() bool { return o.armed }
func (o *Orchestrator) Busy() bool  { return o.busy }

// Arm marks continuous play requested. The caller follows up with Advance
// so an eligible agent is triggered immediately.
func (o *Orchestrator) Arm() {
	o.armed = true
}

// Disarm suppresses future triggers and cancels a pending scheduled one.
// An already-sent request is not retracted; its terminal event still
// clears Busy.
func (o *Orchestrator) Disarm() {
	o.armed = false
	o.cancelTrigger()
}

// SetBusy marks an agent-action request outstanding.
func (o *Orchestrator) SetBusy() {
	if o.busy {
		return
	}
	o.busy = true
	if o.stall > 0 && o.stallFire != nil {
		o.stallTimer = time.AfterFunc(o.stall, o.stallFire)
	}
}

// ClearBusy is called on every terminal event for a triggered action.
func (o *Orchestrator) ClearBusy() {
	o.busy = false
	if o.stallTimer != nil {
		o.stallTimer.Stop()
		o.stallTimer = nil
	}
}

// Advance schedules exactly one agent-action trigger if armed, idle, and
// an agent is eligible. With no eligible agent it auto-disarms: nothing
// left to drive.
func (o *Orchestrator) Advance(room *game.Room, actions eligibility.ActionSet) {
	if !o.armed || o.busy {
		return
	}
	if room == nil {
		return
	}
	if room.Game.Phase == game.PhaseFinished {
		o.Disarm()
		return
	}
	if room.Game.Phase != game.PhasePlaying {
		return
	}
	if actions.ActiveAgentID == "" {
		o.Disarm()
		return
	}
	if !actions.CanTriggerAgent {
		// someone else's agent and we are not the host; stay armed
		// and let a later snapshot grant the rights
		return
	}

	agentID := actions.ActiveAgentID
	o.cancelTrigger()
	o.trigger = time.AfterFunc(o.delay, func() { o.fire(agentID) })
}

// TriggerDue re-checks the guards when a scheduled trigger arrives back on
// the engine loop. It returns true, after setting Busy, when the request
// should actually be sent; the delay window may have seen a disarm or a
// manual trigger.
func (o *Orchestrator) TriggerDue() bool {
	if !o.armed || o.busy {
		return false
	}
	o.SetBusy()
	return true
}

// StallDue reports whether the stall watchdog should forcibly clear Busy.
func (o *Orchestrator) StallDue() bool {
	return o.busy
}

func (o *Orchestrator) cancelTrigger() {
	if o.trigger != nil {
		o.trigger.Stop()
		o.trigger = nil
	}
}
