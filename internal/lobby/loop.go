package lobby

import (
	"time"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/match"
	"github.com/arenacore/server/internal/metrics"
)

// TickOutput is what one network tick hands to the transport hub for this
// lobby: one filtered snapshot per joined player, plus the discrete events
// produced since the last network tick.
type TickOutput struct {
	Snapshots map[string]match.Snapshot
	Events    []match.Event
}

// outboxCapacity is intentionally 1: the hub only ever wants the latest
// tick, so a full outbox drops the stale one rather than blocking the loop.
const outboxCapacity = 1

// runLoop drives lobby l's authoritative simulation until the Manager
// closes l.StopCh; it keeps ticking while the lobby is empty. Physics steps at
// field.PhysicsTickRate; every physicsPerNetwork-th step also flushes a
// network tick onto l's Outbox. This goroutine drives l.Sim.TickPhysics;
// l.Sim.BuildSnapshot is also called from the transport hub and the
// request_game_state handler, and it takes the Simulation's lock itself.
func runLoop(l *Lobby, field config.FieldConfig) {
	l.Outbox = make(chan TickOutput, outboxCapacity)

	physicsInterval := time.Second / time.Duration(field.PhysicsTickRate)
	physicsPerNetwork := field.PhysicsTickRate / field.NetworkTickRate
	if physicsPerNetwork < 1 {
		physicsPerNetwork = 1
	}

	ticker := time.NewTicker(physicsInterval)
	defer ticker.Stop()

	dt := 1.0 / float64(field.PhysicsTickRate)
	var pendingEvents []match.Event
	step := 0

	for {
		select {
		case <-l.StopCh:
			return
		case now := <-ticker.C:
			tickStart := time.Now()
			evts := l.Sim.TickPhysics(now, dt)
			metrics.RecordTick(time.Since(tickStart))
			pendingEvents = append(pendingEvents, evts...)
			step++

			if step%physicsPerNetwork != 0 {
				continue
			}

			out := TickOutput{Events: pendingEvents}
			pendingEvents = nil

			ids := l.Sim.PlayerIDs()
			if len(ids) > 0 {
				out.Snapshots = make(map[string]match.Snapshot, len(ids))
				for _, id := range ids {
					out.Snapshots[id] = l.Sim.BuildSnapshot(id, now)
				}
			}

			select {
			case l.Outbox <- out:
			default:
				// The hub hasn't drained the previous tick yet. Snapshots
				// are latest-wins, so the stale one is discarded, but its
				// events must not be: they are carried forward onto the
				// fresh tick so no discrete event is ever lost to
				// backpressure, only coalesced with the next delivery.
				select {
				case stale := <-l.Outbox:
					out.Events = append(stale.Events, out.Events...)
				default:
				}
				select {
				case l.Outbox <- out:
				default:
				}
			}
		}
	}
}
