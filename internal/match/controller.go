package match

import (
	"time"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
)

// controller owns the match lifecycle state machine described in the
// lobby's external contract: waiting -> starting -> playing -> finished.
// It is embedded in Simulation rather than exported standalone since its
// transitions are inseparable from tick-driven timers.
type controller struct {
	cfg   config.LobbyConfig
	phase MatchPhase

	countdownEndAt time.Time
	startedAt      time.Time
	finishedAt     time.Time

	redScore  int
	blueScore int
	winner    mapmodel.Team
}

func newController(cfg config.LobbyConfig) *controller {
	return &controller{cfg: cfg, phase: PhaseWaiting}
}

// onPlayerCountChanged drives waiting<->starting transitions; it is called
// after every join/leave. Returns the events produced, if any.
func (c *controller) onPlayerCountChanged(count int, now time.Time) []Event {
	var events []Event
	switch c.phase {
	case PhaseWaiting:
		if count >= c.cfg.MinPlayersToStart {
			c.phase = PhaseCountdown
			c.countdownEndAt = now.Add(time.Duration(c.cfg.CountdownLongSec * float64(time.Second)))
			events = append(events, MatchStateChangedEvent{Phase: PhaseCountdown, CountdownEndSec: c.cfg.CountdownLongSec})
		}
	case PhaseCountdown:
		if count < c.cfg.MinPlayersToStart {
			c.phase = PhaseWaiting
			events = append(events, MatchStateChangedEvent{Phase: PhaseWaiting})
		} else if count >= c.cfg.DefaultCapacity {
			// Force the short countdown once the lobby is full.
			shortEnd := now.Add(time.Duration(c.cfg.CountdownShortSec * float64(time.Second)))
			if c.countdownEndAt.After(shortEnd) {
				c.countdownEndAt = shortEnd
				events = append(events, MatchStateChangedEvent{Phase: PhaseCountdown, CountdownEndSec: c.cfg.CountdownShortSec})
			}
		} else {
			// A new player joined mid-countdown with room to spare: reset to
			// the full long countdown.
			c.countdownEndAt = now.Add(time.Duration(c.cfg.CountdownLongSec * float64(time.Second)))
			events = append(events, MatchStateChangedEvent{Phase: PhaseCountdown, CountdownEndSec: c.cfg.CountdownLongSec})
		}
	}
	return events
}

// tick advances timers that fire independently of player-count changes:
// countdown expiry and the finished-state grace period.
func (c *controller) tick(now time.Time) []Event {
	var events []Event
	switch c.phase {
	case PhaseCountdown:
		if !c.countdownEndAt.IsZero() && !now.Before(c.countdownEndAt) {
			c.phase = PhasePlaying
			c.startedAt = now
			c.redScore, c.blueScore = 0, 0
			events = append(events, MatchStateChangedEvent{Phase: PhasePlaying})
		}
	case PhaseFinished:
		if !c.finishedAt.IsZero() && now.Sub(c.finishedAt) >= time.Duration(c.cfg.FinishedGraceSec*float64(time.Second)) {
			c.phase = PhaseWaiting
			c.redScore, c.blueScore = 0, 0
			events = append(events, MatchStateChangedEvent{Phase: PhaseWaiting})
		}
	}
	return events
}

// recordKill applies team-score bookkeeping for a kill and checks victory.
// Team kills (killerTeam == victimTeam) never affect score. This is called
// from the single damage-application path in Simulation, never from weapon
// code, per the centralized-authority requirement.
func (c *controller) recordKill(killerTeam, victimTeam mapmodel.Team, now time.Time) []Event {
	if c.phase != PhasePlaying {
		return nil
	}
	if killerTeam == victimTeam {
		return nil
	}
	switch killerTeam {
	case mapmodel.TeamRed:
		c.redScore++
	case mapmodel.TeamBlue:
		c.blueScore++
	}

	if c.redScore >= c.cfg.KillTarget || c.blueScore >= c.cfg.KillTarget {
		c.phase = PhaseFinished
		c.finishedAt = now
		if c.redScore > c.blueScore {
			c.winner = mapmodel.TeamRed
		} else {
			c.winner = mapmodel.TeamBlue
		}
		return []Event{MatchStateChangedEvent{Phase: PhaseFinished, WinningTeam: c.winner}}
	}
	return nil
}
