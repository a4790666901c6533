package app

import (
	"github.com/gabrielgmendonca/flip7/internal/domain"

	"github.com/sirupsen/logrus"
)

// applyEffect applies one revealed card to a player. It is shared by the
// initial deal, the normal draw and Draw Three sequences; the source decides
// the Freeze and Draw Three variants. It may install a pending interaction
// or create or extend a Draw Three run; callers drive those through settle.
func (s *Service) applyEffect(events []Event, p *domain.Player, card domain.Card, src DrawSource) []Event {
	g := s.game

	switch {
	case card.IsNumber():
		if domain.HoldsNumber(p.Hand, card.Value) {
			if domain.HasInsurance(p.Hand) {
				// The duplicate stays out of the hand while the choice pends.
				g.Pending = &domain.Pending{Kind: domain.PendingBustChoice, PlayerID: p.ID, Card: card}
				g.Phase = domain.PhaseBustChoice
				return append(events, Event{
					Kind:    EventInsurancePrompt,
					Payload: InsurancePromptPayload{PlayerID: p.ID, Card: card},
				})
			}
			return s.bustPlayer(events, p, card)
		}
		p.Hand = append(p.Hand, card)
		events = append(events, drawnEvent(p.ID, card, src, false))
		if domain.DistinctNumberCount(p.Hand) >= domain.SevenUniqueTarget {
			events = s.stopPlayer(events, p, true)
		}
		return events

	case card.IsModifier():
		p.Hand = append(p.Hand, card)
		return append(events, drawnEvent(p.ID, card, src, false))

	case card.IsAction(domain.ActionFreeze):
		if src == DrawSourceForced {
			// Held aside until the sequence finishes.
			g.Run.SetAside = append(g.Run.SetAside, card)
			return append(events, drawnEvent(p.ID, card, src, true))
		}
		p.Hand = append(p.Hand, card)
		events = append(events, drawnEvent(p.ID, card, src, false))
		return s.resolveFreezeCard(events, p, card)

	case card.IsAction(domain.ActionDrawThree):
		p.Hand = append(p.Hand, card)
		events = append(events, drawnEvent(p.ID, card, src, false))
		switch src {
		case DrawSourceForced:
			g.Run.Remaining += 3
			return append(events, Event{
				Kind:    EventDrawThreeStarted,
				Payload: DrawThreeStartedPayload{TargetID: g.Run.TargetID, Remaining: g.Run.Remaining, Extended: true},
			})
		case DrawSourceDeal:
			// During the deal the sequence runs on the dealt player in
			// place, with no target choice.
			g.Run = &domain.DrawThreeRun{TargetID: p.ID, Remaining: 3}
			return append(events, Event{
				Kind:    EventDrawThreeStarted,
				Payload: DrawThreeStartedPayload{TargetID: p.ID, Remaining: 3},
			})
		default:
			return s.resolveDrawThreeCard(events, p, card)
		}

	case card.IsAction(domain.ActionBustInsurance):
		if !domain.HasInsurance(p.Hand) {
			p.Hand = append(p.Hand, card)
			return append(events, drawnEvent(p.ID, card, src, false))
		}
		// Insurance does not stack; pass the extra one along.
		events = append(events, drawnEvent(p.ID, card, src, false))
		return s.passInsurance(events, p, card)
	}
	return events
}

func drawnEvent(playerID string, card domain.Card, src DrawSource, setAside bool) Event {
	return Event{
		Kind:    EventCardDrawn,
		Payload: CardDrawnPayload{PlayerID: playerID, Card: card, Source: src, SetAside: setAside},
	}
}

// resolveFreezeCard assigns a revealed Freeze. With a single eligible player
// it resolves immediately, which in the solo-survivor case freezes the
// drawer; with more it pauses for the drawer's choice.
func (s *Service) resolveFreezeCard(events []Event, drawer *domain.Player, card domain.Card) []Event {
	g := s.game
	targets := g.EligibleTargets()
	if len(targets) == 1 {
		return s.freezePlayer(events, g.PlayerByID(targets[0]), drawer.ID)
	}
	g.Pending = &domain.Pending{Kind: domain.PendingFreezeTarget, PlayerID: drawer.ID, Card: card, Eligible: targets}
	g.Phase = domain.PhaseFreezeTarget
	return append(events, Event{
		Kind:    EventFreezePrompt,
		Payload: FreezePromptPayload{PlayerID: drawer.ID, Eligible: targets},
	})
}

// resolveDrawThreeCard targets a Draw Three drawn in normal play.
func (s *Service) resolveDrawThreeCard(events []Event, drawer *domain.Player, card domain.Card) []Event {
	g := s.game
	targets := g.EligibleTargets()
	if len(targets) == 1 {
		g.Run = &domain.DrawThreeRun{TargetID: targets[0], Remaining: 3}
		return append(events, Event{
			Kind:    EventDrawThreeStarted,
			Payload: DrawThreeStartedPayload{TargetID: targets[0], Remaining: 3},
		})
	}
	g.Pending = &domain.Pending{Kind: domain.PendingDrawThreeTarget, PlayerID: drawer.ID, Card: card, Eligible: targets}
	g.Phase = domain.PhaseDrawThreeTarget
	return append(events, Event{
		Kind:    EventDrawThreePrompt,
		Payload: DrawThreePromptPayload{PlayerID: drawer.ID, Eligible: targets},
	})
}

// passInsurance hands a non-stacking extra insurance to the next active
// player in seat order without one, or discards it when nobody can take it.
func (s *Service) passInsurance(events []Event, from *domain.Player, card domain.Card) []Event {
	g := s.game
	n := len(g.Players)
	for i := 1; i < n; i++ {
		q := g.Players[(from.Seat+i)%n]
		if q.CanAct() && !domain.HasInsurance(q.Hand) {
			q.Hand = append(q.Hand, card)
			return append(events, Event{
				Kind:    EventInsurancePassed,
				Payload: InsurancePassedPayload{FromID: from.ID, ToID: q.ID},
			})
		}
	}
	g.DiscardCards(card)
	return append(events, Event{
		Kind:    EventInsurancePassed,
		Payload: InsurancePassedPayload{FromID: from.ID, Discarded: true},
	})
}

// stopPlayer banks the player's hand as scored and removes them from the
// round. auto marks the seven-unique auto-stop.
func (s *Service) stopPlayer(events []Event, p *domain.Player, auto bool) []Event {
	p.Status = domain.StatusStopped
	p.RoundScore = domain.ScoreHand(p.Hand)
	s.log.WithFields(logrus.Fields{"player": p.ID, "round_score": p.RoundScore, "auto": auto}).Info("player stopped")
	return append(events, Event{
		Kind:    EventPlayerStopped,
		Payload: PlayerStoppedPayload{PlayerID: p.ID, RoundScore: p.RoundScore, Auto: auto},
	})
}

// bustPlayer applies an unconditional bust: round score zero, the whole hand
// and the duplicate to the discard pile.
func (s *Service) bustPlayer(events []Event, p *domain.Player, dup domain.Card) []Event {
	g := s.game
	p.Status = domain.StatusBusted
	p.RoundScore = 0
	g.DiscardCards(p.Hand...)
	g.DiscardCards(dup)
	p.Hand = nil
	s.log.WithFields(logrus.Fields{"player": p.ID, "card": dup.String()}).Info("player busted")
	return append(events, Event{
		Kind:    EventPlayerBusted,
		Payload: PlayerBustedPayload{PlayerID: p.ID, Card: dup},
	})
}

// freezePlayer ends the target's round with their current hand banked at
// round end.
func (s *Service) freezePlayer(events []Event, target *domain.Player, byID string) []Event {
	target.Status = domain.StatusFrozen
	target.RoundScore = domain.ScoreHand(target.Hand)
	s.log.WithFields(logrus.Fields{"player": target.ID, "by": byID, "round_score": target.RoundScore}).Info("player frozen")
	return append(events, Event{
		Kind:    EventPlayerFrozen,
		Payload: PlayerFrozenPayload{PlayerID: target.ID, ByID: byID, RoundScore: target.RoundScore},
	})
}

// continueRun advances a Draw Three sequence until it pauses on a pending
// interaction or finishes. Finishing resolves set-aside Freeze cards one at
// a time: while the target is still active each resolves like a normally
// drawn Freeze, otherwise it goes to the discard pile unused.
func (s *Service) continueRun(events []Event) []Event {
	g := s.game
	run := g.Run
	target := g.PlayerByID(run.TargetID)

	for run.Remaining > 0 && target.CanAct() {
		card, ok := g.DrawCard(s.rng)
		if !ok {
			run.Remaining = 0
			break
		}
		run.Remaining--
		events = s.applyEffect(events, target, card, DrawSourceForced)
		if g.Pending != nil {
			return events
		}
	}

	for len(run.SetAside) > 0 {
		card := run.SetAside[0]
		run.SetAside = run.SetAside[1:]
		if target.Status != domain.StatusActive {
			g.DiscardCards(card)
			events = append(events, Event{
				Kind:    EventFreezeDiscarded,
				Payload: FreezeDiscardedPayload{TargetID: target.ID, Card: card},
			})
			continue
		}
		target.Hand = append(target.Hand, card)
		events = s.resolveFreezeCard(events, target, card)
		if g.Pending != nil {
			return events
		}
	}

	g.Run = nil
	return events
}
