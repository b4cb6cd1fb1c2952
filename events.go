package anna

import (
	"slices"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type pairKey struct {
	bodyA actor.Handle
	bodyB actor.Handle
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB actor.Handle) pairKey {
	if bodyB.Less(bodyA) {
		bodyA, bodyB = bodyB, bodyA
	}
	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func comparePairKeys(a, b pairKey) int {
	if a.bodyA != b.bodyA {
		if a.bodyA.Less(b.bodyA) {
			return -1
		}
		return 1
	}
	if a.bodyB != b.bodyB {
		if a.bodyB.Less(b.bodyB) {
			return -1
		}
		return 1
	}
	return 0
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

type CollisionEnterEvent struct {
	BodyA actor.Handle
	BodyB actor.Handle
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA actor.Handle
	BodyB actor.Handle
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA actor.Handle
	BodyB actor.Handle
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers the collision events of a step and sends them at its end
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts marks the pairs of the touching contacts of a substep
func (e *Events) recordContacts(records []constraint.Record) {
	for i := range records {
		c := records[i].Contact()
		if c == nil || !c.Touching() {
			continue
		}
		e.currentActivePairs[makePairKey(records[i].HandleA, records[i].HandleB)] = true
	}
}

// forget drops the tracked pairs of a removed body
func (e *Events) forget(h actor.Handle) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == h || pair.bodyB == h {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == h || pair.bodyB == h {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit.
// Events are buffered in pair order.
func (e *Events) processCollisionEvents() {
	current := sortedPairs(e.currentActivePairs)
	for _, pair := range current {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for _, pair := range sortedPairs(e.previousActivePairs) {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func sortedPairs(pairs map[pairKey]bool) []pairKey {
	keys := make([]pairKey, 0, len(pairs))
	for pair := range pairs {
		keys = append(keys, pair)
	}
	slices.SortFunc(keys, comparePairKeys)
	return keys
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
