package statemachine

import (
	"errors"
	"strings"

	"student-mess-api/models"
)

// Actor identifies who requests a status change.
type Actor string

const (
	ActorProvider Actor = "provider"
	ActorStudent  Actor = "student"
)

// ErrUnknownStatus is returned for values outside the order status enum.
var ErrUnknownStatus = errors.New("unknown order status")

// progression is the nominal life of an order. cancelled sits outside it.
var progression = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

// AllStatuses lists every valid order status.
var AllStatuses = append(append([]models.OrderStatus{}, progression...), models.StatusCancelled)

// Transition defines a status change a restricted actor may perform
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// studentTransitions is the complete set of changes a student may make.
// Providers are not restricted to a table: any valid status may follow any other.
var studentTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorStudent},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorStudent},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range studentTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// pendingLike are the statuses counted as outstanding work on the provider dashboard.
var pendingLike = map[models.OrderStatus]bool{
	models.StatusPending:   true,
	models.StatusPreparing: true,
	models.StatusReady:     true,
}

// IsValid reports whether s is one of the seven order statuses.
func IsValid(s models.OrderStatus) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Rank is the position of s in the progression, or -1 for cancelled and unknown values.
func Rank(s models.OrderStatus) int {
	for i, v := range progression {
		if v == s {
			return i
		}
	}
	return -1
}

// IsRegression reports a move backwards along the progression, or out of a terminal state.
// It is advisory only.
func IsRegression(from, to models.OrderStatus) bool {
	if from == to {
		return false
	}
	if IsTerminal(from) {
		return true
	}
	if to == models.StatusCancelled {
		return false
	}
	return Rank(to) < Rank(from)
}

// IsTerminal reports whether s ends the order's life.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// IsPendingLike reports whether s counts as a pending order.
func IsPendingLike(s models.OrderStatus) bool {
	return pendingLike[s]
}

// PendingLike returns the pending-like statuses in progression order.
func PendingLike() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range progression {
		if pendingLike[s] {
			out = append(out, s)
		}
	}
	return out
}

// ValidTransitionsFrom returns the statuses actor may move an order to from status.
func ValidTransitionsFrom(status models.OrderStatus, actor Actor) []models.OrderStatus {
	var nexts []models.OrderStatus
	if actor == ActorProvider {
		for _, s := range AllStatuses {
			if s != status {
				nexts = append(nexts, s)
			}
		}
		return nexts
	}
	seen := map[models.OrderStatus]bool{}
	for _, t := range studentTransitions {
		if t.From == status && t.Actor == actor && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if !IsValid(to) {
		return ErrUnknownStatus
	}
	if actor == ActorProvider {
		return nil
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for " + string(actor) + ". " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from, actor),
	)
}

func describeValidFrom(status models.OrderStatus, actor Actor) string {
	nexts := ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
