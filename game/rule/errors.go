package rule

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable code carried by every rejected intent.
type Reason string

const (
	ReasonInsufficientResource Reason = "insufficient_resource"
	ReasonInsufficientMana     Reason = "insufficient_mana"
	ReasonRecipeNotSatisfied   Reason = "recipe_not_satisfied"
	ReasonIngredientNotOwned   Reason = "ingredient_not_owned"
	ReasonPrerequisiteNotMet   Reason = "prerequisite_not_met"
	ReasonInvalidTarget        Reason = "invalid_target"
	ReasonConfiguration        Reason = "configuration_error"
	ReasonNotFound             Reason = "not_found"
	ReasonAlreadyClaimed       Reason = "already_claimed"
	ReasonInvalidRequest       Reason = "invalid_request"
)

// Sentinels for errors.Is. Concrete errors built with Errorf match the
// sentinel of the same reason.
var (
	ErrInsufficientResource = &Error{Reason: ReasonInsufficientResource, Msg: "insufficient resource"}
	ErrInsufficientMana     = &Error{Reason: ReasonInsufficientMana, Msg: "insufficient mana"}
	ErrRecipeNotSatisfied   = &Error{Reason: ReasonRecipeNotSatisfied, Msg: "recipe not satisfied"}
	ErrIngredientNotOwned   = &Error{Reason: ReasonIngredientNotOwned, Msg: "ingredient not owned"}
	ErrPrerequisiteNotMet   = &Error{Reason: ReasonPrerequisiteNotMet, Msg: "prerequisite not met"}
	ErrInvalidTarget        = &Error{Reason: ReasonInvalidTarget, Msg: "invalid target"}
	ErrConfiguration        = &Error{Reason: ReasonConfiguration, Msg: "configuration error"}
	ErrNotFound             = &Error{Reason: ReasonNotFound, Msg: "not found"}
	ErrAlreadyClaimed       = &Error{Reason: ReasonAlreadyClaimed, Msg: "already claimed"}
	ErrInvalidRequest       = &Error{Reason: ReasonInvalidRequest, Msg: "invalid request"}
)

// Error is a typed rule violation. It never wraps another error: a rejected
// intent is a normal outcome, not a failure of the engine.
type Error struct {
	Reason Reason
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// Is matches on reason. Insufficient mana is also an insufficient resource.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason == e.Reason {
		return true
	}
	return t.Reason == ReasonInsufficientResource && e.Reason == ReasonInsufficientMana
}

// Errorf builds an Error with a formatted message.
func Errorf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason code of err, or "" when err is not a rule error.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
