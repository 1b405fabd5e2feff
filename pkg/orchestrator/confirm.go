package orchestrator

import "errors"

// ErrDeclined is returned when the user declines a confirmation prompt. The
// pending call is abandoned, not failed: session state is left untouched so
// the same action can be re-triggered.
var ErrDeclined = errors.New("confirmation declined")

// Confirmer is the human-in-the-loop gate. Every trade-service call and
// every wallet signature or transaction is shown to the user as its exact
// outbound payload before it fires; nothing is sent without approval.
type Confirmer interface {
	// ConfirmRequest shows the payload about to be sent and reports whether
	// the user approved it.
	ConfirmRequest(action string, payload any) (bool, error)

	// ShowResponse surfaces a received payload for transparency.
	ShowResponse(action string, payload any)
}

// AutoConfirmer approves every request without prompting.
type AutoConfirmer struct{}

// ConfirmRequest always approves.
func (AutoConfirmer) ConfirmRequest(string, any) (bool, error) { return true, nil }

// ShowResponse discards the payload.
func (AutoConfirmer) ShowResponse(string, any) {}
