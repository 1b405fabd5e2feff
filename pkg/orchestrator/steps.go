package orchestrator

import (
	"errors"
	"fmt"

	"chain-swap/pkg/types"
)

var (
	// ErrUnknownStep reports a step metadata combination the client cannot
	// interpret. It indicates a contract mismatch with the backend and is
	// fatal for the current flow.
	ErrUnknownStep = errors.New("unrecognized step metadata")

	// ErrNoBridgeStep reports a cross-chain route with no bridge step.
	ErrNoBridgeStep = errors.New("route has no bridge step")
)

// StepKind is a step decoded into one of the closed set of actions the
// client knows how to execute. Unknown is an explicit error variant, never
// silently skipped.
type StepKind int

const (
	StepUnknown StepKind = iota
	StepApproval
	StepDexSwap
	StepBridgeInit
	StepIntentRegister
)

// String implements fmt.Stringer.
func (k StepKind) String() string {
	switch k {
	case StepApproval:
		return "approval"
	case StepDexSwap:
		return "dex_swap"
	case StepBridgeInit:
		return "bridge_init"
	case StepIntentRegister:
		return "intent_register"
	default:
		return "unknown"
	}
}

// Classify decodes a server-supplied step by its metadata tags.
func Classify(step types.Step) StepKind {
	m := step.Metadata
	if m == nil {
		return StepUnknown
	}
	if m.TransactionType == "approval" {
		return StepApproval
	}
	if m.ServiceType == "bridge" {
		switch m.TransactionType {
		case "init":
			return StepBridgeInit
		case "":
			return StepIntentRegister
		default:
			return StepUnknown
		}
	}
	if m.TransactionType == "dex" || m.ServiceType == "dex" {
		return StepDexSwap
	}
	return StepUnknown
}

// FindStep returns the first step of the given kind, or nil.
func FindStep(steps []types.Step, kind StepKind) *types.Step {
	for i := range steps {
		if Classify(steps[i]) == kind {
			return &steps[i]
		}
	}
	return nil
}

// NonApprovalSteps returns the steps left to execute once approvals are done.
func NonApprovalSteps(steps []types.Step) []types.Step {
	remaining := make([]types.Step, 0, len(steps))
	for _, step := range steps {
		if Classify(step) != StepApproval {
			remaining = append(remaining, step)
		}
	}
	return remaining
}

// NextAfterRoute decides the state that follows a successful best-route
// response. Same-chain flows look at the first step for a pending approval;
// cross-chain flows sign the permit first when the server requires one.
func NextAfterRoute(route *types.GetBestRouteResponse, sameChain bool) (Action, error) {
	if !sameChain {
		if len(route.PermitDataToSign) > 0 {
			return ActionAccept, nil
		}
		return ActionGenerateCallData, nil
	}

	if len(route.Steps) == 0 {
		return ActionIdle, fmt.Errorf("%w: route has no steps", ErrUnknownStep)
	}
	if Classify(route.Steps[0]) == StepApproval {
		return ActionApprove, nil
	}
	return ActionSwap, nil
}

// NextAfterCallData decides the state that follows a successful call-data
// response: pending approvals execute first, then the bridge step picks
// between an init transaction and intent registration.
func NextAfterCallData(steps []types.Step) (Action, error) {
	if FindStep(steps, StepApproval) != nil {
		return ActionApprove, nil
	}
	return bridgeAction(steps)
}

// NextAfterApproval re-evaluates the remaining steps once an approval has
// been mined. Same-chain flows always proceed to the dex swap; cross-chain
// flows expect exactly one remaining step and route on its kind.
func NextAfterApproval(steps []types.Step, sameChain bool) (Action, error) {
	if sameChain {
		return ActionSwap, nil
	}

	remaining := NonApprovalSteps(steps)
	if len(remaining) != 1 {
		return ActionIdle, fmt.Errorf("%w: expected one step after approval, got %d", ErrUnknownStep, len(remaining))
	}
	return bridgeAction(remaining)
}

func bridgeAction(steps []types.Step) (Action, error) {
	for _, step := range steps {
		switch Classify(step) {
		case StepBridgeInit:
			return ActionInitBridgeTxn, nil
		case StepIntentRegister:
			return ActionRegisterIntent, nil
		case StepApproval, StepDexSwap:
			continue
		default:
			m := step.Metadata
			if m != nil {
				return ActionIdle, fmt.Errorf("%w: serviceType=%q transactionType=%q", ErrUnknownStep, m.ServiceType, m.TransactionType)
			}
			return ActionIdle, fmt.Errorf("%w: step has no metadata", ErrUnknownStep)
		}
	}
	return ActionIdle, ErrNoBridgeStep
}
