package orchestrator

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"chain-swap/pkg/types"
)

// TokenRef identifies one token of a trade. Address is empty when the token
// is the chain's native asset.
type TokenRef struct {
	Address  string
	Symbol   string
	Decimals uint8
	IsNative bool
}

// Mode distinguishes the two trade flows.
type Mode int

const (
	ModeSameChain Mode = iota
	ModeCrossChain
)

// Session holds the state of one user-initiated trade. Any change to an
// input field (chain, token, amount) invalidates every derived field, so a
// stale quote is never shown as current.
type Session struct {
	Mode      Mode
	FromChain string
	ToChain   string
	FromToken *TokenRef
	ToToken   *TokenRef
	Amount    string
	Recipient string
	Slippage  string

	Action Action

	QuoteOutputAmount string
	RouteOutputAmount string
	RouteResponse     *types.GetBestRouteResponse
	CallDataResponse  *types.GetCallDataResponse
	PermitData        string
	PermitSignature   string
	OrderID           string
	TxHashes          []string
}

// NewSession creates an idle session for one flow.
func NewSession(mode Mode) *Session {
	return &Session{Mode: mode, Action: ActionIdle}
}

// SameChain reports whether the session runs the same-chain flow.
func (s *Session) SameChain() bool {
	return s.Mode == ModeSameChain
}

// SetFromChain changes the source chain and invalidates derived state.
func (s *Session) SetFromChain(caipID string) {
	s.FromChain = caipID
	s.FromToken = nil
	s.invalidate()
}

// SetToChain changes the destination chain and invalidates derived state.
func (s *Session) SetToChain(caipID string) {
	s.ToChain = caipID
	s.ToToken = nil
	s.invalidate()
}

// SetFromToken changes the source token and invalidates derived state.
func (s *Session) SetFromToken(token *TokenRef) {
	s.FromToken = token
	s.invalidate()
}

// SetToToken changes the destination token and invalidates derived state.
func (s *Session) SetToToken(token *TokenRef) {
	s.ToToken = token
	s.invalidate()
}

// SetAmount changes the trade amount and invalidates derived state.
func (s *Session) SetAmount(amount string) {
	s.Amount = amount
	s.invalidate()
}

// invalidate clears everything derived from the inputs.
func (s *Session) invalidate() {
	s.Action = ActionIdle
	s.QuoteOutputAmount = ""
	s.RouteOutputAmount = ""
	s.RouteResponse = nil
	s.CallDataResponse = nil
	s.PermitData = ""
	s.PermitSignature = ""
	s.OrderID = ""
	s.TxHashes = nil
}

// Reset clears the session back to a fresh idle state, inputs included.
func (s *Session) Reset() {
	s.FromToken = nil
	s.ToToken = nil
	s.Amount = ""
	s.invalidate()
}

// CanRequestQuote checks every guard that must hold before a quote or route
// request may be issued. The first failing guard is returned as the error;
// nil means the action is allowed.
func (s *Session) CanRequestQuote(walletConnected bool, balance *big.Int) error {
	if !walletConnected {
		return fmt.Errorf("wallet not connected")
	}
	if s.FromChain == "" || s.ToChain == "" {
		return fmt.Errorf("both chains must be selected")
	}
	if s.Mode == ModeCrossChain && s.FromChain == s.ToChain {
		return fmt.Errorf("source and destination chains must differ")
	}
	if s.Mode == ModeSameChain && s.FromChain != s.ToChain {
		return fmt.Errorf("source and destination chains must match")
	}
	if s.FromToken == nil || s.ToToken == nil {
		return fmt.Errorf("both tokens must be selected")
	}
	if s.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(s.Amount)
	if err != nil {
		return fmt.Errorf("amount %q is not numeric", s.Amount)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if balance != nil {
		baseUnits, err := ParseUnits(s.Amount, s.FromToken.Decimals)
		if err != nil {
			return err
		}
		required, ok := new(big.Int).SetString(baseUnits, 10)
		if !ok {
			return fmt.Errorf("amount %q is not numeric", s.Amount)
		}
		if required.Cmp(balance) > 0 {
			return fmt.Errorf("amount exceeds available balance")
		}
	}
	return nil
}
