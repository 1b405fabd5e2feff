package orchestrator

// Action is the state of a trade session. It is the single source of truth
// for what the session does next: each Advance call executes the pending
// action and moves Action forward.
type Action string

const (
	ActionIdle             Action = "idle"
	ActionGetQuote         Action = "get_quote"
	ActionGetBestRoute     Action = "get_best_route"
	ActionAccept           Action = "accept"
	ActionGenerateCallData Action = "generate_call_data"
	ActionApprove          Action = "approve"
	ActionSwap             Action = "swap"
	ActionInitBridgeTxn    Action = "init_bridge_txn"
	ActionRegisterIntent   Action = "register_intent"
	ActionGetOrderDetails  Action = "get_order_details"
)

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}
