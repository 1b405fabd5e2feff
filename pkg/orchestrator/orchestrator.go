package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chain-swap/pkg/chains"
	"chain-swap/pkg/client"
	"chain-swap/pkg/orderid"
	"chain-swap/pkg/types"
	"chain-swap/pkg/wallet"
)

// Orchestrator drives one trade session through its state machine: it builds
// the trade-service requests from the session inputs, interprets returned
// step metadata to pick the next action, and asks the wallet to sign and
// send each on-chain step. Every outbound call passes the Confirmer first.
//
// Failure semantics: a trade-service or routing error resets the session to
// idle; a wallet error leaves the session at the failed action so the user
// can retry; a declined confirmation changes nothing.
type Orchestrator struct {
	svc     client.TradeService
	wallet  wallet.Wallet
	session *Session
	confirm Confirmer
	log     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets the confirmation gate.
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) { o.confirm = c }
}

// WithLogger sets the orchestrator's logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an orchestrator for one session. The wallet operates on the
// session's source chain.
func New(svc client.TradeService, w wallet.Wallet, session *Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:     svc,
		wallet:  w,
		session: session,
		confirm: AutoConfirmer{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the session this orchestrator drives.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Advance executes the session's pending action and returns the action that
// follows it. From idle it starts a fresh flow with a quote request.
func (o *Orchestrator) Advance(ctx context.Context) (Action, error) {
	var err error
	switch o.session.Action {
	case ActionIdle, ActionGetQuote:
		err = o.RequestQuote(ctx)
	case ActionGetBestRoute:
		err = o.RequestBestRoute(ctx)
	case ActionAccept:
		err = o.Accept(ctx)
	case ActionGenerateCallData:
		err = o.GenerateCallData(ctx)
	case ActionApprove:
		err = o.ExecuteApproval(ctx)
	case ActionSwap:
		err = o.ExecuteSwap(ctx)
	case ActionInitBridgeTxn:
		err = o.InitBridgeTxn(ctx)
	case ActionRegisterIntent:
		err = o.RegisterIntent(ctx)
	case ActionGetOrderDetails:
		_, err = o.FetchOrderDetails(ctx)
	default:
		err = fmt.Errorf("unknown action %q", o.session.Action)
	}
	return o.session.Action, err
}

// RequestQuote asks for an indicative output amount. On success the session
// advances to get_best_route.
func (o *Orchestrator) RequestQuote(ctx context.Context) error {
	if err := o.session.CanRequestQuote(o.wallet != nil, nil); err != nil {
		return err
	}

	req, err := o.quoteRequest()
	if err != nil {
		return err
	}

	if err := o.confirmRequest("get-quote", req); err != nil {
		return err
	}

	resp, err := o.svc.GetQuote(ctx, req)
	if err != nil {
		return o.failAPI("get-quote", err)
	}

	output, err := FormatUnits(resp.OutputAmount, o.session.ToToken.Decimals)
	if err != nil {
		return o.failRouting("get-quote", fmt.Errorf("unparseable output amount: %w", err))
	}

	o.session.QuoteOutputAmount = output
	o.session.Action = ActionGetBestRoute
	o.confirm.ShowResponse("get-quote", resp)
	o.log.Info("quote received",
		zap.String("output_amount", output),
		zap.String("to_token", o.session.ToToken.Symbol))
	return nil
}

// RequestBestRoute asks for an executable route and picks the next action
// from its steps. Quotes are informational, so the route may also be
// requested directly from idle.
func (o *Orchestrator) RequestBestRoute(ctx context.Context) error {
	if err := o.session.CanRequestQuote(o.wallet != nil, nil); err != nil {
		return err
	}

	fromAmount, err := ParseUnits(o.session.Amount, o.session.FromToken.Decimals)
	if err != nil {
		return err
	}

	req := &types.GetBestRouteRequest{
		FromToken:             o.tokenAddress(o.session.FromChain, o.session.FromToken),
		FromChain:             o.session.FromChain,
		ToToken:               o.tokenAddress(o.session.ToChain, o.session.ToToken),
		ToChain:               o.session.ToChain,
		FromAmount:            fromAmount,
		Slippage:              o.session.Slippage,
		FromUserWalletAddress: o.wallet.Address(),
		ToUserWalletAddress:   o.recipient(),
	}

	if err := o.confirmRequest("get-best-route", req); err != nil {
		return err
	}

	resp, err := o.svc.GetBestRoute(ctx, req)
	if err != nil {
		return o.failAPI("get-best-route", err)
	}

	if resp.OutputAmount != "" {
		output, err := FormatUnits(resp.OutputAmount, o.session.ToToken.Decimals)
		if err != nil {
			return o.failRouting("get-best-route", fmt.Errorf("unparseable output amount: %w", err))
		}
		o.session.RouteOutputAmount = output
	}

	next, err := NextAfterRoute(resp, o.session.SameChain())
	if err != nil {
		return o.failRouting("get-best-route", err)
	}

	o.session.RouteResponse = resp
	o.session.Action = next
	o.confirm.ShowResponse("get-best-route", resp)
	o.log.Info("route received",
		zap.String("route_id", resp.RouteID),
		zap.Int("steps", len(resp.Steps)),
		zap.Stringer("next", next))
	return nil
}

// Accept signs the route's EIP-712 permit document. Signing is only reached
// when the server requires it; the transition target is always
// generate_call_data.
func (o *Orchestrator) Accept(ctx context.Context) error {
	route := o.session.RouteResponse
	if route == nil || len(route.PermitDataToSign) == 0 {
		return o.failRouting("accept", fmt.Errorf("no permit data to sign"))
	}

	typedData, err := ParseTypedData(route.PermitDataToSign)
	if err != nil {
		return o.failRouting("accept", err)
	}

	if err := o.confirmRequest("sign-permit", json.RawMessage(route.PermitDataToSign)); err != nil {
		return err
	}

	signature, err := o.wallet.SignTypedData(ctx, typedData)
	if err != nil {
		return o.failWallet("sign-permit", err)
	}

	o.session.PermitData = rawToString(route.PermitDataToSign)
	o.session.PermitSignature = signature
	o.session.Action = ActionGenerateCallData
	o.log.Info("permit signed")
	return nil
}

// GenerateCallData exchanges the route (plus permit, when signed) for
// executable transaction data, then routes on the returned steps.
func (o *Orchestrator) GenerateCallData(ctx context.Context) error {
	route := o.session.RouteResponse
	if route == nil {
		return o.failRouting("get-call-data", fmt.Errorf("no route to generate call data for"))
	}

	fromAmount, err := ParseUnits(o.session.Amount, o.session.FromToken.Decimals)
	if err != nil {
		return err
	}

	req := &types.GetCallDataRequest{
		RouteID:               route.RouteID,
		FromToken:             o.tokenAddress(o.session.FromChain, o.session.FromToken),
		FromChain:             o.session.FromChain,
		ToToken:               o.tokenAddress(o.session.ToChain, o.session.ToToken),
		ToChain:               o.session.ToChain,
		FromAmount:            fromAmount,
		ToTokenAmountMinimum:  route.OutputAmount,
		Slippage:              o.session.Slippage,
		FromUserWalletAddress: o.wallet.Address(),
		ToUserWalletAddress:   o.recipient(),
		PermitData:            o.session.PermitData,
		PermitSignature:       o.session.PermitSignature,
	}

	if err := o.confirmRequest("get-call-data", req); err != nil {
		return err
	}

	resp, err := o.svc.GetCallData(ctx, req)
	if err != nil {
		return o.failAPI("get-call-data", err)
	}

	next, err := NextAfterCallData(resp.Steps)
	if err != nil {
		return o.failRouting("get-call-data", err)
	}

	o.session.CallDataResponse = resp
	o.session.Action = next
	o.confirm.ShowResponse("get-call-data", resp)
	o.log.Info("call data received",
		zap.Int("steps", len(resp.Steps)),
		zap.Stringer("next", next))
	return nil
}

// ExecuteApproval sends the pending approval transaction and re-evaluates
// the remaining steps once it is mined.
func (o *Orchestrator) ExecuteApproval(ctx context.Context) error {
	steps := o.currentSteps()
	step := FindStep(steps, StepApproval)
	if step == nil {
		return o.failRouting("approval", fmt.Errorf("no approval step found"))
	}

	if err := o.confirmRequest("approval-transaction", json.RawMessage(step.TxnData)); err != nil {
		return err
	}

	txHash, err := o.wallet.SendTransaction(ctx, step.TxnData)
	if err != nil {
		return o.failWallet("approval", err)
	}
	o.session.TxHashes = append(o.session.TxHashes, txHash)
	o.log.Info("approval submitted", zap.String("tx_hash", txHash))

	if _, err := o.wallet.WaitForReceipt(ctx, txHash); err != nil {
		return o.failWallet("approval", err)
	}

	next, err := NextAfterApproval(steps, o.session.SameChain())
	if err != nil {
		return o.failRouting("approval", err)
	}

	o.session.Action = next
	o.log.Info("approval confirmed", zap.Stringer("next", next))
	return nil
}

// ExecuteSwap sends the dex transaction of a same-chain trade. Its mined
// receipt is the terminal success of the flow; the session resets so a new
// trade can start.
func (o *Orchestrator) ExecuteSwap(ctx context.Context) error {
	step := FindStep(o.currentSteps(), StepDexSwap)
	if step == nil {
		return o.failRouting("swap", fmt.Errorf("no dex step found"))
	}

	if err := o.confirmRequest("swap-transaction", json.RawMessage(step.TxnData)); err != nil {
		return err
	}

	txHash, err := o.wallet.SendTransaction(ctx, step.TxnData)
	if err != nil {
		return o.failWallet("swap", err)
	}
	o.log.Info("swap submitted", zap.String("tx_hash", txHash))

	if _, err := o.wallet.WaitForReceipt(ctx, txHash); err != nil {
		return o.failWallet("swap", err)
	}

	o.log.Info("swap confirmed", zap.String("tx_hash", txHash))
	o.session.Reset()
	o.session.TxHashes = []string{txHash}
	return nil
}

// InitBridgeTxn sends the bridge-init transaction and extracts the order id
// from its receipt logs. A receipt without the order event is fatal: the
// flow cannot continue without an order id.
func (o *Orchestrator) InitBridgeTxn(ctx context.Context) error {
	step := FindStep(o.currentSteps(), StepBridgeInit)
	if step == nil {
		return o.failRouting("init-bridge", fmt.Errorf("no bridge init step found"))
	}

	if err := o.confirmRequest("bridge-transaction", json.RawMessage(step.TxnData)); err != nil {
		return err
	}

	txHash, err := o.wallet.SendTransaction(ctx, step.TxnData)
	if err != nil {
		return o.failWallet("init-bridge", err)
	}
	o.session.TxHashes = append(o.session.TxHashes, txHash)
	o.log.Info("bridge transaction submitted", zap.String("tx_hash", txHash))

	receipt, err := o.wallet.WaitForReceipt(ctx, txHash)
	if err != nil {
		return o.failWallet("init-bridge", err)
	}

	id := orderid.FromReceipt(receipt)
	if id == "" {
		return o.failRouting("init-bridge", fmt.Errorf("order id not found in receipt logs of %s", txHash))
	}

	o.session.OrderID = id
	o.session.Action = ActionGetOrderDetails
	o.log.Info("order initiated", zap.String("order_id", id), zap.String("tx_hash", txHash))
	return nil
}

// RegisterIntent signs the order typed-data document and registers the
// signed order with the backend. The registration response is the order
// identifier.
func (o *Orchestrator) RegisterIntent(ctx context.Context) error {
	callData := o.session.CallDataResponse
	if callData == nil || len(callData.OrderTypedData) == 0 {
		return o.failRouting("register-intent", fmt.Errorf("no order typed data"))
	}

	step := FindStep(callData.Steps, StepIntentRegister)
	if step == nil {
		return o.failRouting("register-intent", fmt.Errorf("no intent step found"))
	}
	if step.IntentCalldata == "" {
		return o.failRouting("register-intent", fmt.Errorf("intent step has no calldata"))
	}

	typedData, err := ParseTypedData(callData.OrderTypedData)
	if err != nil {
		return o.failRouting("register-intent", err)
	}

	if err := o.confirmRequest("sign-order", json.RawMessage(callData.OrderTypedData)); err != nil {
		return err
	}

	signature, err := o.wallet.SignTypedData(ctx, typedData)
	if err != nil {
		return o.failWallet("sign-order", err)
	}

	req := &types.RegisterIntentRequest{
		OrderBytes:          step.IntentCalldata,
		OrderBytesSignature: signature,
		CaipID:              o.session.FromChain,
	}

	if err := o.confirmRequest("register-intent", req); err != nil {
		return err
	}

	resp, err := o.svc.RegisterIntent(ctx, req)
	if err != nil {
		return o.failAPI("register-intent", err)
	}

	id := strings.TrimSpace(rawToString(resp))
	if id == "" {
		return o.failRouting("register-intent", fmt.Errorf("empty order identifier in response"))
	}

	o.session.OrderID = id
	o.session.Action = ActionGetOrderDetails
	o.confirm.ShowResponse("register-intent", json.RawMessage(resp))
	o.log.Info("intent registered", zap.String("order_id", id))
	return nil
}

// FetchOrderDetails performs one status fetch for the session's order. The
// flow is complete after the first fetch; continuous refresh is the status
// poller's job.
func (o *Orchestrator) FetchOrderDetails(ctx context.Context) (*types.OrderDetails, error) {
	if o.session.OrderID == "" {
		return nil, o.failRouting("order-details", fmt.Errorf("no order id"))
	}

	req := &types.GetOrderDetailsRequest{
		OrderID: o.session.OrderID,
		CaipID:  o.session.FromChain,
	}

	if err := o.confirmRequest("order-details", req); err != nil {
		return nil, err
	}

	details, err := o.svc.GetOrderDetails(ctx, req)
	if err != nil {
		return nil, o.failAPI("order-details", err)
	}

	o.session.Action = ActionIdle
	o.confirm.ShowResponse("order-details", details)
	o.log.Info("order details fetched",
		zap.String("order_id", req.OrderID),
		zap.String("status", details.Status))
	return details, nil
}

func (o *Orchestrator) quoteRequest() (*types.GetQuoteRequest, error) {
	fromAmount, err := ParseUnits(o.session.Amount, o.session.FromToken.Decimals)
	if err != nil {
		return nil, err
	}
	return &types.GetQuoteRequest{
		FromToken:             o.tokenAddress(o.session.FromChain, o.session.FromToken),
		FromChain:             o.session.FromChain,
		ToToken:               o.tokenAddress(o.session.ToChain, o.session.ToToken),
		ToChain:               o.session.ToChain,
		FromAmount:            fromAmount,
		Slippage:              o.session.Slippage,
		FromUserWalletAddress: o.wallet.Address(),
		ToUserWalletAddress:   o.recipient(),
	}, nil
}

// tokenAddress renders a token for the wire: empty for native assets,
// lower-cased for EVM contract addresses.
func (o *Orchestrator) tokenAddress(caipID string, token *TokenRef) string {
	if token == nil || token.IsNative {
		return ""
	}
	if chains.IsEVM(caipID) {
		return strings.ToLower(token.Address)
	}
	return token.Address
}

func (o *Orchestrator) recipient() string {
	if o.session.Recipient != "" {
		return o.session.Recipient
	}
	return o.wallet.Address()
}

func (o *Orchestrator) confirmRequest(action string, payload any) error {
	ok, err := o.confirm.ConfirmRequest(action, payload)
	if err != nil {
		return fmt.Errorf("%s confirmation: %w", action, err)
	}
	if !ok {
		o.log.Info("request declined", zap.String("action", action))
		return fmt.Errorf("%s: %w", action, ErrDeclined)
	}
	return nil
}

func (o *Orchestrator) failAPI(action string, err error) error {
	o.session.Action = ActionIdle
	o.log.Error("trade service call failed", zap.String("action", action), zap.Error(err))
	return fmt.Errorf("%s: %w", action, err)
}

func (o *Orchestrator) failRouting(action string, err error) error {
	o.session.Action = ActionIdle
	o.log.Error("routing error", zap.String("action", action), zap.Error(err))
	return fmt.Errorf("%s: %w", action, err)
}

// failWallet surfaces a wallet failure without moving the state machine, so
// re-invoking the same action retries the signature or transaction.
func (o *Orchestrator) failWallet(action string, err error) error {
	o.log.Error("wallet call failed", zap.String("action", action), zap.Error(err))
	return fmt.Errorf("%s: %w", action, err)
}

// currentSteps returns the authoritative step list: call-data steps
// supersede route steps once generated.
func (o *Orchestrator) currentSteps() []types.Step {
	if o.session.CallDataResponse != nil {
		return o.session.CallDataResponse.Steps
	}
	if o.session.RouteResponse != nil {
		return o.session.RouteResponse.Steps
	}
	return nil
}

// rawToString renders a raw JSON value as the string the wire expects: the
// unquoted value when it is a JSON string, the compact document otherwise.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
