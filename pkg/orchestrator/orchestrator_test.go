package orchestrator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"

	"chain-swap/pkg/orderid"
	"chain-swap/pkg/types"
)

const permitDoc = `{
	"types": {
		"EIP712Domain": [{"name": "name", "type": "string"}],
		"Permit": [{"name": "value", "type": "uint256"}]
	},
	"primaryType": "Permit",
	"domain": {"name": "Permit2"},
	"message": {"value": "1"}
}`

type fakeService struct {
	quote        *types.GetQuoteResponse
	route        *types.GetBestRouteResponse
	callData     *types.GetCallDataResponse
	registerResp json.RawMessage
	details      *types.OrderDetails
	err          error

	calls        []string
	quoteReqs    []*types.GetQuoteRequest
	routeReqs    []*types.GetBestRouteRequest
	callDataReqs []*types.GetCallDataRequest
	registerReqs []*types.RegisterIntentRequest
}

func (f *fakeService) GetQuote(_ context.Context, req *types.GetQuoteRequest) (*types.GetQuoteResponse, error) {
	f.calls = append(f.calls, "get-quote")
	f.quoteReqs = append(f.quoteReqs, req)
	return f.quote, f.err
}

func (f *fakeService) GetBestRoute(_ context.Context, req *types.GetBestRouteRequest) (*types.GetBestRouteResponse, error) {
	f.calls = append(f.calls, "get-best-route")
	f.routeReqs = append(f.routeReqs, req)
	return f.route, f.err
}

func (f *fakeService) GetCallData(_ context.Context, req *types.GetCallDataRequest) (*types.GetCallDataResponse, error) {
	f.calls = append(f.calls, "get-call-data")
	f.callDataReqs = append(f.callDataReqs, req)
	return f.callData, f.err
}

func (f *fakeService) RegisterIntent(_ context.Context, req *types.RegisterIntentRequest) (json.RawMessage, error) {
	f.calls = append(f.calls, "register-intent")
	f.registerReqs = append(f.registerReqs, req)
	return f.registerResp, f.err
}

func (f *fakeService) GetOrderDetails(_ context.Context, _ *types.GetOrderDetailsRequest) (*types.OrderDetails, error) {
	f.calls = append(f.calls, "order-details")
	return f.details, f.err
}

type fakeWallet struct {
	address   string
	caipID    string
	signature string
	signErr   error
	txHash    string
	sendErr   error
	receipt   *ethtypes.Receipt
	sent      []json.RawMessage
}

func (f *fakeWallet) Address() string     { return f.address }
func (f *fakeWallet) CAIPChainID() string { return f.caipID }

func (f *fakeWallet) SignTypedData(context.Context, apitypes.TypedData) (string, error) {
	return f.signature, f.signErr
}

func (f *fakeWallet) SendTransaction(_ context.Context, txnData json.RawMessage) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, txnData)
	return f.txHash, nil
}

func (f *fakeWallet) WaitForReceipt(context.Context, string) (*ethtypes.Receipt, error) {
	return f.receipt, nil
}

// decliner refuses every confirmation.
type decliner struct{}

func (decliner) ConfirmRequest(string, any) (bool, error) { return false, nil }
func (decliner) ShowResponse(string, any)                 {}

func newTestSession(mode Mode) *Session {
	s := NewSession(mode)
	s.SetFromChain("eip155:8453")
	if mode == ModeSameChain {
		s.SetToChain("eip155:8453")
	} else {
		s.SetToChain("eip155:42161")
	}
	s.SetFromToken(&TokenRef{Address: "0xUSDC", Symbol: "USDC", Decimals: 6})
	s.SetToToken(&TokenRef{Symbol: "ETH", Decimals: 18, IsNative: true})
	s.SetAmount("100")
	return s
}

func approvalStep() types.Step {
	return types.Step{
		Metadata: &types.StepMetadata{TransactionType: "approval"},
		TxnData:  json.RawMessage(`{"to":"0xspender","data":"0x095ea7b3"}`),
	}
}

func dexStep() types.Step {
	return types.Step{
		Metadata: &types.StepMetadata{ServiceType: "dex", TransactionType: "dex"},
		TxnData:  json.RawMessage(`{"to":"0xrouter","data":"0xdeadbeef"}`),
	}
}

func bridgeInitStep() types.Step {
	return types.Step{
		Metadata: &types.StepMetadata{ServiceType: "bridge", TransactionType: "init"},
		TxnData:  json.RawMessage(`{"to":"0xbridge","data":"0xcafe"}`),
	}
}

func intentStep(calldata string) types.Step {
	return types.Step{
		Metadata:       &types.StepMetadata{ServiceType: "bridge"},
		IntentCalldata: calldata,
	}
}

func orderInitiatedReceipt(data []byte) *ethtypes.Receipt {
	return &ethtypes.Receipt{
		Logs: []*ethtypes.Log{{
			Topics: []common.Hash{common.HexToHash(orderid.OrderInitiatedTopic)},
			Data:   data,
		}},
	}
}

func TestSameChainFlow(t *testing.T) {
	svc := &fakeService{
		quote: &types.GetQuoteResponse{OutputAmount: "50000000000000000"},
		route: &types.GetBestRouteResponse{
			RouteID:      "route-1",
			OutputAmount: "50000000000000000",
			Steps:        []types.Step{approvalStep(), dexStep()},
		},
	}
	w := &fakeWallet{address: "0xME", caipID: "eip155:8453", txHash: "0xtx", receipt: &ethtypes.Receipt{}}
	session := newTestSession(ModeSameChain)
	orch := New(svc, w, session)

	ctx := context.Background()

	require.NoError(t, orch.RequestQuote(ctx))
	require.Equal(t, ActionGetBestRoute, session.Action)
	require.Equal(t, "100000000", svc.quoteReqs[0].FromAmount)
	require.Equal(t, "0.05", session.QuoteOutputAmount)

	require.NoError(t, orch.RequestBestRoute(ctx))
	require.Equal(t, ActionApprove, session.Action)

	require.NoError(t, orch.ExecuteApproval(ctx))
	require.Equal(t, ActionSwap, session.Action, "approval must lead to swap, not idle")
	require.Len(t, w.sent, 1)

	require.NoError(t, orch.ExecuteSwap(ctx))
	require.Equal(t, ActionIdle, session.Action)
	require.Len(t, w.sent, 2)
	require.Equal(t, []string{"0xtx"}, session.TxHashes)
	require.Nil(t, session.FromToken, "session resets after a completed swap")
}

func TestSameChainFlowWithoutApproval(t *testing.T) {
	svc := &fakeService{
		quote: &types.GetQuoteResponse{OutputAmount: "1"},
		route: &types.GetBestRouteResponse{Steps: []types.Step{dexStep()}},
	}
	w := &fakeWallet{address: "0xME", txHash: "0xtx", receipt: &ethtypes.Receipt{}}
	session := newTestSession(ModeSameChain)
	orch := New(svc, w, session)

	require.NoError(t, orch.RequestBestRoute(context.Background()))
	require.Equal(t, ActionSwap, session.Action)
}

func TestCrossChainFlowWithBridgeInit(t *testing.T) {
	orderData := make([]byte, 32)
	orderData[0] = 0xab
	orderData[31] = 0xcd

	svc := &fakeService{
		quote: &types.GetQuoteResponse{OutputAmount: "99000000"},
		route: &types.GetBestRouteResponse{
			RouteID:          "route-2",
			OutputAmount:     "99000000",
			PermitDataToSign: json.RawMessage(permitDoc),
		},
		callData: &types.GetCallDataResponse{Steps: []types.Step{bridgeInitStep()}},
		details:  &types.OrderDetails{Status: types.OrderStatusRegistered},
	}
	w := &fakeWallet{
		address:   "0xME",
		signature: "0xpermitsig",
		txHash:    "0xbridgetx",
		receipt:   orderInitiatedReceipt(orderData),
	}
	session := newTestSession(ModeCrossChain)
	orch := New(svc, w, session)

	ctx := context.Background()

	require.NoError(t, orch.RequestQuote(ctx))
	require.NoError(t, orch.RequestBestRoute(ctx))
	require.Equal(t, ActionAccept, session.Action, "permitDataToSign must drive the flow into accept")

	require.NoError(t, orch.Accept(ctx))
	require.Equal(t, ActionGenerateCallData, session.Action)
	require.Equal(t, "0xpermitsig", session.PermitSignature)

	require.NoError(t, orch.GenerateCallData(ctx))
	require.Equal(t, ActionInitBridgeTxn, session.Action)
	require.Equal(t, "0xpermitsig", svc.callDataReqs[0].PermitSignature)

	require.NoError(t, orch.InitBridgeTxn(ctx))
	require.Equal(t, ActionGetOrderDetails, session.Action)
	require.Equal(t, "0x"+hex.EncodeToString(orderData), session.OrderID)

	details, err := orch.FetchOrderDetails(ctx)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusRegistered, details.Status)
	require.Equal(t, ActionIdle, session.Action)
}

func TestCrossChainFlowWithIntentRegistration(t *testing.T) {
	svc := &fakeService{
		quote: &types.GetQuoteResponse{OutputAmount: "99000000"},
		route: &types.GetBestRouteResponse{RouteID: "route-3", OutputAmount: "99000000"},
		callData: &types.GetCallDataResponse{
			Steps:          []types.Step{intentStep("0xorderbytes")},
			OrderTypedData: json.RawMessage(permitDoc),
		},
		registerResp: json.RawMessage(`"0xorder123"`),
		details:      &types.OrderDetails{Status: types.OrderStatusReceived},
	}
	w := &fakeWallet{address: "0xME", signature: "0xordersig"}
	session := newTestSession(ModeCrossChain)
	orch := New(svc, w, session)

	ctx := context.Background()

	require.NoError(t, orch.RequestBestRoute(ctx))
	require.Equal(t, ActionGenerateCallData, session.Action, "no permit means call data comes next")

	require.NoError(t, orch.GenerateCallData(ctx))
	require.Equal(t, ActionRegisterIntent, session.Action)

	require.NoError(t, orch.RegisterIntent(ctx))
	require.Equal(t, ActionGetOrderDetails, session.Action)
	require.Equal(t, "0xorder123", session.OrderID)
	require.Equal(t, "0xorderbytes", svc.registerReqs[0].OrderBytes)
	require.Equal(t, "0xordersig", svc.registerReqs[0].OrderBytesSignature)
	require.Equal(t, session.FromChain, svc.registerReqs[0].CaipID)
}

func TestCrossChainApprovalBeforeBridge(t *testing.T) {
	svc := &fakeService{
		quote:    &types.GetQuoteResponse{OutputAmount: "1"},
		route:    &types.GetBestRouteResponse{RouteID: "route-4", OutputAmount: "1"},
		callData: &types.GetCallDataResponse{Steps: []types.Step{approvalStep(), bridgeInitStep()}},
	}
	w := &fakeWallet{address: "0xME", txHash: "0xtx", receipt: &ethtypes.Receipt{}}
	session := newTestSession(ModeCrossChain)
	orch := New(svc, w, session)

	ctx := context.Background()
	require.NoError(t, orch.RequestBestRoute(ctx))
	require.NoError(t, orch.GenerateCallData(ctx))
	require.Equal(t, ActionApprove, session.Action)

	require.NoError(t, orch.ExecuteApproval(ctx))
	require.Equal(t, ActionInitBridgeTxn, session.Action)
}

func TestDeclinedConfirmationIssuesNoCalls(t *testing.T) {
	svc := &fakeService{quote: &types.GetQuoteResponse{OutputAmount: "1"}}
	w := &fakeWallet{address: "0xME"}
	session := newTestSession(ModeSameChain)
	orch := New(svc, w, session, WithConfirmer(decliner{}))

	err := orch.RequestQuote(context.Background())
	require.ErrorIs(t, err, ErrDeclined)
	require.Empty(t, svc.calls, "a declined confirmation must not reach the network")
	require.Equal(t, ActionIdle, session.Action)
}

func TestAPIFailureResetsToIdle(t *testing.T) {
	svc := &fakeService{err: errors.New("boom")}
	w := &fakeWallet{address: "0xME"}
	session := newTestSession(ModeSameChain)
	orch := New(svc, w, session)

	require.Error(t, orch.RequestBestRoute(context.Background()))
	require.Equal(t, ActionIdle, session.Action)
}

func TestWalletFailureKeepsState(t *testing.T) {
	svc := &fakeService{
		route: &types.GetBestRouteResponse{Steps: []types.Step{dexStep()}},
	}
	w := &fakeWallet{address: "0xME", sendErr: errors.New("user rejected")}
	session := newTestSession(ModeSameChain)
	orch := New(svc, w, session)

	ctx := context.Background()
	require.NoError(t, orch.RequestBestRoute(ctx))
	require.Equal(t, ActionSwap, session.Action)

	require.Error(t, orch.ExecuteSwap(ctx))
	require.Equal(t, ActionSwap, session.Action, "a wallet failure must stay retryable")
}

func TestBridgeInitWithoutOrderLogIsFatal(t *testing.T) {
	svc := &fakeService{
		route:    &types.GetBestRouteResponse{RouteID: "route-5", OutputAmount: "1"},
		callData: &types.GetCallDataResponse{Steps: []types.Step{bridgeInitStep()}},
	}
	w := &fakeWallet{address: "0xME", txHash: "0xtx", receipt: &ethtypes.Receipt{}}
	session := newTestSession(ModeCrossChain)
	orch := New(svc, w, session)

	ctx := context.Background()
	require.NoError(t, orch.RequestBestRoute(ctx))
	require.NoError(t, orch.GenerateCallData(ctx))

	require.Error(t, orch.InitBridgeTxn(ctx))
	require.Equal(t, ActionIdle, session.Action)
	require.Empty(t, session.OrderID)
}

func TestUnknownStepMetadataIsFatal(t *testing.T) {
	svc := &fakeService{
		route: &types.GetBestRouteResponse{RouteID: "route-6", OutputAmount: "1"},
		callData: &types.GetCallDataResponse{Steps: []types.Step{{
			Metadata: &types.StepMetadata{ServiceType: "bridge", TransactionType: "mystery"},
		}}},
	}
	w := &fakeWallet{address: "0xME"}
	session := newTestSession(ModeCrossChain)
	orch := New(svc, w, session)

	ctx := context.Background()
	require.NoError(t, orch.RequestBestRoute(ctx))

	err := orch.GenerateCallData(ctx)
	require.ErrorIs(t, err, ErrUnknownStep)
	require.Equal(t, ActionIdle, session.Action)
}

func TestTokenAddressesLowercasedForEVM(t *testing.T) {
	svc := &fakeService{quote: &types.GetQuoteResponse{OutputAmount: "1"}}
	w := &fakeWallet{address: "0xME"}
	session := newTestSession(ModeSameChain)
	session.SetFromToken(&TokenRef{Address: "0xABCDEF", Symbol: "TOK", Decimals: 6})
	session.SetAmount("1")
	orch := New(svc, w, session)

	require.NoError(t, orch.RequestQuote(context.Background()))
	require.Equal(t, "0xabcdef", svc.quoteReqs[0].FromToken)
	require.Equal(t, "", svc.quoteReqs[0].ToToken, "native tokens travel as empty addresses")
}
