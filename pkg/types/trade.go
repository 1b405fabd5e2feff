package types

import "encoding/json"

// Envelope is the wire envelope every trade-service endpoint responds with.
type Envelope struct {
	Status string          `json:"status,omitempty"`
	Error  *APIError       `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// APIError is the error payload inside a response envelope.
type APIError struct {
	Code      int             `json:"code,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Message   string          `json:"message,omitempty"`
	TraceID   string          `json:"trace_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// StepMetadata tags a route step with what kind of on-chain action it is.
// Values are server-defined; the client only inspects them.
type StepMetadata struct {
	ServiceType     string `json:"serviceType,omitempty"`
	TransactionType string `json:"transactionType,omitempty"`
	Protocol        string `json:"protocol,omitempty"`
	AggregatorName  string `json:"aggregatorName,omitempty"`
}

// Step is one entry of a route or call-data response. Steps are read-only:
// the client scans them to decide what to do next but never mutates them.
type Step struct {
	Type           string          `json:"type,omitempty"`
	Metadata       *StepMetadata   `json:"metadata,omitempty"`
	ChainID        string          `json:"chainId,omitempty"`
	TxnData        json.RawMessage `json:"txnData,omitempty"`
	IntentCalldata string          `json:"intentCalldata,omitempty"`
}

// EVMTxnData is the transaction request shape carried in a step's txnData
// for eip155 chains. Value and GasLimit arrive as decimal or 0x-prefixed
// strings and are coerced to integers before submission.
type EVMTxnData struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value,omitempty"`
	GasLimit string `json:"gasLimit,omitempty"`
}

// SolanaAccountMeta mirrors one entry of a raw instruction's key list.
type SolanaAccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsWritable bool   `json:"isWritable"`
	IsSigner   bool   `json:"isSigner"`
}

// SolanaRawInstruction is a single instruction of a Solana txnData payload.
type SolanaRawInstruction struct {
	ProgramID string              `json:"programId"`
	Keys      []SolanaAccountMeta `json:"keys"`
	Data      []int               `json:"data"`
}

// SolanaTxnData is the transaction request shape carried in a step's txnData
// for solana chains.
type SolanaTxnData struct {
	From                        string                 `json:"from"`
	RawInstructions             []SolanaRawInstruction `json:"rawInstructions"`
	AddressLookupTableAddresses []string               `json:"addressLookupTableAddresses"`
}

// GetQuoteRequest asks for an indicative output amount.
type GetQuoteRequest struct {
	FromToken              string `json:"fromToken"`
	FromChain              string `json:"fromChain"`
	ToToken                string `json:"toToken"`
	ToChain                string `json:"toChain"`
	SameChainFee           string `json:"sameChainFee,omitempty"`
	SameChainFeeCollector  string `json:"sameChainFeeCollector,omitempty"`
	CrossChainFee          string `json:"crossChainFee,omitempty"`
	CrossChainFeeCollector string `json:"crossChainFeeCollector,omitempty"`
	FromAmount             string `json:"fromAmount"`
	Slippage               string `json:"slippage,omitempty"`
	FromUserWalletAddress  string `json:"fromUserWalletAddress,omitempty"`
	ToUserWalletAddress    string `json:"toUserWalletAddress,omitempty"`
}

// RouteMetadata summarizes one leg of a quoted route.
type RouteMetadata struct {
	Protocol       string `json:"protocol"`
	AggregatorName string `json:"aggregatorName"`
	Type           string `json:"type"`
}

// GetQuoteResponse is the data payload of /get-quote.
type GetQuoteResponse struct {
	OutputAmount  string          `json:"outputAmount"`
	RouteMetadata []RouteMetadata `json:"routeMetadata"`
	PermitData    json.RawMessage `json:"permitData,omitempty"`
}

// GetBestRouteRequest asks for an executable route.
type GetBestRouteRequest struct {
	RouteID                string `json:"routeId,omitempty"`
	FromToken              string `json:"fromToken"`
	FromChain              string `json:"fromChain"`
	ToToken                string `json:"toToken"`
	ToChain                string `json:"toChain"`
	SameChainFee           string `json:"sameChainFee,omitempty"`
	SameChainFeeCollector  string `json:"sameChainFeeCollector,omitempty"`
	CrossChainFee          string `json:"crossChainFee,omitempty"`
	CrossChainFeeCollector string `json:"crossChainFeeCollector,omitempty"`
	FromAmount             string `json:"fromAmount"`
	Slippage               string `json:"slippage,omitempty"`
	PermitDeadline         string `json:"permitDeadline,omitempty"`
	FromUserWalletAddress  string `json:"fromUserWalletAddress"`
	ToUserWalletAddress    string `json:"toUserWalletAddress"`
}

// TokenPrices carries USD reference prices when the backend knows them.
type TokenPrices struct {
	FromTokenPriceInUSD string `json:"fromTokenPriceInUSD,omitempty"`
	ToTokenPriceInUSD   string `json:"toTokenPriceInUSD,omitempty"`
}

// GetBestRouteResponse is the data payload of /get-best-route. The ordered
// Steps describe what must happen on-chain; PermitDataToSign, when present,
// is an EIP-712 typed-data document that must be signed before call data can
// be generated.
type GetBestRouteResponse struct {
	RouteID                 string          `json:"routeId,omitempty"`
	PriceImpact             string          `json:"priceImpact,omitempty"`
	IsPriceImpactCalculated bool            `json:"isPriceImpactCalculated,omitempty"`
	TokenPrices             *TokenPrices    `json:"tokenPrices,omitempty"`
	FeeCharged              bool            `json:"feeCharged,omitempty"`
	OutputAmount            string          `json:"outputAmount,omitempty"`
	Steps                   []Step          `json:"steps,omitempty"`
	PermitDataToSign        json.RawMessage `json:"permitDataToSign,omitempty"`
	RouteExpiry             string          `json:"routeExpiry,omitempty"`
}

// GetCallDataRequest asks for executable transaction data for a route.
type GetCallDataRequest struct {
	RouteID                string `json:"routeId"`
	FromToken              string `json:"fromToken"`
	FromChain              string `json:"fromChain"`
	ToToken                string `json:"toToken"`
	ToChain                string `json:"toChain"`
	SameChainFee           string `json:"sameChainFee,omitempty"`
	SameChainFeeCollector  string `json:"sameChainFeeCollector,omitempty"`
	CrossChainFee          string `json:"crossChainFee,omitempty"`
	CrossChainFeeCollector string `json:"crossChainFeeCollector,omitempty"`
	FromAmount             string `json:"fromAmount"`
	ToTokenAmountMinimum   string `json:"toTokenAmountMinimum"`
	Slippage               string `json:"slippage,omitempty"`
	FromUserWalletAddress  string `json:"fromUserWalletAddress"`
	ToUserWalletAddress    string `json:"toUserWalletAddress"`
	PermitData             string `json:"permitData,omitempty"`
	PermitSignature        string `json:"permitSignature,omitempty"`
}

// GetCallDataResponse is the data payload of /get-call-data. Once received
// it supersedes the best-route steps. OrderTypedData, when present, is the
// EIP-712 order document signed during intent registration.
type GetCallDataResponse struct {
	RouteID                 string          `json:"routeId,omitempty"`
	PriceImpact             string          `json:"priceImpact,omitempty"`
	IsPriceImpactCalculated bool            `json:"isPriceImpactCalculated,omitempty"`
	TokenPrices             *TokenPrices    `json:"tokenPrices,omitempty"`
	FeeCharged              bool            `json:"feeCharged,omitempty"`
	OutputAmount            string          `json:"outputAmount,omitempty"`
	Steps                   []Step          `json:"steps,omitempty"`
	OrderTypedData          json.RawMessage `json:"orderTypedData,omitempty"`
	RouteExpiry             string          `json:"routeExpiry,omitempty"`
}

// RegisterIntentRequest registers a signed cross-chain order.
type RegisterIntentRequest struct {
	OrderBytes          string `json:"orderBytes"`
	OrderBytesSignature string `json:"orderBytesSignature"`
	CaipID              string `json:"caipId"`
}

// GetOrderDetailsRequest looks up a registered order.
type GetOrderDetailsRequest struct {
	OrderID string `json:"orderId"`
	CaipID  string `json:"caipId"`
}

// Order status codes as string-encoded small integers.
const (
	OrderStatusExpired    = "-1" // terminal
	OrderStatusReceived   = "0"  // received by backend, not yet on-chain
	OrderStatusRegistered = "1"  // on-chain, unfilled
	OrderStatusSettled    = "2"  // terminal
	OrderStatusDisputed   = "3"  // filled, not yet settled
	OrderStatusRefunded   = "4"  // terminal
)

// OrderDetails is the data payload of /order-details.
type OrderDetails struct {
	Status       string          `json:"status"`
	Swapper      string          `json:"swapper,omitempty"`
	FillDeadline string          `json:"fillDeadline,omitempty"`
	OrderData    json.RawMessage `json:"orderData,omitempty"`
	Steps        []Step          `json:"steps,omitempty"`
	RouteExpiry  string          `json:"routeExpiry,omitempty"`
}

// OrderStatusDescription maps a status code to the human explanation shown
// in status output.
func OrderStatusDescription(status string) string {
	switch status {
	case OrderStatusExpired:
		return "Order expired (terminal)"
	case OrderStatusReceived:
		return "Order received by the backend but not yet registered on-chain"
	case OrderStatusRegistered:
		return "Order registered on-chain but not yet filled"
	case OrderStatusSettled:
		return "Order settled successfully (terminal)"
	case OrderStatusDisputed:
		return "Order in dispute: filled but not yet settled"
	case OrderStatusRefunded:
		return "Order refunded (terminal)"
	default:
		return "Unknown"
	}
}
