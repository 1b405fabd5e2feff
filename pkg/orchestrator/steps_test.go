package orchestrator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chain-swap/pkg/types"
)

func step(serviceType, transactionType string) types.Step {
	return types.Step{Metadata: &types.StepMetadata{
		ServiceType:     serviceType,
		TransactionType: transactionType,
	}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		step types.Step
		want StepKind
	}{
		{"approval", step("dex", "approval"), StepApproval},
		{"bridge approval", step("bridge", "approval"), StepApproval},
		{"dex swap", step("dex", "dex"), StepDexSwap},
		{"dex by service type", step("dex", ""), StepDexSwap},
		{"bridge init", step("bridge", "init"), StepBridgeInit},
		{"intent register", step("bridge", ""), StepIntentRegister},
		{"bridge with unknown txn type", step("bridge", "mystery"), StepUnknown},
		{"unknown service", step("lending", "borrow"), StepUnknown},
		{"no metadata", types.Step{}, StepUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.step))
		})
	}
}

// The transition function must be pure: the same step array always yields
// the same next action.
func TestNextAfterCallDataDeterminism(t *testing.T) {
	tests := []struct {
		name    string
		steps   []types.Step
		want    Action
		wantErr error
	}{
		{"approval first", []types.Step{step("dex", "approval"), step("bridge", "init")}, ActionApprove, nil},
		{"bridge init", []types.Step{step("bridge", "init")}, ActionInitBridgeTxn, nil},
		{"intent register", []types.Step{step("bridge", "")}, ActionRegisterIntent, nil},
		{"unknown combination", []types.Step{step("bridge", "mystery")}, ActionIdle, ErrUnknownStep},
		{"no bridge step", []types.Step{step("dex", "dex")}, ActionIdle, ErrNoBridgeStep},
		{"empty", nil, ActionIdle, ErrNoBridgeStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				got, err := NextAfterCallData(tt.steps)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				} else {
					require.NoError(t, err)
				}
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNextAfterRoute(t *testing.T) {
	t.Run("same-chain approval first", func(t *testing.T) {
		route := &types.GetBestRouteResponse{Steps: []types.Step{step("dex", "approval"), step("dex", "dex")}}
		got, err := NextAfterRoute(route, true)
		require.NoError(t, err)
		require.Equal(t, ActionApprove, got)
	})

	t.Run("same-chain straight to swap", func(t *testing.T) {
		route := &types.GetBestRouteResponse{Steps: []types.Step{step("dex", "dex")}}
		got, err := NextAfterRoute(route, true)
		require.NoError(t, err)
		require.Equal(t, ActionSwap, got)
	})

	t.Run("same-chain empty route", func(t *testing.T) {
		_, err := NextAfterRoute(&types.GetBestRouteResponse{}, true)
		require.ErrorIs(t, err, ErrUnknownStep)
	})

	t.Run("cross-chain with permit", func(t *testing.T) {
		route := &types.GetBestRouteResponse{PermitDataToSign: json.RawMessage(`{}`)}
		got, err := NextAfterRoute(route, false)
		require.NoError(t, err)
		require.Equal(t, ActionAccept, got)
	})

	t.Run("cross-chain without permit", func(t *testing.T) {
		got, err := NextAfterRoute(&types.GetBestRouteResponse{}, false)
		require.NoError(t, err)
		require.Equal(t, ActionGenerateCallData, got)
	})
}

func TestNextAfterApproval(t *testing.T) {
	t.Run("same-chain proceeds to swap", func(t *testing.T) {
		got, err := NextAfterApproval([]types.Step{step("dex", "approval"), step("dex", "dex")}, true)
		require.NoError(t, err)
		require.Equal(t, ActionSwap, got)
	})

	t.Run("cross-chain one remaining bridge step", func(t *testing.T) {
		got, err := NextAfterApproval([]types.Step{step("dex", "approval"), step("bridge", "init")}, false)
		require.NoError(t, err)
		require.Equal(t, ActionInitBridgeTxn, got)
	})

	t.Run("cross-chain remaining intent step", func(t *testing.T) {
		got, err := NextAfterApproval([]types.Step{step("dex", "approval"), step("bridge", "")}, false)
		require.NoError(t, err)
		require.Equal(t, ActionRegisterIntent, got)
	})

	t.Run("cross-chain wrong remaining count", func(t *testing.T) {
		_, err := NextAfterApproval([]types.Step{step("dex", "approval"), step("bridge", "init"), step("bridge", "")}, false)
		require.ErrorIs(t, err, ErrUnknownStep)
	})
}
