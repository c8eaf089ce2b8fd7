package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opendeed/deedd/internal/settlement"
)

func TestRpcErrorFromEngineNilIsNil(t *testing.T) {
	assert.Nil(t, rpcErrorFromEngine(nil))
}

func TestRpcErrorFromEngineWrapsSettlementCode(t *testing.T) {
	err := settlement.Err(settlement.CodeNotEnoughFunds)
	rpcErr := rpcErrorFromEngine(err)

	assert.Equal(t, int(settlement.CodeNotEnoughFunds), rpcErr.Code)
	assert.Equal(t, "NotEnoughFunds", rpcErr.ErrorString)
}

func TestRpcErrorFromEngineFallsBackToInternal(t *testing.T) {
	rpcErr := rpcErrorFromEngine(assertError{})
	assert.Equal(t, int(settlement.CodeInternal), rpcErr.Code)
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
