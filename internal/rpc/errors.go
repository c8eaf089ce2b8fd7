package rpc

import "github.com/opendeed/deedd/internal/settlement"

// rpcErrorFromEngine converts an error returned by an Engine method into a
// wire RpcError, using settlement.CodeOf's chain-walking so a wrapped
// ledgercore arithmetic error still surfaces the right Code.
func rpcErrorFromEngine(err error) *RpcError {
	if err == nil {
		return nil
	}
	code := settlement.CodeOf(err)
	return &RpcError{
		Code:        int(code),
		ErrorString: code.String(),
		Message:     err.Error(),
	}
}
