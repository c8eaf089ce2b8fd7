// Package grpc exposes the same settlement commands internal/rpc serves
// over JSON-RPC, as a single "Execute" gRPC method, for callers that want
// gRPC's connection multiplexing and deadlines instead of plain HTTP. There
// is no .proto schema: the server is wired with grpc.ForceServerCodec and a
// JSON codec, so the wire format is the same JSON the JSON-RPC methods
// already accept.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/opendeed/deedd/internal/rpc"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Server wraps a grpc.Server bound to a single settlement dispatcher.
type Server struct {
	grpcServer *grpc.Server
}

// CommandRequest mirrors internal/rpc's JsonRpcRequest without the
// envelope fields gRPC already provides (no id, no jsonrpc version).
type CommandRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// CommandResponse mirrors internal/rpc's JsonRpcResponse result/error split.
type CommandResponse struct {
	Result interface{}   `json:"result,omitempty"`
	Error  *rpc.RpcError `json:"error,omitempty"`
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "deedd.Settlement",
	HandlerType: (*settlementService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "deedd/settlement.proto",
}

// settlementService is the interface grpc.RegisterService checks the
// registered implementation against; HandlerType must point to an interface.
type settlementService interface{}

type settlementServer struct {
	rpcServer *rpc.Server
}

func executeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	s := srv.(*settlementServer)
	in := new(CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return s.execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/deedd.Settlement/Execute"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return s.execute(ctx, req.(*CommandRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func (s *settlementServer) execute(ctx context.Context, in *CommandRequest) (*CommandResponse, error) {
	result, rpcErr := s.rpcServer.Execute(ctx, in.Method, in.Params)
	return &CommandResponse{Result: result, Error: rpcErr}, nil
}

// NewServer returns a gRPC server dispatching every call through rpcServer,
// configured with cfg's message-size limits.
func NewServer(cfg *ServerConfig, rpcServer *rpc.Server) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.ForceServerCodec(jsonCodec{}),
	}
	grpcServer := grpc.NewServer(opts...)
	grpcServer.RegisterService(&serviceDesc, &settlementServer{rpcServer: rpcServer})
	return &Server{grpcServer: grpcServer}
}

// Listen opens a TCP listener at addr for Serve.
func Listen(addr string) (net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen %s: %w", addr, err)
	}
	return lis, nil
}

// Serve blocks, accepting connections on lis until GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop stops accepting new RPCs and waits for in-flight ones to
// finish.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
