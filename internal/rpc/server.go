package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
)

// HistoryReader answers the get_account_history query. internal/storage/
// auditindex.Index is the only production implementation; it is optional
// (SetHistoryReader is called from cli/server.go only when an audit-index
// database was configured), so get_account_history is registered only by
// SetHistoryReader rather than failing every other method when it is nil.
type HistoryReader interface {
	ListByAccount(ctx context.Context, account ledgercore.AccountID) ([]settlement.Event, error)
}

// Server handles HTTP JSON-RPC 2.0 requests against a settlement.Engine.
type Server struct {
	engine   *settlement.Engine
	registry *MethodRegistry
	timeout  time.Duration
	history  HistoryReader
}

// NewServer creates a new RPC server bound to eng with the given request
// timeout.
func NewServer(eng *settlement.Engine, timeout time.Duration) *Server {
	server := &Server{
		engine:   eng,
		registry: NewMethodRegistry(),
		timeout:  timeout,
	}

	server.registerAllMethods()

	return server
}

// SetHistoryReader wires an account-history source into the server and
// registers get_account_history against it. It must be called before the
// server starts handling requests. registerAllMethods does not add
// get_account_history, so if this is never called that method is not
// registered and calls to it return method-not-found.
func (s *Server) SetHistoryReader(h HistoryReader) {
	s.history = h
	s.registry.Register("get_account_history", &getAccountHistoryMethod{history: h})
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers to match rippled
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")
	
	// Handle preflight requests
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	
	// Only accept POST and GET methods
	if r.Method != "POST" && r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	
	// Handle GET request (read-only queries like get_listing)
	if r.Method == "GET" {
		s.handleGetRequest(w, r)
		return
	}

	// Handle POST request (standard JSON-RPC)
	s.handlePostRequest(w, r)
}

// handleGetRequest processes GET requests with query parameters
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	method := query.Get("command")
	if method == "" {
		http.Error(w, "missing command query parameter", http.StatusBadRequest)
		return
	}

	ctx := &RpcContext{
		Context:  r.Context(),
		Role:     RoleGuest,
		ClientIP: getClientIP(r),
	}

	result, rpcErr := s.executeMethod(method, nil, ctx)

	response := JsonRpcResponse{
		JsonRpc: "2.0",
		ID:      1,
	}

	if rpcErr != nil {
		response.Error = rpcErr
	} else {
		response.Result = result
	}

	s.writeResponse(w, response)
}

// handlePostRequest processes POST requests with JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	// Read request body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, RpcErrorInternal("failed to read request body"), nil)
		return
	}
	defer r.Body.Close()

	var request JsonRpcRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, NewRpcError(RpcParseError, "parseError", "invalid JSON"), nil)
		return
	}

	if request.JsonRpc != "2.0" {
		s.writeError(w, RpcErrorInvalidParams("invalid jsonrpc version"), request.ID)
		return
	}

	// Command authentication (internal/identity.VerifyCommand) happens
	// upstream of this handler in AuthMiddleware, which stores the verified
	// signer in the request context (SignerFromContext). No handler compares
	// that signer with the account named in the command's params. RoleUser is
	// the default for anything the registry doesn't mark RoleAdmin.
	ctx := &RpcContext{
		Context:  r.Context(),
		Role:     RoleUser,
		ClientIP: getClientIP(r),
	}

	result, rpcErr := s.executeMethod(request.Method, request.Params, ctx)

	response := JsonRpcResponse{
		JsonRpc: "2.0",
		ID:      request.ID,
	}

	if rpcErr != nil {
		response.Error = rpcErr
	} else {
		response.Result = result
	}

	s.writeResponse(w, response)
}

// Execute runs method against params as RoleUser, for front ends other than
// the JSON-RPC/HTTP handler above (internal/grpc's codec-level dispatch).
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, *RpcError) {
	return s.executeMethod(method, params, &RpcContext{Context: ctx, Role: RoleUser})
}

// executeMethod executes an RPC method with the given parameters.
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, NewRpcError(RpcCommandUntrusted, "commandUntrusted",
			"method '"+method+"' requires higher privileges")
	}

	return handler.Handle(ctx, params)
}

// writeResponse writes a JSON-RPC response
func (s *Server) writeResponse(w http.ResponseWriter, response JsonRpcResponse) {
	responseData, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	
	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, rpcErr *RpcError, id interface{}) {
	response := JsonRpcResponse{
		JsonRpc: "2.0",
		Error:   rpcErr,
		ID:      id,
	}
	s.writeResponse(w, response)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	
	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	
	return ip
}