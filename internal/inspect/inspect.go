// Package inspect exposes a small debug gRPC service, VMInspector, over a
// running Scheduler: ListThreads reports every Thread that has finished so
// far, GetVariable reads one Target's variable by display name. Unlike the
// dynamic-descriptor approach to gRPC services, this registers one static
// grpc.ServiceDesc by hand against structpb.Struct request/response types,
// since there is no .proto file here to load descriptors from.
package inspect

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/scheduler"
)

// Provider is what a running Scheduler offers the inspection surface.
// Defined here (rather than imported from internal/scheduler) so this
// package depends on scheduler in one direction only: scheduler.Scheduler
// satisfies Provider by duck typing, without ever importing inspect.
type Provider interface {
	ListThreads() []scheduler.ThreadInfo
	GetVariable(targetName, varName string) (ast.PrimitiveValue, bool)
}

// Server hosts the VMInspector gRPC service against one Provider.
type Server struct {
	grpc     *grpc.Server
	provider Provider
}

// NewServer builds a Server around provider. It does not start listening
// until Serve is called.
func NewServer(provider Provider) *Server {
	s := &Server{provider: provider}
	s.grpc = grpc.NewServer()
	s.grpc.RegisterService(&serviceDesc, s)
	return s
}

// Serve blocks, accepting connections on addr until Stop is called.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("inspect: listening on %s: %w", addr, err)
	}
	return s.grpc.Serve(lis)
}

// Stop gracefully shuts the gRPC server down, letting in-flight calls
// finish first.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// ListThreads implements the VMInspector/ListThreads RPC: the request is
// ignored, the response carries a "threads" list of {target, trigger,
// state} structs.
func (s *Server) ListThreads(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	threads := s.provider.ListThreads()
	items := make([]interface{}, len(threads))
	for i, t := range threads {
		items[i] = map[string]interface{}{
			"target":  t.TargetName,
			"trigger": t.TriggerKey,
			"state":   t.State,
		}
	}
	return structpb.NewStruct(map[string]interface{}{"threads": items})
}

// GetVariable implements the VMInspector/GetVariable RPC. The request
// carries "target_name" and "var_name" string fields; the response
// carries "found" (bool) and, when found, "value" (the variable's
// current value rendered as text).
func (s *Server) GetVariable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	targetName := req.Fields["target_name"].GetStringValue()
	varName := req.Fields["var_name"].GetStringValue()

	val, ok := s.provider.GetVariable(targetName, varName)
	if !ok {
		return structpb.NewStruct(map[string]interface{}{"found": false})
	}
	return structpb.NewStruct(map[string]interface{}{"found": true, "value": val.String()})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "corevm.inspect.VMInspector",
	HandlerType: (*inspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListThreads",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(structpb.Struct)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*Server)
				if interceptor == nil {
					return s.ListThreads(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/corevm.inspect.VMInspector/ListThreads"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.ListThreads(ctx, req.(*structpb.Struct))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "GetVariable",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(structpb.Struct)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*Server)
				if interceptor == nil {
					return s.GetVariable(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/corevm.inspect.VMInspector/GetVariable"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.GetVariable(ctx, req.(*structpb.Struct))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/inspect/inspect.go",
}

// inspectorServer is the handler type grpc.ServiceDesc points at; it
// exists only so HandlerType has something to name; *Server implements it
// by having ListThreads/GetVariable methods with matching signatures.
type inspectorServer interface {
	ListThreads(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetVariable(context.Context, *structpb.Struct) (*structpb.Struct, error)
}
