package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Generator_Issue_FullMethodName   = "/customid.v1.Generator/Issue"
	Generator_Preview_FullMethodName = "/customid.v1.Generator/Preview"
)

type GeneratorClient interface {
	Issue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Preview(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type generatorClient struct {
	cc grpc.ClientConnInterface
}

func NewGeneratorClient(cc grpc.ClientConnInterface) GeneratorClient {
	return &generatorClient{cc}
}

func (c *generatorClient) Issue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Generator_Issue_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *generatorClient) Preview(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Generator_Preview_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GeneratorServer must embed UnimplementedGeneratorServer.
type GeneratorServer interface {
	Issue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Preview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedGeneratorServer()
}

type UnimplementedGeneratorServer struct{}

func (UnimplementedGeneratorServer) Issue(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Issue not implemented")
}

func (UnimplementedGeneratorServer) Preview(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Preview not implemented")
}

func (UnimplementedGeneratorServer) mustEmbedUnimplementedGeneratorServer() {}

func RegisterGeneratorServer(s grpc.ServiceRegistrar, srv GeneratorServer) {
	s.RegisterService(&Generator_ServiceDesc, srv)
}

func _Generator_Issue_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeneratorServer).Issue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Generator_Issue_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeneratorServer).Issue(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Generator_Preview_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeneratorServer).Preview(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Generator_Preview_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeneratorServer).Preview(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var Generator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "customid.v1.Generator",
	HandlerType: (*GeneratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Issue",
			Handler:    _Generator_Issue_Handler,
		},
		{
			MethodName: "Preview",
			Handler:    _Generator_Preview_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "generator.proto",
}
