package servers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"custom-id-generator/internal/issuer"
	"custom-id-generator/internal/pb"
)

type grpcServer struct {
	Port   int
	Issuer *issuer.Issuer
	Logger *slog.Logger
	server *grpc.Server
}

type grpcController struct {
	pb.UnimplementedGeneratorServer
	issuer *issuer.Issuer
}

func NewGrpcServer(port int, iss *issuer.Issuer, logger *slog.Logger) *grpcServer {
	server := grpc.NewServer()
	pb.RegisterGeneratorServer(server, &grpcController{
		issuer: iss,
	})

	return &grpcServer{
		Port:   port,
		Issuer: iss,
		Logger: logger,
		server: server,
	}
}

func (s *grpcServer) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}

	return s.ServeListener(lis)
}

func (s *grpcServer) ServeListener(lis net.Listener) error {
	s.Logger.Info("grpc server listening", "addr", lis.Addr().String())

	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve grpc: %v", err)
	}

	return nil
}

func (s *grpcServer) Stop() {
	s.server.GracefulStop()
}

func (s *grpcController) Issue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := pb.ParseIssueRequest(req)

	newId, err := s.issuer.Issue(ctx, in.UserID, in.InventoryID)
	if err != nil {
		return nil, status.Errorf(grpcCode(err), "error while generating new unique id: %v", err)
	}

	return pb.IssueReply{ID: newId.Value, Sequence: newId.Sequence, Attempts: newId.Attempts}.Struct(), nil
}

func (s *grpcController) Preview(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := pb.ParsePreviewRequest(req)
	if err != nil {
		return nil, status.Errorf(grpcCode(errBadRequest), "%v", err)
	}

	tmpl, err := templateFromWire(in.Template)
	if err != nil {
		return nil, status.Errorf(grpcCode(err), "%v", err)
	}

	id, err := s.issuer.Preview(tmpl)
	if err != nil {
		return nil, status.Errorf(grpcCode(err), "%v", err)
	}

	return pb.PreviewReply{ID: id}.Struct(), nil
}
