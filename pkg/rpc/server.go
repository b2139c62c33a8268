package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"spendwatch/budgetgate/pkg/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "project_budget.ProjectBudgets"

// budgetServer is the handler interface behind the service descriptor.
type budgetServer interface {
	RecordSpending(context.Context, *RecordSpendingRequest) (*ExceedsBudgetReply, error)
	ExceedsBudget(context.Context, *ExceedsBudgetRequest) (*ExceedsBudgetReply, error)
}

// serviceDesc is the hand-written descriptor for ProjectBudgets. It
// plays the role protoc-generated registration code usually does.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*budgetServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordSpending", Handler: recordSpendingHandler},
		{MethodName: "ExceedsBudget", Handler: exceedsBudgetHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "budget.proto",
}

func recordSpendingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecordSpendingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(budgetServer).RecordSpending(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/RecordSpending"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(budgetServer).RecordSpending(ctx, req.(*RecordSpendingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func exceedsBudgetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExceedsBudgetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(budgetServer).ExceedsBudget(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ExceedsBudget"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(budgetServer).ExceedsBudget(ctx, req.(*ExceedsBudgetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Server is the gRPC front end for the budget service.
type Server struct {
	addr    string
	service *service.Service
	logger  *slog.Logger

	grpcServer *grpc.Server
	mu         sync.RWMutex
	isRunning  bool
}

// NewServer creates a gRPC server over the given service.
func NewServer(addr string, svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:    addr,
		service: svc,
		logger:  logger.With("component", "server.grpc"),
	}

	s.grpcServer = grpc.NewServer(
		grpc.ForceServerCodec(codec{}),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor),
	)
	s.grpcServer.RegisterService(&serviceDesc, s)
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", s.addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on an existing listener. Tests use this with bufconn.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gRPC server", "address", lis.Addr().String())
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("grpc server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("stopping gRPC server")
		s.grpcServer.GracefulStop()
		s.logger.Info("gRPC server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RecordSpending implements the RecordSpending RPC.
func (s *Server) RecordSpending(ctx context.Context, req *RecordSpendingRequest) (*ExceedsBudgetReply, error) {
	exceeds, err := s.service.RecordSpending(req.ConfigName, req.ProjectID, req.Spent)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ExceedsBudgetReply{ExceedsBudget: exceeds}, nil
}

// ExceedsBudget implements the ExceedsBudget RPC.
func (s *Server) ExceedsBudget(ctx context.Context, req *ExceedsBudgetRequest) (*ExceedsBudgetReply, error) {
	exceeds, err := s.service.ExceedsBudget(req.ConfigName, req.ProjectID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ExceedsBudgetReply{ExceedsBudget: exceeds}, nil
}

// toStatusError maps service errors onto gRPC status codes.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownConfig):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidSpend):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// loggingInterceptor logs each RPC with its method, duration, and
// status code.
func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		if code == codes.Internal {
			level = slog.LevelError
		}
	}

	s.logger.Log(ctx, level, "rpc completed",
		"method", info.FullMethod,
		"code", code.String(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}
