package grpcServer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/service"
)

const (
	ServiceName         = "globaledge.quote.v1.QuoteService"
	ComputeQuoteMethod  = "/" + ServiceName + "/ComputeQuote"
	TrackShipmentMethod = "/" + ServiceName + "/TrackShipment"
)

type ComputeQuoteRequest struct {
	Input quote.Input `json:"input"`
}

type ComputeQuoteResponse struct {
	Available bool         `json:"available"`
	Quote     *quote.Quote `json:"quote"`
}

type TrackShipmentRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

type TrackShipmentResponse struct {
	Tracking service.Tracking `json:"tracking"`
}

// QuoteServiceServer is what ServiceDesc dispatches to.
type QuoteServiceServer interface {
	ComputeQuote(context.Context, *ComputeQuoteRequest) (*ComputeQuoteResponse, error)
	TrackShipment(context.Context, *TrackShipmentRequest) (*TrackShipmentResponse, error)
}

// QuoteServer exposes pricing and tracking to internal callers.
type QuoteServer struct {
	quotes   *service.QuoteService
	tracking *service.TrackingService
	logger   *zap.Logger
}

func NewQuoteServer(quotes *service.QuoteService, tracking *service.TrackingService, logger *zap.Logger) *QuoteServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteServer{quotes: quotes, tracking: tracking, logger: logger}
}

// ComputeQuote never fails on incomplete input; it answers available=false.
func (s *QuoteServer) ComputeQuote(ctx context.Context, req *ComputeQuoteRequest) (*ComputeQuoteResponse, error) {
	q, ok := s.quotes.Compute(req.Input)
	if !ok {
		return &ComputeQuoteResponse{}, nil
	}
	return &ComputeQuoteResponse{Available: true, Quote: &q}, nil
}

func (s *QuoteServer) TrackShipment(ctx context.Context, req *TrackShipmentRequest) (*TrackShipmentResponse, error) {
	if strings.TrimSpace(req.TrackingNumber) == "" {
		return nil, mapError(s.logger, fmt.Errorf("%w: tracking number is required", service.ErrInvalidInput))
	}
	tr, err := s.tracking.Track(ctx, req.TrackingNumber)
	if err != nil {
		return nil, mapError(s.logger, err)
	}
	return &TrackShipmentResponse{Tracking: tr}, nil
}

// Register attaches srv to a gRPC server.
func Register(gs *grpc.Server, srv QuoteServiceServer) {
	gs.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is written by hand; messages travel through the JSON codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ComputeQuote", Handler: computeQuoteHandler},
		{MethodName: "TrackShipment", Handler: trackShipmentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "globaledge/quote/v1",
}

func computeQuoteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ComputeQuoteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).ComputeQuote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ComputeQuoteMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QuoteServiceServer).ComputeQuote(ctx, req.(*ComputeQuoteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func trackShipmentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TrackShipmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).TrackShipment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TrackShipmentMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QuoteServiceServer).TrackShipment(ctx, req.(*TrackShipmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}
