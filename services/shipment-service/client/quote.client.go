package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/globaledge/globaledge/pkg/quote"
	grpcServer "github.com/globaledge/globaledge/services/shipment-service/handler/grpc"
	"github.com/globaledge/globaledge/services/shipment-service/service"
)

// ErrNotFound is returned when the remote shipment does not exist.
var ErrNotFound = errors.New("not found")

func handleGRPCError(err error, serviceName string) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable:
		return fmt.Errorf("%s service is unavailable", serviceName)
	case codes.NotFound:
		return fmt.Errorf("%w in %s service: %s", ErrNotFound, serviceName, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("invalid request to %s service: %s", serviceName, st.Message())
	default:
		return fmt.Errorf("gRPC error from %s service: %s", serviceName, st.Message())
	}
}

// QuoteClient talks to the shipment service over gRPC using the JSON codec.
type QuoteClient struct {
	conn *grpc.ClientConn
}

// NewQuoteClient does not block; the first call establishes the connection.
func NewQuoteClient(addr string, opts ...grpc.DialOption) (*QuoteClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpcServer.CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to shipment service: %w", err)
	}
	return &QuoteClient{conn: conn}, nil
}

func (c *QuoteClient) Close() error {
	return c.conn.Close()
}

// ComputeQuote mirrors quote.Compute: ok is false when the input cannot be priced.
func (c *QuoteClient) ComputeQuote(ctx context.Context, in quote.Input) (quote.Quote, bool, error) {
	resp := new(grpcServer.ComputeQuoteResponse)
	err := c.conn.Invoke(ctx, grpcServer.ComputeQuoteMethod, &grpcServer.ComputeQuoteRequest{Input: in}, resp)
	if err != nil {
		return quote.Quote{}, false, handleGRPCError(err, "shipment")
	}
	if !resp.Available || resp.Quote == nil {
		return quote.Quote{}, false, nil
	}
	return *resp.Quote, true, nil
}

func (c *QuoteClient) TrackShipment(ctx context.Context, trackingNumber string) (service.Tracking, error) {
	resp := new(grpcServer.TrackShipmentResponse)
	err := c.conn.Invoke(ctx, grpcServer.TrackShipmentMethod, &grpcServer.TrackShipmentRequest{TrackingNumber: trackingNumber}, resp)
	if err != nil {
		return service.Tracking{}, handleGRPCError(err, "shipment")
	}
	return resp.Tracking, nil
}
