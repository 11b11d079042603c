package grpcServer

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/globaledge/globaledge/services/shipment-service/service"
)

// mapError turns service errors into status errors. Internals never leak;
// unmapped errors are logged and reported as codes.Internal.
func mapError(logger *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrShipmentNotFound):
		return status.Error(codes.NotFound, "shipment not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}
	logger.Error("rpc failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
