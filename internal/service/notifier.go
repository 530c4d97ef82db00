package service

import (
	"context"
	"log/slog"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// Notifier sends booking notifications. Implementations must be safe for
// concurrent use; callers invoke them fire-and-forget, so failures must
// never affect the triggering operation.
type Notifier interface {
	// SendClientConfirmation acknowledges a new rent request to the client
	SendClientConfirmation(ctx context.Context, request *models.RentRequest)
	// SendAdminNotification alerts staff about a new rent request
	SendAdminNotification(ctx context.Context, request *models.RentRequest)
	// SendStatusUpdate informs the client about a status change
	SendStatusUpdate(ctx context.Context, request *models.RentRequest, oldStatus models.RentRequestStatus)
}

// LogNotifier is the default Notifier: it records every notification as a
// structured log line. Swapping in a mail-backed implementation does not
// touch the services.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) SendClientConfirmation(ctx context.Context, request *models.RentRequest) {
	n.logger.InfoContext(ctx, "client confirmation",
		"request_id", request.RequestID,
		"client_email", request.ClientEmail,
		"vehicle_id", request.VehicleID,
	)
}

func (n *LogNotifier) SendAdminNotification(ctx context.Context, request *models.RentRequest) {
	n.logger.InfoContext(ctx, "admin notification",
		"request_id", request.RequestID,
		"client_name", request.ClientName,
		"vehicle_id", request.VehicleID,
		"start_date", request.StartDate,
		"end_date", request.EndDate,
	)
}

func (n *LogNotifier) SendStatusUpdate(ctx context.Context, request *models.RentRequest, oldStatus models.RentRequestStatus) {
	n.logger.InfoContext(ctx, "status update",
		"request_id", request.RequestID,
		"client_email", request.ClientEmail,
		"old_status", oldStatus,
		"new_status", request.Status,
	)
}
