package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tdbstore/tdb-backend/internal/orders"
	"github.com/tdbstore/tdb-backend/pkg/db/models"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/paypal"
)

const auditWriteTimeout = 3 * time.Second

type auditRecorder struct {
	repo orders.Repository
	logg *logger.Logger
}

// NewAuditRecorder persists gateway traffic as payment events. Failures are
// logged and swallowed so audit writes never block a payment.
func NewAuditRecorder(repo orders.Repository, logg *logger.Logger) paypal.AuditRecorder {
	return &auditRecorder{repo: repo, logg: logg}
}

func (a *auditRecorder) Record(ctx context.Context, event paypal.AuditEvent) {
	// detach from the request context so a cancelled request still gets
	// its audit row
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	record := &models.PaymentEvent{
		ID:         uuid.New(),
		Operation:  event.Operation,
		Phase:      event.Phase,
		Payload:    event.Payload,
		StatusCode: event.StatusCode,
	}
	if event.IntentID != "" {
		intentID := event.IntentID
		record.IntentID = &intentID
	}

	if err := a.repo.RecordPaymentEvent(writeCtx, record); err != nil && a.logg != nil {
		a.logg.Error(ctx, "recording payment event", err)
	}
}
