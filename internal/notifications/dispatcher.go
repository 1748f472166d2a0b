package notifications

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"kunjungan/internal/branding"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/observability"
)

const defaultSendTimeout = 30 * time.Second

// Dispatcher renders visit emails and sends them off the request path.
type Dispatcher struct {
	profile *branding.Profile
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A non-positive timeout uses 30 seconds.
func NewDispatcher(profile *branding.Profile, mailer Mailer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if profile == nil {
		profile = branding.Default()
	}
	return &Dispatcher{profile: profile, mailer: mailer, timeout: timeout}
}

// Deliver renders template t for v and sends it synchronously.
// Panics in the transport are recovered into a failed Result.
func (d *Dispatcher) Deliver(ctx context.Context, t Template, v *models.VisitRequest) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.ErrorContext(ctx, "PANIC in email delivery",
				"template", string(t),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			res = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	msg, err := Render(d.profile, t, v)
	if err != nil {
		return failed(err)
	}
	return d.mailer.Send(ctx, msg)
}

// Notify sends template t for v on a detached goroutine. The caller's
// cancellation does not reach the send; only the dispatcher timeout does.
func (d *Dispatcher) Notify(ctx context.Context, t Template, v *models.VisitRequest) {
	if v == nil {
		return
	}
	if strings.TrimSpace(v.Email) == "" {
		observability.NotificationsTotal.WithLabelValues(string(t), observability.ResultSkipped).Inc()
		middleware.Logger.DebugContext(ctx, "Visit has no email, notification skipped",
			"visit_id", v.ID,
			"template", string(t),
		)
		return
	}

	snapshot := *v
	detached := context.WithoutCancel(ctx)
	operation := "notification." + string(t)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		span, sendCtx := observability.NewSpan(sendCtx, operation)
		defer span.End()
		span.AddAttributes(
			attribute.Int64("visit.id", int64(snapshot.ID)),
			attribute.String("notification.template", string(t)),
		)

		fields := map[string]interface{}{
			"visit_id": snapshot.ID,
			"template": string(t),
		}
		observability.LogAsyncOperationStart(sendCtx, operation, fields)

		res := d.Deliver(sendCtx, t, &snapshot)
		if !res.Success {
			observability.NotificationsTotal.WithLabelValues(string(t), observability.ResultFailure).Inc()
			span.SetError(fmt.Errorf("%s", res.Error))
			observability.LogAsyncOperationError(sendCtx, operation, fmt.Errorf("%s", res.Error), fields)
			return
		}

		observability.NotificationsTotal.WithLabelValues(string(t), observability.ResultSuccess).Inc()
		fields["message_id"] = res.MessageID
		observability.LogAsyncOperationEnd(sendCtx, operation, fields)
	}()
}

// NotifySubmitted sends the submission confirmation.
func (d *Dispatcher) NotifySubmitted(ctx context.Context, v *models.VisitRequest) {
	d.Notify(ctx, TemplateConfirmation, v)
}

// NotifyStatusChanged sends the approval or rejection notice for v's
// current status. Moving back to pending sends nothing.
func (d *Dispatcher) NotifyStatusChanged(ctx context.Context, v *models.VisitRequest) {
	if v == nil {
		return
	}
	if t, ok := TemplateForStatus(v.Status); ok {
		d.Notify(ctx, t, v)
	}
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
