package realtime

import (
	"context"
	"log/slog"

	"leadflow/internal/identity"
	"leadflow/internal/platform/metrics"
)

// RoleDirectory resolves role fan-out targets to identity ids. The user
// service implements it.
type RoleDirectory interface {
	IdentityIDsByRole(ctx context.Context, roles ...identity.Role) ([]string, error)
}

// Dispatcher delivers notification intents to live channels. Delivery is
// best-effort and at-most-once per currently-bound channel: no queue, no
// retry, no persistence. Failures are observed, never escalated to the
// mutation's caller.
type Dispatcher struct {
	registry  *Registry
	directory RoleDirectory
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(registry *Registry, directory RoleDirectory, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		directory: directory,
		logger:    logger,
		metrics:   m,
	}
}

// Publish resolves the intent's targets and hands the event to every bound
// channel. An absent recipient is a silent drop. The dropped counter moves
// once per intent that reaches no channel, not once per failed send.
func (d *Dispatcher) Publish(ctx context.Context, intent Intent) {
	delivered := false
	for _, identityID := range d.resolveTargets(ctx, intent) {
		for _, ch := range d.registry.Resolve(identityID) {
			if err := ch.Send(ctx, intent.Event, intent.Payload); err != nil {
				d.logger.WarnContext(ctx, "notification send failed",
					"event", intent.Event,
					"identity_id", identityID,
					"error", err,
				)
				continue
			}
			delivered = true
			d.metrics.IncDelivered()
		}
	}
	if !delivered {
		d.metrics.IncDropped()
	}
}

func (d *Dispatcher) resolveTargets(ctx context.Context, intent Intent) []string {
	if intent.TargetIdentityID != "" {
		return []string{intent.TargetIdentityID}
	}
	if len(intent.TargetRoles) == 0 {
		return nil
	}
	ids, err := d.directory.IdentityIDsByRole(ctx, intent.TargetRoles...)
	if err != nil {
		d.logger.WarnContext(ctx, "role fan-out resolution failed",
			"event", intent.Event,
			"error", err,
		)
		return nil
	}
	return ids
}
