// Package notify delivers notification intents produced by claim transitions.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

// Notifier delivers notification intents. Delivery happens after the claim
// transition has been persisted; a failed delivery never rolls the claim back.
type Notifier interface {
	Dispatch(ctx context.Context, intents []claims.NotificationIntent) error
}

// LogNotifier writes each intent to the structured log. It stands in for a
// real delivery channel (email, push, SMS) in environments without one.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs intents.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Dispatch logs each intent.
func (n *LogNotifier) Dispatch(_ context.Context, intents []claims.NotificationIntent) error {
	for _, intent := range intents {
		n.logger.Info("notification dispatched",
			zap.String("audience", string(intent.Audience)),
			zap.String("template", intent.Template),
			zap.String("claimId", intent.ClaimID),
			zap.String("claimNumber", intent.ClaimNumber),
			zap.Any("params", intent.Params),
		)
	}
	return nil
}

// RecordingNotifier captures intents for inspection in tests.
type RecordingNotifier struct {
	mu      sync.Mutex
	intents []claims.NotificationIntent
}

// NewRecordingNotifier creates a recording notifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Dispatch records all intents.
func (n *RecordingNotifier) Dispatch(_ context.Context, intents []claims.NotificationIntent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, intents...)
	return nil
}

// Intents returns a copy of everything dispatched so far.
func (n *RecordingNotifier) Intents() []claims.NotificationIntent {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]claims.NotificationIntent, len(n.intents))
	copy(result, n.intents)
	return result
}
