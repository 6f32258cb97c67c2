package claims

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

func scanEvents(rows *sql.Rows) ([]*domainClaims.ClaimEvent, error) {
	events := make([]*domainClaims.ClaimEvent, 0)
	for rows.Next() {
		var (
			event     domainClaims.ClaimEvent
			eventType string
			actorRole string
			payload   []byte
			timestamp int64
		)
		err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.AggregateType,
			&eventType,
			&event.Version,
			&payload,
			&event.ActorID,
			&actorRole,
			&event.CorrelationID,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Type = domainClaims.ClaimEventType(eventType)
		event.ActorRole = domainClaims.ActorRole(actorRole)
		event.Timestamp = time.UnixMilli(timestamp)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("deserialize event payload: %w", err)
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
