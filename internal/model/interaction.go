package model

import "time"

// InteractionTypeView is the only interaction type the service records
// today; the column is a string so future types need no migration.
const InteractionTypeView = "view"

// Interaction mirrors the `interaction` table. Rows are append-only and
// carry either a resolved user id or an anonymous device id, never
// neither. They exist solely for deduplicated counting.
type Interaction struct {
	ID       uint64    // interaction.interaction_id
	Article  uint64    // interaction.article_id
	UserID   *string   // interaction.user_id (nullable)
	DeviceID *string   // interaction.device_id (nullable)
	Type     string    // interaction.interaction_type
	Date     time.Time // interaction.interaction_date
}
