package models

import "fmt"

// Key returns the dedup key identifying one reminder occurrence for one user.
func (r ReminderSubject) Key() string {
	return fmt.Sprintf("%s:%d:%d:%d", r.Type, r.EntityID, r.UserID, r.OccursAt.Unix())
}
