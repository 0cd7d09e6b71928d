// Package notify renders notification text and prepares recipient lists.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"reservehub/internal/domain"
)

var templates = map[string]string{
	domain.NotifApplicationSubmitted: "Your application has been received and is awaiting review.",
	domain.NotifApplicationApproved:  "Your application has been approved. Welcome aboard, {name}!",
	domain.NotifApplicationRejected:  "Your application was not approved. {notes}",

	domain.NotifEventCreated:   "New event: {eventName} on {eventDate}",
	domain.NotifEventUpdated:   "Event updated: {eventName} on {eventDate}",
	domain.NotifEventCancelled: "Event cancelled: {eventName}",
	domain.NotifEventSignup:    "You are signed up for {eventName} on {eventDate}",
	domain.NotifEventReminder:  "Reminder: {eventName} starts {eventDate} at {location}",

	domain.NotifTrainingAssigned:  "Training assigned: {trainingName} on {trainingDate}",
	domain.NotifTrainingUpdated:   "Training updated: {trainingName} on {trainingDate}",
	domain.NotifTrainingCompleted: "Training completed: {trainingName}",
	domain.NotifTrainingReminder:  "Reminder: {trainingName} starts {trainingDate} at {location}",

	domain.NotifEquipmentAssigned:       "Equipment assigned: {equipmentName}",
	domain.NotifEquipmentReturned:       "Equipment returned: {equipmentName}",
	domain.NotifEquipmentReturnReminder: "Reminder: {equipmentName} is due back by {dueDate}",

	domain.NotifPolicyPublished:           "New policy published: {policyName}",
	domain.NotifPolicyUpdated:             "Policy updated: {policyName} (version {version})",
	domain.NotifPolicyAcknowledged:        "You acknowledged {policyName}",
	domain.NotifPolicyAcknowledgeReminder: "Reminder: please acknowledge {policyName} by {dueDate}",

	domain.NotifGeneral:      "{message}",
	domain.NotifAnnouncement: "Announcement: {message}",
}

// Known reports whether t has a template.
func Known(t string) bool {
	_, ok := templates[t]
	return ok
}

// Template returns the raw template for t; unknown types use the general template.
func Template(t string) string {
	if tpl, ok := templates[t]; ok {
		return tpl
	}
	return templates[domain.NotifGeneral]
}

// Render substitutes {key} tokens in the template for t with values from data.
// Every occurrence of a key is replaced. Substituted values are not rescanned,
// and tokens without a value in data are left as written.
func Render(t string, data map[string]any) string {
	tpl := Template(t)
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	var b strings.Builder
	b.Grow(len(tpl))
	rest := tpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += open + 1
		key := rest[open+1 : end]
		if i := strings.LastIndexByte(key, '{'); i >= 0 {
			// restart at the innermost brace: "{a {b}" holds token {b}
			b.WriteString(rest[:open+1+i])
			rest = rest[open+1+i:]
			continue
		}
		b.WriteString(rest[:open])
		if v, ok := data[key]; ok && v != nil {
			b.WriteString(formatValue(v))
		} else {
			b.WriteString(rest[open : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(domain.DateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(domain.DateTimeLayout)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
