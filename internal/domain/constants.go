package domain

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

const (
	EventScheduled = "scheduled"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

const (
	EquipmentAvailable   = "available"
	EquipmentAssigned    = "assigned"
	EquipmentMaintenance = "maintenance"
	EquipmentRetired     = "retired"
)

// Kind names the four assignable domains.
type Kind string

const (
	KindEvent     Kind = "event"
	KindTraining  Kind = "training"
	KindEquipment Kind = "equipment"
	KindPolicy    Kind = "policy"
)

// Kinds lists the assignable domains in processing order.
var Kinds = []Kind{KindEvent, KindTraining, KindEquipment, KindPolicy}

// Notification types. Each one has a single message template in package notify.
const (
	NotifApplicationSubmitted = "application_submitted"
	NotifApplicationApproved  = "application_approved"
	NotifApplicationRejected  = "application_rejected"

	NotifEventCreated   = "event_created"
	NotifEventUpdated   = "event_updated"
	NotifEventCancelled = "event_cancelled"
	NotifEventSignup    = "event_signup"
	NotifEventReminder  = "event_reminder"

	NotifTrainingAssigned  = "training_assigned"
	NotifTrainingUpdated   = "training_updated"
	NotifTrainingCompleted = "training_completed"
	NotifTrainingReminder  = "training_reminder"

	NotifEquipmentAssigned       = "equipment_assigned"
	NotifEquipmentReturned       = "equipment_returned"
	NotifEquipmentReturnReminder = "equipment_return_reminder"

	NotifPolicyPublished           = "policy_published"
	NotifPolicyUpdated             = "policy_updated"
	NotifPolicyAcknowledged        = "policy_acknowledged"
	NotifPolicyAcknowledgeReminder = "policy_acknowledgement_reminder"

	NotifGeneral      = "general"
	NotifAnnouncement = "announcement"
)

// DateTimeLayout is used when dates are rendered into notification text.
const DateTimeLayout = "Mon Jan 2, 2006 15:04 MST"

// DateLayout is used for day-granularity deadlines.
const DateLayout = "Mon Jan 2, 2006"
