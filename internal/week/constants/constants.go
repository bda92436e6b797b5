package constants

// Event types of the week aggregate.
const (
	EventWeekCreated     = "week.created"
	EventWeekUpdated     = "week.updated"
	EventWeekDeleted     = "week.deleted"
	EventWeekSlotAdded   = "week.slot_added"
	EventWeekSlotRemoved = "week.slot_removed"
)

// Bounds of a week key and slot positions.
const (
	MinYear       = 1900
	MaxYear       = 2100
	MinWeekNumber = 1
	MaxWeekNumber = 53
	MinPosition   = 1
	MaxPosition   = 2
)
