package constant

// =============================================
// Plan status constants
// =============================================

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	// PlanStatusActive is the default state of a new plan.
	PlanStatusActive PlanStatus = "active"
	// PlanStatusCompleted marks a plan whose work is done.
	PlanStatusCompleted PlanStatus = "completed"
	// PlanStatusPaused marks a plan set aside for now.
	PlanStatusPaused PlanStatus = "paused"
	// PlanStatusArchived marks a plan hidden from the active list.
	PlanStatusArchived PlanStatus = "archived"
)

// String returns the status as a string.
func (s PlanStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the known states.
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusPaused, PlanStatusArchived:
		return true
	}
	return false
}

// =============================================
// Step priority constants
// =============================================

// StepPriority is the urgency attached to a plan step.
type StepPriority string

const (
	// StepPriorityLow marks an optional or deferred step.
	StepPriorityLow StepPriority = "low"
	// StepPriorityMedium is the default priority.
	StepPriorityMedium StepPriority = "medium"
	// StepPriorityHigh marks a step that should happen first.
	StepPriorityHigh StepPriority = "high"
)

// String returns the priority as a string.
func (p StepPriority) String() string {
	return string(p)
}

// IsValid reports whether the priority is one of the known levels.
func (p StepPriority) IsValid() bool {
	switch p {
	case StepPriorityLow, StepPriorityMedium, StepPriorityHigh:
		return true
	}
	return false
}

// OrDefault returns the priority, falling back to medium when unset or unknown.
func (p StepPriority) OrDefault() StepPriority {
	if p.IsValid() {
		return p
	}
	return StepPriorityMedium
}
