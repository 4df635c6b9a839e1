package entity

import "time"

const (
	TableNamePlan = "plans"

	PlanFieldID          = "id"
	PlanFieldUserID      = "user_id"
	PlanFieldTitle       = "title"
	PlanFieldDescription = "description"
	PlanFieldGoalsJSON   = "goals_json"
	PlanFieldStepsJSON   = "steps_json"
	PlanFieldStatus      = "status"
	PlanFieldCompletion  = "completion"
	PlanFieldCreatedAt   = "created_at"
	PlanFieldUpdatedAt   = "updated_at"
)

// Plan is a tracked goal with ordered steps. Completion is derived from the
// steps on every mutation and never taken from client input.
type Plan struct {
	ID          string    `xorm:"pk varchar(64) 'id'" json:"id"`
	UserID      string    `xorm:"varchar(64) index 'user_id'" json:"user_id"`
	Title       string    `xorm:"varchar(256) 'title'" json:"title"`
	Description string    `xorm:"text 'description'" json:"description"`
	GoalsJSON   string    `xorm:"text 'goals_json'" json:"goals_json"`
	StepsJSON   string    `xorm:"text 'steps_json'" json:"steps_json"`
	Status      string    `xorm:"varchar(32) index 'status'" json:"status"`
	Completion  int       `xorm:"int 'completion'" json:"completion"`
	CreatedAt   time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt   time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (e *Plan) TableName() string {
	return TableNamePlan
}
