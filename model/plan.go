package model

// PlanStep is one checkable item inside a plan.
type PlanStep struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	DueDate   *int64 `json:"dueDate,omitempty"` // epoch millis, matches the client
}

// CreatePlanRequest is the body of POST /api/plans.
type CreatePlanRequest struct {
	UserID      string     `json:"userId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Goals       []string   `json:"goals"`
	Steps       []PlanStep `json:"steps"`
}

// UpdatePlanRequest is the body of PUT /api/plans/:id. Completion is absent on
// purpose: it is always recomputed from the steps.
type UpdatePlanRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	Goals       *[]string   `json:"goals"`
	Steps       *[]PlanStep `json:"steps"`
}

// UpdateStepRequest is the body of PUT /api/plans/:id/steps/:stepId.
type UpdateStepRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
	DueDate   *int64  `json:"dueDate"`
}

// AddStepRequest is the body of POST /api/plans/:id/steps.
type AddStepRequest struct {
	Text     string `json:"text" binding:"required"`
	Priority string `json:"priority"`
	DueDate  *int64 `json:"dueDate"`
}

// PlanResponse is the API view of a plan with decoded goals and steps.
type PlanResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Goals       []string   `json:"goals"`
	Steps       []PlanStep `json:"steps"`
	Status      string     `json:"status"`
	Completion  int        `json:"completion"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
}

// GetPlansCondition filters plan list queries.
type GetPlansCondition struct {
	UserID *string `json:"user_id"`
	Status *string `json:"status"`
	*Pager
	*Order
}

func (g *GetPlansCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetPlansCondition) GetOrder() *Order {
	return g.Order
}

// UpdatePlanCondition carries the mutable plan columns; nil means unchanged.
type UpdatePlanCondition struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GoalsJSON   *string `json:"goals_json"`
	StepsJSON   *string `json:"steps_json"`
	Status      *string `json:"status"`
	Completion  *int    `json:"completion"`
}
