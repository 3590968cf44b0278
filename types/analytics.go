package types

import "time"

// Summary is the dashboard roll-up of delegation counts. In Progress is
// deliberately absent here; it is reported per user in the team report.
type Summary struct {
	TotalDelegations     int `json:"totalDelegations"`
	CompletedDelegations int `json:"completedDelegations"`
	PendingDelegations   int `json:"pendingDelegations"`
	OverdueDelegations   int `json:"overdueDelegations"`
}

// TopPerformer is a user ranked by completed delegations.
type TopPerformer struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
}

// Activity is one recently completed delegation.
type Activity struct {
	Task string    `json:"task"`
	User string    `json:"user"`
	Date time.Time `json:"date"`
}

// Analytics is the full analytics payload.
type Analytics struct {
	Summary
	TopPerformers  []TopPerformer `json:"topPerformers"`
	RecentActivity []Activity     `json:"recentActivity"`
}

// TeamMember is one row of the per-user performance report.
type TeamMember struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Role             *string `json:"role"`
	Department       *string `json:"department"`
	Phone            *string `json:"phone"`
	Status           string  `json:"status"`
	TasksAssigned    int     `json:"tasksAssigned"`
	TasksCompleted   int     `json:"tasksCompleted"`
	TasksInProgress  int     `json:"tasksInProgress"`
	TasksPending     int     `json:"tasksPending"`
	TasksOverdue     int     `json:"tasksOverdue"`
	PerformanceScore int     `json:"performanceScore"`
}
