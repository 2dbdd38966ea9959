package dto

type BroadcastInput struct {
	Title   string `json:"title" binding:"required,max=150"`
	Message string `json:"message" binding:"required,max=2000"`
}

type RoleInput struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

type StatsResponse struct {
	Users             int64 `json:"users"`
	PendingUsers      int64 `json:"pending_users"`
	People            int64 `json:"people"`
	Documents         int64 `json:"documents"`
	UpcomingBirthdays int   `json:"upcoming_birthdays"`
}
