package credits

// User is a team member row on the credit-management screen, as
// delivered by the platform's credits API. Balances are owned by the
// external ledger; this service only holds snapshots.
type User struct {
	MemberID       string `json:"member_id"`
	TeamID         string `json:"team_id"`
	UserName       string `json:"user_name"`
	UserPictureURL string `json:"user_picture_url,omitempty"`

	Credits        int64 `json:"credits"`
	MonthlyCredits int64 `json:"monthly_credits"`

	NeedsMonthlyCredits    bool   `json:"needs_monthly_credits,omitempty"`
	MonthlyCreditManagerID string `json:"monthly_credit_manager_id,omitempty"`
}

// Action names accepted by POST /api/credits.
type Action string

const (
	ActionAddCredits           Action = "ADD_CREDITS"
	ActionRemoveCredits        Action = "REMOVE_CREDITS"
	ActionUpdateMonthlyCredits Action = "UPDATE_MONTHLY_CREDITS"
	ActionRemoveUser           Action = "REMOVE_USER"
)
