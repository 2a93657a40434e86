package model

import "time"

// HomeAccessOverride is an explicit allow/deny exception tying one member to
// one home. The storage layer does not enforce uniqueness on (home, member);
// when duplicates exist the most recently inserted row is the effective one.
type HomeAccessOverride struct {
	ID          int64            `json:"id"`
	HouseholdID int64            `json:"household_id"`
	HomeID      int64            `json:"home_id"`
	MemberID    int64            `json:"member_id"`
	Decision    OverrideDecision `json:"decision"`
	CreatedAt   time.Time        `json:"created_at"`
}

// MemberHomeAccessState is the evaluator's verdict for one (home, member) pair.
type MemberHomeAccessState struct {
	MemberID     int64        `json:"member_id"`
	IsAccessible bool         `json:"is_accessible"`
	Source       AccessSource `json:"source"`
}
