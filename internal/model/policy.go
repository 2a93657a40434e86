package model

import "fmt"

// AccessPolicy is the household-wide fallback rule applied to a home when no
// explicit override exists for a member.
type AccessPolicy string

const (
	// PolicyAllHomesShared grants every member access to every non-private home.
	PolicyAllHomesShared AccessPolicy = "all_homes_shared"
	// PolicyOwnerScopesHomes denies members by default; access is granted
	// per-home via allow overrides.
	PolicyOwnerScopesHomes AccessPolicy = "owner_scopes_homes"
)

func ParseAccessPolicy(s string) (AccessPolicy, error) {
	switch AccessPolicy(s) {
	case PolicyAllHomesShared, PolicyOwnerScopesHomes:
		return AccessPolicy(s), nil
	}
	return "", fmt.Errorf("unknown access policy %q", s)
}

// OverrideDecision is the explicit per-(home, member) exception.
type OverrideDecision string

const (
	DecisionAllow OverrideDecision = "allow"
	DecisionDeny  OverrideDecision = "deny"
)

func ParseOverrideDecision(s string) (OverrideDecision, error) {
	switch OverrideDecision(s) {
	case DecisionAllow, DecisionDeny:
		return OverrideDecision(s), nil
	}
	return "", fmt.Errorf("unknown override decision %q", s)
}

// AccessSource records which rule produced an access decision.
type AccessSource string

const (
	SourceInherited       AccessSource = "inherited"
	SourceOverriddenAllow AccessSource = "overridden_allow"
	SourceOverriddenDeny  AccessSource = "overridden_deny"
	SourcePrivateHome     AccessSource = "private_home"
)

// MemberRole distinguishes the household owner from invited members.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

func ParseMemberRole(s string) (MemberRole, error) {
	switch MemberRole(s) {
	case RoleOwner, RoleMember:
		return MemberRole(s), nil
	}
	return "", fmt.Errorf("unknown member role %q", s)
}

// MemberStatus is a lifecycle state. Revocation is a status transition, never
// a delete; revoked members stay resolvable for history.
type MemberStatus string

const (
	StatusActive  MemberStatus = "active"
	StatusRevoked MemberStatus = "revoked"
)

func ParseMemberStatus(s string) (MemberStatus, error) {
	switch MemberStatus(s) {
	case StatusActive, StatusRevoked:
		return MemberStatus(s), nil
	}
	return "", fmt.Errorf("unknown member status %q", s)
}
