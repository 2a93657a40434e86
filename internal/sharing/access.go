package sharing

import (
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

// Flags carries deployment-level feature toggles. A Flags value is passed
// into every evaluation rather than read from process state, so the same
// service instance can be evaluated under different flag states.
type Flags struct {
	FamilySharingScopingEnabled bool
}

// accessInput is everything the rule chain needs to decide one (home, member)
// pair. All fields are plain values; the chain performs no I/O.
type accessInput struct {
	flags     Flags
	household model.Household
	home      model.Home
	member    model.HouseholdMember
	override  *model.HomeAccessOverride
}

// accessRule inspects the input and either returns a verdict or passes.
type accessRule func(accessInput) (model.MemberHomeAccessState, bool)

// accessRules is the precedence order: kill-switch, owner, private home,
// override. The household default policy is the fallthrough in resolveAccess.
// Order is load-bearing: a private home cannot be unlocked by an allow
// override, and the kill-switch beats everything including deny overrides.
var accessRules = []accessRule{
	scopingDisabledRule,
	ownerRule,
	privateHomeRule,
	overrideRule,
}

// resolveAccess runs the rule chain and falls through to the household
// default policy.
func resolveAccess(in accessInput) model.MemberHomeAccessState {
	for _, rule := range accessRules {
		if state, ok := rule(in); ok {
			return state
		}
	}
	return defaultPolicyState(in)
}

// scopingDisabledRule: when family-sharing scoping is off, either via the
// deployment flag or the household-level sharing toggle, privacy and
// overrides are ignored and every member sees every home.
func scopingDisabledRule(in accessInput) (model.MemberHomeAccessState, bool) {
	if in.flags.FamilySharingScopingEnabled && in.household.SharingEnabled {
		return model.MemberHomeAccessState{}, false
	}
	return model.MemberHomeAccessState{
		MemberID:     in.member.ID,
		IsAccessible: true,
		Source:       model.SourceInherited,
	}, true
}

// ownerRule: the household owner always has access, including to private
// homes. Locking the owner out of a home they marked private would make
// privacy irreversible.
func ownerRule(in accessInput) (model.MemberHomeAccessState, bool) {
	if in.member.Role != model.RoleOwner {
		return model.MemberHomeAccessState{}, false
	}
	return model.MemberHomeAccessState{
		MemberID:     in.member.ID,
		IsAccessible: true,
		Source:       model.SourceInherited,
	}, true
}

// privateHomeRule: a private home is inaccessible to every non-owner member.
// Runs before the override rule so an allow override never unlocks a private
// home.
func privateHomeRule(in accessInput) (model.MemberHomeAccessState, bool) {
	if !in.home.IsPrivate {
		return model.MemberHomeAccessState{}, false
	}
	return model.MemberHomeAccessState{
		MemberID:     in.member.ID,
		IsAccessible: false,
		Source:       model.SourcePrivateHome,
	}, true
}

// overrideRule: an explicit override wins over the household default.
func overrideRule(in accessInput) (model.MemberHomeAccessState, bool) {
	if in.override == nil {
		return model.MemberHomeAccessState{}, false
	}
	if in.override.Decision == model.DecisionDeny {
		return model.MemberHomeAccessState{
			MemberID:     in.member.ID,
			IsAccessible: false,
			Source:       model.SourceOverriddenDeny,
		}, true
	}
	return model.MemberHomeAccessState{
		MemberID:     in.member.ID,
		IsAccessible: true,
		Source:       model.SourceOverriddenAllow,
	}, true
}

func defaultPolicyState(in accessInput) model.MemberHomeAccessState {
	return model.MemberHomeAccessState{
		MemberID:     in.member.ID,
		IsAccessible: in.household.DefaultPolicy == model.PolicyAllHomesShared,
		Source:       model.SourceInherited,
	}
}

// LoadHomeAccessStates returns one access state per household member for the
// given home, in member creation order.
func (s *Service) LoadHomeAccessStates(homeID int64, flags Flags) ([]model.MemberHomeAccessState, error) {
	home, err := s.homes.GetByID(homeID)
	if err != nil {
		return nil, err
	}
	if home == nil {
		return nil, fmt.Errorf("home %d: %w", homeID, ErrNotFound)
	}

	household, err := s.households.GetByID(home.HouseholdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, fmt.Errorf("household %d: %w", home.HouseholdID, ErrNotFound)
	}

	members, err := s.members.ListByHousehold(household.ID)
	if err != nil {
		return nil, err
	}

	states := make([]model.MemberHomeAccessState, 0, len(members))
	for _, m := range members {
		override, err := s.overrides.Effective(home.ID, m.ID)
		if err != nil {
			return nil, err
		}
		states = append(states, resolveAccess(accessInput{
			flags:     flags,
			household: *household,
			home:      *home,
			member:    m,
			override:  override,
		}))
	}
	return states, nil
}

// MemberHomeAccess evaluates a single (home, member) pair.
func (s *Service) MemberHomeAccess(homeID, memberID int64, flags Flags) (model.MemberHomeAccessState, error) {
	home, err := s.homes.GetByID(homeID)
	if err != nil {
		return model.MemberHomeAccessState{}, err
	}
	if home == nil {
		return model.MemberHomeAccessState{}, fmt.Errorf("home %d: %w", homeID, ErrNotFound)
	}

	household, err := s.households.GetByID(home.HouseholdID)
	if err != nil {
		return model.MemberHomeAccessState{}, err
	}
	if household == nil {
		return model.MemberHomeAccessState{}, fmt.Errorf("household %d: %w", home.HouseholdID, ErrNotFound)
	}

	member, err := s.members.GetByID(memberID)
	if err != nil {
		return model.MemberHomeAccessState{}, err
	}
	if member == nil {
		return model.MemberHomeAccessState{}, fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}

	override, err := s.overrides.Effective(home.ID, member.ID)
	if err != nil {
		return model.MemberHomeAccessState{}, err
	}

	return resolveAccess(accessInput{
		flags:     flags,
		household: *household,
		home:      *home,
		member:    *member,
		override:  override,
	}), nil
}
