package economy

// CurrentTierIndex returns the ladder index of the highest tier whose
// role the member currently holds, or -1 when none of the ladder roles
// are held. The member's role set is the source of truth; the bot
// persists no tier state of its own.
func (p Policy) CurrentTierIndex(heldRoleIDs []string) int {
	held := make(map[string]struct{}, len(heldRoleIDs))
	for _, id := range heldRoleIDs {
		held[id] = struct{}{}
	}

	highest := -1
	for i, tier := range p.Tiers {
		if _, ok := held[tier.RoleID]; ok {
			highest = i
		}
	}
	return highest
}

// NextTier returns the next purchasable tier for a member holding the
// given tier index, and false when the ladder top has been reached.
func (p Policy) NextTier(currentIndex int) (Tier, bool) {
	next := currentIndex + 1
	if next < 0 || next >= len(p.Tiers) {
		return Tier{}, false
	}
	return p.Tiers[next], true
}
