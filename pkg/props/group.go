package props

// group is one row of the publication group table. Members are stored as
// registry slot indexes.
type group struct {
	onlyIfChanged bool
	periodMs      uint32
	lastFiredMs   uint32
	members       []int
}

// CreateGroup registers a publication group with the given period and
// only-if-changed policy. Groups are created once at setup and never
// destroyed.
func (r *Registry) CreateGroup(periodMs uint32, onlyIfChanged bool) (GroupID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.groups) >= r.cfg.MaxGroups {
		return 0, ErrGroupTableFull
	}
	r.groups = append(r.groups, &group{
		onlyIfChanged: onlyIfChanged,
		periodMs:      periodMs,
	})
	return GroupID(len(r.groups)), nil
}

// AddToGroup adds a property to a group. It returns false when either
// handle is invalid, when the property is already a member, or when the
// group is at capacity. A property may belong to any number of groups.
func (r *Registry) AddToGroup(id PropID, gid GroupID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	propIdx := int(id) - 1
	groupIdx := int(gid) - 1
	if propIdx < 0 || propIdx >= len(r.props) {
		return false
	}
	if groupIdx < 0 || groupIdx >= len(r.groups) {
		return false
	}

	g := r.groups[groupIdx]
	if len(g.members) >= r.cfg.MaxProperties {
		return false
	}
	for _, m := range g.members {
		if m == propIdx {
			return false
		}
	}
	g.members = append(g.members, propIdx)
	return true
}

// GroupCount returns the number of created groups.
func (r *Registry) GroupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}
