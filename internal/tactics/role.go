package tactics

// Role tags the behavior an agent is running.
type Role int

const (
	RoleNone Role = iota
	RoleCollector
	RoleScavenger
	RoleForward
	RoleDefender
	RoleMainDefender
	RoleToHeal
)

var roleNames = map[Role]string{
	RoleNone:         "none",
	RoleCollector:    "collector",
	RoleScavenger:    "scavenger",
	RoleForward:      "forward",
	RoleDefender:     "defender",
	RoleMainDefender: "main_defender",
	RoleToHeal:       "to_heal",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// roleList names the dispatcher list an agent is filed under.
type roleList int

const (
	listNone roleList = iota
	listCollectors
	listDefenders
	listScavengers
	listForwards
	listCount
)

var listNames = [listCount]string{"none", "collectors", "defenders", "scavengers", "forwards"}

func (l roleList) String() string { return listNames[l] }

// listFor returns the list for role. Healing agents stay filed under the role they resume.
func listFor(role, resume Role) roleList {
	switch role {
	case RoleCollector:
		return listCollectors
	case RoleDefender, RoleMainDefender:
		return listDefenders
	case RoleScavenger:
		return listScavengers
	case RoleForward:
		return listForwards
	case RoleToHeal:
		if resume == RoleToHeal {
			return listNone
		}
		return listFor(resume, RoleNone)
	}
	return listNone
}
