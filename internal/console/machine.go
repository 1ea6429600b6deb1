package console

// State is a menu state of the console.
type State int

const (
	StateInitial State = iota
	StateStudent
	StateTeacher
	StateAdded
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateStudent:
		return "student"
	case StateTeacher:
		return "teacher"
	case StateAdded:
		return "added"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Action is the effect a menu choice asks the console to perform.
type Action int

const (
	ActionNone Action = iota
	ActionInvalid
	ActionExit
	ActionLogin
	ActionLogout

	ActionSelfAssess
	ActionConsult
	ActionStudy
	ActionMockExam
	ActionPlanTime

	ActionAddStudent
	ActionAddExam
	ActionAddMaterial
	ActionAddTopic

	ActionDeleteStudent
	ActionDeleteExam
	ActionDeleteMaterial
	ActionDeleteTopic
)

// Step is the result of a transition: the action to run and the state to enter
// once the action succeeds. A failed action leaves the state unchanged.
type Step struct {
	Action Action
	Next   State
}

// MenuItem is one numbered entry of a menu.
type MenuItem struct {
	Key       string
	MessageID string
	Action    Action
	Next      State
}

// Menu is what a state renders: a title and its numbered items.
type Menu struct {
	TitleID string
	Items   []MenuItem
}

var menus = map[State]Menu{
	StateInitial: {
		TitleID: "MenuInitialTitle",
		Items: []MenuItem{
			{"1", "MenuInitialPrepare", ActionLogin, StateStudent},
			{"2", "MenuInitialTeacher", ActionNone, StateTeacher},
			{"0", "MenuExit", ActionExit, StateInitial},
		},
	},
	StateStudent: {
		TitleID: "MenuStudentTitle",
		Items: []MenuItem{
			{"1", "MenuStudentSelfAssess", ActionSelfAssess, StateStudent},
			{"2", "MenuStudentConsult", ActionConsult, StateStudent},
			{"3", "MenuStudentStudy", ActionStudy, StateStudent},
			{"4", "MenuStudentMockExam", ActionMockExam, StateStudent},
			{"5", "MenuStudentPlan", ActionPlanTime, StateStudent},
			{"0", "MenuExit", ActionLogout, StateInitial},
		},
	},
	StateTeacher: {
		TitleID: "MenuTeacherTitle",
		Items: []MenuItem{
			{"1", "MenuTeacherAdd", ActionNone, StateAdded},
			{"2", "MenuTeacherDelete", ActionNone, StateDeleted},
			{"0", "MenuExit", ActionLogout, StateInitial},
		},
	},
	StateAdded: {
		TitleID: "MenuAddTitle",
		Items: []MenuItem{
			{"1", "MenuItemStudent", ActionAddStudent, StateAdded},
			{"2", "MenuItemExam", ActionAddExam, StateAdded},
			{"3", "MenuItemMaterial", ActionAddMaterial, StateAdded},
			{"4", "MenuItemTopic", ActionAddTopic, StateAdded},
			{"0", "MenuExit", ActionNone, StateTeacher},
		},
	},
	StateDeleted: {
		TitleID: "MenuDeleteTitle",
		Items: []MenuItem{
			{"1", "MenuItemStudent", ActionDeleteStudent, StateDeleted},
			{"2", "MenuItemExam", ActionDeleteExam, StateDeleted},
			{"3", "MenuItemMaterial", ActionDeleteMaterial, StateDeleted},
			{"4", "MenuItemTopic", ActionDeleteTopic, StateDeleted},
			{"0", "MenuExit", ActionNone, StateTeacher},
		},
	},
}

// MenuFor returns the menu rendered in state s.
func MenuFor(s State) Menu {
	return menus[s]
}

// Next maps a choice in state s to a step. Unknown choices yield ActionInvalid
// and keep the state.
func Next(s State, choice string) Step {
	for _, item := range menus[s].Items {
		if item.Key == choice {
			return Step{Action: item.Action, Next: item.Next}
		}
	}
	return Step{Action: ActionInvalid, Next: s}
}
