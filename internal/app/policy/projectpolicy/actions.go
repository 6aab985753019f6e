// internal/app/policy/projectpolicy/actions.go
package projectpolicy

// Action names a project mutation subject to authorization.
type Action string

const (
	ActionEditDetails       Action = "edit_details"
	ActionChangeStatus      Action = "change_status"
	ActionAddParticipant    Action = "add_participant"
	ActionRemoveParticipant Action = "remove_participant"
	ActionSetMetadata       Action = "set_metadata"
	ActionAddProgress       Action = "add_progress"
)

type rule int

const (
	ruleUnknown rule = iota
	ruleOwner        // owner only
	ruleMember       // owner or participant
)

func (a Action) rule() rule {
	switch a {
	case ActionEditDetails, ActionChangeStatus, ActionAddParticipant,
		ActionRemoveParticipant, ActionSetMetadata:
		return ruleOwner
	case ActionAddProgress:
		return ruleMember
	}
	return ruleUnknown
}
