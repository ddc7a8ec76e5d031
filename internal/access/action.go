package access

import (
	"fmt"

	"github.com/roach88/clinicdesk/internal/domain"
)

// Action names a mutating operation subject to a role check.
type Action string

const (
	AddPatient        Action = "add_patient"
	EditPatient       Action = "edit_patient"
	DeletePatient     Action = "delete_patient"
	AddDoctor         Action = "add_doctor"
	EditDoctor        Action = "edit_doctor"
	DeleteDoctor      Action = "delete_doctor"
	BookAppointment   Action = "book_appointment"
	EditAppointment   Action = "edit_appointment"
	DeleteAppointment Action = "delete_appointment"
)

type actionRule struct {
	adminOnly bool
	message   string
}

var actions = map[Action]actionRule{
	AddPatient:        {},
	EditPatient:       {adminOnly: true, message: "Only admins can edit patients."},
	DeletePatient:     {adminOnly: true, message: "Only admins can delete patients."},
	AddDoctor:         {adminOnly: true, message: "Only admins can add doctors."},
	EditDoctor:        {adminOnly: true, message: "Only admins can edit doctors."},
	DeleteDoctor:      {adminOnly: true, message: "Only admins can delete doctors."},
	BookAppointment:   {},
	EditAppointment:   {},
	DeleteAppointment: {adminOnly: true, message: "Only admins can delete appointments."},
}

// DeniedError is an authorization failure. Its message is shown to the user.
type DeniedError struct {
	Action  Action
	Role    domain.Role
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// Check applies the per-action role check for id.
func Check(id *domain.Identity, action Action) error {
	rule, ok := actions[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	if id == nil {
		return &DeniedError{Action: action, Message: "Please log in."}
	}
	if rule.adminOnly && id.Role != domain.RoleAdmin {
		return &DeniedError{Action: action, Role: id.Role, Message: rule.message}
	}
	return nil
}

// Permitted reports whether id may perform action.
func Permitted(id *domain.Identity, action Action) bool {
	return Check(id, action) == nil
}
