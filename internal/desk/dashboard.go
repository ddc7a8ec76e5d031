package desk

import (
	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/domain"
)

// Dashboard is the landing screen.
type Dashboard struct {
	Username     string      `json:"username"`
	Role         domain.Role `json:"role"`
	Banner       string      `json:"banner"`
	Patients     int         `json:"patients"`
	Doctors      int         `json:"doctors"`
	Appointments int         `json:"appointments"`
}

var banners = map[domain.Role]string{
	domain.RoleAdmin: "Admin: Full access to manage all data.",
	domain.RoleStaff: "Staff: View and book appointments.",
}

// Dashboard returns the collection counts and the role banner.
func (d *Desk) Dashboard() (Dashboard, error) {
	id, err := d.enter(access.RouteDashboard)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Username:     id.Username,
		Role:         id.Role,
		Banner:       banners[id.Role],
		Patients:     d.records.Patients.Len(),
		Doctors:      d.records.Doctors.Len(),
		Appointments: d.records.Appointments.Len(),
	}, nil
}
