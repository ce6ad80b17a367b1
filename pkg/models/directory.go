package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffStatus marks whether a staff member can receive assignments.
type StaffStatus string

const (
	StaffActive   StaffStatus = "active"
	StaffInactive StaffStatus = "inactive"
)

// IsValid checks if the staff status is valid.
func (s StaffStatus) IsValid() bool {
	return s == StaffActive || s == StaffInactive
}

// StaffMember is an individual municipal employee.
type StaffMember struct {
	ID        uuid.UUID   `json:"user_id"`
	FirstName string      `json:"firstname"`
	LastName  string      `json:"lastname"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone_number"`
	Status    StaffStatus `json:"status"`
	CreatedAt time.Time   `json:"time_created"`
}

// Label categorizes tickets (e.g. "Pothole", "Street Sign Damage").
type Label struct {
	ID          uuid.UUID `json:"label_id"`
	Name        string    `json:"label_name"`
	Description string    `json:"label_description"`
	ColorHex    string    `json:"color_hex"`
}

// CrewType identifies the kind of field work a crew handles.
type CrewType string

const (
	CrewTypePothole    CrewType = "pothole crew"
	CrewTypeDrain      CrewType = "drain crew"
	CrewTypeTree       CrewType = "tree crew"
	CrewTypeSign       CrewType = "sign crew"
	CrewTypeSnow       CrewType = "snow crew"
	CrewTypeSanitation CrewType = "sanitation crew"
)

// IsValid checks if the crew type is one of the closed set.
func (t CrewType) IsValid() bool {
	switch t {
	case CrewTypePothole, CrewTypeDrain, CrewTypeTree,
		CrewTypeSign, CrewTypeSnow, CrewTypeSanitation:
		return true
	default:
		return false
	}
}

// CrewTypes lists all valid crew types in a stable order. Used to build
// the enum domain in tool parameter schemas.
func CrewTypes() []CrewType {
	return []CrewType{
		CrewTypePothole, CrewTypeDrain, CrewTypeTree,
		CrewTypeSign, CrewTypeSnow, CrewTypeSanitation,
	}
}

// CrewStatus marks whether a crew is available for dispatch.
type CrewStatus string

const (
	CrewActive   CrewStatus = "active"
	CrewInactive CrewStatus = "inactive"
)

// IsValid checks if the crew status is valid.
func (s CrewStatus) IsValid() bool {
	return s == CrewActive || s == CrewInactive
}

// Crew is a field work team with a home location.
type Crew struct {
	ID       uuid.UUID  `json:"team_id"`
	Name     string     `json:"team_name"`
	CrewType CrewType   `json:"crew_type"`
	Status   CrewStatus `json:"status"`
	Location *Location  `json:"location_coordinates,omitempty"`
}

// CrewWithDistance is a crew annotated with its distance in meters from a
// query point. Returned by the nearest-crew search in ascending order.
type CrewWithDistance struct {
	Crew
	Distance float64 `json:"distance"`
}
