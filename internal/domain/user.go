package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
)

type UserType string

const (
	UserTypeStudent UserType = "Student"
	UserTypeFaculty UserType = "Faculty"
	UserTypeStaff   UserType = "Staff"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypeFaculty, UserTypeStaff:
		return true
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	PhoneNumber   string     `json:"phone_number"`
	VehicleNumber string     `json:"vehicle_number"`
	Type          UserType   `json:"type"`
	Status        UserStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
