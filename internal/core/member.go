package core

import (
	"strings"
	"time"
)

// Gender values accepted on a member.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// UnknownName stands in for a member or plan that cannot be resolved.
const UnknownName = "Unknown"

type Member struct {
	ID               int64     `json:"id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          *string   `json:"address"`
	DateOfBirth      *Date     `json:"dateOfBirth"`
	Gender           *string   `json:"gender"`
	EmergencyContact *string   `json:"emergencyContact"`
	EmergencyPhone   *string   `json:"emergencyPhone"`
	Notes            *string   `json:"notes"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MemberInput is the create payload for a member.
type MemberInput struct {
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Address          *string `json:"address"`
	DateOfBirth      *Date   `json:"dateOfBirth"`
	Gender           *string `json:"gender"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
	Notes            *string `json:"notes"`
	Active           *bool   `json:"active"`
}

// Member builds the record to insert. Active defaults to true.
func (in MemberInput) Member(now time.Time) Member {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return Member{
		FullName:         strings.TrimSpace(in.FullName),
		Email:            strings.TrimSpace(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		Address:          in.Address,
		DateOfBirth:      in.DateOfBirth,
		Gender:           in.Gender,
		EmergencyContact: in.EmergencyContact,
		EmergencyPhone:   in.EmergencyPhone,
		Notes:            in.Notes,
		Active:           active,
		CreatedAt:        now.UTC(),
	}
}

// MemberPatch is a partial update; nil fields are left unchanged.
type MemberPatch struct {
	FullName         *string `json:"fullName"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	DateOfBirth      *Date   `json:"dateOfBirth"`
	Gender           *string `json:"gender"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
	Notes            *string `json:"notes"`
	Active           *bool   `json:"active"`
}

func (p MemberPatch) Apply(m Member) Member {
	if p.FullName != nil {
		m.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Email != nil {
		m.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		m.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Address != nil {
		m.Address = p.Address
	}
	if p.DateOfBirth != nil {
		m.DateOfBirth = p.DateOfBirth
	}
	if p.Gender != nil {
		m.Gender = p.Gender
	}
	if p.EmergencyContact != nil {
		m.EmergencyContact = p.EmergencyContact
	}
	if p.EmergencyPhone != nil {
		m.EmergencyPhone = p.EmergencyPhone
	}
	if p.Notes != nil {
		m.Notes = p.Notes
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	return m
}

func (m Member) Validate() error {
	var v validator
	v.required("fullName", m.FullName)
	v.maxLen("fullName", m.FullName, 200)
	v.email("email", m.Email)
	v.required("phone", m.Phone)
	if m.Gender != nil {
		switch *m.Gender {
		case GenderMale, GenderFemale, GenderOther:
		default:
			v.add("gender", "must be one of male, female, other")
		}
	}
	return v.err()
}

// DisplayName returns the member's name or UnknownName.
func (m *Member) DisplayName() string {
	if m == nil || strings.TrimSpace(m.FullName) == "" {
		return UnknownName
	}
	return m.FullName
}
