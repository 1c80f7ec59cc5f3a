package employee

import (
	"time"
)

// Employee is the identity snapshot the pipeline reads. The HR master record is
// owned elsewhere; this package only reads it.
type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	WorkLocation     *string
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	ResignationDate  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmployedDuring reports whether the employee was employed at any point in [from, to].
func (e Employee) EmployedDuring(from, to time.Time) bool {
	if e.HireDate.After(to) {
		return false
	}
	return e.ResignationDate == nil || !e.ResignationDate.Before(from)
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)
