package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nawanshu18/student-result-management-system/core"
)

// DOBLayout is the canonical date of birth format: DD-MM-YYYY.
const DOBLayout = "02-01-2006"

var dobInputLayouts = []string{DOBLayout, "2-1-2006", "02/01/2006", "2/1/2006"}

type Student struct {
	Roll      string    `json:"roll"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	DOB       string    `json:"dob"`        // DD-MM-YYYY, empty when unknown
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NormalizeDOB parses a date of birth in any accepted layout and returns it as DD-MM-YYYY.
// ok is false when s is not a date.
func NormalizeDOB(s string) (dob string, ok bool) {
	s = core.CleanString(s)
	for _, layout := range dobInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DOBLayout), true
		}
	}
	return s, false
}

// NormalizeRoll trims a roll number. Rolls are case-sensitive.
func NormalizeRoll(roll string) string {
	return core.CleanString(roll)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Roll  string `json:"roll" validate:"required,roll"`
	Name  string `json:"name" validate:"required,notblank,max=255"`
	Class string `json:"class" validate:"max=64"`
	DOB   string `json:"dob" validate:"omitempty,dob"`
}

func (ns *NewStudent) clean() {
	ns.Roll = NormalizeRoll(ns.Roll)
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.DOB, _ = NormalizeDOB(ns.DOB)
}

// Validate cleans and validates the fields without checking the roll uniqueness.
// Use it for upserts (bulk import); creation also goes through Service.CheckRollUniqueness.
func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.clean()
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent struct {
	Roll  string `json:"roll" validate:"omitempty,roll"`
	Name  string `json:"name" validate:"omitempty,max=255"`
	Class string `json:"class" validate:"omitempty,max=64"`
	DOB   string `json:"dob" validate:"omitempty,dob"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc Service) error {
	if roll := NormalizeRoll(us.Roll); roll != "" {
		us.Roll = roll
	} else {
		us.Roll = orig.Roll
	}

	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	if class := core.CleanString(us.Class); class != "" {
		us.Class = class
	} else {
		us.Class = orig.Class
	}

	if dob := core.CleanString(us.DOB); dob != "" {
		us.DOB, _ = NormalizeDOB(dob)
	} else {
		us.DOB = orig.DOB
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Roll != orig.Roll {
		return svc.CheckRollUniqueness(us.Roll)
	}
	return nil
}

type QueryFilter struct {
	Search string `query:"search"`
	Class  string `query:"class"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Class == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
}
