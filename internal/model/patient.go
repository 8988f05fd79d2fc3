package model

// Patient is a clinic patient. Balance is the running ledger total: positive
// means credit on account, negative means money owed.
type Patient struct {
	Base
	Name             string          `db:"name" json:"name"`
	Age              int             `db:"age" json:"age"`
	Gender           string          `db:"gender" json:"gender"`
	Phone            string          `db:"phone" json:"phone"`
	Email            *string         `db:"email" json:"email"`
	Address          *string         `db:"address" json:"address"`
	MedicalHistory   *string         `db:"medical_history" json:"medicalHistory"`
	EmergencyContact *string         `db:"emergency_contact" json:"emergencyContact"`
	Balance          Money           `db:"balance" json:"balance"`
}

type CreatePatientRequest struct {
	Name             string  `json:"name" binding:"required"`
	Age              *int    `json:"age" binding:"required,min=0,max=150"`
	Gender           string  `json:"gender" binding:"required"`
	Phone            string  `json:"phone" binding:"required"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Address          *string `json:"address"`
	MedicalHistory   *string `json:"medicalHistory"`
	EmergencyContact *string `json:"emergencyContact"`
}

func (r *CreatePatientRequest) ToPatient() *Patient {
	return &Patient{
		Name:             r.Name,
		Age:              *r.Age,
		Gender:           r.Gender,
		Phone:            r.Phone,
		Email:            emptyToNil(r.Email),
		Address:          r.Address,
		MedicalHistory:   r.MedicalHistory,
		EmergencyContact: r.EmergencyContact,
	}
}

// UpdatePatientRequest is a partial update; nil fields are left untouched.
// Balance is deliberately absent: it only moves through the ledger.
type UpdatePatientRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1"`
	Age              *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Gender           *string `json:"gender" binding:"omitempty,min=1"`
	Phone            *string `json:"phone" binding:"omitempty,min=1"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Address          *string `json:"address"`
	MedicalHistory   *string `json:"medicalHistory"`
	EmergencyContact *string `json:"emergencyContact"`
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
