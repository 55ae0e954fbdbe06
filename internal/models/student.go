package models

import (
	"time"

	"gorm.io/gorm"
)

// Student status constants
const (
	StudentStatusActive    = "active"
	StudentStatusWithdrawn = "withdrawn"
	StudentStatusGraduated = "graduated"
)

// Staff roles carried in JWT claims
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
)

// Student represents an enrolled student billed against a fee structure
type Student struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FullName       string     `gorm:"not null" json:"full_name"`
	RollNumber     string     `gorm:"uniqueIndex" json:"roll_number"`
	ClassName      string     `gorm:"index" json:"class_name"`
	GuardianName   string     `json:"guardian_name"`
	GuardianEmail  string     `json:"guardian_email"`
	GuardianPhone  string     `json:"guardian_phone"`
	FeeStructureID *uint      `gorm:"index" json:"fee_structure_id"`
	Status         string     `gorm:"default:active;index" json:"status"`
	EnrolledAt     *time.Time `gorm:"type:date" json:"enrolled_at"`
	ReminderSentAt *time.Time `gorm:"column:dues_reminder_sent_at" json:"-"` // last dues reminder email
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	FeeStructure *FeeStructure `gorm:"foreignKey:FeeStructureID" json:"fee_structure,omitempty"`
	Payments     []Payment     `gorm:"foreignKey:StudentID" json:"payments,omitempty"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}

// BeforeCreate hook for setting defaults
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = StudentStatusActive
	}
	return nil
}

// IsActive returns true if the student is currently enrolled
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// HasGuardianEmail reports whether reminders can be delivered
func (s *Student) HasGuardianEmail() bool {
	return s.GuardianEmail != ""
}

// StudentResponse is the JSON response format for students
type StudentResponse struct {
	ID             uint   `json:"id"`
	FullName       string `json:"full_name"`
	RollNumber     string `json:"roll_number"`
	ClassName      string `json:"class_name"`
	GuardianName   string `json:"guardian_name"`
	GuardianEmail  string `json:"guardian_email"`
	FeeStructureID *uint  `json:"fee_structure_id"`
	Status         string `json:"status"`
}

// ToResponse converts Student to StudentResponse
func (s *Student) ToResponse() StudentResponse {
	return StudentResponse{
		ID:             s.ID,
		FullName:       s.FullName,
		RollNumber:     s.RollNumber,
		ClassName:      s.ClassName,
		GuardianName:   s.GuardianName,
		GuardianEmail:  s.GuardianEmail,
		FeeStructureID: s.FeeStructureID,
		Status:         s.Status,
	}
}
