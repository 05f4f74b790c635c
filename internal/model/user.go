package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;size:128;not null"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Role      string `gorm:"size:16;not null;default:student"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// StudentProfile 学生匿名身份，session_code 首次登录生成后不再变化
type StudentProfile struct {
	UserID      string `gorm:"primaryKey;size:36"`
	SessionCode string `gorm:"uniqueIndex;size:16;not null"`
	CreatedAt   time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StudentProfile) TableName() string { return "student_profiles" }

// FacultyProfile 教师通讯录条目，由管理命令维护
type FacultyProfile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Email       string    `gorm:"size:128;not null" json:"email"`
	Department  string    `gorm:"size:128;index" json:"department"`
	Experience  string    `gorm:"size:64" json:"experience"`
	PhoneNo     string    `gorm:"size:20" json:"phone_no"`
	DateOfBirth string    `gorm:"size:10" json:"date_of_birth"`
	CabinNo     string    `gorm:"size:32" json:"cabin_no"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FacultyProfile) TableName() string { return "faculty_profiles" }

func (f *FacultyProfile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
