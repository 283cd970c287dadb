package db

import "time"

// Course maps courses.
type Course struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(200);not null"`
	Instructor string    `gorm:"column:instructor;type:varchar(100);not null"`
	Category   string    `gorm:"column:category;type:varchar(50);not null;index"`
	Schedule   string    `gorm:"column:schedule;type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Course) TableName() string { return "courses" }

// Enrollment maps enrollments. A student enrolls in a course at most once; deleting the
// course deletes its enrollments.
type Enrollment struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StudentID  int64     `gorm:"column:student_id;type:bigint;not null;uniqueIndex:enrollments_student_course_key,priority:1"`
	CourseID   int64     `gorm:"column:course_id;type:bigint;not null;uniqueIndex:enrollments_student_course_key,priority:2;index"`
	EnrolledAt time.Time `gorm:"column:enrolled_at;type:timestamptz;not null;default:now()"`
}

func (Enrollment) TableName() string { return "enrollments" }

func autoMigrateModels() []any {
	return []any{
		&Course{},
		&Enrollment{},
	}
}
