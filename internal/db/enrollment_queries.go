package db

import (
	"context"
	"fmt"
	"time"
)

type EnrollmentRecord struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// StudentCourse is a course as seen from one student's enrollment list.
type StudentCourse struct {
	CourseRecord
	EnrolledAt time.Time `json:"enrolled_at"`
}

const enrollmentColumns = `
	id,
	student_id,
	course_id,
	enrolled_at
`

// ListEnrollments returns every enrollment, most recent first.
func (p *Pool) ListEnrollments(ctx context.Context) ([]EnrollmentRecord, error) {
	q := `
SELECT` + enrollmentColumns + `
FROM enrollments
ORDER BY enrolled_at DESC, id DESC
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]EnrollmentRecord, 0, 32)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, *enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollment rows: %w", err)
	}
	return enrollments, nil
}

func (p *Pool) GetEnrollment(ctx context.Context, enrollmentID int64) (*EnrollmentRecord, error) {
	q := `
SELECT` + enrollmentColumns + `
FROM enrollments
WHERE id = $1
LIMIT 1
`

	enrollment, err := scanEnrollment(p.QueryRow(ctx, q, enrollmentID))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query enrollment by id: %w", err)
	}
	return enrollment, nil
}

// CreateEnrollment enrolls a student in a course. It returns ErrNoRows when the course does
// not exist and ErrDuplicate when the student is already enrolled.
func (p *Pool) CreateEnrollment(ctx context.Context, studentID, courseID int64) (*EnrollmentRecord, error) {
	q := `
INSERT INTO enrollments (
	student_id,
	course_id,
	enrolled_at
)
SELECT $1, c.id, now()
FROM courses c
WHERE c.id = $2
ON CONFLICT (student_id, course_id) DO NOTHING
RETURNING` + enrollmentColumns

	enrollment, err := scanEnrollment(p.QueryRow(ctx, q, studentID, courseID))
	if err == nil {
		return enrollment, nil
	}
	if !IsNoRows(err) {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	if _, err := p.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return nil, ErrDuplicate
}

func (p *Pool) DeleteEnrollment(ctx context.Context, enrollmentID int64) error {
	const q = `DELETE FROM enrollments WHERE id = $1`

	tag, err := p.Exec(ctx, q, enrollmentID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// DeleteStudentEnrollment removes one student's enrollment in a course.
func (p *Pool) DeleteStudentEnrollment(ctx context.Context, courseID, studentID int64) error {
	const q = `DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`

	tag, err := p.Exec(ctx, q, courseID, studentID)
	if err != nil {
		return fmt.Errorf("delete student enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// ListCourseStudents returns the ids of students enrolled in a course, most recent first.
func (p *Pool) ListCourseStudents(ctx context.Context, courseID int64) ([]int64, error) {
	const q = `
SELECT student_id
FROM enrollments
WHERE course_id = $1
ORDER BY enrolled_at DESC, id DESC
`

	rows, err := p.Query(ctx, q, courseID)
	if err != nil {
		return nil, fmt.Errorf("query course students: %w", err)
	}
	defer rows.Close()

	studentIDs := make([]int64, 0, 32)
	for rows.Next() {
		var studentID int64
		if err := rows.Scan(&studentID); err != nil {
			return nil, fmt.Errorf("scan course student: %w", err)
		}
		studentIDs = append(studentIDs, studentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course students: %w", err)
	}
	return studentIDs, nil
}

func (p *Pool) ListStudentCourses(ctx context.Context, studentID int64) ([]StudentCourse, error) {
	const q = `
SELECT
	c.id,
	c.name,
	c.instructor,
	c.category,
	c.schedule,
	e.enrolled_at
FROM enrollments e
JOIN courses c ON c.id = e.course_id
WHERE e.student_id = $1
ORDER BY e.enrolled_at DESC, e.id DESC
`

	rows, err := p.Query(ctx, q, studentID)
	if err != nil {
		return nil, fmt.Errorf("query student courses: %w", err)
	}
	defer rows.Close()

	courses := make([]StudentCourse, 0, 16)
	for rows.Next() {
		var course StudentCourse
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Instructor,
			&course.Category,
			&course.Schedule,
			&course.EnrolledAt,
		); err != nil {
			return nil, fmt.Errorf("scan student course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student courses: %w", err)
	}
	return courses, nil
}

func scanEnrollment(row rowScanner) (*EnrollmentRecord, error) {
	var enrollment EnrollmentRecord
	if err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.EnrolledAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
