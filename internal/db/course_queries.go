package db

import (
	"context"
	"fmt"
	"strings"
)

type CourseRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	Category   string `json:"category"`
	Schedule   string `json:"schedule"`
}

// CourseInput carries every writable course field.
type CourseInput struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	Category   string `json:"category"`
	Schedule   string `json:"schedule"`
}

// CoursePatch carries the fields a partial update changes; nil fields are left alone.
type CoursePatch struct {
	Name       *string `json:"name"`
	Instructor *string `json:"instructor"`
	Category   *string `json:"category"`
	Schedule   *string `json:"schedule"`
}

type CourseSearch struct {
	Query      string
	Category   string
	Instructor string
}

type CourseStats struct {
	TotalCourses     int64 `json:"total_courses"`
	TotalEnrollments int64 `json:"total_enrollments"`
	TotalCategories  int64 `json:"total_categories"`
}

var courseOrderings = map[string]string{
	"name":        "lower(name) ASC, id ASC",
	"-name":       "lower(name) DESC, id DESC",
	"instructor":  "lower(instructor) ASC, id ASC",
	"-instructor": "lower(instructor) DESC, id DESC",
}

// CourseOrderingValid reports whether ordering is accepted by ListCourses.
func CourseOrderingValid(ordering string) bool {
	ordering = strings.TrimSpace(ordering)
	if ordering == "" {
		return true
	}
	_, ok := courseOrderings[ordering]
	return ok
}

const courseColumns = `
	id,
	name,
	instructor,
	category,
	schedule
`

// ListCourses returns courses whose name, instructor or category contains search,
// ordered by one of name, -name, instructor, -instructor (default name).
func (p *Pool) ListCourses(ctx context.Context, search, ordering string) ([]CourseRecord, error) {
	orderBy, ok := courseOrderings[strings.TrimSpace(ordering)]
	if !ok {
		orderBy = courseOrderings["name"]
	}

	q := `
SELECT` + courseColumns + `
FROM courses
WHERE (
	$1 = ''
	OR name ILIKE $2 ESCAPE '\'
	OR instructor ILIKE $2 ESCAPE '\'
	OR category ILIKE $2 ESCAPE '\'
)
ORDER BY ` + orderBy

	search = strings.TrimSpace(search)
	rows, err := p.Query(ctx, q, search, likePattern(search))
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	return scanCourses(rows)
}

// SearchCourses matches q against name, instructor and category, category exactly, and
// instructor as a substring. Empty filters are ignored.
func (p *Pool) SearchCourses(ctx context.Context, search CourseSearch) ([]CourseRecord, error) {
	q := `
SELECT` + courseColumns + `
FROM courses
WHERE (
	$1 = ''
	OR name ILIKE $2 ESCAPE '\'
	OR instructor ILIKE $2 ESCAPE '\'
	OR category ILIKE $2 ESCAPE '\'
)
AND ($3 = '' OR category = $3)
AND ($4 = '' OR instructor ILIKE $5 ESCAPE '\')
ORDER BY lower(name) ASC, id ASC
`

	query := strings.TrimSpace(search.Query)
	instructor := strings.TrimSpace(search.Instructor)
	rows, err := p.Query(ctx, q,
		query,
		likePattern(query),
		strings.TrimSpace(search.Category),
		instructor,
		likePattern(instructor),
	)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return scanCourses(rows)
}

func (p *Pool) GetCourse(ctx context.Context, courseID int64) (*CourseRecord, error) {
	q := `
SELECT` + courseColumns + `
FROM courses
WHERE id = $1
LIMIT 1
`

	row, err := scanCourse(p.QueryRow(ctx, q, courseID))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query course by id: %w", err)
	}
	return row, nil
}

func (p *Pool) CreateCourse(ctx context.Context, input CourseInput) (*CourseRecord, error) {
	q := `
INSERT INTO courses (
	name,
	instructor,
	category,
	schedule,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING` + courseColumns

	input = input.trimmed()
	row, err := scanCourse(p.QueryRow(ctx, q, input.Name, input.Instructor, input.Category, input.Schedule))
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return row, nil
}

func (p *Pool) UpdateCourse(ctx context.Context, courseID int64, input CourseInput) (*CourseRecord, error) {
	q := `
UPDATE courses
SET
	name = $2,
	instructor = $3,
	category = $4,
	schedule = $5,
	updated_at = now()
WHERE id = $1
RETURNING` + courseColumns

	input = input.trimmed()
	row, err := scanCourse(p.QueryRow(ctx, q, courseID, input.Name, input.Instructor, input.Category, input.Schedule))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("update course: %w", err)
	}
	return row, nil
}

func (p *Pool) PatchCourse(ctx context.Context, courseID int64, patch CoursePatch) (*CourseRecord, error) {
	q := `
UPDATE courses
SET
	name = COALESCE($2, name),
	instructor = COALESCE($3, instructor),
	category = COALESCE($4, category),
	schedule = COALESCE($5, schedule),
	updated_at = now()
WHERE id = $1
RETURNING` + courseColumns

	row, err := scanCourse(p.QueryRow(ctx, q,
		courseID,
		trimmedPtr(patch.Name),
		trimmedPtr(patch.Instructor),
		trimmedPtr(patch.Category),
		trimmedPtr(patch.Schedule),
	))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("patch course: %w", err)
	}
	return row, nil
}

// DeleteCourse removes a course and, through the foreign key, its enrollments.
// It returns the deleted course's name.
func (p *Pool) DeleteCourse(ctx context.Context, courseID int64) (string, error) {
	const q = `DELETE FROM courses WHERE id = $1 RETURNING name`

	var name string
	if err := p.QueryRow(ctx, q, courseID).Scan(&name); err != nil {
		if IsNoRows(err) {
			return "", ErrNoRows
		}
		return "", fmt.Errorf("delete course: %w", err)
	}
	return name, nil
}

func (p *Pool) ListCategories(ctx context.Context) ([]string, error) {
	return p.distinctCourseColumn(ctx, "category")
}

func (p *Pool) ListInstructors(ctx context.Context) ([]string, error) {
	return p.distinctCourseColumn(ctx, "instructor")
}

func (p *Pool) CourseStats(ctx context.Context) (*CourseStats, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM courses),
	(SELECT COUNT(*) FROM enrollments),
	(SELECT COUNT(DISTINCT category) FROM courses)
`

	var stats CourseStats
	if err := p.QueryRow(ctx, q).Scan(&stats.TotalCourses, &stats.TotalEnrollments, &stats.TotalCategories); err != nil {
		return nil, fmt.Errorf("query course stats: %w", err)
	}
	return &stats, nil
}

func (p *Pool) distinctCourseColumn(ctx context.Context, column string) ([]string, error) {
	// column is one of two fixed identifiers, never user input.
	q := `SELECT DISTINCT ` + column + ` FROM courses ORDER BY ` + column

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0, 16)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan distinct %s: %w", column, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distinct %s: %w", column, err)
	}
	return values, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*CourseRecord, error) {
	var course CourseRecord
	if err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Instructor,
		&course.Category,
		&course.Schedule,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func scanCourses(rows *Rows) ([]CourseRecord, error) {
	defer rows.Close()

	courses := make([]CourseRecord, 0, 32)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course rows: %w", err)
	}
	return courses, nil
}

func (in CourseInput) trimmed() CourseInput {
	return CourseInput{
		Name:       strings.TrimSpace(in.Name),
		Instructor: strings.TrimSpace(in.Instructor),
		Category:   strings.TrimSpace(in.Category),
		Schedule:   strings.TrimSpace(in.Schedule),
	}
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func likePattern(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(raw) + "%"
}
