package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AycMouna/scholara/internal/db"
	payloadschema "github.com/AycMouna/scholara/internal/schema"
)

type courseStudentsResponse struct {
	CourseID   int64   `json:"course_id"`
	StudentIDs []int64 `json:"student_ids"`
	Count      int     `json:"count"`
}

type studentCoursesResponse struct {
	StudentID int64              `json:"student_id"`
	Courses   []db.StudentCourse `json:"courses"`
	Count     int                `json:"count"`
}

func (s *CourseServer) handleListEnrollments(c echo.Context) error {
	enrollments, err := s.courseDataStore().ListEnrollments(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list enrollments failed")
		return internalError(c, "Failed to list enrollments")
	}
	return success(c, enrollments)
}

func (s *CourseServer) handleGetEnrollment(c echo.Context) error {
	enrollmentID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	enrollment, err := s.courseDataStore().GetEnrollment(c.Request().Context(), enrollmentID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Enrollment not found")
		}
		s.logger.Error().Err(err).Int64("enrollment_id", enrollmentID).Msg("get enrollment failed")
		return internalError(c, "Failed to load enrollment")
	}
	return success(c, enrollment)
}

func (s *CourseServer) handleCreateEnrollment(c echo.Context) error {
	payload, ok, err := decodePayload(c, func(body []byte) (payloadschema.Enrollment, error) {
		return payloadschema.DecodeEnrollment(body, true)
	})
	if !ok {
		return err
	}

	enrollment, err := s.courseDataStore().CreateEnrollment(c.Request().Context(), payload.StudentID, payload.CourseID)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNoRows):
		return failValidation(c, map[string]string{"course": "Invalid pk - object does not exist."})
	case errors.Is(err, db.ErrDuplicate):
		return failValidation(c, map[string]string{"non_field_errors": "The fields student_id, course must make a unique set."})
	default:
		s.logger.Error().Err(err).Msg("create enrollment failed")
		return internalError(c, "Failed to create enrollment")
	}

	s.logger.Info().
		Int64("student_id", enrollment.StudentID).
		Int64("course_id", enrollment.CourseID).
		Msg("enrollment created")
	return successWithStatus(c, http.StatusCreated, enrollment)
}

func (s *CourseServer) handleDeleteEnrollment(c echo.Context) error {
	enrollmentID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	if err := s.courseDataStore().DeleteEnrollment(c.Request().Context(), enrollmentID); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Enrollment not found")
		}
		s.logger.Error().Err(err).Int64("enrollment_id", enrollmentID).Msg("delete enrollment failed")
		return internalError(c, "Failed to delete enrollment")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *CourseServer) handleEnroll(c echo.Context) error {
	course, ok, err := s.lookupCourse(c)
	if !ok {
		return err
	}

	payload, ok, err := decodePayload(c, func(body []byte) (payloadschema.Enrollment, error) {
		return payloadschema.DecodeEnrollment(body, false)
	})
	if !ok {
		return err
	}

	enrollment, err := s.courseDataStore().CreateEnrollment(c.Request().Context(), payload.StudentID, course.ID)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNoRows):
		return failNotFound(c, "Course not found")
	case errors.Is(err, db.ErrDuplicate):
		return fail(c, http.StatusBadRequest, "Student already enrolled", nil)
	default:
		s.logger.Error().Err(err).Int64("course_id", course.ID).Msg("enroll student failed")
		return internalError(c, "Failed to enroll student")
	}

	s.logger.Info().
		Int64("student_id", enrollment.StudentID).
		Int64("course_id", enrollment.CourseID).
		Msg("student enrolled")
	return successWithStatus(c, http.StatusCreated, enrollment)
}

func (s *CourseServer) handleUnenroll(c echo.Context) error {
	course, ok, err := s.lookupCourse(c)
	if !ok {
		return err
	}

	studentID, found := unenrollStudentID(c)
	if !found {
		return fail(c, http.StatusBadRequest, "student_id is required", nil)
	}

	if err := s.courseDataStore().DeleteStudentEnrollment(c.Request().Context(), course.ID, studentID); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Enrollment not found")
		}
		s.logger.Error().Err(err).Int64("course_id", course.ID).Msg("unenroll student failed")
		return internalError(c, "Failed to unenroll student")
	}

	s.logger.Info().Int64("student_id", studentID).Int64("course_id", course.ID).Msg("student unenrolled")
	return c.NoContent(http.StatusNoContent)
}

func (s *CourseServer) handleCourseStudents(c echo.Context) error {
	course, ok, err := s.lookupCourse(c)
	if !ok {
		return err
	}

	studentIDs, err := s.courseDataStore().ListCourseStudents(c.Request().Context(), course.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("course_id", course.ID).Msg("list course students failed")
		return internalError(c, "Failed to list course students")
	}
	return success(c, courseStudentsResponse{
		CourseID:   course.ID,
		StudentIDs: studentIDs,
		Count:      len(studentIDs),
	})
}

func (s *CourseServer) handleStudentCourses(c echo.Context) error {
	studentID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	courses, err := s.courseDataStore().ListStudentCourses(c.Request().Context(), studentID)
	if err != nil {
		s.logger.Error().Err(err).Int64("student_id", studentID).Msg("list student courses failed")
		return internalError(c, "Failed to list student courses")
	}
	return success(c, studentCoursesResponse{
		StudentID: studentID,
		Courses:   courses,
		Count:     len(courses),
	})
}

func (s *CourseServer) lookupCourse(c echo.Context) (*db.CourseRecord, bool, error) {
	courseID, err := parseID(c.Param("id"))
	if err != nil {
		return nil, false, failValidation(c, map[string]string{"id": err.Error()})
	}

	course, err := s.courseDataStore().GetCourse(c.Request().Context(), courseID)
	if err != nil {
		return nil, false, s.courseLookupFailure(c, err, "get course failed")
	}
	return course, true, nil
}

// unenrollStudentID takes student_id from the JSON body when present, else from the query.
func unenrollStudentID(c echo.Context) (int64, bool) {
	if body, err := readBody(c); err == nil {
		var payload struct {
			StudentID json.RawMessage `json:"student_id"`
		}
		if json.Unmarshal(body, &payload) == nil && len(payload.StudentID) > 0 {
			raw := string(payload.StudentID)
			var text string
			if json.Unmarshal(payload.StudentID, &text) == nil {
				raw = text
			}
			if studentID, err := parseID(raw); err == nil {
				return studentID, true
			}
		}
	}

	studentID, err := parseID(c.QueryParam("student_id"))
	if err != nil {
		return 0, false
	}
	return studentID, true
}
