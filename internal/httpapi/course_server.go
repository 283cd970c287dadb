package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/AycMouna/scholara/internal/db"
	payloadschema "github.com/AycMouna/scholara/internal/schema"
)

const defaultCoursePort = 8000

type courseStore interface {
	Ping(ctx context.Context) error
	ListCourses(ctx context.Context, search, ordering string) ([]db.CourseRecord, error)
	SearchCourses(ctx context.Context, search db.CourseSearch) ([]db.CourseRecord, error)
	GetCourse(ctx context.Context, courseID int64) (*db.CourseRecord, error)
	CreateCourse(ctx context.Context, input db.CourseInput) (*db.CourseRecord, error)
	UpdateCourse(ctx context.Context, courseID int64, input db.CourseInput) (*db.CourseRecord, error)
	PatchCourse(ctx context.Context, courseID int64, patch db.CoursePatch) (*db.CourseRecord, error)
	DeleteCourse(ctx context.Context, courseID int64) (string, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListInstructors(ctx context.Context) ([]string, error)
	CourseStats(ctx context.Context) (*db.CourseStats, error)
	ListEnrollments(ctx context.Context) ([]db.EnrollmentRecord, error)
	GetEnrollment(ctx context.Context, enrollmentID int64) (*db.EnrollmentRecord, error)
	CreateEnrollment(ctx context.Context, studentID, courseID int64) (*db.EnrollmentRecord, error)
	DeleteEnrollment(ctx context.Context, enrollmentID int64) error
	DeleteStudentEnrollment(ctx context.Context, courseID, studentID int64) error
	ListCourseStudents(ctx context.Context, courseID int64) ([]int64, error)
	ListStudentCourses(ctx context.Context, studentID int64) ([]db.StudentCourse, error)
}

// CourseServer serves the course catalog and enrollments under /api.
type CourseServer struct {
	pool   *db.Pool
	store  courseStore
	logger zerolog.Logger
	opts   Options
}

type courseMessage struct {
	Message string           `json:"message"`
	Course  *db.CourseRecord `json:"course,omitempty"`
}

func NewCourseServer(pool *db.Pool, logger zerolog.Logger, opts Options) *CourseServer {
	return &CourseServer{
		pool:   pool,
		logger: logger,
		opts:   opts.withDefaults(defaultCoursePort),
	}
}

func (s *CourseServer) courseDataStore() courseStore {
	if s == nil {
		return nil
	}
	if s.store != nil {
		return s.store
	}
	if s.pool == nil {
		return nil
	}
	return s.pool
}

func (s *CourseServer) Start(ctx context.Context) error {
	if s.courseDataStore() == nil {
		return fmt.Errorf("course server is not initialized")
	}

	e := newEcho(s.logger, s.opts, s.httpErrorHandler,
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
	s.routes(e)
	return serve(ctx, e, s.opts, s.logger, "course service")
}

func (s *CourseServer) routes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.GET("/courses", s.handleListCourses)
	api.POST("/courses", s.handleCreateCourse)
	api.GET("/courses/search", s.handleSearchCourses)
	api.GET("/courses/categories", s.handleCategories)
	api.GET("/courses/instructors", s.handleInstructors)
	api.GET("/courses/stats", s.handleCourseStats)
	api.GET("/courses/:id", s.handleGetCourse)
	api.PUT("/courses/:id", s.handleUpdateCourse)
	api.PATCH("/courses/:id", s.handlePatchCourse)
	api.DELETE("/courses/:id", s.handleDeleteCourse)
	api.POST("/courses/:id/enroll", s.handleEnroll)
	api.POST("/courses/:id/unenroll", s.handleUnenroll)
	api.DELETE("/courses/:id/unenroll", s.handleUnenroll)
	api.GET("/courses/:id/students", s.handleCourseStudents)
	api.GET("/students/:id/courses", s.handleStudentCourses)

	api.GET("/enrollments", s.handleListEnrollments)
	api.POST("/enrollments", s.handleCreateEnrollment)
	api.GET("/enrollments/:id", s.handleGetEnrollment)
	api.DELETE("/enrollments/:id", s.handleDeleteEnrollment)
}

func (s *CourseServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := errorStatus(err)
	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *CourseServer) handleHealth(c echo.Context) error {
	if err := s.courseDataStore().Ping(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, jsendResponse{
			Status:  "error",
			Message: "database unavailable",
			Code:    http.StatusServiceUnavailable,
		})
	}
	return success(c, map[string]string{
		"status":  "ok",
		"service": "course-service",
	})
}

func (s *CourseServer) handleListCourses(c echo.Context) error {
	ordering := strings.TrimSpace(c.QueryParam("ordering"))
	if ordering != "" && !db.CourseOrderingValid(ordering) {
		return failValidation(c, map[string]string{
			"ordering": "must be one of name, -name, instructor, -instructor",
		})
	}

	courses, err := s.courseDataStore().ListCourses(c.Request().Context(), c.QueryParam("search"), ordering)
	if err != nil {
		s.logger.Error().Err(err).Msg("list courses failed")
		return internalError(c, "Failed to list courses")
	}
	return success(c, courses)
}

func (s *CourseServer) handleSearchCourses(c echo.Context) error {
	courses, err := s.courseDataStore().SearchCourses(c.Request().Context(), db.CourseSearch{
		Query:      c.QueryParam("q"),
		Category:   c.QueryParam("category"),
		Instructor: c.QueryParam("instructor"),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("search courses failed")
		return internalError(c, "Failed to search courses")
	}
	return success(c, courses)
}

func (s *CourseServer) handleCategories(c echo.Context) error {
	categories, err := s.courseDataStore().ListCategories(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list categories failed")
		return internalError(c, "Failed to list categories")
	}
	return success(c, categories)
}

func (s *CourseServer) handleInstructors(c echo.Context) error {
	instructors, err := s.courseDataStore().ListInstructors(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list instructors failed")
		return internalError(c, "Failed to list instructors")
	}
	return success(c, instructors)
}

func (s *CourseServer) handleCourseStats(c echo.Context) error {
	stats, err := s.courseDataStore().CourseStats(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("course stats failed")
		return internalError(c, "Failed to load course stats")
	}
	return success(c, stats)
}

func (s *CourseServer) handleGetCourse(c echo.Context) error {
	courseID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	course, err := s.courseDataStore().GetCourse(c.Request().Context(), courseID)
	if err != nil {
		return s.courseLookupFailure(c, err, "get course failed")
	}
	return success(c, course)
}

func (s *CourseServer) handleCreateCourse(c echo.Context) error {
	input, ok, err := decodePayload(c, payloadschema.DecodeCourse)
	if !ok {
		return err
	}

	course, err := s.courseDataStore().CreateCourse(c.Request().Context(), input)
	if err != nil {
		s.logger.Error().Err(err).Msg("create course failed")
		return internalError(c, "Failed to create course")
	}

	s.logger.Info().Int64("course_id", course.ID).Str("name", course.Name).Msg("course created")
	return successWithStatus(c, http.StatusCreated, courseMessage{
		Message: fmt.Sprintf("Course %q created successfully!", course.Name),
		Course:  course,
	})
}

func (s *CourseServer) handleUpdateCourse(c echo.Context) error {
	courseID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}
	input, ok, err := decodePayload(c, payloadschema.DecodeCourse)
	if !ok {
		return err
	}

	course, err := s.courseDataStore().UpdateCourse(c.Request().Context(), courseID, input)
	if err != nil {
		return s.courseLookupFailure(c, err, "update course failed")
	}

	s.logger.Info().Int64("course_id", course.ID).Msg("course updated")
	return success(c, courseMessage{
		Message: fmt.Sprintf("Course %q updated successfully!", course.Name),
		Course:  course,
	})
}

func (s *CourseServer) handlePatchCourse(c echo.Context) error {
	courseID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}
	patch, ok, err := decodePayload(c, payloadschema.DecodeCoursePatch)
	if !ok {
		return err
	}

	course, err := s.courseDataStore().PatchCourse(c.Request().Context(), courseID, patch)
	if err != nil {
		return s.courseLookupFailure(c, err, "patch course failed")
	}

	s.logger.Info().Int64("course_id", course.ID).Msg("course patched")
	return success(c, courseMessage{
		Message: fmt.Sprintf("Course %q updated successfully!", course.Name),
		Course:  course,
	})
}

func (s *CourseServer) handleDeleteCourse(c echo.Context) error {
	courseID, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	name, err := s.courseDataStore().DeleteCourse(c.Request().Context(), courseID)
	if err != nil {
		return s.courseLookupFailure(c, err, "delete course failed")
	}

	s.logger.Info().Int64("course_id", courseID).Str("name", name).Msg("course deleted")
	return success(c, courseMessage{
		Message: fmt.Sprintf("Course %q deleted successfully!", name),
	})
}

func (s *CourseServer) courseLookupFailure(c echo.Context, err error, logMessage string) error {
	if errors.Is(err, db.ErrNoRows) {
		return failNotFound(c, "Course not found")
	}
	s.logger.Error().Err(err).Msg(logMessage)
	return internalError(c, "Failed to load course")
}

// decodePayload reads the request body and runs decode on it. When ok is false the
// response has already been chosen and the returned error is what the handler returns.
func decodePayload[T any](c echo.Context, decode func([]byte) (T, error)) (T, bool, error) {
	var zero T

	body, err := readBody(c)
	if err != nil {
		return zero, false, failValidation(c, map[string]string{"payload": err.Error()})
	}

	value, err := decode(body)
	if err != nil {
		var verr *payloadschema.ValidationError
		if errors.As(err, &verr) {
			return zero, false, failValidation(c, verr.Fields)
		}
		return zero, false, internalError(c, "Failed to validate payload")
	}
	return value, true, nil
}
