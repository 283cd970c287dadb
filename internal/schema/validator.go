package payloadschema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/AycMouna/scholara/internal/db"
)

//go:embed *.schema.json
var schemaFS embed.FS

const (
	courseSchema      = "course.schema.json"
	coursePatchSchema = "course_patch.schema.json"
	enrollmentSchema  = "enrollment.schema.json"
)

// ValidationError lists the offending fields of a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Enrollment is a validated enrollment payload. CourseID is zero when the course comes
// from the URL instead of the body.
type Enrollment struct {
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course"`
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

// DecodeCourse validates a full course payload, as sent by create and replace.
func DecodeCourse(payload []byte) (db.CourseInput, error) {
	var course db.CourseInput
	if err := decodeValidated(courseSchema, payload, &course); err != nil {
		return db.CourseInput{}, err
	}

	fields := map[string]string{}
	requireText(fields, "name", course.Name)
	requireText(fields, "instructor", course.Instructor)
	requireText(fields, "category", course.Category)
	if len(fields) > 0 {
		return db.CourseInput{}, &ValidationError{Fields: fields}
	}
	return course, nil
}

// DecodeCoursePatch validates a partial course payload.
func DecodeCoursePatch(payload []byte) (db.CoursePatch, error) {
	var patch db.CoursePatch
	if err := decodeValidated(coursePatchSchema, payload, &patch); err != nil {
		return db.CoursePatch{}, err
	}

	fields := map[string]string{}
	if patch.Name != nil {
		requireText(fields, "name", *patch.Name)
	}
	if patch.Instructor != nil {
		requireText(fields, "instructor", *patch.Instructor)
	}
	if patch.Category != nil {
		requireText(fields, "category", *patch.Category)
	}
	if len(fields) > 0 {
		return db.CoursePatch{}, &ValidationError{Fields: fields}
	}
	return patch, nil
}

// DecodeEnrollment validates an enrollment payload. requireCourse demands the "course" field.
func DecodeEnrollment(payload []byte, requireCourse bool) (Enrollment, error) {
	var enrollment Enrollment
	if err := decodeValidated(enrollmentSchema, payload, &enrollment); err != nil {
		return Enrollment{}, err
	}
	if requireCourse && enrollment.CourseID == 0 {
		return Enrollment{}, &ValidationError{Fields: map[string]string{"course": "This field is required."}}
	}
	return enrollment, nil
}

func decodeValidated(schemaName string, payload []byte, out any) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"payload": err.Error()}}
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		var schemaErr *jsonschema.ValidationError
		if errors.As(err, &schemaErr) {
			return &ValidationError{Fields: fieldErrors(schemaErr)}
		}
		return fmt.Errorf("schema validation: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize payload JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func fieldErrors(err *jsonschema.ValidationError) map[string]string {
	fields := map[string]string{}
	for _, unit := range err.BasicOutput().Errors {
		if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		if missing, ok := strings.CutPrefix(unit.Error, "missing properties: "); ok {
			for _, name := range strings.Split(missing, ",") {
				fields[strings.Trim(strings.TrimSpace(name), "'")] = "This field is required."
			}
			continue
		}
		field := strings.TrimPrefix(unit.InstanceLocation, "/")
		if field == "" {
			field = "payload"
		}
		if _, exists := fields[field]; !exists {
			fields[field] = unit.Error
		}
	}
	if len(fields) == 0 {
		fields["payload"] = err.Error()
	}
	return fields
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		names := []string{courseSchema, coursePatchSchema, enrollmentSchema}
		for _, schemaName := range names {
			raw, err := schemaFS.ReadFile(schemaName)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", schemaName, err)
				return
			}
			if err := compiler.AddResource(schemaName, bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", schemaName, err)
				return
			}
		}

		schemas := make(map[string]*jsonschema.Schema, len(names))
		for _, schemaName := range names {
			schema, err := compiler.Compile(schemaName)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", schemaName, err)
				return
			}
			schemas[schemaName] = schema
		}
		compiledSchemas = schemas
	})

	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s not initialized", name)
	}
	return schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func requireText(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "This field may not be blank."
	}
}
