package api

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/export"
	"github.com/pinholabs/sitelog/pkg/ingest"
	"github.com/pinholabs/sitelog/pkg/stats"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// ErrorResponse is the JSON error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SubmitNoteRequest is the JSON body for POST /api/notes.
// The occurred_at field accepts RFC 3339 or the HTML datetime-local format
// ("2006-01-02T15:04"); lesson_learned accepts "yes"/"no".
type SubmitNoteRequest struct {
	ProjectID     string `json:"project_id"`
	Category      string `json:"category"`
	OccurredAt    string `json:"occurred_at"`
	Message       string `json:"message"`
	LessonLearned string `json:"lesson_learned"`
}

// SubmitNoteResponse confirms a stored note.
type SubmitNoteResponse struct {
	Message string `json:"message"`
}

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Question  string `json:"question"`
	ProjectID string `json:"project_id,omitempty"`
}

// QueryResponse carries the textual answer.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListProjects returns the read-only project directory.
func (s *Server) handleListProjects(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"projects": s.projects.List(),
	})
}

// handleSubmitNote ingests one note submission. Duplicate content yields a
// 409 with the "already recorded" message; validation failures a 400.
func (s *Server) handleSubmitNote(c *fiber.Ctx) error {
	var req SubmitNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil && req.OccurredAt != "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid occurred_at timestamp"})
	}

	message, err := s.ingester.Submit(c.Context(), ingest.Submission{
		ProjectID:     req.ProjectID,
		Category:      req.Category,
		OccurredAt:    occurredAt,
		Message:       req.Message,
		LessonLearned: req.LessonLearned == "yes",
	})
	if err != nil {
		var validation ingest.ValidationError
		if errors.As(err, &validation) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: validation.Error()})
		}

		var dup storage.DuplicateError
		if errors.As(err, &dup) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: ingest.DuplicateMessage})
		}

		s.logger.Error("note submission failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to record note"})
	}

	return c.Status(fiber.StatusCreated).JSON(SubmitNoteResponse{Message: message})
}

// handleQuery answers a free-text question. The query service never fails
// outward, so this handler always returns 200 with a textual answer.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	answer := s.querier.Answer(c.Context(), req.Question, req.ProjectID)
	return c.JSON(QueryResponse{Answer: answer})
}

// handleStats returns aggregate statistics, optionally project-scoped.
func (s *Server) handleStats(c *fiber.Ctx) error {
	projectID := c.Query("project_id")

	result, err := stats.Collect(c.Context(), s.store, projectID)
	if err != nil {
		s.logger.Error("failed to collect stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to collect statistics"})
	}

	return c.JSON(result)
}

// handleExportCSV streams the note collection as a CSV attachment.
func (s *Server) handleExportCSV(c *fiber.Ctx) error {
	projectID := c.Query("project_id")

	notes, err := s.store.List(c.Context(), storage.Query{ProjectID: projectID})
	if err != nil {
		s.logger.Error("failed to list notes for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to export notes"})
	}

	if len(notes) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no notes found to export"})
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, notes); err != nil {
		s.logger.Error("failed to render CSV", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to export notes"})
	}

	filename := export.Filename(projectID, time.Now())
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// parseOccurredAt accepts RFC 3339 or the HTML datetime-local format.
func parseOccurredAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02T15:04", value)
}
