package handler

import (
	"io"
	"mime/multipart"
	"strings"

	"quizcraft/internal/domain"
	"quizcraft/internal/dto"
	"quizcraft/internal/logger"
	"quizcraft/internal/middleware"
	"quizcraft/internal/service"
	"quizcraft/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const pdfMagic = "%PDF"

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	generation service.GenerationService
	quizzes    service.QuizService
	validator  *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(generation service.GenerationService, quizzes service.QuizService) *QuizHandler {
	return &QuizHandler{
		generation: generation,
		quizzes:    quizzes,
		validator:  validation.NewValidator(),
	}
}

// Generate handles POST /api/quizzes. The request is either a PDF upload
// (multipart field "pdf" or a raw application/pdf body) or a JSON body with
// a free-text topic or a topic_id to regenerate.
func (h *QuizHandler) Generate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	pdfBytes, err := h.pdfFromRequest(c)
	if err != nil {
		return err
	}
	if pdfBytes != nil {
		quiz, err := h.generation.CreateFromDocument(c.Context(), userID, pdfBytes)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(queuedResponse(quiz))
	}

	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Request body must be JSON or a PDF document")
	}

	if req.Regenerate {
		if errs := h.validator.ValidateIDParam("topic_id", req.TopicID); len(errs) > 0 {
			return errs
		}
		quiz, err := h.generation.Regenerate(c.Context(), userID, req.TopicID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(queuedResponse(quiz))
	}

	if errs := h.validator.ValidateGenerateRequest(req.Topic, req.TopicID); len(errs) > 0 {
		return errs
	}
	quiz, err := h.generation.CreateFromTopic(c.Context(), userID, req.Topic)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(queuedResponse(quiz))
}

// pdfFromRequest extracts PDF bytes from a multipart upload or a raw body.
// It returns nil bytes when the request is not a document upload.
func (h *QuizHandler) pdfFromRequest(c *fiber.Ctx) ([]byte, error) {
	contentType := c.Get(fiber.HeaderContentType)

	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("pdf")
		if err != nil {
			return nil, domain.NewValidationError("Multipart request must include a 'pdf' file")
		}
		data, err := readFormFile(fileHeader)
		if err != nil {
			return nil, domain.NewInternalError("Failed to read uploaded file", err)
		}
		return data, nil
	}

	body := c.Body()
	if strings.HasPrefix(contentType, "application/pdf") || strings.HasPrefix(string(body), pdfMagic) {
		if len(body) == 0 {
			return nil, domain.NewValidationError("Request body is empty")
		}
		data := make([]byte, len(body))
		copy(data, body)
		return data, nil
	}
	return nil, nil
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func queuedResponse(quiz *domain.Quiz) dto.GenerateQuizResponse {
	return dto.GenerateQuizResponse{
		Message: "Quiz generation has been queued",
		QuizID:  quiz.QuizID,
		TopicID: quiz.TopicID,
	}
}

// ListQuizzes handles GET /api/quizzes
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	resp, err := h.quizzes.ListQuizzes(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz handles GET /api/quizzes/:quizId
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.quizzes.GetQuiz(c.Context(), currentUserID(c), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuiz handles DELETE /api/quizzes/:quizId
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	userID := currentUserID(c)
	quizID := c.Params("quizId")
	if err := h.quizzes.DeleteQuiz(c.Context(), userID, quizID); err != nil {
		return err
	}
	logger.Get().Info("Quiz deletion requested",
		zap.String("quiz_id", quizID),
		zap.String("user_id", userID))
	return c.JSON(dto.MessageResponse{Message: "Quiz deleted"})
}

// SubmitAttempt handles POST /api/quizzes/:quizId/attempts
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	if errs := h.validator.ValidateAttemptRequest(req.Answers); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.SubmitAttempt(c.Context(), currentUserID(c), c.Params("quizId"), req.Answers)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetAttempt handles GET /api/attempts/:attemptId
func (h *QuizHandler) GetAttempt(c *fiber.Ctx) error {
	resp, err := h.quizzes.GetAttempt(c.Context(), c.Params("attemptId"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetProfile handles GET /api/profile
func (h *QuizHandler) GetProfile(c *fiber.Ctx) error {
	resp, err := h.quizzes.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// currentUserID returns the authenticated user's id set by the auth
// middleware. Routes using this must be behind middleware.Protected.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	return userID
}
