package intake

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotOwner        = errors.New("caller does not own this project")
	ErrIntakeComplete  = errors.New("intake already completed")
)

// Service runs the fixed fill-in-the-blank intake script. No language
// understanding happens here: each business answer fills exactly one
// requirement field with naive parsing, in a fixed order.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// StepResult is what the conversation UI renders after each message.
type StepResult struct {
	Project *models.Project `json:"project"`
	Reply   string          `json:"reply"`
	Done    bool            `json:"done"`
}

type step struct {
	prompt string
	apply  func(p *models.Project, answer string)
}

var script = []step{
	{
		prompt: "What kind of website do you need? (e.g. company profile, online store, portfolio)",
		apply:  func(p *models.Project, a string) { p.WebsiteType = strings.TrimSpace(a) },
	},
	{
		prompt: "How polished should the design be: simple, moderate, or advanced?",
		apply:  func(p *models.Project, a string) { p.DesignComplexity = parseComplexity(a) },
	},
	{
		prompt: "Which features do you need? List them separated by commas (e.g. contact form, online payments, user login).",
		apply: func(p *models.Project, a string) {
			b, _ := json.Marshal(parseFeatures(a))
			p.Features = b
		},
	},
	{
		prompt: "Roughly how many pages will the site have?",
		apply:  func(p *models.Project, a string) { p.PageCount = parsePageCount(a) },
	},
	{
		prompt: "When would you like it delivered?",
		apply:  func(p *models.Project, a string) { p.Timeline = strings.TrimSpace(a) },
	},
	{
		prompt: "What budget range do you have in mind? (e.g. $3,000 - $5,000)",
		apply:  func(p *models.Project, a string) { p.BudgetRange = strings.TrimSpace(a) },
	},
}

const doneReply = "Great, that's everything I need. We're putting together team offers for you now — check the offers tab in a moment."

// Start creates a project in intake state and returns the first question.
func (s *Service) Start(ctx context.Context, businessID uuid.UUID) (*StepResult, error) {
	p := models.Project{
		BusinessID: businessID,
		Status:     models.ProjectStatusIntake,
		IntakeStep: 0,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &StepResult{Project: &p, Reply: script[0].prompt}, nil
}

// Advance applies the business's answer to the current step and returns the
// next prompt. The terminal step flips the project to offers_presented.
func (s *Service) Advance(ctx context.Context, projectID, businessID uuid.UUID, message string) (*StepResult, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if p.BusinessID != businessID {
		return nil, ErrNotOwner
	}
	if p.Status != models.ProjectStatusIntake || p.IntakeStep >= len(script) {
		return nil, ErrIntakeComplete
	}

	script[p.IntakeStep].apply(&p, message)
	p.IntakeStep++

	res := &StepResult{Project: &p}
	if p.IntakeStep >= len(script) {
		p.Status = models.ProjectStatusOffersPresented
		res.Reply = doneReply
		res.Done = true
	} else {
		res.Reply = script[p.IntakeStep].prompt
	}

	if err := s.DB.WithContext(ctx).Model(&p).Select("*").Updates(&p).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func parseComplexity(a string) string {
	low := strings.ToLower(a)
	switch {
	case strings.Contains(low, "advanced") || strings.Contains(low, "complex"):
		return "advanced"
	case strings.Contains(low, "moderate") || strings.Contains(low, "medium"):
		return "moderate"
	default:
		return "simple"
	}
}

func parseFeatures(a string) []string {
	parts := strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if f := strings.TrimSpace(part); f != "" {
			out = append(out, f)
		}
	}
	return out
}

var firstNumberRe = regexp.MustCompile(`\d+`)

func parsePageCount(a string) int {
	m := firstNumberRe.FindString(a)
	if m == "" {
		return 0 // interpreter falls back to its default
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
