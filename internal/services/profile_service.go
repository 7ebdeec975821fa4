package services

import (
	"context"
	"fmt"
	"strings"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"
	contextutils "profileapp/internal/utils"
)

// ProfileServiceInterface defines the interface for profile summarization.
type ProfileServiceInterface interface {
	Summarize(ctx context.Context, fingerprint string) (string, error)
}

// ProfileService turns a visitor's record and answer history into a short
// natural-language profile summary via the generation backend.
type ProfileService struct {
	cfg             *config.Config
	logger          *observability.Logger
	visitorService  VisitorServiceInterface
	responseService ResponseServiceInterface
	ai              AIServiceInterface
}

// NewProfileService creates a ProfileService.
func NewProfileService(cfg *config.Config, logger *observability.Logger, visitorService VisitorServiceInterface, responseService ResponseServiceInterface, ai AIServiceInterface) *ProfileService {
	return &ProfileService{
		cfg:             cfg,
		logger:          logger,
		visitorService:  visitorService,
		responseService: responseService,
		ai:              ai,
	}
}

const profileSystemPrompt = "You are a helpful assistant that generates user profile summaries."

// Summarize builds a prompt from the visitor's metadata and every recorded
// answer and asks the model for a concise summary of the visitor's likely
// interests and background.
func (s *ProfileService) Summarize(ctx context.Context, fingerprint string) (result0 string, err error) {
	ctx, span := observability.TraceProfileFunction(ctx, "summarize",
		observability.AttributeFingerprint(fingerprint),
	)
	defer observability.FinishSpan(span, &err)

	if fingerprint == "" {
		return "", contextutils.WrapError(contextutils.ErrMissingRequired, "fingerprint is required")
	}

	visitor, err := s.visitorService.GetVisitorByFingerprint(ctx, fingerprint)
	if err != nil {
		return "", err
	}
	if visitor == nil {
		return "", contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "no visitor recorded for fingerprint %q", fingerprint)
	}

	responses, err := s.responseService.AllForVisitor(ctx, fingerprint)
	if err != nil {
		return "", err
	}

	summary, err := s.ai.CallWithPrompt(ctx, profileSystemPrompt, buildProfilePrompt(visitor, responses))
	if err != nil {
		return "", err
	}

	return summary, nil
}

func buildProfilePrompt(visitor *models.Visitor, responses []models.Response) string {
	var b strings.Builder
	b.WriteString("Based on the following visitor information and their responses, generate a summary of the user profile:\n\n")
	b.WriteString("Visitor Information:\n")
	fmt.Fprintf(&b, "- Fingerprint: %s\n", visitor.Fingerprint)
	fmt.Fprintf(&b, "- User Agent: %s\n", visitor.UserAgent.String)
	fmt.Fprintf(&b, "- IP Address: %s\n", visitor.IPAddress.String)
	fmt.Fprintf(&b, "- Visit Count: %d\n", visitor.VisitCount)
	fmt.Fprintf(&b, "- First Visit: %s\n", visitor.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("\nResponses:\n")
	if len(responses) == 0 {
		b.WriteString("(none recorded)\n")
	}
	for _, r := range responses {
		fmt.Fprintf(&b, "- Q: %s A: %s\n", r.Question, r.Answer)
	}
	b.WriteString("\nProvide a concise summary of the user's interests, behavior, and potential industry or background.")
	return b.String()
}
