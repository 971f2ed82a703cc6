package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/profile"
	"github.com/wrenhunt/sourcer/internal/utils"
)

//go:embed outreach_prompt.md
var outreachPromptTemplate string

const composeSystemInstruction = "You are a helpful and professional recruiter."

// Composer drafts short personalized outreach messages. Unlike scoring it
// runs with the model's default randomness.
type Composer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewComposer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Composer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Composer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (c *Composer) Compose(ctx context.Context, p *profile.Profile, jobDescription string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("candidate profile is required")
	}

	prompt := buildOutreachPrompt(p, jobDescription)

	c.logger.Debug("gemini outreach request",
		zap.String("candidate", p.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	message, err := c.generator.GenerateContent(ctx, Request{
		System: composeSystemInstruction,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini outreach response",
		zap.String("candidate", p.Name),
		zap.Int("message_length", utf8.RuneCountInString(message)),
	)

	return message, nil
}

func buildOutreachPrompt(p *profile.Profile, jobDescription string) string {
	prompt := strings.ReplaceAll(outreachPromptTemplate, "{{NAME}}", p.Name)
	prompt = strings.ReplaceAll(prompt, "{{HEADLINE}}", p.Headline)
	prompt = strings.ReplaceAll(prompt, "{{SNIPPET}}", p.Snippet)
	return strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
}
