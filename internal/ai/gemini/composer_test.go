package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestComposerBuildsPersonalizedPrompt(t *testing.T) {
	stub := &stubGenerator{response: "Hi Jane, your work at Acme caught my attention."}
	composer := NewComposer(stub, zap.NewNop(), 0)

	message, err := composer.Compose(context.Background(), testProfile(), "ML Engineer - Mountain View")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if message != "Hi Jane, your work at Acme caught my attention." {
		t.Fatalf("unexpected message: %q", message)
	}

	for _, fragment := range []string{
		"Jane Doe",
		"Jane Doe - Senior Engineer - Acme",
		"Senior Engineer at Acme.",
		"ML Engineer - Mountain View",
	} {
		if !strings.Contains(stub.lastReq.Prompt, fragment) {
			t.Fatalf("expected prompt to contain %q", fragment)
		}
	}

	if stub.lastReq.System != composeSystemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastReq.System)
	}

	// Composing uses the model's default randomness.
	if stub.lastReq.Temperature != nil {
		t.Fatalf("expected no temperature override, got %v", *stub.lastReq.Temperature)
	}
}

func TestComposerPropagatesError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	composer := NewComposer(stub, zap.NewNop(), 0)

	if _, err := composer.Compose(context.Background(), testProfile(), "job"); err == nil {
		t.Fatal("expected error from generator")
	}
}

func TestComposerRequiresProfile(t *testing.T) {
	composer := NewComposer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := composer.Compose(context.Background(), nil, "job"); err == nil {
		t.Fatal("expected error for nil profile")
	}
}
