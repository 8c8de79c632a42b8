package novaagent

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/recomp/act-service/internal/domain"
)

type session struct {
	provider    *Provider
	pw          *playwright.Playwright
	browserCtx  playwright.BrowserContext
	page        playwright.Page
	maxSteps    int
	tempProfile string
	closed      bool
}

// Act executes one natural-language instruction as a bounded decide/act
// loop: snapshot the page, ask the model for the next action, apply it,
// repeat until the model reports the instruction done.
func (s *session) Act(ctx context.Context, instruction string) (*domain.AgentResponse, error) {
	history := make([]string, 0, s.maxSteps)

	for step := 1; step <= s.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state := playwright.LoadState("domcontentloaded")
		_ = s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: &state})

		snap, err := s.snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot failed: %w", err)
		}

		decision, err := s.provider.llm.decide(ctx, decisionInput{
			Instruction: instruction,
			DOMTree:     snap.Tree,
			CurrentURL:  snap.URL,
			History:     strings.Join(history, "\n"),
		})
		if err != nil {
			return nil, err
		}

		log.Printf("[AGENT] step %d: %s target=%d %q", step, decision.Action.Type, decision.Action.TargetID, decision.Action.Text)

		if decision.Action.Type == actionFinish {
			return &domain.AgentResponse{
				Parsed: decision.Result,
				Text:   decision.Answer,
			}, nil
		}

		if err := s.executeAction(decision.Action); err != nil {
			history = append(history, fmt.Sprintf("step=%d action=%s FAILED: %v", step, decision.Action.Type, err))
		} else {
			history = append(history, fmt.Sprintf("step=%d url=%s action=%s target=%d text=%q",
				step, snap.URL, decision.Action.Type, decision.Action.TargetID, decision.Action.Text))
		}
		if len(history) > 5 {
			history = history[len(history)-5:]
		}

		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("instruction not completed in %d steps", s.maxSteps)
}

func (s *session) executeAction(action agentAction) error {
	switch action.Type {
	case actionNavigate:
		if action.URL == "" {
			return fmt.Errorf("navigate action without url")
		}
		_, err := s.page.Goto(action.URL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
		return err

	case actionScroll:
		_, err := s.page.Evaluate(`window.scrollBy({top: 500, behavior: 'smooth'});`)
		return err

	case actionClick:
		selector := fmt.Sprintf("[data-agent-id='%d']", action.TargetID)
		if err := s.page.Locator(selector).First().ScrollIntoViewIfNeeded(); err != nil {
			return fmt.Errorf("scroll to element failed: %w", err)
		}
		return s.page.Click(selector)

	case actionTypeInput:
		selector := fmt.Sprintf("[data-agent-id='%d']", action.TargetID)
		if err := s.page.Fill(selector, action.Text); err != nil {
			return err
		}
		if action.Submit {
			return s.page.Press(selector, "Enter")
		}
		return nil

	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// PageURL reports the browser's current page URL.
func (s *session) PageURL(ctx context.Context) (string, error) {
	if s.closed {
		return "", fmt.Errorf("session closed")
	}
	return s.page.URL(), nil
}

// Close shuts the browser down, removes any throwaway profile, and releases
// the session slot.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browserCtx != nil {
		err = s.browserCtx.Close()
	}
	if s.pw != nil {
		if stopErr := s.pw.Stop(); err == nil {
			err = stopErr
		}
	}
	if s.tempProfile != "" {
		_ = os.RemoveAll(s.tempProfile)
	}
	s.provider.mu.Unlock()
	return err
}
