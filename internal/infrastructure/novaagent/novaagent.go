// Package novaagent implements the browsing-agent capability with a real
// browser (Playwright Chromium) driven by an LLM: each natural-language
// instruction is executed as a short decide/act loop over page snapshots.
package novaagent

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/recomp/act-service/internal/domain"
)

// Config holds agent provider configuration.
type Config struct {
	OpenAIAPIKey string
	Model        string
	// UserDataDir is the persisted browser profile. A non-empty profile is
	// the session capability: cart actions need a logged-in profile that was
	// provisioned out of band.
	UserDataDir string
	Headless    bool
	MaxSteps    int
}

// Provider implements domain.Agent. Sessions are exclusive: the browser
// models one interactive session at a time, so NewSession blocks until the
// previous session closes.
type Provider struct {
	cfg Config
	llm *decisionClient
	mu  sync.Mutex
}

// New creates a provider. Fails when no LLM credential is configured, so the
// caller can fall back to demo mode instead of wiring a dead capability.
func New(cfg Config) (*Provider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: no OpenAI API key configured", domain.ErrAgentUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 12
	}
	return &Provider{
		cfg: cfg,
		llm: newDecisionClient(cfg.OpenAIAPIKey, cfg.Model),
	}, nil
}

// SessionAvailable reports whether a persisted login profile exists.
func (p *Provider) SessionAvailable() bool {
	if p.cfg.UserDataDir == "" {
		return false
	}
	entries, err := os.ReadDir(p.cfg.UserDataDir)
	return err == nil && len(entries) > 0
}

// NewSession launches a browser on the given starting page.
func (p *Provider) NewSession(ctx context.Context, startingPage string) (domain.AgentSession, error) {
	p.mu.Lock()

	sess, err := p.launch(ctx, startingPage)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	return sess, nil
}

func (p *Provider) launch(ctx context.Context, startingPage string) (*session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	// A throwaway profile backs sessions without a configured one; the
	// session removes it on Close so per-item sessions don't pile dirs up
	userDataDir := p.cfg.UserDataDir
	tempProfile := ""
	if userDataDir == "" {
		tmp, err := os.MkdirTemp("", "novaagent-profile-")
		if err != nil {
			_ = pw.Stop()
			return nil, err
		}
		userDataDir = tmp
		tempProfile = tmp
	}
	cleanup := func() {
		_ = pw.Stop()
		if tempProfile != "" {
			_ = os.RemoveAll(tempProfile)
		}
	}

	browserCtx, err := pw.Chromium.LaunchPersistentContext(
		userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(p.cfg.Headless),
			Viewport: &playwright.Size{Width: 1280, Height: 720},
			Args: []string{
				"--disable-blink-features=AutomationControlled",
			},
		},
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	var page playwright.Page
	if pages := browserCtx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = browserCtx.NewPage()
		if err != nil {
			_ = browserCtx.Close()
			cleanup()
			return nil, fmt.Errorf("create page: %w", err)
		}
	}
	page.SetDefaultTimeout(30000)

	if _, err := page.Goto(startingPage, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		_ = browserCtx.Close()
		cleanup()
		return nil, fmt.Errorf("open starting page: %w", err)
	}

	return &session{
		provider:    p,
		pw:          pw,
		browserCtx:  browserCtx,
		page:        page,
		maxSteps:    p.cfg.MaxSteps,
		tempProfile: tempProfile,
	}, nil
}
