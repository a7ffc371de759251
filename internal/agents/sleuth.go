package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"grantmaster/internal/logging"
	"grantmaster/internal/store"
)

// Session is an authenticated browser session. Close releases the browser
// and its allocator; a Session is only valid until then.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Sleuth drives a headless browser against a grant portal and turns page
// text into structured opportunities via the LLM. Each call owns its own
// deadline (Timeout), independent of the caller's context.
type Sleuth struct {
	LLM     LLMClient
	Timeout time.Duration

	// ReadySelector is the element that signals a completed login.
	ReadySelector string

	log *slog.Logger
}

const defaultSleuthTimeout = 60 * time.Second

func NewSleuth(llm LLMClient) *Sleuth {
	return &Sleuth{
		LLM:           llm,
		Timeout:       defaultSleuthTimeout,
		ReadySelector: "body",
		log:           logging.New("sleuth"),
	}
}

// Login opens a headless browser, authenticates against the portal's login
// form, and returns the live session on success.
func (s *Sleuth) Login(ctx context.Context, url, username, password string) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	sess := &Session{ctx: browserCtx, cancels: []context.CancelFunc{allocCancel, browserCancel}}

	runCtx, cancel := context.WithTimeout(browserCtx, s.timeout())
	defer cancel()

	s.log.Info("logging in", "url", url, "user", username)
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`input[name=username]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name=username]`, username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name=password]`, password, chromedp.ByQuery),
		chromedp.Click(`button[type=submit]`, chromedp.ByQuery),
		chromedp.WaitReady(s.readySelector(), chromedp.ByQuery),
	)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("portal login: %w", err)
	}
	return sess, nil
}

// CollectText pulls the visible text of the session's current page.
func (s *Sleuth) CollectText(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", fmt.Errorf("collect text: nil session")
	}
	runCtx, cancel := context.WithTimeout(sess.ctx, s.timeout())
	defer cancel()

	var text string
	if err := chromedp.Run(runCtx,
		chromedp.Text("body", &text, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("collect page text: %w", err)
	}
	return text, nil
}

// Extract collects the session page text and parses it into opportunities.
func (s *Sleuth) Extract(ctx context.Context, sess *Session) ([]store.GrantOpportunity, error) {
	text, err := s.CollectText(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.ParseOpportunities(ctx, text)
}

const extractSystemPrompt = "You are an expert AI research assistant that extracts grant opportunities from web page text and returns them in a specific JSON format."

// ParseOpportunities asks the LLM to turn raw portal text into structured
// opportunity records. The response must be a JSON array; code fences are
// tolerated.
func (s *Sleuth) ParseOpportunities(ctx context.Context, pageText string) ([]store.GrantOpportunity, error) {
	var b strings.Builder
	b.WriteString("Extract every grant opportunity from the page text below.\n\n")
	b.WriteString("Page Text:\n---\n")
	b.WriteString(pageText)
	b.WriteString("\n---\n\n")
	b.WriteString(`Return ONLY a JSON array. Each element is an object with these keys:
- "title": (string) the grant title
- "funder": (string) the funding organization
- "deadline": (string) the application deadline
- "description": (string) what the grant supports
- "eligibility": (string) who may apply
- "focus_areas": (string) comma-separated focus areas
- "raw_research_data": (string) any other relevant notes from the page

Use an empty string for anything the page does not state. Do not invent
opportunities that are not on the page.`)

	reply, err := s.LLM.Complete(ctx, extractSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("extract opportunities: %w", err)
	}

	var wire []struct {
		Title           string `json:"title"`
		Funder          string `json:"funder"`
		Deadline        string `json:"deadline"`
		Description     string `json:"description"`
		Eligibility     string `json:"eligibility"`
		FocusAreas      string `json:"focus_areas"`
		RawResearchData string `json:"raw_research_data"`
	}
	if err := json.Unmarshal(cleanJSON([]byte(reply)), &wire); err != nil {
		return nil, fmt.Errorf("parse opportunity list: %w", err)
	}

	out := make([]store.GrantOpportunity, 0, len(wire))
	for _, w := range wire {
		out = append(out, store.GrantOpportunity{
			Title:           w.Title,
			Funder:          w.Funder,
			Deadline:        w.Deadline,
			Description:     w.Description,
			Eligibility:     w.Eligibility,
			FocusAreas:      w.FocusAreas,
			RawResearchData: w.RawResearchData,
		})
	}
	s.log.Info("opportunities extracted", "count", len(out))
	return out, nil
}

func (s *Sleuth) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultSleuthTimeout
}

func (s *Sleuth) readySelector() string {
	if s.ReadySelector != "" {
		return s.ReadySelector
	}
	return "body"
}
