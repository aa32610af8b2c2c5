package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// Input is the raw text handed to the strategies. Lines are split once and
// shared between detection and extraction.
type Input struct {
	Raw   string
	lines []string
	split bool
}

// NewInput wraps raw text.
func NewInput(raw string) *Input {
	return &Input{Raw: raw}
}

// Lines returns the non-blank lines of the input.
func (in *Input) Lines() []string {
	if !in.split {
		in.lines = splitLines(in.Raw)
		in.split = true
	}
	return in.lines
}

// Candidate is a tentatively extracted record. The engine decides whether it
// becomes a models.Record.
type Candidate struct {
	Bank          string
	AccountNumber string
	Username      string
	HolderName    string
	Amount        float64
}

// Strategy recognizes and extracts one input layout.
type Strategy interface {
	// Format names the layout this strategy handles.
	Format() models.Format
	// Detect reports whether the input looks like this layout.
	Detect(in *Input) bool
	// Extract returns candidates in input order.
	Extract(in *Input) ([]Candidate, error)
}

// NewStrategy returns the strategy for the given format.
func NewStrategy(format models.Format, tables *Tables) (Strategy, error) {
	switch format {
	case models.FormatHTML:
		return &HTMLStrategy{tables: tables}, nil
	case models.FormatDeposit:
		return &DepositStrategy{tables: tables}, nil
	case models.FormatWithdraw:
		return &WithdrawStrategy{tables: tables}, nil
	case models.FormatSingleLine:
		return &SingleLineStrategy{tables: tables}, nil
	default:
		return nil, errors.Errorf("unsupported format: %q", format)
	}
}

// ParseFormat maps a user supplied layout name to a Format.
func ParseFormat(s string) (models.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return models.FormatHTML, nil
	case "deposit":
		return models.FormatDeposit, nil
	case "withdraw":
		return models.FormatWithdraw, nil
	case "single", "single_line", "single-line", "line":
		return models.FormatSingleLine, nil
	}
	return "", errors.Errorf("unknown layout %q. Supported: html, deposit, withdraw, single", s)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTables replaces the built-in bank list and routing prefixes.
func WithTables(t *Tables) Option {
	return func(e *Engine) {
		if t != nil {
			e.tables = t
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs the format cascade. It holds no mutable state and may be used
// from multiple goroutines.
type Engine struct {
	tables *Tables
	logger *log.Logger
	markup Strategy
	text   []Strategy
}

// New builds an Engine with the default tables unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		tables: DefaultTables(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.markup = &HTMLStrategy{tables: e.tables}
	e.text = []Strategy{
		&DepositStrategy{tables: e.tables},
		&WithdrawStrategy{tables: e.tables},
		&SingleLineStrategy{tables: e.tables},
	}
	return e
}

// Tables returns the tables the engine was built with.
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Classify returns the layout the cascade would try first for raw.
func (e *Engine) Classify(raw string) models.Format {
	if strings.TrimSpace(raw) == "" {
		return models.FormatNone
	}
	in := NewInput(raw)
	if e.markup.Detect(in) {
		return e.markup.Format()
	}
	for _, s := range e.text {
		if s.Detect(in) {
			return s.Format()
		}
	}
	return models.FormatNone
}

// Process extracts records from raw. It never fails: unusable input yields an
// empty result.
func (e *Engine) Process(raw string) models.Result {
	if strings.TrimSpace(raw) == "" {
		return emptyResult(models.FormatNone)
	}
	in := NewInput(raw)

	if e.markup.Detect(in) {
		res := e.run(e.markup, in)
		if res.Count() > 0 {
			return res
		}
		e.logger.Debug("markup produced no records, trying text layouts")
	}

	for _, s := range e.text {
		if s.Detect(in) {
			return e.run(s, in)
		}
	}
	return emptyResult(models.FormatNone)
}

// ProcessAs skips classification and runs the strategy for format.
func (e *Engine) ProcessAs(raw string, format models.Format) (models.Result, error) {
	s, err := NewStrategy(format, e.tables)
	if err != nil {
		return models.Result{}, err
	}
	return e.run(s, NewInput(raw)), nil
}

func (e *Engine) run(s Strategy, in *Input) models.Result {
	e.logger.Debug("extracting", "format", s.Format(), "lines", len(in.Lines()))

	cands, err := s.Extract(in)
	if err != nil {
		e.logger.Debug("extraction failed", "format", s.Format(), "err", err)
		return emptyResult(s.Format())
	}

	res := emptyResult(s.Format())
	for _, c := range cands {
		rec, ok := e.finalize(c)
		if !ok {
			continue
		}
		res.Records = append(res.Records, rec)
		res.TotalAmount += rec.Amount
	}

	e.logger.Debug("extracted", "format", s.Format(), "candidates", len(cands), "records", res.Count())
	return res
}

func (e *Engine) finalize(c Candidate) (models.Record, bool) {
	bank := strings.ToUpper(strings.TrimSpace(c.Bank))
	if !e.tables.IsBank(bank) {
		e.logger.Debug("discarding candidate", "reason", "unrecognized bank", "bank", c.Bank)
		return models.Record{}, false
	}
	if c.Amount <= 0 {
		e.logger.Debug("discarding candidate", "reason", "non-positive amount", "bank", bank)
		return models.Record{}, false
	}
	return models.Record{
		Bank:              bank,
		AccountNumber:     e.tables.NormalizeAccount(bank, c.AccountNumber),
		Username:          orPlaceholder(c.Username),
		AccountHolderName: orPlaceholder(c.HolderName),
		Amount:            c.Amount,
	}, true
}

func emptyResult(f models.Format) models.Result {
	return models.Result{Format: f, Records: []models.Record{}}
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return models.Placeholder
	}
	return s
}

var markupPattern = regexp.MustCompile(`(?i)<tr|<td|<div|data-changekey`)
