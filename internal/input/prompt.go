package input

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// LineReader is the prompt input source. *readline.Instance satisfies
// it; tests substitute a scripted reader.
type LineReader interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

// Status classifies a prompt outcome.
type Status int

const (
	Entered  Status = iota // a validated value was supplied
	Absent                 // an optional field was left empty
	Canceled               // the operator typed the q sentinel (or EOF)
)

// Result carries a prompt outcome and, when Entered, the accepted
// value.
type Result struct {
	Status Status
	Value  string
}

// Prompter runs the per-field input loops. Invalid input re-prompts in
// an explicit loop until a value is accepted or the operator cancels;
// there is no retry limit.
type Prompter struct {
	rl  LineReader
	out io.Writer
}

// NewPrompter creates a Prompter reading from rl and writing
// validation messages to out.
func NewPrompter(rl LineReader, out io.Writer) *Prompter {
	return &Prompter{rl: rl, out: out}
}

func (p *Prompter) read(label string) (string, error) {
	p.rl.SetPrompt(label)
	line, err := p.rl.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) invalid(msg string) {
	fmt.Fprintf(p.out, " <<< %s >>>\n", msg)
}

// Text prompts for a required varchar field. Input is sanitized and
// capitalized before validation.
func (p *Prompter) Text(label, invalid string) Result {
	for {
		raw, err := p.read(label)
		if err != nil {
			return Result{Status: Canceled}
		}
		val := Capitalize(Sanitize(raw))
		if val == "Q" {
			return Result{Status: Canceled}
		}
		if ValidText(val) {
			return Result{Status: Entered, Value: val}
		}
		p.invalid(invalid)
	}
}

// Year prompts for the required four-digit card year.
func (p *Prompter) Year(label, invalid string) Result {
	for {
		raw, err := p.read(label)
		if err != nil {
			return Result{Status: Canceled}
		}
		val := Sanitize(raw)
		if val == "q" || val == "Q" {
			return Result{Status: Canceled}
		}
		if ValidYear(val) {
			return Result{Status: Entered, Value: val}
		}
		p.invalid(invalid)
	}
}

// Date prompts for an ISO YYYY-MM-DD date. When optional, empty input
// means the field stays null.
func (p *Prompter) Date(label, invalid string, optional bool) Result {
	for {
		raw, err := p.read(label)
		if err != nil {
			return Result{Status: Canceled}
		}
		val := SanitizeNumber(raw)
		if val == "q" || val == "Q" {
			return Result{Status: Canceled}
		}
		if val == "" {
			if optional {
				return Result{Status: Absent}
			}
			p.invalid(invalid)
			continue
		}
		if ValidDate(val) {
			return Result{Status: Entered, Value: val}
		}
		p.invalid(invalid)
	}
}

// Currency prompts for a currency amount within 0.00-99999.99. When
// optional, empty input means the field stays null.
func (p *Prompter) Currency(label, invalid string, optional bool) Result {
	for {
		raw, err := p.read(label)
		if err != nil {
			return Result{Status: Canceled}
		}
		val := SanitizeNumber(raw)
		if val == "q" || val == "Q" {
			return Result{Status: Canceled}
		}
		if val == "" {
			if optional {
				return Result{Status: Absent}
			}
			p.invalid(invalid)
			continue
		}
		if ValidCurrency(val) {
			return Result{Status: Entered, Value: val}
		}
		p.invalid(invalid)
	}
}

// Capitalize uppercases the first rune and lowercases the rest,
// matching how the catalog stores names and team labels.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
