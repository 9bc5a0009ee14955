package sniff

import (
	"context"
	"strconv"
	"sync"

	"github.com/pterm/pterm"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/frame"
)

// PreviewRows is how many rows a prompter shows before asking
const PreviewRows = 10

// Prompter answers the questions the decision table cannot
type Prompter interface {
	Int(ctx context.Context, label string, def int) (int, error)
	Bool(ctx context.Context, label string, def bool) (bool, error)
	Choose(ctx context.Context, label string, options []string, def string) (string, error)
	Preview(graphName string, f *frame.Frame)
}

// TerminalPrompter asks an operator through pterm's interactive printers
type TerminalPrompter struct{}

// Int reads a non-negative integer, asking again until one is given
func (TerminalPrompter) Int(ctx context.Context, label string, def int) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(errors.ErrAborted, err.Error())
		}
		answer, err := pterm.DefaultInteractiveTextInput.
			WithDefaultValue(strconv.Itoa(def)).
			Show(label)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrAborted, "%s: %v", label, err)
		}
		v, err := strconv.Atoi(answer)
		if err == nil && v >= 0 {
			return v, nil
		}
		pterm.Warning.Printfln("%q is not a non-negative integer", answer)
	}
}

// Bool asks a yes/no question
func (TerminalPrompter) Bool(ctx context.Context, label string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(errors.ErrAborted, err.Error())
	}
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(label)
	if err != nil {
		return false, errors.Wrapf(errors.ErrAborted, "%s: %v", label, err)
	}
	return answer, nil
}

// Choose offers a selection among options
func (TerminalPrompter) Choose(ctx context.Context, label string, options []string, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrAborted, err.Error())
	}
	printer := pterm.DefaultInteractiveSelect.WithOptions(options)
	if def != "" {
		printer = printer.WithDefaultOption(def)
	}
	answer, err := printer.Show(label)
	if err != nil {
		return "", errors.Wrapf(errors.ErrAborted, "%s: %v", label, err)
	}
	return answer, nil
}

// Preview prints the graph name and the first rows with column dtypes
func (TerminalPrompter) Preview(graphName string, f *frame.Frame) {
	pterm.DefaultSection.Println(graphName)
	rows := f.Preview(PreviewRows)
	for i, dtype := range f.DTypes() {
		rows[0][i] = rows[0][i] + " (" + dtype.String() + ")"
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		pterm.Warning.Printfln("preview failed: %v", err)
	}
	pterm.Info.Printfln("%d rows, %d columns", f.Len(), f.Width())
}

// NonInteractive refuses every question. Its errors match both
// errors.ErrAborted and errors.ErrUnsupportedGraph, so batch runs skip graphs
// that need an operator.
type NonInteractive struct{}

func needsOperator(label string) error {
	return errors.Mark(
		errors.Wrapf(errors.ErrAborted, "%s needs an operator (running non-interactively)", label),
		errors.ErrUnsupportedGraph,
	)
}

func (NonInteractive) Int(_ context.Context, label string, _ int) (int, error) {
	return 0, needsOperator(label)
}

func (NonInteractive) Bool(_ context.Context, label string, _ bool) (bool, error) {
	return false, needsOperator(label)
}

func (NonInteractive) Choose(_ context.Context, label string, _ []string, _ string) (string, error) {
	return "", needsOperator(label)
}

func (NonInteractive) Preview(string, *frame.Frame) {}

// Scripted answers from a fixed table. Unanswered questions take their
// default, or abort when Strict is set.
type Scripted struct {
	Ints    map[string]int
	Bools   map[string]bool
	Choices map[string]string
	// Abort lists labels whose question is declined
	Abort  map[string]bool
	Strict bool

	mu       sync.Mutex
	Asked    []string
	Previews int
}

func (s *Scripted) record(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, label)
	if s.Abort[label] {
		return errors.Wrapf(errors.ErrAborted, "%s declined", label)
	}
	return nil
}

func (s *Scripted) Int(_ context.Context, label string, def int) (int, error) {
	if err := s.record(label); err != nil {
		return 0, err
	}
	if v, ok := s.Ints[label]; ok {
		return v, nil
	}
	if s.Strict {
		return 0, errors.Wrapf(errors.ErrAborted, "no scripted answer for %s", label)
	}
	return def, nil
}

func (s *Scripted) Bool(_ context.Context, label string, def bool) (bool, error) {
	if err := s.record(label); err != nil {
		return false, err
	}
	if v, ok := s.Bools[label]; ok {
		return v, nil
	}
	if s.Strict {
		return false, errors.Wrapf(errors.ErrAborted, "no scripted answer for %s", label)
	}
	return def, nil
}

func (s *Scripted) Choose(_ context.Context, label string, _ []string, def string) (string, error) {
	if err := s.record(label); err != nil {
		return "", err
	}
	if v, ok := s.Choices[label]; ok {
		return v, nil
	}
	if s.Strict {
		return "", errors.Wrapf(errors.ErrAborted, "no scripted answer for %s", label)
	}
	return def, nil
}

func (s *Scripted) Preview(string, *frame.Frame) {
	s.mu.Lock()
	s.Previews++
	s.mu.Unlock()
}
