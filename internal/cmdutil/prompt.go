// Package cmdutil holds the interactive building blocks shared by the CLI
// commands: prompting, yes/no confirmation, index selection and the
// first-run wizard.
package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/stringutil"
)

// Prompter asks questions on the terminal. With AssumeYes set every
// confirmation resolves to yes without prompting, which is what the -y
// flag and cron-driven runs rely on.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewPrompter creates a prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// StdPrompter prompts on the process terminal.
func StdPrompter(assumeYes bool) *Prompter {
	return NewPrompter(os.Stdin, os.Stdout, assumeYes)
}

// Confirm asks a yes/no question. An empty answer selects the default.
func (p *Prompter) Confirm(prompt string, def bool) bool {
	if p.assumeYes {
		return true
	}

	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", prompt, hint)

	answer, err := p.in.ReadString('\n')
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Prompt asks for a free-form value. An empty answer selects the default.
func (p *Prompter) Prompt(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.in.ReadString('\n')
	if err != nil {
		return def
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def
	}
	return answer
}

// SelectIndexes asks for a comma-separated list of 1-based indexes and
// returns the valid unique 0-based ones. With AssumeYes set, every index
// is selected.
func (p *Prompter) SelectIndexes(label string, max int) []int {
	if p.assumeYes {
		all := make([]int, max)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return stringutil.SanitizeIndexes(max, p.Prompt(label, ""))
}

// FirstRun collects the initial settings for a fresh configuration. It
// implements the registry setup collaborator.
func (p *Prompter) FirstRun(suggestedDir string) (string, bool, error) {
	fmt.Fprintln(p.out, "It looks like this is the first time you run this program, let's configure it!")

	dir := p.Prompt("Default installation directory", fileutil.MustResolvePath(suggestedDir))
	dir, err := fileutil.ResolvePath(dir)
	if err != nil {
		return "", false, err
	}

	auto := p.Confirm("Install new tools automatically when added?", true)
	return dir, auto, nil
}
