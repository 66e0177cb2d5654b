// Package cron manages the single crontab entry used to run periodic
// registry updates. The entry is tagged with a marker comment so it can be
// found, rewritten, commented out and removed without touching the rest of
// the user's crontab.
package cron

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	robfig "github.com/robfig/cron/v3"
)

// marker identifies our entry inside the user crontab.
const marker = "Tman cron job"

// ErrNoJob is returned when the crontab holds no managed entry.
var ErrNoJob = errors.New("cron: job not found")

// Job is the managed crontab entry.
type Job struct {
	// Schedule is a standard five-field cron expression.
	Schedule string
	Command  string
	Enabled  bool
}

// String renders the job as it appears in the crontab, marker included.
func (j Job) String() string {
	line := fmt.Sprintf("%s %s # %s", j.Schedule, j.Command, marker)
	if !j.Enabled {
		line = "# " + line
	}
	return line
}

// Validate checks the schedule against the standard five-field syntax.
func (j Job) Validate() error {
	if _, err := robfig.ParseStandard(j.Schedule); err != nil {
		return fmt.Errorf("cron: invalid schedule %q: %w", j.Schedule, err)
	}
	return nil
}

// Manager reads and rewrites the invoking user's crontab.
type Manager struct {
	// runner is swapped out by tests; defaults to the crontab binary.
	runner commandRunner
}

type commandRunner interface {
	read(ctx context.Context) (string, error)
	write(ctx context.Context, content string) error
}

// New creates a manager over the user's crontab.
func New() *Manager {
	return &Manager{runner: crontabCommand{}}
}

// Load returns the managed entry, or ErrNoJob when none exists.
func (m *Manager) Load(ctx context.Context) (Job, error) {
	lines, err := m.lines(ctx)
	if err != nil {
		return Job{}, err
	}
	for _, line := range lines {
		if job, ok := parseLine(line); ok {
			return job, nil
		}
	}
	return Job{}, ErrNoJob
}

// Save writes the entry, replacing a previous managed entry when present.
// Other crontab lines are preserved as is.
func (m *Manager) Save(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	lines, err := m.lines(ctx)
	if err != nil {
		return err
	}

	var kept []string
	for _, line := range lines {
		if _, ok := parseLine(line); !ok {
			kept = append(kept, line)
		}
	}
	kept = append(kept, job.String())

	return m.runner.write(ctx, strings.Join(kept, "\n")+"\n")
}

// Delete removes the managed entry. Returns ErrNoJob when there is none.
func (m *Manager) Delete(ctx context.Context) error {
	lines, err := m.lines(ctx)
	if err != nil {
		return err
	}

	var kept []string
	found := false
	for _, line := range lines {
		if _, ok := parseLine(line); ok {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return ErrNoJob
	}

	content := ""
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}
	return m.runner.write(ctx, content)
}

// SetEnabled comments the entry out or back in.
func (m *Manager) SetEnabled(ctx context.Context, enabled bool) (Job, error) {
	job, err := m.Load(ctx)
	if err != nil {
		return Job{}, err
	}
	job.Enabled = enabled
	if err := m.Save(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (m *Manager) lines(ctx context.Context) ([]string, error) {
	content, err := m.runner.read(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

// parseLine recognizes a managed entry, commented out or not.
func parseLine(line string) (Job, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, "# "+marker) {
		return Job{}, false
	}

	body := strings.TrimSpace(strings.TrimSuffix(trimmed, "# "+marker))
	enabled := true
	if strings.HasPrefix(body, "#") {
		enabled = false
		body = strings.TrimSpace(strings.TrimPrefix(body, "#"))
	}

	fields := strings.Fields(body)
	if len(fields) < 6 {
		return Job{}, false
	}
	return Job{
		Schedule: strings.Join(fields[:5], " "),
		Command:  strings.Join(fields[5:], " "),
		Enabled:  enabled,
	}, true
}

// crontabCommand shells out to the crontab binary.
type crontabCommand struct{}

func (crontabCommand) read(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "crontab", "-l")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// An empty crontab is reported as an error by most crons.
		if strings.Contains(stderr.String(), "no crontab") {
			return "", nil
		}
		return "", fmt.Errorf("cron: crontab -l failed: %w", err)
	}
	return stdout.String(), nil
}

func (crontabCommand) write(ctx context.Context, content string) error {
	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(content)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cron: crontab write failed: %w", err)
	}
	return nil
}
