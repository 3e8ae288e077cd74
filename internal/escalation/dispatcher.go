package escalation

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/minigame-lab/gamecheck/internal/agent"
	"github.com/minigame-lab/gamecheck/internal/config"
	"github.com/minigame-lab/gamecheck/internal/utils"
)

// Outcome describes what happened to a remediation prompt.
type Outcome struct {
	// Sent is true when the remote agent accepted the prompt.
	Sent bool
	// Attempted is true when remote delivery was tried.
	Attempted bool
	// SavedTo is the fallback file written, if any.
	SavedTo string
	// DeliveryErr is the construction or delivery failure, if any.
	DeliveryErr error
	// SaveErr is the fallback write failure, if any.
	SaveErr error
}

// Options configures a Dispatcher.
type Options struct {
	Fs           afero.Fs
	Out          io.Writer
	Logger       *utils.Logger
	Capability   agent.Capability
	AgentID      string
	APIKey       string
	FallbackPath string
}

// Dispatcher delivers a remediation prompt to the remote agent, or saves it
// to the fallback file when delivery is not possible.
type Dispatcher struct {
	fs           afero.Fs
	out          io.Writer
	logger       *utils.Logger
	capability   agent.Capability
	agentID      string
	apiKey       string
	fallbackPath string
}

func NewDispatcher(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Dispatcher{
		fs:           opts.Fs,
		out:          out,
		logger:       logger.WithComponent("escalation"),
		capability:   opts.Capability,
		agentID:      opts.AgentID,
		apiKey:       opts.APIKey,
		fallbackPath: opts.FallbackPath,
	}
}

// Dispatch makes at most one delivery attempt and at most one file write.
// Every fault is reported on the console and in the Outcome; none is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) Outcome {
	if d.capability.Available() && d.agentID != "" && d.apiKey != "" {
		return d.dispatchRemote(ctx, prompt)
	}

	outcome := Outcome{}
	outcome.SavedTo, outcome.SaveErr = d.save(prompt)
	if outcome.SaveErr == nil {
		d.printf("WARN: auto-followup not sent. Saved prompt for coding agent.\n")
		d.printf("WARN: prompt file: %s\n", d.fallbackPath)
	} else {
		d.printf("WARN: auto-followup not sent.\n")
	}
	d.printDiagnostics()
	if err := d.capability.LoadError(); err != nil {
		d.printf("DEBUG: agent client load error: %v\n", err)
	}
	return outcome
}

func (d *Dispatcher) dispatchRemote(ctx context.Context, prompt string) Outcome {
	outcome := Outcome{Attempted: true}
	log := d.logger.WithField("agent_id", d.agentID)

	err := d.send(ctx, prompt)
	if err == nil {
		outcome.Sent = true
		log.Info("Delivered remediation prompt")
		d.printf("Sent auto-fix task to coding agent\n")
		return outcome
	}

	outcome.DeliveryErr = err
	log.WithError(err).Warn("Remediation prompt delivery failed")
	d.printf("WARN: send_followup failed: %v\n", err)
	outcome.SavedTo, outcome.SaveErr = d.save(prompt)
	if outcome.SaveErr == nil {
		d.printf("WARN: saved followup prompt to %s\n", d.fallbackPath)
	}
	d.printDiagnostics()
	return outcome
}

// send is the boundary around the remote capability: panics from a sender
// are converted to errors like any other delivery failure.
func (d *Dispatcher) send(ctx context.Context, prompt string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent sender panicked: %v", r)
		}
	}()

	sender, err := d.capability.New(d.apiKey)
	if err != nil {
		return fmt.Errorf("failed to construct agent client: %w", err)
	}
	return sender.SendFollowup(ctx, d.agentID, prompt)
}

func (d *Dispatcher) save(prompt string) (string, error) {
	if err := afero.WriteFile(d.fs, d.fallbackPath, []byte(prompt), 0644); err != nil {
		d.logger.WithError(err).WithField("path", d.fallbackPath).Error("Failed to save remediation prompt")
		d.printf("WARN: failed to save followup prompt: %v\n", err)
		return "", err
	}
	d.logger.WithFields(map[string]interface{}{
		"path": d.fallbackPath,
		"size": humanize.Bytes(uint64(len(prompt))),
	}).Debug("Saved remediation prompt")
	return d.fallbackPath, nil
}

func (d *Dispatcher) printDiagnostics() {
	d.printf("DEBUG: %s set: %t\n", config.AgentIDEnv, d.agentID != "")
	d.printf("DEBUG: %s set: %t\n", config.AgentKeyEnv, d.apiKey != "")
	d.printf("DEBUG: agent client available: %t\n", d.capability.Available())
}

func (d *Dispatcher) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}
