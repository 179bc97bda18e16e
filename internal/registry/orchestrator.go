// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"log/slog"
)

type (
	// Package is everything the store needs for one publish.
	Package struct {
		Name        string
		Version     string
		SizeBytes   int64
		ContentHash string
		Description string
		// Data is the archive; it must be exactly the bytes ContentHash covers.
		Data []byte
		// BeforeUpload runs once the slot is granted and before the first PUT.
		// A non-nil error aborts the attempt.
		BeforeUpload func() error
	}

	// Outcome summarizes a successful publish.
	Outcome struct {
		StoragePath string
		Message     string
		Attempts    int
		RequestID   string
	}

	// Orchestrator runs the three-phase publish protocol.
	Orchestrator struct {
		client  *Client
		observe TransitionFunc
	}

	// OrchestratorOption configures an Orchestrator.
	OrchestratorOption func(*Orchestrator)
)

// WithTransitionFunc registers an observer for state changes.
func WithTransitionFunc(fn TransitionFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.observe = fn
	}
}

// NewOrchestrator creates an Orchestrator using client for every call.
func NewOrchestrator(client *Client, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{client: client}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run publishes pkg. The slot request honors ctx cancellation; once a slot is
// granted the upload and finalize run to completion (bounded by their
// timeouts) so a signal cannot abandon a half-used slot.
func (o *Orchestrator) Run(ctx context.Context, pkg Package) (Outcome, error) {
	m := newMachine(o.observe)
	requestID := o.client.newRequestID()
	ctx = ContextWithRequestID(ctx, requestID)

	out, err := o.run(ctx, m, pkg)
	if err != nil {
		m.fail()
		return Outcome{}, err
	}
	out.RequestID = requestID
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, m *machine, pkg Package) (Outcome, error) {
	if err := m.to(StateSlotRequested); err != nil {
		return Outcome{}, err
	}
	session, err := o.client.RequestSlot(ctx, SlotRequest{
		Name:        pkg.Name,
		Version:     pkg.Version,
		FileSize:    pkg.SizeBytes,
		FileHash:    pkg.ContentHash,
		Description: pkg.Description,
	})
	if err != nil {
		return Outcome{}, err
	}
	slog.Debug("upload slot granted", "storage_path", session.StoragePath, "upload_url", redactURL(session.UploadURL))

	ctx = context.WithoutCancel(ctx)

	if pkg.BeforeUpload != nil {
		if err := pkg.BeforeUpload(); err != nil {
			return Outcome{}, err
		}
	}

	attempts := 0
	err = o.client.upload(ctx, session.UploadURL, pkg.Data, func(attempt int) error {
		attempts = attempt
		return m.to(StateUploading)
	})
	if err != nil {
		return Outcome{}, err
	}

	if err := m.to(StateFinalizing); err != nil {
		return Outcome{}, err
	}
	resp, err := o.client.Finalize(ctx, FinalizeRequest{
		Name:        pkg.Name,
		Version:     pkg.Version,
		FileHash:    pkg.ContentHash,
		StoragePath: session.StoragePath,
		Description: pkg.Description,
		FileSize:    pkg.SizeBytes,
	})
	if err != nil {
		return Outcome{}, err
	}

	if err := m.to(StateDone); err != nil {
		return Outcome{}, fmt.Errorf("completing publish: %w", err)
	}
	return Outcome{StoragePath: session.StoragePath, Message: resp.Message, Attempts: attempts}, nil
}
