package distribution

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a scripted run of the wizard, used by headless mode.
type Plan struct {
	Count       int        `yaml:"count"`
	Value       int        `yaml:"value"`
	AllMethod   string     `yaml:"all_method,omitempty"`
	Motif       string     `yaml:"motif,omitempty"`
	AcceptTerms bool       `yaml:"accept_terms"`
	Cards       []PlanCard `yaml:"cards,omitempty"`
}

// PlanCard configures one card of a Plan.
type PlanCard struct {
	ID            int    `yaml:"id"`
	Method        string `yaml:"method,omitempty"`
	Email         string `yaml:"email,omitempty"`
	Phone         string `yaml:"phone,omitempty"`
	Name          string `yaml:"name,omitempty"`
	Message       string `yaml:"message,omitempty"`
	SendTime      string `yaml:"send_time,omitempty"`
	ScheduledDate string `yaml:"scheduled_date,omitempty"`
	ScheduledTime string `yaml:"scheduled_time,omitempty"`
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a YAML plan and checks its static fields.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}

	if p.AllMethod != "" {
		if _, ok := ParseMethod(p.AllMethod); !ok {
			return nil, fmt.Errorf("plan: unknown all_method %q", p.AllMethod)
		}
	}
	for _, c := range p.Cards {
		if _, ok := ParseMethod(c.Method); !ok {
			return nil, fmt.Errorf("plan: card #%d: unknown method %q", c.ID, c.Method)
		}
		switch SendTime(c.SendTime) {
		case "", SendNow, SendTomorrow, SendScheduled:
		default:
			return nil, fmt.Errorf("plan: card #%d: unknown send_time %q", c.ID, c.SendTime)
		}
	}
	return &p, nil
}

// Run drives the wizard through every step exactly as the interactive shell
// would, so the same gates apply. It stops at the first failing step and
// leaves the batch confirmed on success.
func (p *Plan) Run(store *Store, manager *Manager, nav *Navigator) error {
	if store.State().CurrentStep != StepSetup {
		nav.Restart()
	}

	// Step 0: batch setup
	if p.Count != 0 {
		if err := manager.SetBatchSize(p.Count); err != nil {
			return err
		}
	}
	if p.Value != 0 {
		if err := manager.SetFaceValue(p.Value); err != nil {
			return err
		}
	}
	if _, err := nav.Next(); err != nil {
		return fmt.Errorf("leaving batch setup: %w", err)
	}

	// Step 1: methods
	if p.AllMethod != "" {
		m, _ := ParseMethod(p.AllMethod)
		manager.SelectAllMethod(m)
	}
	for _, c := range p.Cards {
		if c.Method == "" {
			continue
		}
		if _, ok := store.GiftCard(c.ID); !ok {
			return fmt.Errorf("plan: %w: #%d", ErrUnknownCard, c.ID)
		}
		m, _ := ParseMethod(c.Method)
		manager.SelectMethod(c.ID, m)
	}
	if _, err := nav.Next(); err != nil {
		return fmt.Errorf("leaving method selection: %w", err)
	}

	// Step 2: recipients
	for _, c := range p.Cards {
		if err := p.configureCard(manager, c); err != nil {
			return err
		}
	}
	if p.Motif != "" {
		manager.SetMotif(p.Motif)
	}
	advance, err := nav.Next()
	if err != nil {
		return fmt.Errorf("leaving recipient configuration: %w", err)
	}
	if advance != AdvanceConfirm {
		return errors.New("plan: configuration step did not request confirmation")
	}

	nav.AcceptTerms(p.AcceptTerms)
	return nav.Confirm()
}

func (p *Plan) configureCard(manager *Manager, c PlanCard) error {
	fields := []struct {
		field Field
		value string
	}{
		{FieldEmail, c.Email},
		{FieldPhone, c.Phone},
		{FieldName, c.Name},
		{FieldMessage, c.Message},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := manager.UpdateConfig(c.ID, f.field, f.value); err != nil {
			return fmt.Errorf("plan: card #%d: %w", c.ID, err)
		}
	}

	if c.ScheduledDate != "" || c.ScheduledTime != "" {
		clock := c.ScheduledTime
		if clock == "" {
			clock = DefaultScheduledTime
		}
		if err := manager.SetSchedule(c.ID, c.ScheduledDate, clock); err != nil {
			return fmt.Errorf("plan: card #%d: %w", c.ID, err)
		}
	} else if c.SendTime != "" {
		if err := manager.SetSendTime(c.ID, SendTime(c.SendTime)); err != nil {
			return fmt.Errorf("plan: card #%d: %w", c.ID, err)
		}
	}
	return nil
}
