package distribution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/giftdist/internal/logger"
)

// Wizard steps. Confirmation is tracked by AppState.Confirmed, not a step.
const (
	StepSetup     = 0
	StepMethods   = 1
	StepConfigure = 2

	lastStep = StepConfigure
)

// StepNames are the titles of the wizard steps, indexed by step.
var StepNames = []string{
	"Test batch",
	"Delivery method",
	"Recipients",
}

var (
	ErrInvalidStep      = errors.New("invalid step")
	ErrStepBlocked      = errors.New("complete the current step before continuing")
	ErrTermsNotAccepted = errors.New("terms must be accepted before confirming")
	ErrAlreadyConfirmed = errors.New("batch already confirmed")
)

// BlockedError is returned when a forward move fails validation.
type BlockedError struct {
	Step   int
	Errors []string
}

func (e *BlockedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("step %d: %s", e.Step, ErrStepBlocked)
	}
	return fmt.Sprintf("step %d: %s: %s", e.Step, ErrStepBlocked, strings.Join(e.Errors, "; "))
}

func (e *BlockedError) Unwrap() error { return ErrStepBlocked }

// CanProceedToNextStep reports whether the wizard may leave step.
func CanProceedToNextStep(step int, cards []GiftCard) bool {
	return stepErrors(step, cards) == nil
}

// stepErrors returns nil when step may be left, or the reasons it may not.
func stepErrors(step int, cards []GiftCard) []string {
	switch step {
	case StepMethods:
		for _, c := range cards {
			if c.Method != MethodUnset {
				return nil
			}
		}
		return []string{"select a delivery method for at least one gift card"}

	case StepConfigure:
		// Physical cards carry no contact fields.
		result := ValidateAllConfigurations(DigitalCards(cards))
		if result.IsValid {
			return nil
		}
		return result.Errors

	default:
		return nil
	}
}

// Advance tells the caller what Next did.
type Advance int

const (
	AdvanceMoved   Advance = iota // moved to the next step
	AdvanceConfirm                // configuration is valid, show the confirmation
)

// Navigator gates step transitions on validation.
type Navigator struct {
	store   *Store
	manager *Manager
}

// NewNavigator creates a navigator over store. manager is used by Next to
// create the batch when leaving the setup step.
func NewNavigator(store *Store, manager *Manager) *Navigator {
	return &Navigator{store: store, manager: manager}
}

// GoToStep moves to target. Backward moves always succeed; forward moves
// require the current step to validate and leave the state untouched when
// it does not.
func (n *Navigator) GoToStep(target int) error {
	if target < StepSetup || target > lastStep {
		return fmt.Errorf("%w: %d", ErrInvalidStep, target)
	}

	state := n.store.State()
	if target > state.CurrentStep {
		if errs := stepErrors(state.CurrentStep, state.GiftCards); errs != nil {
			logger.Debug("Blocked move from step %d to %d: %v", state.CurrentStep, target, errs)
			return &BlockedError{Step: state.CurrentStep, Errors: errs}
		}
	}

	logger.Debug("Moving from step %d to %d", state.CurrentStep, target)
	n.store.SetState(WithCurrentStep(target))
	return nil
}

// CanNavigateTo reports whether GoToStep could reach target, checking every
// step between the current one and target.
func (n *Navigator) CanNavigateTo(target int) bool {
	if target < StepSetup || target > lastStep {
		return false
	}
	state := n.store.State()
	if target <= state.CurrentStep {
		return true
	}
	for step := state.CurrentStep; step < target; step++ {
		if !CanProceedToNextStep(step, state.GiftCards) {
			return false
		}
	}
	return true
}

// Back moves one step back. It does nothing on the first step.
func (n *Navigator) Back() error {
	state := n.store.State()
	if state.CurrentStep <= StepSetup {
		return nil
	}
	return n.GoToStep(state.CurrentStep - 1)
}

// Next performs the continue action of the current step. Leaving the setup
// step creates a fresh batch from the chosen count and value. On the
// configuration step it only validates and returns AdvanceConfirm.
func (n *Navigator) Next() (Advance, error) {
	state := n.store.State()

	switch state.CurrentStep {
	case StepSetup:
		n.manager.InitializeGiftCards(state.TestCount, state.TestValue)
		n.store.SetState(WithConfirmed(false), WithTermsAccepted(false))
		return AdvanceMoved, n.GoToStep(StepMethods)

	case StepConfigure:
		if errs := stepErrors(StepConfigure, state.GiftCards); errs != nil {
			return AdvanceMoved, &BlockedError{Step: StepConfigure, Errors: errs}
		}
		return AdvanceConfirm, nil

	default:
		return AdvanceMoved, n.GoToStep(state.CurrentStep + 1)
	}
}

// AcceptTerms records whether the distribution terms were accepted.
func (n *Navigator) AcceptTerms(accepted bool) {
	n.store.SetState(WithTermsAccepted(accepted))
}

// Confirm finalizes the batch: every digital card's configuration is copied
// into its recipient snapshot and the state is marked confirmed, all in one
// notification.
func (n *Navigator) Confirm() error {
	state := n.store.State()

	if state.Confirmed {
		return ErrAlreadyConfirmed
	}
	if state.CurrentStep != StepConfigure {
		return fmt.Errorf("%w: confirmation requires step %d, at %d", ErrInvalidStep, StepConfigure, state.CurrentStep)
	}
	if errs := stepErrors(StepConfigure, state.GiftCards); errs != nil {
		return &BlockedError{Step: StepConfigure, Errors: errs}
	}
	if !state.TermsAccepted {
		return ErrTermsNotAccepted
	}

	cards := state.GiftCards
	for i := range cards {
		c := &cards[i]
		if c.Method == MethodUnset || c.Config == nil {
			continue
		}
		r := Recipient{Name: c.Config.Name, Message: c.Config.Message}
		switch c.Method {
		case MethodEmail:
			r.Email = c.Config.Email
		case MethodSMS:
			r.Phone = c.Config.Phone
		}
		c.Recipient = &r
	}

	logger.Info("Batch confirmed: %d of %d cards selected", len(SelectedCards(cards)), len(cards))
	n.store.SetState(WithGiftCards(cards), WithConfirmed(true))
	return nil
}

// Restart clears everything and returns to the setup step.
func (n *Navigator) Restart() {
	n.store.Reset()
}
