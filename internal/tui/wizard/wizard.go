// Package wizard implements the interactive gift card distribution wizard.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/giftdist/internal/dispatch"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// ErrCancelled is returned by RunWizard when the user quits before a batch
// was sent.
var ErrCancelled = errors.New("wizard cancelled by user")

// phase is the screen the wizard shows on top of the step flow.
type phase int

const (
	phaseSteps   phase = iota // Setup, method and configuration steps
	phaseConfirm              // Confirmation modal
	phaseSending              // Waiting for the dispatcher
	phaseDone                 // Receipt or send error
)

// Options configures a wizard run.
type Options struct {
	Count      int // Initial batch size, 0 for the built-in default
	Value      int // Initial face value, 0 for the built-in default
	Dispatcher *dispatch.Dispatcher
}

// WizardModel is the main BubbleTea model for the distribution wizard.
// It owns the store and mirrors its state through a subscription.
type WizardModel struct {
	store      *distribution.Store
	manager    *distribution.Manager
	nav        *distribution.Navigator
	dispatcher *dispatch.Dispatcher
	opts       Options

	unsubscribe func()

	// Cached from the store subscription
	state  distribution.AppState
	counts distribution.MethodCounts
	total  int

	phase     phase
	cancelled bool
	blocked   []string // Errors from the last refused Next
	notice    string   // One-line status shown under the step
	width     int
	height    int

	// Step components
	setupStep     *SetupStep
	methodStep    *MethodStep
	configureStep *ConfigureStep
	confirm       *ConfirmModal

	// Sending and result
	ctx        context.Context
	cancelSend context.CancelFunc
	spinner    spinner.Model
	receipt    *dispatch.Receipt
	deliveries int
	sendErr    error
}

// NewWizardModel creates a wizard over a fresh store.
func NewWizardModel(ctx context.Context, opts Options) *WizardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = dispatch.NewDispatcher(nil, nil)
	}

	store := distribution.NewStore()
	manager := distribution.NewManager(store)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	m := &WizardModel{
		store:      store,
		manager:    manager,
		nav:        distribution.NewNavigator(store, manager),
		dispatcher: opts.Dispatcher,
		opts:       opts,
		ctx:        ctx,
		spinner:    s,
		width:      80,
		height:     24,
	}
	m.unsubscribe = store.SubscribeFunc(m.onStateChange)
	m.applyDefaults()
	m.onStateChange(store.State())
	return m
}

// RunWizard runs the wizard in its own program and returns the receipt of
// the sent batch.
func RunWizard(ctx context.Context, opts Options) (*dispatch.Receipt, error) {
	m := NewWizardModel(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wizModel.sendErr != nil {
		return nil, wizModel.sendErr
	}
	if wizModel.cancelled || wizModel.receipt == nil {
		return nil, ErrCancelled
	}
	return wizModel.receipt, nil
}

// Close detaches the wizard from its store and aborts a pending send.
func (m *WizardModel) Close() {
	if m.cancelSend != nil {
		m.cancelSend()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *WizardModel) applyDefaults() {
	if m.opts.Count != 0 {
		if err := m.manager.SetBatchSize(m.opts.Count); err != nil {
			logger.Warn("Ignoring default count: %v", err)
		}
	}
	if m.opts.Value != 0 {
		if err := m.manager.SetFaceValue(m.opts.Value); err != nil {
			logger.Warn("Ignoring default value: %v", err)
		}
	}
}

// onStateChange mirrors the store into the wizard and its steps.
func (m *WizardModel) onStateChange(state distribution.AppState) {
	m.state = state
	m.counts = distribution.CountByMethod(state.GiftCards)
	m.total = distribution.CalculateTotalValue(distribution.SelectedCards(state.GiftCards))

	if m.setupStep != nil {
		m.setupStep.Sync(state)
	}
	if m.methodStep != nil {
		m.methodStep.Sync(state)
	}
	if m.configureStep != nil {
		m.configureStep.Sync(state)
	}
	if m.confirm != nil {
		m.confirm.Sync(state)
	}
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return m.initCurrentStep()
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			// Always allow Ctrl+C to quit
			m.cancelled = true
			if m.cancelSend != nil {
				m.cancelSend()
			}
			return m, tea.Quit
		}

		switch m.phase {
		case phaseSending:
			if msg.String() == "esc" && m.cancelSend != nil {
				logger.Info("Send cancelled by user")
				m.cancelSend()
			}
			return m, nil

		case phaseDone:
			switch msg.String() {
			case "n":
				return m, m.restart()
			case "q", "enter", "esc":
				return m, tea.Quit
			}
			return m, nil

		case phaseSteps:
			if msg.String() == "esc" {
				if m.state.CurrentStep == distribution.StepSetup {
					m.cancelled = true
					return m, tea.Quit
				}
				m.blocked = nil
				m.notice = ""
				if err := m.nav.Back(); err != nil {
					logger.Warn("Back failed: %v", err)
				}
				return m, m.initCurrentStep()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case NextStepMsg:
		return m, m.advance()

	case ConfirmRequestedMsg:
		if err := m.nav.Confirm(); err != nil {
			m.confirm.SetError(err)
			return m, nil
		}
		return m, m.startSend()

	case ConfirmCancelledMsg:
		m.phase = phaseSteps
		m.confirm = nil
		return m, m.initCurrentStep()

	case sendResultMsg:
		return m, m.handleSendResult(msg)

	case deliveriesLoadedMsg:
		if msg.err != nil {
			logger.Warn("Failed to read back deliveries: %v", msg.err)
		}
		m.deliveries = msg.count
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Forward to the active component
	if m.phase == phaseConfirm {
		return m, m.confirm.Update(msg)
	}
	if m.phase != phaseSteps {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state.CurrentStep {
	case distribution.StepSetup:
		if m.setupStep != nil {
			cmd = m.setupStep.Update(msg)
		}
	case distribution.StepMethods:
		if m.methodStep != nil {
			cmd = m.methodStep.Update(msg)
		}
	case distribution.StepConfigure:
		if m.configureStep != nil {
			cmd = m.configureStep.Update(msg)
		}
	}
	if _, ok := msg.(tea.KeyPressMsg); ok {
		m.notice = ""
	}
	return m, cmd
}

// advance runs the continue action of the current step.
func (m *WizardModel) advance() tea.Cmd {
	advance, err := m.nav.Next()
	if err != nil {
		var blocked *distribution.BlockedError
		if errors.As(err, &blocked) {
			m.blocked = blocked.Errors
		} else {
			m.blocked = []string{err.Error()}
		}
		return nil
	}
	m.blocked = nil

	if advance == distribution.AdvanceConfirm {
		m.phase = phaseConfirm
		m.confirm = NewConfirmModal(m.nav, m.state)
		m.updateSizes()
		return nil
	}
	return m.initCurrentStep()
}

// initCurrentStep creates the component of the current step if needed and
// initializes it.
func (m *WizardModel) initCurrentStep() tea.Cmd {
	var cmd tea.Cmd
	switch m.state.CurrentStep {
	case distribution.StepSetup:
		if m.setupStep == nil {
			m.setupStep = NewSetupStep(m.manager, m.state)
		}
		cmd = m.setupStep.Init()
	case distribution.StepMethods:
		if m.methodStep == nil {
			m.methodStep = NewMethodStep(m.manager, m.state)
		}
		cmd = m.methodStep.Init()
	case distribution.StepConfigure:
		if m.configureStep == nil {
			m.configureStep = NewConfigureStep(m.manager, m.state)
		}
		cmd = m.configureStep.Init()
	}
	m.updateSizes()
	return cmd
}

// restart discards the sent batch and begins a new one.
func (m *WizardModel) restart() tea.Cmd {
	m.nav.Restart()
	m.applyDefaults()
	m.phase = phaseSteps
	m.receipt = nil
	m.deliveries = 0
	m.sendErr = nil
	m.blocked = nil
	m.notice = ""
	m.setupStep, m.methodStep, m.configureStep, m.confirm = nil, nil, nil, nil
	return m.initCurrentStep()
}

// contentSize returns the space available inside the modal container.
func (m *WizardModel) contentSize() (int, int) {
	return m.modalWidth() - 6, max(m.height-12, 10)
}

func (m *WizardModel) modalWidth() int {
	// Leave margins for visual spacing
	return min(max(m.width-10, 60), 100)
}

// updateSizes updates the size of every live component.
func (m *WizardModel) updateSizes() {
	w, h := m.contentSize()
	if m.setupStep != nil {
		m.setupStep.SetSize(w, h)
	}
	if m.methodStep != nil {
		m.methodStep.SetSize(w, h)
	}
	if m.configureStep != nil {
		m.configureStep.SetSize(w, h)
	}
	if m.confirm != nil {
		m.confirm.SetSize(w, h)
	}
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render returns the current screen as a string, centered in the terminal.
func (m *WizardModel) render() string {
	var title, body string
	switch m.phase {
	case phaseConfirm:
		title = "Confirm distribution"
		body = m.confirm.View()
	case phaseSending:
		title = "Sending"
		body = m.sendingView()
	case phaseDone:
		title = "Distribution complete"
		if m.sendErr != nil {
			title = "Distribution failed"
		}
		body = m.doneView()
	default:
		step := m.state.CurrentStep
		title = fmt.Sprintf("Gift Card Distribution - Step %d of %d: %s",
			step+1, len(distribution.StepNames), distribution.StepNames[step])
		body = m.stepView()
	}

	return m.renderModal(title, body)
}

// stepView renders the current step with its status line and buttons.
func (m *WizardModel) stepView() string {
	st := theme.Current().S()
	var sections []string

	if m.state.CurrentStep > distribution.StepSetup {
		sections = append(sections, st.Label.Render(fmt.Sprintf("%d cards • %d selected • %s",
			len(m.state.GiftCards), m.counts.Selected(), distribution.FormatCurrency(m.total))), "")
	}

	switch m.state.CurrentStep {
	case distribution.StepSetup:
		if m.setupStep != nil {
			sections = append(sections, m.setupStep.View())
		}
	case distribution.StepMethods:
		if m.methodStep != nil {
			sections = append(sections, m.methodStep.View())
		}
	case distribution.StepConfigure:
		if m.configureStep != nil {
			sections = append(sections, m.configureStep.View())
		}
	}

	if len(m.blocked) > 0 {
		sections = append(sections, "", renderErrors(m.blocked))
	}
	if m.notice != "" {
		sections = append(sections, "", st.Warning.Render(m.notice))
	}

	nextLabel := "Next →"
	if m.state.CurrentStep == distribution.StepConfigure {
		nextLabel = "Review"
	}
	w, _ := m.contentSize()
	bar := NewButtonBar(CreateBackNextButtons(
		m.state.CurrentStep > distribution.StepSetup,
		distribution.CanProceedToNextStep(m.state.CurrentStep, m.state.GiftCards),
		nextLabel,
	))
	bar.SetWidth(w)
	sections = append(sections, "", bar.Render())

	return strings.Join(sections, "\n")
}

// renderModal wraps content in the modal container with a title and
// centers it on screen.
func (m *WizardModel) renderModal(title, content string) string {
	st := theme.Current().S()
	body := st.ModalTitle.Render(title) + "\n\n" + content
	modalContent := st.ModalContainer.Width(m.modalWidth()).Render(body)
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modalContent,
	)
}

// State returns the wizard's cached copy of the store state.
func (m *WizardModel) State() distribution.AppState {
	return m.state
}

// Receipt returns the receipt of the sent batch, if any.
func (m *WizardModel) Receipt() *dispatch.Receipt {
	return m.receipt
}

// NextStepMsg asks the wizard to run the continue action of the current step.
type NextStepMsg struct{}
