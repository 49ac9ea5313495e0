package wizard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// Rows of the setup step, top to bottom.
const (
	setupRowCount = iota
	setupRowCustom
	setupRowValue
	setupRows
)

// SetupStep picks the batch size and face value of the test batch.
type SetupStep struct {
	manager *distribution.Manager

	row         int             // Focused row
	countIdx    int             // Selected count preset, -1 when custom
	valueIdx    int             // Selected face value preset
	customInput textinput.Model // Custom batch size
	customError string          // Validation error for the custom size
	count       int             // Batch size as stored
	value       int             // Face value as stored
	width       int
	height      int
}

// NewSetupStep creates the setup step preselecting the stored count and value.
func NewSetupStep(manager *distribution.Manager, state distribution.AppState) *SetupStep {
	input := newInput(fmt.Sprintf("%d-%d", distribution.MinGiftCards, distribution.MaxGiftCards), 3)
	input.SetWidth(10)

	s := &SetupStep{
		manager:     manager,
		customInput: input,
		width:       60,
		height:      10,
	}
	s.Sync(state)
	if s.countIdx < 0 {
		s.customInput.SetValue(strconv.Itoa(state.TestCount))
	}
	return s
}

// Init initializes the setup step.
func (s *SetupStep) Init() tea.Cmd {
	s.row = setupRowCount
	s.customInput.Blur()
	return nil
}

// SetSize updates the dimensions for the setup step.
func (s *SetupStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Sync refreshes the step from the store.
func (s *SetupStep) Sync(state distribution.AppState) {
	s.count = state.TestCount
	s.value = state.TestValue
	s.countIdx = slices.Index(distribution.TestAmounts, state.TestCount)
	s.valueIdx = max(slices.Index(distribution.TestValues, state.TestValue), 0)
}

// Update handles messages for the setup step.
func (s *SetupStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if s.row == setupRowCustom {
			var cmd tea.Cmd
			s.customInput, cmd = s.customInput.Update(msg)
			return cmd
		}
		return nil
	}

	switch keyMsg.String() {
	case "up", "shift+tab":
		return s.focusRow((s.row - 1 + setupRows) % setupRows)
	case "down", "tab":
		return s.focusRow((s.row + 1) % setupRows)
	case "enter":
		if s.customError != "" {
			return nil
		}
		return func() tea.Msg { return NextStepMsg{} }
	}

	switch s.row {
	case setupRowCount:
		switch keyMsg.String() {
		case "left", "h":
			s.selectCount(s.countIdx - 1)
		case "right", "l":
			s.selectCount(s.countIdx + 1)
		}
	case setupRowValue:
		switch keyMsg.String() {
		case "left", "h":
			s.selectValue(s.valueIdx - 1)
		case "right", "l":
			s.selectValue(s.valueIdx + 1)
		}
	case setupRowCustom:
		before := s.customInput.Value()
		var cmd tea.Cmd
		s.customInput, cmd = s.customInput.Update(msg)
		if s.customInput.Value() != before {
			s.applyCustom()
		}
		return cmd
	}
	return nil
}

func (s *SetupStep) focusRow(row int) tea.Cmd {
	s.row = row
	if row == setupRowCustom {
		return s.customInput.Focus()
	}
	s.customInput.Blur()
	return nil
}

func (s *SetupStep) selectCount(idx int) {
	idx = min(max(idx, 0), len(distribution.TestAmounts)-1)
	if err := s.manager.SetBatchSize(distribution.TestAmounts[idx]); err == nil {
		s.customInput.SetValue("")
		s.customError = ""
	}
}

func (s *SetupStep) selectValue(idx int) {
	idx = min(max(idx, 0), len(distribution.TestValues)-1)
	_ = s.manager.SetFaceValue(distribution.TestValues[idx])
}

// applyCustom stores the typed batch size when it is valid.
func (s *SetupStep) applyCustom() {
	raw := strings.TrimSpace(s.customInput.Value())
	if raw == "" {
		s.customError = ""
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.customError = "Must be a number"
		return
	}
	if err := s.manager.SetBatchSize(n); err != nil {
		s.customError = fmt.Sprintf("Must be between %d and %d", distribution.MinGiftCards, distribution.MaxGiftCards)
		return
	}
	s.customError = ""
}

// View renders the setup step.
func (s *SetupStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	counts := make([]string, len(distribution.TestAmounts))
	for i, n := range distribution.TestAmounts {
		counts[i] = strconv.Itoa(n)
	}
	b.WriteString(st.Label.Render("Number of test gift cards"))
	b.WriteString("\n")
	b.WriteString(renderChips(counts, s.countIdx, s.row == setupRowCount))
	b.WriteString("\n\n")

	b.WriteString(st.Label.Render("Custom amount"))
	b.WriteString("\n")
	b.WriteString(s.customInput.View())
	b.WriteString("\n")
	if s.customError != "" {
		b.WriteString(renderErrors([]string{s.customError}))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	values := make([]string, len(distribution.TestValues))
	for i, v := range distribution.TestValues {
		values[i] = distribution.FormatCurrency(v)
	}
	b.WriteString(st.Label.Render("Face value per card"))
	b.WriteString("\n")
	b.WriteString(renderChips(values, s.valueIdx, s.row == setupRowValue))
	b.WriteString("\n\n")

	summary := fmt.Sprintf("%d × %s = %s",
		s.count,
		distribution.FormatCurrency(s.value),
		distribution.FormatCurrency(s.count*s.value))
	b.WriteString(st.Emphasis.Render(summary))
	b.WriteString("\n\n")

	b.WriteString(renderHintBar(
		"↑↓", "row",
		"←→", "choose",
		"enter", "next",
		"esc", "quit",
	))
	return b.String()
}

// Count returns the stored batch size.
func (s *SetupStep) Count() int {
	return s.count
}
