package wizard

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// formField identifies one input of a card form.
type formField int

const (
	fieldContact formField = iota // email or phone, depending on method
	fieldName
	fieldMessage
	fieldDate
	fieldClock
)

// motifForm marks the motif picker in a focus target.
const motifForm = -1

// sendTimeCycle is the order ctrl+t steps through.
var sendTimeCycle = []distribution.SendTime{
	distribution.SendNow,
	distribution.SendTomorrow,
	distribution.SendScheduled,
}

// cardForm holds the inputs of one digital card.
type cardForm struct {
	id          int
	method      distribution.Method
	sendTime    distribution.SendTime
	contact     textinput.Model
	name        textinput.Model
	message     textinput.Model
	date        textinput.Model
	clock       textinput.Model
	scheduleErr string
}

func (f *cardForm) input(field formField) *textinput.Model {
	switch field {
	case fieldContact:
		return &f.contact
	case fieldName:
		return &f.name
	case fieldMessage:
		return &f.message
	case fieldDate:
		return &f.date
	default:
		return &f.clock
	}
}

func (f *cardForm) fields() []formField {
	if f.sendTime == distribution.SendScheduled {
		return []formField{fieldContact, fieldName, fieldMessage, fieldDate, fieldClock}
	}
	return []formField{fieldContact, fieldName, fieldMessage}
}

// focusTarget is one stop of the tab order.
type focusTarget struct {
	form  int // index into forms, or motifForm
	field formField
}

// ConfigureStep collects recipient details for every card with a method.
type ConfigureStep struct {
	manager *distribution.Manager

	forms     []*cardForm
	cards     map[int]distribution.GiftCard // Selected cards by id, for validation
	physical  int                           // Number of physical cards
	motifIdx  int
	focus     int    // Index into targets()
	signature string // ids and methods the forms were built for
	tmpFile   string // Message file handed to $EDITOR
	width     int
	height    int
}

// NewConfigureStep creates the configuration step for the stored batch.
func NewConfigureStep(manager *distribution.Manager, state distribution.AppState) *ConfigureStep {
	c := &ConfigureStep{
		manager: manager,
		width:   60,
		height:  20,
	}
	c.Sync(state)
	return c
}

// Init focuses the first input.
func (c *ConfigureStep) Init() tea.Cmd {
	c.focus = 0
	return c.updateFocus()
}

// SetSize updates the dimensions for the configure step.
func (c *ConfigureStep) SetSize(width, height int) {
	c.width = width
	c.height = height
	for _, f := range c.forms {
		for _, field := range []formField{fieldContact, fieldName, fieldMessage} {
			f.input(field).SetWidth(max(width-20, 20))
		}
	}
}

// Sync refreshes the step from the store. Forms are rebuilt only when the
// set of selected cards changes, so typing is never interrupted.
func (c *ConfigureStep) Sync(state distribution.AppState) {
	selected := distribution.SelectedCards(state.GiftCards)

	var sig strings.Builder
	c.cards = make(map[int]distribution.GiftCard, len(selected))
	c.physical = 0
	for _, card := range selected {
		c.cards[card.ID] = card
		fmt.Fprintf(&sig, "%d:%s,", card.ID, card.Method)
		if card.Method == distribution.MethodPhysical {
			c.physical++
			if card.Details.Physical != nil {
				if idx := slices.Index(distribution.Motifs, card.Details.Physical.Motif); idx >= 0 {
					c.motifIdx = idx
				}
			}
		}
	}

	if sig.String() != c.signature {
		c.signature = sig.String()
		c.rebuild(selected)
		return
	}

	for _, f := range c.forms {
		card := c.cards[f.id]
		f.sendTime = sendTimeOf(card)
		if d := card.Details.Digital; d != nil {
			if !f.date.Focused() && f.date.Value() == "" {
				f.date.SetValue(d.ScheduledDate)
			}
			if !f.clock.Focused() && f.clock.Value() == "" {
				f.clock.SetValue(d.ScheduledTime)
			}
		}
	}
	c.clampFocus()
}

func sendTimeOf(card distribution.GiftCard) distribution.SendTime {
	if d := card.Details.Digital; d != nil && d.SendTime != "" {
		return d.SendTime
	}
	return distribution.SendNow
}

func (c *ConfigureStep) rebuild(selected []distribution.GiftCard) {
	c.forms = c.forms[:0]
	for _, card := range selected {
		if !card.Method.IsDigital() {
			continue
		}
		cfg := distribution.CardConfig{}
		if card.Config != nil {
			cfg = *card.Config
		}

		f := &cardForm{
			id:       card.ID,
			method:   card.Method,
			sendTime: sendTimeOf(card),
			name:     newInput("Recipient name (optional)", 100),
			message:  newInput("Personal message (optional)", distribution.MaxMessageLength),
			date:     newInput("YYYY-MM-DD", 10),
			clock:    newInput("HH:MM", 5),
		}
		if card.Method == distribution.MethodEmail {
			f.contact = newInput("name@example.com", 254)
			f.contact.SetValue(cfg.Email)
		} else {
			f.contact = newInput("+47 912 34 567", 20)
			f.contact.SetValue(cfg.Phone)
		}
		f.name.SetValue(cfg.Name)
		f.message.SetValue(cfg.Message)
		f.date.SetWidth(12)
		f.clock.SetWidth(8)
		if d := card.Details.Digital; d != nil {
			f.date.SetValue(d.ScheduledDate)
			f.clock.SetValue(d.ScheduledTime)
		}
		c.forms = append(c.forms, f)
	}
	c.SetSize(c.width, c.height)
	c.clampFocus()
	_ = c.updateFocus()
}

// targets lists every focus stop in tab order.
func (c *ConfigureStep) targets() []focusTarget {
	var t []focusTarget
	if c.physical > 0 {
		t = append(t, focusTarget{form: motifForm})
	}
	for i, f := range c.forms {
		for _, field := range f.fields() {
			t = append(t, focusTarget{form: i, field: field})
		}
	}
	return t
}

func (c *ConfigureStep) current() (focusTarget, bool) {
	t := c.targets()
	if c.focus < 0 || c.focus >= len(t) {
		return focusTarget{}, false
	}
	return t[c.focus], true
}

func (c *ConfigureStep) clampFocus() {
	n := len(c.targets())
	if c.focus >= n {
		c.focus = max(n-1, 0)
	}
}

// updateFocus focuses the input under the cursor and blurs the rest.
func (c *ConfigureStep) updateFocus() tea.Cmd {
	cur, ok := c.current()
	var cmd tea.Cmd
	for i, f := range c.forms {
		for _, field := range []formField{fieldContact, fieldName, fieldMessage, fieldDate, fieldClock} {
			in := f.input(field)
			if ok && cur.form == i && cur.field == field {
				cmd = in.Focus()
			} else {
				in.Blur()
			}
		}
	}
	return cmd
}

// Update handles messages for the configure step.
func (c *ConfigureStep) Update(msg tea.Msg) tea.Cmd {
	if edited, ok := msg.(MessageEditedMsg); ok {
		c.applyEditedMessage(edited)
		return nil
	}

	cur, ok := c.current()
	if !ok {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey && keyMsg.String() == "enter" {
			return func() tea.Msg { return NextStepMsg{} }
		}
		return nil
	}

	keyMsg, isKey := msg.(tea.KeyPressMsg)
	if isKey {
		n := len(c.targets())
		switch keyMsg.String() {
		case "tab":
			c.focus = (c.focus + 1) % n
			return c.updateFocus()
		case "shift+tab":
			c.focus = (c.focus - 1 + n) % n
			return c.updateFocus()
		case "enter":
			return func() tea.Msg { return NextStepMsg{} }
		case "ctrl+t":
			if cur.form == motifForm {
				return nil
			}
			c.cycleSendTime(c.forms[cur.form])
			if cur.field == fieldDate || cur.field == fieldClock {
				c.focusField(cur.form, fieldMessage)
			}
			return c.updateFocus()
		case "ctrl+e":
			if cur.form != motifForm {
				return c.openEditor(c.forms[cur.form])
			}
			return nil
		}

		if cur.form == motifForm {
			switch keyMsg.String() {
			case "left", "h":
				c.selectMotif(c.motifIdx - 1)
			case "right", "l":
				c.selectMotif(c.motifIdx + 1)
			}
			return nil
		}
	}

	if cur.form == motifForm {
		return nil
	}

	f := c.forms[cur.form]
	in := f.input(cur.field)
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if in.Value() != before {
		c.push(f, cur.field)
	}
	return cmd
}

func (c *ConfigureStep) selectMotif(idx int) {
	c.motifIdx = min(max(idx, 0), len(distribution.Motifs)-1)
	c.manager.SetMotif(distribution.Motifs[c.motifIdx])
}

func (c *ConfigureStep) cycleSendTime(f *cardForm) {
	idx := slices.Index(sendTimeCycle, f.sendTime)
	next := sendTimeCycle[(idx+1)%len(sendTimeCycle)]
	if err := c.manager.SetSendTime(f.id, next); err != nil {
		logger.Warn("Failed to set send time for card #%d: %v", f.id, err)
		return
	}
	f.sendTime = next
	f.scheduleErr = ""
	c.clampFocus()
}

func (c *ConfigureStep) focusField(form int, field formField) {
	for i, t := range c.targets() {
		if t.form == form && t.field == field {
			c.focus = i
			return
		}
	}
}

// push writes an edited input back through the manager.
func (c *ConfigureStep) push(f *cardForm, field formField) {
	var err error
	switch field {
	case fieldContact:
		target := distribution.FieldEmail
		if f.method == distribution.MethodSMS {
			target = distribution.FieldPhone
		}
		err = c.manager.UpdateConfig(f.id, target, f.contact.Value())
	case fieldName:
		err = c.manager.UpdateConfig(f.id, distribution.FieldName, f.name.Value())
	case fieldMessage:
		err = c.manager.UpdateConfig(f.id, distribution.FieldMessage, f.message.Value())
	case fieldDate, fieldClock:
		f.scheduleErr = ""
		date, clock := f.date.Value(), f.clock.Value()
		if err := c.manager.SetSchedule(f.id, date, clock); err != nil {
			f.scheduleErr = "Use a date like 2026-12-24 and a time like 09:00"
		}
		return
	}
	if err != nil {
		logger.Warn("Failed to update card #%d: %v", f.id, err)
	}
}

func (c *ConfigureStep) applyEditedMessage(msg MessageEditedMsg) {
	if c.tmpFile != "" {
		_ = os.Remove(c.tmpFile)
		c.tmpFile = ""
	}
	for _, f := range c.forms {
		if f.id == msg.CardID {
			f.message.SetValue(strings.TrimRight(msg.Content, "\r\n"))
			c.push(f, fieldMessage)
			return
		}
	}
}

// openEditor launches $EDITOR on the card's message.
func (c *ConfigureStep) openEditor(f *cardForm) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "giftdist_message_*.txt")
	if err != nil {
		logger.Warn("Failed to create message file: %v", err)
		return nil
	}
	if _, err := tmpfile.WriteString(f.message.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	c.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("giftdist", tmpfile.Name())
	if err != nil {
		logger.Warn("No editor available: %v", err)
		_ = os.Remove(tmpfile.Name())
		c.tmpFile = ""
		return nil
	}

	id := f.id
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return MessageEditedMsg{CardID: id, Content: string(content)}
	})
}

// View renders the configure step.
func (c *ConfigureStep) View() string {
	st := theme.Current().S()
	cur, _ := c.current()
	var b strings.Builder

	b.WriteString(st.Label.Render(fmt.Sprintf("%d digital and %d physical gift cards", len(c.forms), c.physical)))
	b.WriteString("\n\n")

	if c.physical > 0 {
		b.WriteString(st.Label.Render(fmt.Sprintf("Motif for %d physical cards", c.physical)))
		b.WriteString("\n")
		idx := c.motifIdx
		if !c.hasMotif() {
			idx = -1
		}
		b.WriteString(renderChips(distribution.Motifs, idx, cur.form == motifForm))
		b.WriteString("\n\n")
	}

	start, end := c.window(cur.form)
	if start > 0 {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  … %d above", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		f := c.forms[i]
		b.WriteString(c.summaryLine(f, i == cur.form))
		b.WriteString("\n")
		if i == cur.form {
			b.WriteString(c.formView(f, cur.field))
		}
	}
	if end < len(c.forms) {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  … %d below", len(c.forms)-end)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if os.Getenv("EDITOR") != "" {
		b.WriteString(renderHintBar(
			"tab", "next field",
			"ctrl+t", "send time",
			"ctrl+e", "edit message",
			"enter", "review",
			"esc", "back",
		))
	} else {
		b.WriteString(renderHintBar(
			"tab", "next field",
			"ctrl+t", "send time",
			"enter", "review",
			"esc", "back",
		))
	}
	return b.String()
}

func (c *ConfigureStep) hasMotif() bool {
	for _, card := range c.cards {
		if card.Method == distribution.MethodPhysical && card.Details.Physical != nil && card.Details.Physical.Motif != "" {
			return true
		}
	}
	return false
}

// window returns the range of forms listed around the focused one.
func (c *ConfigureStep) window(focused int) (int, int) {
	const around = 3
	if focused < 0 {
		focused = 0
	}
	start := max(focused-around, 0)
	end := min(start+2*around+1, len(c.forms))
	start = max(end-2*around-1, 0)
	return start, end
}

func (c *ConfigureStep) summaryLine(f *cardForm, focused bool) string {
	st := theme.Current().S()
	card := c.cards[f.id]

	status := st.Success.Render("✓")
	if !distribution.ValidateCardConfiguration(card).IsValid {
		status = st.Error.Render("✗")
	}
	contact := f.contact.Value()
	if contact == "" {
		contact = st.Muted.Render("no contact yet")
	}
	line := fmt.Sprintf("#%02d %s", f.id, card.Code)
	if focused {
		line = st.Selected.Render("▸ " + line)
	} else {
		line = st.Unselected.Render("  " + line)
	}
	return fmt.Sprintf("%s %s %s  %s", status, line, methodBadge(f.method), contact)
}

func (c *ConfigureStep) formView(f *cardForm, focused formField) string {
	st := theme.Current().S()
	var b strings.Builder

	label := func(field formField, text string) {
		if field == focused {
			b.WriteString("    " + st.Emphasis.Render(text))
		} else {
			b.WriteString("    " + st.Label.Render(text))
		}
		b.WriteString("\n    ")
	}

	if f.method == distribution.MethodEmail {
		label(fieldContact, "Email")
	} else {
		label(fieldContact, "Phone")
	}
	b.WriteString(f.contact.View() + "\n")
	label(fieldName, "Name")
	b.WriteString(f.name.View() + "\n")
	label(fieldMessage, fmt.Sprintf("Message (%d/%d)", utf8.RuneCountInString(f.message.Value()), distribution.MaxMessageLength))
	b.WriteString(f.message.View() + "\n")

	b.WriteString("    " + st.Label.Render("Send: ") + st.Emphasis.Render(sendTimeLabel(f.sendTime)) + "\n")
	if f.sendTime == distribution.SendScheduled {
		label(fieldDate, "Date and time")
		b.WriteString(f.date.View() + "  " + f.clock.View() + "\n")
		if f.scheduleErr != "" {
			b.WriteString("    " + renderErrors([]string{f.scheduleErr}) + "\n")
		}
	}

	if errs := distribution.ValidateCardConfiguration(c.cards[f.id]).Errors; len(errs) > 0 {
		for _, line := range strings.Split(renderErrors(errs), "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}

func sendTimeLabel(t distribution.SendTime) string {
	switch t {
	case distribution.SendTomorrow:
		return "tomorrow at " + distribution.DefaultScheduledTime
	case distribution.SendScheduled:
		return "scheduled"
	default:
		return "immediately"
	}
}

// FocusedCard returns the id of the card being edited, or 0 on the motif
// picker.
func (c *ConfigureStep) FocusedCard() int {
	cur, ok := c.current()
	if !ok || cur.form == motifForm {
		return 0
	}
	return c.forms[cur.form].id
}

// MessageEditedMsg is sent when the external editor returns a message.
type MessageEditedMsg struct {
	CardID  int
	Content string
}

