package testfixtures

import (
	"time"

	"github.com/mark3labs/giftdist/internal/distribution"
)

// Fixed test values for consistent output
const (
	FixedBatchLabel = "test"
	FixedFaceValue  = 500
)

var (
	FixedTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
)

// Wizard bundles the collaborators every wizard screen needs.
type Wizard struct {
	Store     *distribution.Store
	Manager   *distribution.Manager
	Navigator *distribution.Navigator
}

// NewWizard returns a fresh store with its manager and navigator.
func NewWizard() Wizard {
	store := distribution.NewStore()
	manager := distribution.NewManager(store)
	return Wizard{
		Store:     store,
		Manager:   manager,
		Navigator: distribution.NewNavigator(store, manager),
	}
}

// AtMethods returns a wizard on the method step with count unset cards.
func AtMethods(count int) Wizard {
	w := NewWizard()
	_ = w.Manager.SetBatchSize(count)
	_ = w.Manager.SetFaceValue(FixedFaceValue)
	_, _ = w.Navigator.Next()
	return w
}

// AtConfigure returns a wizard on the configuration step holding one card
// per delivery method plus one unselected card.
func AtConfigure() Wizard {
	w := AtMethods(4)
	w.Manager.SelectMethod(1, distribution.MethodPhysical)
	w.Manager.SelectMethod(2, distribution.MethodEmail)
	w.Manager.SelectMethod(3, distribution.MethodSMS)
	_, _ = w.Navigator.Next()
	return w
}

// AtConfirm returns a wizard whose configuration is complete, ready for the
// confirmation modal.
func AtConfirm() Wizard {
	w := AtConfigure()
	_ = w.Manager.UpdateConfig(2, distribution.FieldEmail, "kari@example.no")
	_ = w.Manager.UpdateConfig(2, distribution.FieldName, "Kari")
	_ = w.Manager.UpdateConfig(3, distribution.FieldPhone, "91234567")
	w.Manager.SetMotif("christmas")
	return w
}
