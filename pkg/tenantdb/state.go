package tenantdb

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the active connection context of a Switcher.
type State uint8

const (
	// StateCentral is both the initial and the terminal state of every request.
	StateCentral State = iota
	// StateTenantActive means a verified tenant connection is the default target.
	StateTenantActive
)

func (s State) String() string {
	switch s {
	case StateCentral:
		return "central"
	case StateTenantActive:
		return "tenant_active"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type event uint8

const (
	eventActivateTenant event = iota + 1
	eventRestoreCentral
)

// transitions maps every (state, event) pair to its target state.
var transitions = map[State]map[event]State{
	StateCentral: {
		eventActivateTenant: StateTenantActive,
		eventRestoreCentral: StateCentral,
	},
	StateTenantActive: {
		eventActivateTenant: StateTenantActive,
		eventRestoreCentral: StateCentral,
	},
}

// activeContext is the single-valued connection context of one Switcher.
// conn is nil while central is being (re)established.
type activeContext struct {
	state    State
	key      string
	database string
	tenantID uuid.UUID
	conn     Conn
}

// fire returns the target state of ev. The table is total: both states may
// switch to a tenant and both may restore central, so a missing entry is a
// programming error.
func (a *activeContext) fire(ev event) State {
	to, ok := transitions[a.state][ev]
	if !ok {
		panic(fmt.Sprintf("tenantdb: no transition for event %d in state %s", ev, a.state))
	}
	return to
}

func (a *activeContext) activateTenant(tenantID uuid.UUID, database string, conn Conn) {
	*a = activeContext{state: a.fire(eventActivateTenant), key: database, database: database, tenantID: tenantID, conn: conn}
}

// restoreCentral moves to central immediately. conn may be nil when the
// central connection could not be established; the tenant target is dropped
// regardless.
func (a *activeContext) restoreCentral(database string, conn Conn) {
	*a = activeContext{state: a.fire(eventRestoreCentral), key: CentralKey, database: database, conn: conn}
}
