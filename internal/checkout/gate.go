package checkout

// State is the authentication state the gate evaluates a finalize intent in.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

func StateFor(authenticated bool) State {
	if authenticated {
		return Authenticated
	}
	return Anonymous
}

// Signal tells the presentation layer what to do after a finalize intent.
type Signal int

const (
	ProceedToCheckout Signal = iota + 1
	RequestAuthentication
)

func (s Signal) String() string {
	switch s {
	case ProceedToCheckout:
		return "proceed_to_checkout"
	case RequestAuthentication:
		return "request_authentication"
	default:
		return "unknown"
	}
}

// Clearer is the part of the cart store the gate needs.
type Clearer interface {
	Clear()
}

// Gate intercepts finalize intents from shoppers who are not signed in.
//
// An anonymous finalize clears the cart before asking the shopper to
// authenticate; the cart is not carried across the login step. This is
// current product behavior and stays until it is explicitly revisited.
// Add, remove and quantity changes never pass through the gate.
type Gate struct {
	cart Clearer
}

func NewGate(cart Clearer) *Gate {
	return &Gate{cart: cart}
}

func (g *Gate) Finalize(authenticated bool) Signal {
	if StateFor(authenticated) == Authenticated {
		return ProceedToCheckout
	}
	g.cart.Clear()
	return RequestAuthentication
}
