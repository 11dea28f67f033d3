package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// PaymentMethod – immutable value object
// ---------------------------------------------------------------------------

// PaymentMethod is the channel through which a collection was received.
type PaymentMethod struct {
	value string
}

const (
	paymentMethodCash     = "CASH"
	paymentMethodCard     = "CARD"
	paymentMethodTransfer = "TRANSFER"
	paymentMethodYape     = "YAPE"
	paymentMethodPlin     = "PLIN"
)

var (
	PaymentMethodCash     = PaymentMethod{value: paymentMethodCash}
	PaymentMethodCard     = PaymentMethod{value: paymentMethodCard}
	PaymentMethodTransfer = PaymentMethod{value: paymentMethodTransfer}
	PaymentMethodYape     = PaymentMethod{value: paymentMethodYape}
	PaymentMethodPlin     = PaymentMethod{value: paymentMethodPlin}
)

var validPaymentMethods = map[string]PaymentMethod{
	paymentMethodCash:     PaymentMethodCash,
	paymentMethodCard:     PaymentMethodCard,
	paymentMethodTransfer: PaymentMethodTransfer,
	paymentMethodYape:     PaymentMethodYape,
	paymentMethodPlin:     PaymentMethodPlin,
}

// NewPaymentMethod creates a PaymentMethod from a raw string.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	v, ok := validPaymentMethods[s]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

// String returns the string representation of the method.
func (m PaymentMethod) String() string { return m.value }

// IsZero returns true if the method has not been initialised.
func (m PaymentMethod) IsZero() bool { return m.value == "" }

// Equal returns true when both methods carry the same value.
func (m PaymentMethod) Equal(other PaymentMethod) bool { return m.value == other.value }

// ---------------------------------------------------------------------------
// AdjustmentType – immutable value object
// ---------------------------------------------------------------------------

// AdjustmentType classifies a manual penalty adjustment.
type AdjustmentType struct {
	value string
}

const (
	adjustmentReduce    = "REDUCE"
	adjustmentEliminate = "ELIMINATE"
	adjustmentModify    = "MODIFY"
)

var (
	AdjustmentReduce    = AdjustmentType{value: adjustmentReduce}
	AdjustmentEliminate = AdjustmentType{value: adjustmentEliminate}
	AdjustmentModify    = AdjustmentType{value: adjustmentModify}
)

var validAdjustmentTypes = map[string]AdjustmentType{
	adjustmentReduce:    AdjustmentReduce,
	adjustmentEliminate: AdjustmentEliminate,
	adjustmentModify:    AdjustmentModify,
}

// NewAdjustmentType creates an AdjustmentType from a raw string.
func NewAdjustmentType(s string) (AdjustmentType, error) {
	v, ok := validAdjustmentTypes[s]
	if !ok {
		return AdjustmentType{}, fmt.Errorf("invalid adjustment type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (a AdjustmentType) String() string { return a.value }

// IsZero returns true if the type has not been initialised.
func (a AdjustmentType) IsZero() bool { return a.value == "" }

// Equal returns true when both types carry the same value.
func (a AdjustmentType) Equal(other AdjustmentType) bool { return a.value == other.value }
