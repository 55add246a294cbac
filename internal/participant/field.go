package participant

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a Field carries a kind the store cannot apply.
var ErrUnknownField = errors.New("participant: unknown field kind")

// ErrNotFound is returned by SetFields when the record does not exist, for
// example because an admin deleted it. Nothing is written.
var ErrNotFound = errors.New("participant: record not found")

// FieldKind enumerates the mutable parts of a Record.
type FieldKind int

const (
	FieldName FieldKind = iota + 1
	FieldPhone
	FieldReceipt
	FieldStatus
)

func (k FieldKind) String() string {
	switch k {
	case FieldName:
		return "name"
	case FieldPhone:
		return "phone"
	case FieldReceipt:
		return "receipt"
	case FieldStatus:
		return "status"
	}
	return fmt.Sprintf("field(%d)", int(k))
}

// Field is a single typed mutation. Build it with Name, Phone, ReceiptOf or StatusOf.
type Field struct {
	Kind    FieldKind
	First   string
	Last    string
	Phone   string
	Receipt Receipt
	Status  Status
}

// Name sets both name parts at once.
func Name(first, last string) Field {
	return Field{Kind: FieldName, First: first, Last: last}
}

// Phone sets the phone number.
func Phone(phone string) Field {
	return Field{Kind: FieldPhone, Phone: phone}
}

// ReceiptOf sets the receipt reference together with its kind.
func ReceiptOf(ref string, kind AttachmentKind) Field {
	return Field{Kind: FieldReceipt, Receipt: Receipt{Ref: ref, Kind: kind}}
}

// StatusOf advances the lifecycle status.
func StatusOf(s Status) Field {
	return Field{Kind: FieldStatus, Status: s}
}

func (f Field) validate() error {
	switch f.Kind {
	case FieldName, FieldPhone:
		return nil
	case FieldReceipt:
		if f.Receipt.Ref == "" {
			return fmt.Errorf("participant: empty receipt reference")
		}
		if !f.Receipt.Kind.Valid() {
			return fmt.Errorf("participant: invalid receipt kind %q", f.Receipt.Kind)
		}
		return nil
	case FieldStatus:
		if !f.Status.Valid() {
			return fmt.Errorf("participant: invalid status %q", f.Status)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, f.Kind)
}
