package participant

import "time"

// Status tags where a participant is on the registration path.
type Status string

const (
	StatusNew             Status = "NEW"
	StatusAwaitingName    Status = "AWAITING_NAME"
	StatusAwaitingPhone   Status = "AWAITING_PHONE"
	StatusAwaitingReceipt Status = "AWAITING_RECEIPT"
	StatusRegistered      Status = "REGISTERED"
)

var statusRank = map[Status]int{
	StatusNew:             0,
	StatusAwaitingName:    1,
	StatusAwaitingPhone:   2,
	StatusAwaitingReceipt: 3,
	StatusRegistered:      4,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Before reports whether s comes strictly earlier on the path than other.
// Unknown statuses rank below NEW.
func (s Status) Before(other Status) bool {
	return rank(s) < rank(other)
}

func rank(s Status) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// AttachmentKind is the kind of an uploaded proof of payment.
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
)

// Valid reports whether k is a supported attachment kind.
func (k AttachmentKind) Valid() bool {
	return k == AttachmentPhoto || k == AttachmentDocument
}

// Receipt is an opaque transport reference to the proof of payment.
type Receipt struct {
	Ref  string
	Kind AttachmentKind
}

// Record is the persisted registration of one participant.
type Record struct {
	ID        int64
	Handle    string
	FirstName string
	LastName  string
	Phone     string
	Status    Status
	Receipt   *Receipt
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasReceipt reports whether a proof of payment is attached.
func (r Record) HasReceipt() bool {
	return r.Receipt != nil && r.Receipt.Ref != ""
}

// FullName joins the captured name parts.
func (r Record) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
