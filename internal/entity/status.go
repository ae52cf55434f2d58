package domain

// Status is the persisted checkout status. EXPIRED is written only by the
// expiry reconciler; readers normally see it through EffectiveStatus before
// any write happens.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusExpired
}

func (s Status) String() string {
	return string(s)
}
