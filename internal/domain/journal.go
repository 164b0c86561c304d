package domain

// Ledger action names as recorded in the journal.
const (
	ActionCreate   = "create"
	ActionIssue    = "issue"
	ActionRetire   = "retire"
	ActionTransfer = "transfer"
	ActionOpen     = "open"
	ActionClose    = "close"
	ActionFreeze   = "freeze"
	ActionUnfreeze = "unfreeze"
	ActionPause    = "pause"
	ActionUnpause  = "unpause"
)

// ActionRecord is one applied ledger action, appended to the journal after
// the action has fully committed. The journal is append-only.
type ActionRecord struct {
	ID         string      // deterministic hash of the record fields
	Seq        uint64      // position in the action sequence, starts at 1
	Action     string      // one of the Action* constants
	SymbolCode string      // affected symbol code, empty for freeze/unfreeze
	From       AccountName // acting/source account, empty where not applicable
	To         AccountName // target account, empty where not applicable
	Quantity   int64       // integer amount in smallest units, 0 where not applicable
	Precision  uint8       // precision of Quantity
	Memo       string      // caller-supplied memo, max 256 bytes
	AppliedAt  int64       // Unix timestamp in milliseconds
}
