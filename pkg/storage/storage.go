package storage

// ApiStore defines the complete set of operations needed by the API service
// and the domain engines built on top of it. Components should depend on
// the more granular interfaces where they can.
type ApiStore interface {
	Ledger
	WalletStore
	TransactionReader
}

// ReconciliationStore is the read-mostly surface used by the scheduled
// reconciliation job.
type ReconciliationStore interface {
	WalletStore
	TransactionReader
	TransactionJanitor
}

// Storage composes the entire data layer.
type Storage interface {
	Ledger
	WalletStore
	TransactionReader
	TransactionJanitor
	AuditStore
	WebSocketManager
}
