package importer

// ImportedUser summarizes one account that was created or fully updated.
type ImportedUser struct {
	ID    int64
	Login string
	Email string
}

// Result reports one run: Listed is every local id considered "currently
// present" (the deactivation sweep's reference set), Imported is every
// account actually written.
type Result struct {
	Listed   []int64
	Imported []ImportedUser
}
