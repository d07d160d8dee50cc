package engine

import "github.com/starford/modsync/internal/models"

// Op is one of Install, Activate, Deactivate, Refresh or Reorder.
type Op interface {
	// Name is the operation's verb, used in logs and the journal.
	Name() string
	isOp()
}

// Install registers an unpacked package and projects it into the
// load-order document. A nil Metadata marks a pak-only package.
// With Update set, an installed mod only has its updated_at touched.
type Install struct {
	Metadata *models.PackageMetadata
	Update   bool
}

// Activate restores a deactivated mod from its backup fragment.
type Activate struct {
	Number int
}

// Deactivate cuts a mod out of the load-order document into a backup
// fragment.
type Deactivate struct {
	Number int
}

// Refresh imports entries added to the document externally and syncs the
// install flags with what the document actually contains.
type Refresh struct{}

// Reorder moves the selected mods and renumbers every mod 1..N.
type Reorder struct {
	Selected  []int
	Placement Placement
}

func (Install) Name() string    { return "install" }
func (Activate) Name() string   { return "activate" }
func (Deactivate) Name() string { return "deactivate" }
func (Refresh) Name() string    { return "refresh" }
func (Reorder) Name() string    { return "reorder" }

func (Install) isOp()    {}
func (Activate) isOp()   {}
func (Deactivate) isOp() {}
func (Refresh) isOp()    {}
func (Reorder) isOp()    {}

// Outcome classifies a successful operation.
type Outcome int

const (
	// Applied means the operation changed at least one store.
	Applied Outcome = iota
	// AlreadyInState means there was nothing to do.
	AlreadyInState
	// Skipped means the input was ignored, for example a pak-only package.
	Skipped
	// Cancelled means the user backed out before anything was written.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AlreadyInState:
		return "already_in_state"
	case Skipped:
		return "skipped"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result describes what an operation did.
type Result struct {
	Op      string
	Outcome Outcome
	// UUID and Name identify the mod the operation targeted, if any.
	UUID     string
	Name     string
	Message  string
	Warnings []string
	// Inactive is set when an update touched a mod that is deactivated.
	Inactive bool
	Refresh  *RefreshReport
}

// RefreshReport lists the registry rows each Refresh phase changed.
type RefreshReport struct {
	Imported []*models.ModEntry
	Disabled []*models.ModEntry
	Enabled  []*models.ModEntry
}

// Changes returns the total number of rows changed.
func (r *RefreshReport) Changes() int {
	if r == nil {
		return 0
	}
	return len(r.Imported) + len(r.Disabled) + len(r.Enabled)
}
