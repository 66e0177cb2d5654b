package manager

// AddOutcome is the result of an add transition.
type AddOutcome int

const (
	// AddOK means the tool was registered (and cloned when auto-install
	// is on).
	AddOK AddOutcome = iota
	// AddAlreadyManaged means the candidate shares a name with an
	// existing tool or sits inside a managed directory.
	AddAlreadyManaged
	// AddNestedManaged means the candidate directory contains
	// repositories that are already managed elsewhere in the registry.
	AddNestedManaged
	// AddMissingSource means a local candidate does not exist on disk.
	AddMissingSource
	// AddDestinationExists means auto-install found the clone target
	// directory already present.
	AddDestinationExists
	// AddCloneFailed means auto-install could not clone the repository.
	AddCloneFailed
	// AddSkipped means the user declined a required confirmation.
	AddSkipped
)

// InstallOutcome is the result of an install transition.
type InstallOutcome int

const (
	// InstallCloned means a fresh clone succeeded.
	InstallCloned InstallOutcome = iota
	// InstallReinstalled means the existing directory was deleted and the
	// repository cloned again.
	InstallReinstalled
	// InstallUpdated means the existing directory was updated in place.
	InstallUpdated
	// InstallUpToDate means update-in-place found nothing new.
	InstallUpToDate
	// InstallLeft means the user chose to leave the existing directory
	// unchanged.
	InstallLeft
	// InstallNotRepository means the tool is a local file; installing is
	// a no-op for those.
	InstallNotRepository
	// InstallFailed covers every other sync failure.
	InstallFailed
)

// UpdateOutcome is the result of an update transition.
type UpdateOutcome int

const (
	// UpdateOK means the pull brought in changes.
	UpdateOK UpdateOutcome = iota
	// UpdateUpToDate means the pull found nothing new.
	UpdateUpToDate
	// UpdateNotInstalled means the tool is not materialized on disk.
	UpdateNotInstalled
	// UpdateLocalSkipped flags the by-design no-op for local files, so
	// batch summaries can report it as skipped rather than failed.
	UpdateLocalSkipped
	// UpdateFailed covers every other sync failure.
	UpdateFailed
)

// Resolution is the caller's choice when an install finds the destination
// directory already present.
type Resolution int

const (
	// ResolutionKeep leaves the directory unchanged.
	ResolutionKeep Resolution = iota
	// ResolutionReinstall deletes the directory and clones again,
	// resetting both timestamps.
	ResolutionReinstall
	// ResolutionUpdateInPlace pulls into the existing directory; the
	// install date is set only if it was previously unset.
	ResolutionUpdateInPlace
)

// CollisionResolver decides how to resolve a destination-exists collision.
// Separating the decision from the transition keeps prompts out of the
// lifecycle logic; the CLI supplies an interactive resolver and assume-yes
// mode supplies a fixed one.
type CollisionResolver interface {
	Resolve(name, directory string) Resolution
}

// FixedResolution is a CollisionResolver that always answers the same way.
type FixedResolution Resolution

// Resolve implements CollisionResolver.
func (r FixedResolution) Resolve(string, string) Resolution { return Resolution(r) }

// Confirmer obtains consent for destructive or ambiguous actions.
type Confirmer interface {
	Confirm(prompt string, def bool) bool
}

// AssumeYes is a Confirmer that consents to everything.
type AssumeYes struct{}

// Confirm implements Confirmer.
func (AssumeYes) Confirm(string, bool) bool { return true }
