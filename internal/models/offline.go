package models

import "time"

// OfflinePackage is a versioned bundle of content handed to a device so a
// child can keep working without connectivity. Version equals the child's
// progress revision at build time; Checksum covers the bundled content so
// the device can verify a download.
type OfflinePackage struct {
	PackageID string
	ChildID   int64
	Version   int64
	Modules   []ContentModule
	Badges    []Badge
	Progress  *ChildProgress
	Checksum  string
	BuiltAt   time.Time
}

// PendingCompletion is one locally recorded, not-yet-acknowledged activity
// completion queued on a device. CompletedOn is the device-local calendar
// date, used for streak dating after sync.
type PendingCompletion struct {
	ModuleID    int64     `json:"module_id"`
	ActivityID  int64     `json:"activity_id"`
	CompletedOn time.Time `json:"completed_on"`
}

// LocalSnapshot is the device's view at sync time: the package version it
// holds, the module versions bundled into it, and the queue of completions
// recorded while offline.
type LocalSnapshot struct {
	PackageVersion int64               `json:"package_version"`
	ModuleVersions map[int64]int       `json:"module_versions"`
	Pending        []PendingCompletion `json:"pending"`
}

// SyncConflict describes a divergence between local and server state that
// could not be resolved by simple union merge, together with how it was
// resolved.
type SyncConflict struct {
	ModuleID   int64     `json:"module_id"`
	ActivityID int64     `json:"activity_id"`
	LocalDate  time.Time `json:"local_date"`
	ServerDate time.Time `json:"server_date"`
	Resolution string    `json:"resolution"`
}

// UpdateInfo tells the device which of its cached modules are stale.
type UpdateInfo struct {
	OutdatedModules []int64 `json:"outdated_modules"`
}

// SyncResult is the outcome of reconciling a local snapshot against server
// state.
type SyncResult struct {
	Success    bool               `json:"success"`
	Applied    int                `json:"applied"`
	Duplicates int                `json:"duplicates"`
	Sessions   []*WorkshopSession `json:"sessions"`
	Progress   *ChildProgress     `json:"progress"`
	Conflicts  []SyncConflict     `json:"conflicts"`
	Updates    UpdateInfo         `json:"updates"`
	Package    *OfflinePackage    `json:"package"`
}
