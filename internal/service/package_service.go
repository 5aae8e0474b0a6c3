package service

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"habitforge/internal/models"
)

// PackageService builds versioned offline packages: the published modules
// for the child's age, the badge catalog, and the current progress
// snapshot, stamped with a content checksum the device can verify after
// download.
type PackageService struct {
	modules  ModuleStore
	badges   BadgeStore
	progress ProgressStore
	children ChildStore
}

// NewPackageService creates a new package service
func NewPackageService(modules ModuleStore, badges BadgeStore, progress ProgressStore, children ChildStore) *PackageService {
	return &PackageService{
		modules:  modules,
		badges:   badges,
		progress: progress,
		children: children,
	}
}

// BuildOfflinePackage assembles a fresh package for the child. The package
// version is the child's current progress revision, so any accepted write
// after this build makes the package stale by comparison.
func (s *PackageService) BuildOfflinePackage(childID int64) (*models.OfflinePackage, error) {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, fmt.Errorf("%w: %d", ErrChildNotFound, childID)
	}

	modules, err := s.modules.ListPublishedForAge(child.Age)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	badges, err := s.badges.ListBadges()
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	progress, err := s.progress.GetChildProgress(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var version int64
	if progress != nil {
		version = progress.Revision
	}

	checksum, err := contentChecksum(modules, badges)
	if err != nil {
		return nil, err
	}

	return &models.OfflinePackage{
		PackageID: uuid.New().String(),
		ChildID:   childID,
		Version:   version,
		Modules:   modules,
		Badges:    badges,
		Progress:  progress,
		Checksum:  checksum,
		BuiltAt:   time.Now().UTC(),
	}, nil
}

// contentChecksum hashes the bundled content (not the progress snapshot,
// which changes on every sync) so devices can verify a download.
func contentChecksum(modules []models.ContentModule, badges []models.Badge) (string, error) {
	payload, err := json.Marshal(struct {
		Modules []models.ContentModule
		Badges  []models.Badge
	}{modules, badges})
	if err != nil {
		return "", fmt.Errorf("failed to encode package content: %w", err)
	}

	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
