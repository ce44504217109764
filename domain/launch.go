package domain

import "time"

// Launch is a single launch as shown in lists. Empty strings mean the remote
// did not report the field.
type Launch struct {
	ID           string // Unique identifier of the launch.
	Site         string // Launch site name.
	MissionName  string // Name of the mission.
	MissionPatch string // Image URL of the mission patch.
	RocketName   string // Name of the rocket.
	RocketType   string // Type of the rocket.
}

// DisplayName returns the mission name, or "Launch" when the mission is unnamed.
func (l Launch) DisplayName() string {
	if l.MissionName == "" {
		return "Launch"
	}
	return l.MissionName
}

// LaunchDetail is the full view of a launch, fetched per id and never cached.
type LaunchDetail struct {
	ID           string
	Site         string
	MissionName  string
	MissionPatch string
	RocketID     string
	RocketName   string
	RocketType   string
	IsBooked     bool // Whether the server reports the launch as booked by the current user.
}

// Launch returns the list projection of the detail.
func (d LaunchDetail) Launch() Launch {
	return Launch{
		ID:           d.ID,
		Site:         d.Site,
		MissionName:  d.MissionName,
		MissionPatch: d.MissionPatch,
		RocketName:   d.RocketName,
		RocketType:   d.RocketType,
	}
}

// FavoriteRecord is the persisted projection of a favorited Launch.
// The existence of the record is the favorite flag.
type FavoriteRecord struct {
	ID           string
	Site         string
	MissionName  string
	MissionPatch string
	RocketName   string
	RocketType   string
	IsFavorite   bool      // Always true while the record exists.
	AddedAt      time.Time // When the launch was favorited.
}
