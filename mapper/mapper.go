// Package mapper converts gateway payloads and stored records into domain values.
// Every function is pure; absent optional fields become empty strings.
package mapper

import (
	"time"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/gateway"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToLaunch maps a launch list entry.
func ToLaunch(item *gateway.LaunchItem) domain.Launch {
	launch := domain.Launch{
		ID:   item.ID,
		Site: deref(item.Site),
	}
	if item.Mission != nil {
		launch.MissionName = deref(item.Mission.Name)
		launch.MissionPatch = deref(item.Mission.MissionPatch)
	}
	if item.Rocket != nil {
		launch.RocketName = deref(item.Rocket.Name)
		launch.RocketType = deref(item.Rocket.Type)
	}
	return launch
}

// ToLaunches maps the non-nil entries of items, keeping their order.
func ToLaunches(items []*gateway.LaunchItem) []domain.Launch {
	launches := make([]domain.Launch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		launches = append(launches, ToLaunch(item))
	}
	return launches
}

// ToLaunchDetail maps a launch detail payload.
func ToLaunchDetail(item *gateway.LaunchDetailItem) *domain.LaunchDetail {
	detail := &domain.LaunchDetail{
		ID:       item.ID,
		Site:     deref(item.Site),
		IsBooked: item.IsBooked,
	}
	if item.Mission != nil {
		detail.MissionName = deref(item.Mission.Name)
		detail.MissionPatch = deref(item.Mission.MissionPatch)
	}
	if item.Rocket != nil {
		detail.RocketID = deref(item.Rocket.ID)
		detail.RocketName = deref(item.Rocket.Name)
		detail.RocketType = deref(item.Rocket.Type)
	}
	return detail
}

// ToLoginResult maps a login payload. A nil user maps to nil and a missing token to "".
func ToLoginResult(user *gateway.User) *domain.LoginResult {
	if user == nil {
		return nil
	}
	return &domain.LoginResult{
		UserID: user.ID,
		Token:  deref(user.Token),
	}
}

// ToBookingResult maps a book or cancel payload, dropping null launch entries.
func ToBookingResult(response *gateway.TripUpdateResponse) *domain.BookingResult {
	result := &domain.BookingResult{
		Success:   response.Success,
		Message:   deref(response.Message),
		LaunchIDs: make([]string, 0, len(response.Launches)),
	}
	for _, launch := range response.Launches {
		if launch == nil {
			continue
		}
		result.LaunchIDs = append(result.LaunchIDs, launch.ID)
	}
	return result
}

// ToFavoriteRecord projects a launch into a favorite record added at addedAt.
func ToFavoriteRecord(launch domain.Launch, addedAt time.Time) *domain.FavoriteRecord {
	return &domain.FavoriteRecord{
		ID:           launch.ID,
		Site:         launch.Site,
		MissionName:  launch.MissionName,
		MissionPatch: launch.MissionPatch,
		RocketName:   launch.RocketName,
		RocketType:   launch.RocketType,
		IsFavorite:   true,
		AddedAt:      addedAt,
	}
}

// FromFavoriteRecord turns a favorite record back into a launch.
func FromFavoriteRecord(record *domain.FavoriteRecord) domain.Launch {
	return domain.Launch{
		ID:           record.ID,
		Site:         record.Site,
		MissionName:  record.MissionName,
		MissionPatch: record.MissionPatch,
		RocketName:   record.RocketName,
		RocketType:   record.RocketType,
	}
}

// FromFavoriteRecords maps the non-nil records, keeping their order.
func FromFavoriteRecords(records []*domain.FavoriteRecord) []domain.Launch {
	launches := make([]domain.Launch, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		launches = append(launches, FromFavoriteRecord(record))
	}
	return launches
}
