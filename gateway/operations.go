package gateway

// Operation is a named GraphQL document sent to the endpoint.
type Operation struct {
	Name     string // operationName sent with the request.
	Document string // GraphQL query or mutation text.
	Fallback string // Message used when the server reports errors without a message.
}

var (
	getLaunches = Operation{
		Name: "GetLaunches",
		Document: `query GetLaunches {
  launches {
    launches {
      id
      site
      mission { name missionPatch(size: SMALL) }
      rocket { name type }
    }
  }
}`,
		Fallback: "Unknown GraphQL error",
	}

	getLaunchDetail = Operation{
		Name: "GetLaunchDetail",
		Document: `query GetLaunchDetail($id: ID!) {
  launch(id: $id) {
    id
    site
    mission { name missionPatch(size: LARGE) }
    rocket { id name type }
    isBooked
  }
}`,
		Fallback: "Unknown GraphQL error",
	}

	login = Operation{
		Name: "Login",
		Document: `mutation Login($email: String!) {
  login(email: $email) { id token }
}`,
		Fallback: "Login failed",
	}

	bookTrips = Operation{
		Name: "BookTrips",
		Document: `mutation BookTrips($launchIds: [ID]!) {
  bookTrips(launchIds: $launchIds) { success message launches { id } }
}`,
		Fallback: "Booking failed",
	}

	cancelTrip = Operation{
		Name: "CancelTrip",
		Document: `mutation CancelTrip($launchId: ID!) {
  cancelTrip(launchId: $launchId) { success message launches { id } }
}`,
		Fallback: "Cancellation failed",
	}
)

// Mission is the mission part of a launch.
type Mission struct {
	Name         *string `json:"name"`
	MissionPatch *string `json:"missionPatch"`
}

// Rocket is the rocket part of a launch.
type Rocket struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// LaunchItem is one entry of the launches list.
type LaunchItem struct {
	ID      string   `json:"id"`
	Site    *string  `json:"site"`
	Mission *Mission `json:"mission"`
	Rocket  *Rocket  `json:"rocket"`
}

// LaunchConnection is the paged launches container.
type LaunchConnection struct {
	Launches []*LaunchItem `json:"launches"`
}

// LaunchesData is the data payload of GetLaunches.
type LaunchesData struct {
	Launches *LaunchConnection `json:"launches"`
}

// LaunchDetailItem is the launch returned by GetLaunchDetail.
type LaunchDetailItem struct {
	ID       string   `json:"id"`
	Site     *string  `json:"site"`
	Mission  *Mission `json:"mission"`
	Rocket   *Rocket  `json:"rocket"`
	IsBooked bool     `json:"isBooked"`
}

// LaunchDetailData is the data payload of GetLaunchDetail.
type LaunchDetailData struct {
	Launch *LaunchDetailItem `json:"launch"`
}

// User is the login payload.
type User struct {
	ID    string  `json:"id"`
	Token *string `json:"token"`
}

// LoginData is the data payload of Login. Login is nil when the server rejected the email.
type LoginData struct {
	Login *User `json:"login"`
}

// LaunchRef is a launch referenced by id only.
type LaunchRef struct {
	ID string `json:"id"`
}

// TripUpdateResponse is the payload shared by BookTrips and CancelTrip.
type TripUpdateResponse struct {
	Success  bool         `json:"success"`
	Message  *string      `json:"message"`
	Launches []*LaunchRef `json:"launches"`
}

// BookTripsData is the data payload of BookTrips.
type BookTripsData struct {
	BookTrips *TripUpdateResponse `json:"bookTrips"`
}

// CancelTripData is the data payload of CancelTrip.
type CancelTripData struct {
	CancelTrip *TripUpdateResponse `json:"cancelTrip"`
}
