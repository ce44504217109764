package repository

import (
	"context"
	"sync"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/gateway"
)

func ptr(s string) *string {
	return &s
}

type fakeGateway struct {
	mu sync.Mutex

	launches     *gateway.LaunchesData
	launchDetail *gateway.LaunchDetailData
	login        *gateway.LoginData
	bookTrips    *gateway.BookTripsData
	cancelTrip   *gateway.CancelTripData
	err          error

	calls      map[string]int
	lastEmail  string
	lastIDs    []string
	lastCancel string
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) GetLaunches(ctx context.Context) (*gateway.LaunchesData, error) {
	f.record("GetLaunches")
	return f.launches, f.err
}

func (f *fakeGateway) GetLaunchDetail(ctx context.Context, id string) (*gateway.LaunchDetailData, error) {
	f.record("GetLaunchDetail")
	return f.launchDetail, f.err
}

func (f *fakeGateway) Login(ctx context.Context, email string) (*gateway.LoginData, error) {
	f.record("Login")
	f.lastEmail = email
	return f.login, f.err
}

func (f *fakeGateway) BookTrips(ctx context.Context, ids []string) (*gateway.BookTripsData, error) {
	f.record("BookTrips")
	f.lastIDs = ids
	return f.bookTrips, f.err
}

func (f *fakeGateway) CancelTrip(ctx context.Context, id string) (*gateway.CancelTripData, error) {
	f.record("CancelTrip")
	f.lastCancel = id
	return f.cancelTrip, f.err
}

// memorySecrets is a SecretStore kept in a map.
type memorySecrets struct {
	mu      sync.Mutex
	values  map[string]string
	saveErr error
}

func newMemorySecrets() *memorySecrets {
	return &memorySecrets{values: make(map[string]string)}
}

func (m *memorySecrets) put(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.values[name] = value
	return nil
}

func (m *memorySecrets) get(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[name]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return value, nil
}

func (m *memorySecrets) SaveToken(token string) error { return m.put("token", token) }
func (m *memorySecrets) GetToken() (string, error) { return m.get("token") }
func (m *memorySecrets) SaveUserID(userID string) error { return m.put("user_id", userID) }
func (m *memorySecrets) GetUserID() (string, error) { return m.get("user_id") }
func (m *memorySecrets) SaveUserEmail(email string) error { return m.put("email", email) }
func (m *memorySecrets) GetUserEmail() (string, error) { return m.get("email") }

func (m *memorySecrets) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}

func (m *memorySecrets) HasToken() (bool, error) {
	token, err := m.GetToken()
	if err != nil {
		return false, nil
	}
	return token != "", nil
}

func (m *memorySecrets) IsAuthenticated() (bool, error) {
	hasToken, _ := m.HasToken()
	if !hasToken {
		return false, nil
	}
	_, err := m.GetUserID()
	return err == nil, nil
}

var _ domain.SecretStore = (*memorySecrets)(nil)
