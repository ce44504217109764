package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzip"
	"github.com/tfkr-ae/launchbook/domain"
)

type recordedRequest struct {
	Header http.Header
	Body   graphQLRequest
}

// fakeServer is a GraphQL endpoint answering each operation with a canned body.
type fakeServer struct {
	mu        sync.Mutex
	responses map[string]string
	encoding  string
	status    int
	requests  []recordedRequest
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	var body graphQLRequest
	json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Header: r.Header.Clone(), Body: body})
	response := f.responses[body.OperationName]
	encoding := f.encoding
	status := f.status
	f.mu.Unlock()

	var buf bytes.Buffer
	switch encoding {
	case "br":
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte(response))
		bw.Close()
		w.Header().Set("Content-Encoding", "br")
	case "gzip":
		gw := gzip.NewWriter(&buf)
		gw.Write([]byte(response))
		gw.Close()
		w.Header().Set("Content-Encoding", "gzip")
	default:
		buf.WriteString(response)
	}

	if strings.HasPrefix(strings.TrimSpace(response), "{") {
		w.Header().Set("Content-Type", "application/json")
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (f *fakeServer) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("\nwanted:\na request\ngot:\nnone")
	}
	return f.requests[len(f.requests)-1]
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) GetToken() (string, error) {
	return s.token, s.err
}

func setupTestClient(t *testing.T, fake *fakeServer, options ...func(*Client) error) *Client {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/graphql", fake.handle).Methods(http.MethodPost)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := New(server.URL+"/graphql", options...)
	if err != nil {
		t.Fatalf("gateway.New() failed: %v", err)
	}
	return client
}

func assertKind(t *testing.T, err error, kind domain.Kind) *domain.Error {
	t.Helper()

	var gwErr *domain.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("\nwanted:\n*domain.Error\ngot:\n%T %v", err, err)
	}
	if gwErr.Kind != kind {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v (%v)", kind, gwErr.Kind, err)
	}
	return gwErr
}

const launchesResponse = `{"data":{"launches":{"launches":[
	{"id":"109","site":"CCAFS SLC 40","mission":{"name":"Starlink-15 (v1.0)","missionPatch":"https://images2.imgbox.com/9a/96/nLppz9HW_o.png"},"rocket":{"name":"Falcon 9","type":"FT"}},
	null,
	{"id":"108","site":null,"mission":null,"rocket":{"name":"Falcon 9","type":null}}
]}}}`

func TestNew(t *testing.T) {
	t.Run("should require an endpoint", func(t *testing.T) {
		_, err := New("")
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should reject an unknown fingerprint", func(t *testing.T) {
		_, err := New("https://example.com/graphql", WithTLSFingerprint("firefox"))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should reject a non positive timeout", func(t *testing.T) {
		_, err := New("https://example.com/graphql", WithTimeout(0))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should build a chrome transport with the configured timeout", func(t *testing.T) {
		client, err := New("https://example.com/graphql", WithTLSFingerprint(FingerprintChrome), WithTimeout(5*time.Second))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if client.httpClient.Timeout != 5*time.Second {
			t.Fatalf("\nwanted:\n5s\ngot:\n%v", client.httpClient.Timeout)
		}
		logging, ok := client.httpClient.Transport.(*loggingRoundTripper)
		if !ok {
			t.Fatalf("\nwanted:\n*loggingRoundTripper\ngot:\n%T", client.httpClient.Transport)
		}
		transport, ok := logging.base.(*http.Transport)
		if !ok || transport.DialTLSContext == nil {
			t.Fatalf("\nwanted:\nutls dialer\ngot:\n%T", logging.base)
		}
	})
}

func TestClient_GetLaunches(t *testing.T) {
	t.Run("should decode launches and keep null entries", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}}
		client := setupTestClient(t, fake)

		data, err := client.GetLaunches(context.Background())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		launches := data.Launches.Launches
		if len(launches) != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", len(launches))
		}
		if launches[1] != nil {
			t.Fatalf("\nwanted:\nnil entry\ngot:\n%+v", launches[1])
		}
		if launches[0].ID != "109" || *launches[0].Mission.Name != "Starlink-15 (v1.0)" {
			t.Fatalf("\nwanted:\nlaunch 109\ngot:\n%+v", launches[0])
		}
		if launches[2].Site != nil || launches[2].Mission != nil {
			t.Fatalf("\nwanted:\nnull site and mission\ngot:\n%+v", launches[2])
		}
	})

	t.Run("should send the operation with json and request id headers", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}}
		client := setupTestClient(t, fake)

		if _, err := client.GetLaunches(context.Background()); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		req := fake.last(t)
		if req.Body.OperationName != "GetLaunches" {
			t.Fatalf("\nwanted:\nGetLaunches\ngot:\n%s", req.Body.OperationName)
		}
		if !strings.Contains(req.Body.Query, "missionPatch(size: SMALL)") {
			t.Fatalf("\nwanted:\nsmall mission patch\ngot:\n%s", req.Body.Query)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("\nwanted:\napplication/json\ngot:\n%s", got)
		}
		id, err := uuid.Parse(req.Header.Get("X-Request-ID"))
		if err != nil {
			t.Fatalf("\nwanted:\nuuid\ngot:\n%v", err)
		}
		if id.Version() != 7 {
			t.Fatalf("\nwanted:\nversion 7\ngot:\n%d", id.Version())
		}
	})

	t.Run("should reuse the request id from the context", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}}
		client := setupTestClient(t, fake)

		want := uuid.New()
		if _, err := client.GetLaunches(ContextWithRequestID(context.Background(), want)); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got := fake.last(t).Header.Get("X-Request-ID"); got != want.String() {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})

	t.Run("should decode brotli and gzip bodies", func(t *testing.T) {
		for _, encoding := range []string{"br", "gzip"} {
			fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}, encoding: encoding}
			client := setupTestClient(t, fake)

			data, err := client.GetLaunches(context.Background())
			if err != nil {
				t.Fatalf("\nwanted:\nnil for %s\ngot:\n%v", encoding, err)
			}
			if len(data.Launches.Launches) != 3 {
				t.Fatalf("\nwanted:\n3 launches for %s\ngot:\n%d", encoding, len(data.Launches.Launches))
			}
			if got := fake.last(t).Header.Get("Accept-Encoding"); got != acceptEncoding {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", acceptEncoding, got)
			}
		}
	})
}

func TestClient_Authorization(t *testing.T) {
	t.Run("should send the token verbatim", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}}
		client := setupTestClient(t, fake, WithTokenSource(staticTokens{token: "dXNlckBleGFtcGxlLmNvbQ=="}))

		if _, err := client.GetLaunches(context.Background()); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got := fake.last(t).Header.Get("Authorization"); got != "dXNlckBleGFtcGxlLmNvbQ==" {
			t.Fatalf("\nwanted:\nraw token\ngot:\n%q", got)
		}
	})

	t.Run("should send no header without a token", func(t *testing.T) {
		sources := []TokenSource{
			nil,
			staticTokens{err: domain.ErrSecretNotFound},
			staticTokens{err: errors.New("disk on fire")},
			staticTokens{token: ""},
		}
		for _, source := range sources {
			fake := &fakeServer{responses: map[string]string{"GetLaunches": launchesResponse}}
			client := setupTestClient(t, fake, WithTokenSource(source))

			if _, err := client.GetLaunches(context.Background()); err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if _, ok := fake.last(t).Header["Authorization"]; ok {
				t.Fatalf("\nwanted:\nno Authorization header\ngot:\n%q", fake.last(t).Header.Get("Authorization"))
			}
		}
	})
}

func TestClient_Mutations(t *testing.T) {
	t.Run("should send variables for each mutation", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{
			"Login":      `{"data":{"login":{"id":"1","token":"dG9rZW4="}}}`,
			"BookTrips":  `{"data":{"bookTrips":{"success":true,"message":"trips booked successfully","launches":[{"id":"109"},null]}}}`,
			"CancelTrip": `{"data":{"cancelTrip":{"success":true,"message":null,"launches":[{"id":"109"}]}}}`,
		}}
		client := setupTestClient(t, fake)
		ctx := context.Background()

		loginData, err := client.Login(ctx, "user@example.com")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if loginData.Login.ID != "1" || *loginData.Login.Token != "dG9rZW4=" {
			t.Fatalf("\nwanted:\nuser 1\ngot:\n%+v", loginData.Login)
		}
		if got := fake.last(t).Body.Variables["email"]; got != "user@example.com" {
			t.Fatalf("\nwanted:\nuser@example.com\ngot:\n%v", got)
		}

		bookData, err := client.BookTrips(ctx, []string{"109", "110"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !bookData.BookTrips.Success || len(bookData.BookTrips.Launches) != 2 {
			t.Fatalf("\nwanted:\nsuccess with 2 entries\ngot:\n%+v", bookData.BookTrips)
		}
		ids, _ := fake.last(t).Body.Variables["launchIds"].([]any)
		if len(ids) != 2 || ids[0] != "109" || ids[1] != "110" {
			t.Fatalf("\nwanted:\n[109 110]\ngot:\n%v", fake.last(t).Body.Variables["launchIds"])
		}

		cancelData, err := client.CancelTrip(ctx, "109")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if cancelData.CancelTrip.Message != nil {
			t.Fatalf("\nwanted:\nnil message\ngot:\n%v", *cancelData.CancelTrip.Message)
		}
		if got := fake.last(t).Body.Variables["launchId"]; got != "109" {
			t.Fatalf("\nwanted:\n109\ngot:\n%v", got)
		}
	})

	t.Run("should decode a null login payload", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"Login": `{"data":{"login":null}}`}}
		client := setupTestClient(t, fake)

		data, err := client.Login(context.Background(), "user@example.com")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if data.Login != nil {
			t.Fatalf("\nwanted:\nnil login\ngot:\n%+v", data.Login)
		}
	})
}

func TestClient_Errors(t *testing.T) {
	t.Run("should report the first graphql error message", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{
			"GetLaunchDetail": `{"data":null,"errors":[{"message":"first"},{"message":"second"}]}`,
		}}
		client := setupTestClient(t, fake)

		_, err := client.GetLaunchDetail(context.Background(), "109")
		gwErr := assertKind(t, err, domain.KindGraphQL)
		if gwErr.Message != "first" {
			t.Fatalf("\nwanted:\nfirst\ngot:\n%s", gwErr.Message)
		}
	})

	t.Run("should fall back to the operation default message", func(t *testing.T) {
		cases := map[string]string{
			"GetLaunches": "Unknown GraphQL error",
			"Login":       "Login failed",
			"BookTrips":   "Booking failed",
			"CancelTrip":  "Cancellation failed",
		}
		responses := make(map[string]string)
		for op := range cases {
			responses[op] = `{"errors":[{"message":""}]}`
		}
		fake := &fakeServer{responses: responses}
		client := setupTestClient(t, fake)
		ctx := context.Background()

		calls := map[string]func() error{
			"GetLaunches": func() error { _, err := client.GetLaunches(ctx); return err },
			"Login":       func() error { _, err := client.Login(ctx, "a@b.co"); return err },
			"BookTrips":   func() error { _, err := client.BookTrips(ctx, []string{"1"}); return err },
			"CancelTrip":  func() error { _, err := client.CancelTrip(ctx, "1"); return err },
		}
		for op, want := range cases {
			gwErr := assertKind(t, calls[op](), domain.KindGraphQL)
			if gwErr.Message != want {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, gwErr.Message)
			}
		}
	})

	t.Run("should report null data as an empty payload", func(t *testing.T) {
		fake := &fakeServer{responses: map[string]string{"GetLaunches": `{"data":null}`}}
		client := setupTestClient(t, fake)

		_, err := client.GetLaunches(context.Background())
		gwErr := assertKind(t, err, domain.KindEmptyPayload)
		if gwErr.Message != "No data received" {
			t.Fatalf("\nwanted:\nNo data received\ngot:\n%s", gwErr.Message)
		}
	})

	t.Run("should report a non json body as a transport error with its content type", func(t *testing.T) {
		fake := &fakeServer{
			responses: map[string]string{"GetLaunches": "<html><body>Application Error</body></html>"},
			status:    http.StatusServiceUnavailable,
		}
		client := setupTestClient(t, fake)

		_, err := client.GetLaunches(context.Background())
		assertKind(t, err, domain.KindTransport)
		if !strings.Contains(err.Error(), "text/html") || !strings.Contains(err.Error(), "503") {
			t.Fatalf("\nwanted:\nstatus and sniffed type\ngot:\n%v", err)
		}
	})

	t.Run("should report an error status without graphql errors as transport", func(t *testing.T) {
		fake := &fakeServer{
			responses: map[string]string{"GetLaunches": `{"data":null}`},
			status:    http.StatusInternalServerError,
		}
		client := setupTestClient(t, fake)

		_, err := client.GetLaunches(context.Background())
		assertKind(t, err, domain.KindTransport)
	})

	t.Run("should report a network failure as transport", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		client, err := New(endpoint)
		if err != nil {
			t.Fatalf("gateway.New() failed: %v", err)
		}

		_, err = client.GetLaunches(context.Background())
		assertKind(t, err, domain.KindTransport)
		if !errors.Is(err, domain.ErrTransport) {
			t.Fatalf("\nwanted:\nerrors.Is ErrTransport\ngot:\n%v", err)
		}
	})
}

func TestReadBody(t *testing.T) {
	t.Run("should reject an unknown encoding", func(t *testing.T) {
		_, err := readBody(strings.NewReader("{}"), "zstd")
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should pass identity bodies through", func(t *testing.T) {
		data, err := readBody(io.NopCloser(strings.NewReader(`{"data":{}}`)), "identity")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if string(data) != `{"data":{}}` {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", `{"data":{}}`, data)
		}
	})

	t.Run("should describe an empty body", func(t *testing.T) {
		if got := sniff(nil); got != "empty body" {
			t.Fatalf("\nwanted:\nempty body\ngot:\n%s", got)
		}
	})
}
