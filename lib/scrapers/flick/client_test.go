package flick

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flickprice/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "someone@example.com"
	testPassword = "hunter2"
	testToken    = "tok-5d41402abc"
	testProps    = `{"currentPeriod":{"price":{"value":23.45},"end_at":"2024-01-01T00:00:00Z"}}`
)

// fakeFlick mimics the dashboard/sign-in endpoint pair: the dashboard
// redirects unauthenticated sessions to the sign-in form, the form
// requires the echoed hidden inputs, and a successful login hands out
// a session cookie.
type fakeFlick struct {
	srv      *httptest.Server
	props    string
	requests atomic.Int32
	logins   atomic.Int32
}

func newFakeFlick(t *testing.T) *fakeFlick {
	f := &fakeFlick{props: testProps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/snapshot", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "authenticated" {
			http.Redirect(w, r, "/identity/users/sign_in", http.StatusFound)
			return
		}
		fmt.Fprintf(w, `<html><body><div data-react-class="FlickNeedle" data-react-props='%s'></div></body></html>`, f.props)
	})
	mux.HandleFunc("GET /identity/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		fmt.Fprintf(w, `<html><body><form action="/identity/users/sign_in" method="post">
			<input type="hidden" name="utf8" value="&#x2713;" />
			<input type="hidden" name="authenticity_token" value="%s" />
			<input name="user[email]" /><input name="user[password]" type="password" />
		</form></body></html>`, testToken)
	})
	mux.HandleFunc("POST /identity/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.logins.Add(1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, testToken, r.PostForm.Get("authenticity_token"))
		require.Equal(t, "✓", r.PostForm.Get("utf8"))
		require.Equal(t, "1", r.PostForm.Get("user[remember_me]"))
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		if r.PostForm.Get("user[email]") != testEmail ||
			r.PostForm.Get("user[password]") != testPassword {
			http.Redirect(w, r, "/identity/users/sign_in", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:    "session",
			Value:   "authenticated",
			Path:    "/",
			Expires: time.Now().Add(time.Hour),
		})
		http.Redirect(w, r, "/dashboard/snapshot", http.StatusFound)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeFlick) newClient(t *testing.T) *Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client, err := NewClient(ClientOptions{
		DashboardUrl: f.srv.URL + "/dashboard/snapshot",
		SignInUrl:    f.srv.URL + "/identity/users/sign_in",
		Jar:          jar,
	})
	require.NoError(t, err)
	return client
}

type fakeCredentialSource struct {
	creds       Credentials
	asked       int
	invalidated bool
}

func (s *fakeCredentialSource) Credentials(ctx context.Context) (Credentials, error) {
	s.asked++
	return s.creds, nil
}

func (s *fakeCredentialSource) Invalidate() error {
	s.invalidated = true
	return nil
}

func TestEnsureAuthenticatedLogsIn(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/flick")
	defer cleanup()

	fake := newFakeFlick(t)
	client := fake.newClient(t)
	source := &fakeCredentialSource{creds: Credentials{Email: testEmail, Password: testPassword}}

	res, err := client.EnsureAuthenticated(context.Background(), source)
	require.NoError(t, err)
	require.EqualValues(t, 1, fake.logins.Load())
	require.Equal(t, 1, source.asked)
	require.False(t, source.invalidated)

	snap, err := ExtractSnapshot(res.Body())
	require.NoError(t, err)
	require.Equal(t, 23.45, snap.Price)
}

func TestEnsureAuthenticatedIsIdempotent(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/flick")
	defer cleanup()

	fake := newFakeFlick(t)
	client := fake.newClient(t)
	source := &fakeCredentialSource{creds: Credentials{Email: testEmail, Password: testPassword}}

	_, err := client.EnsureAuthenticated(context.Background(), source)
	require.NoError(t, err)

	// the session cookie is in the jar, no further login should happen
	res, err := client.EnsureAuthenticated(context.Background(), source)
	require.NoError(t, err)
	require.EqualValues(t, 1, fake.logins.Load())
	require.Equal(t, 1, source.asked)

	snap, err := ExtractSnapshot(res.Body())
	require.NoError(t, err)
	require.Equal(t, 23.45, snap.Price)
}

func TestEnsureAuthenticatedRejectedCredentials(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/flick")
	defer cleanup()

	fake := newFakeFlick(t)
	client := fake.newClient(t)
	source := &fakeCredentialSource{creds: Credentials{Email: testEmail, Password: "wrong"}}

	_, err := client.EnsureAuthenticated(context.Background(), source)
	require.ErrorIs(t, err, ErrLoginFailed)
	require.True(t, source.invalidated)
	// exactly one attempt, no retry loop
	require.EqualValues(t, 1, fake.logins.Load())
}

func TestParseSignInForm(t *testing.T) {
	form, err := parseSignInForm([]byte(`<html><body>
		<input type="hidden" name="utf8" value="&#x2713;" />
		<input type="hidden" name="authenticity_token" value="abc123" />
	</body></html>`))
	require.NoError(t, err)
	require.Equal(t, "abc123", form.AuthenticityToken)
	require.Equal(t, "✓", form.Utf8)
}

func TestParseSignInFormMissingToken(t *testing.T) {
	_, err := parseSignInForm([]byte(`<html><body><input name="utf8" value="x" /></body></html>`))
	require.ErrorIs(t, err, ErrMalformedPage)

	_, err = parseSignInForm([]byte(`<html><body><input name="authenticity_token" value="x" /></body></html>`))
	require.ErrorIs(t, err, ErrMalformedPage)
}
