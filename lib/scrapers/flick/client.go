package flick

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"flickprice/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/flick")

var ErrLoginFailed = fmt.Errorf("Unable to log in to your account.")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:59.0) Gecko/20100101 Firefox/59.0"

// Credentials for one dashboard account.
type Credentials struct {
	Email    string
	Password string
}

// CredentialSource yields credentials for a login attempt and is told
// when the remote service rejects them.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
	Invalidate() error
}

type Client struct {
	DashboardUrl *url.URL
	SignInUrl    *url.URL
	Http         *resty.Client
}

type ClientOptions struct {
	DashboardUrl string
	SignInUrl    string
	// restored session state, may be empty
	Jar http.CookieJar
}

func NewClient(opts ClientOptions) (*Client, error) {
	dashboardUrl, err := url.Parse(opts.DashboardUrl)
	if err != nil {
		return nil, err
	}
	signInUrl, err := url.Parse(opts.SignInUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	if opts.Jar != nil {
		client.SetCookieJar(opts.Jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		dashboardUrl.Hostname(),
		signInUrl.Hostname(),
	))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentClient(client, "scrapers/flick/http")

	return &Client{
		DashboardUrl: dashboardUrl,
		SignInUrl:    signInUrl,
		Http:         client,
	}, nil
}

// resolvedUrl is where the request ended up after redirects. A
// successful status alone proves nothing, the dashboard redirects
// unauthenticated sessions to the sign-in page with a 200.
func resolvedUrl(res *resty.Response) string {
	return res.RawResponse.Request.URL.String()
}

func (c *Client) onDashboard(res *resty.Response) bool {
	return resolvedUrl(res) == c.DashboardUrl.String()
}

// EnsureAuthenticated fetches the dashboard, logging in first when the
// session is not recognized. Exactly one login attempt is made: if the
// dashboard still does not resolve afterwards the stored credentials
// are invalidated and ErrLoginFailed is returned.
func (c *Client) EnsureAuthenticated(ctx context.Context, source CredentialSource) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "client:EnsureAuthenticated")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.DashboardUrl.String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch dashboard")
		return nil, err
	}
	if c.onDashboard(res) {
		span.AddEvent("session already authenticated")
		return res, nil
	}

	slog.DebugContext(ctx, "session not authenticated, signing in", "landed_on", resolvedUrl(res))

	creds, err := source.Credentials(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to obtain credentials")
		return nil, err
	}

	form, err := parseSignInForm(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse sign-in form")
		return nil, err
	}

	_, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"user[email]":        creds.Email,
			"user[password]":     creds.Password,
			"user[remember_me]":  "1",
			"authenticity_token": form.AuthenticityToken,
			"utf8":               form.Utf8,
		}).
		SetHeader("Origin", c.SignInUrl.Scheme+"://"+c.SignInUrl.Host).
		SetHeader("Referer", c.SignInUrl.String()).
		Post(c.SignInUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return nil, err
	}

	res, err = c.Http.R().
		SetContext(ctx).
		Get(c.DashboardUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch dashboard after login")
		return nil, err
	}
	if !c.onDashboard(res) {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		if err := source.Invalidate(); err != nil {
			slog.WarnContext(ctx, "failed to clear rejected credentials", "err", err)
		}
		return nil, ErrLoginFailed
	}

	return res, nil
}

type signInForm struct {
	AuthenticityToken string
	Utf8              string
}

// the sign-in page embeds an anti-forgery token and a utf8 marker as
// hidden inputs, both must be echoed back with the form
func parseSignInForm(body []byte) (signInForm, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return signInForm{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	token := doc.Find("input[name=authenticity_token]").AttrOr("value", "")
	if token == "" {
		return signInForm{}, fmt.Errorf("%w: could not find the authenticity token", ErrMalformedPage)
	}
	utf8 := doc.Find("input[name=utf8]").AttrOr("value", "")
	if utf8 == "" {
		return signInForm{}, fmt.Errorf("%w: could not find the utf8 marker", ErrMalformedPage)
	}

	return signInForm{
		AuthenticityToken: token,
		Utf8:              utf8,
	}, nil
}
