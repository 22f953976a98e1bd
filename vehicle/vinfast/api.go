package vinfast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/provider"
	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/util/request"
	"github.com/andig/vinfast/util/transport"
	"github.com/avast/retry-go/v3"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	retryAttempts = 3
	retryDelay    = time.Second
	aliasCache    = time.Hour
)

// TokenSource is an oauth2 token source whose cached token can be discarded
type TokenSource interface {
	oauth2.TokenSource
	Invalidate()
}

// API is the VinFast Connected Car api client
type API struct {
	*request.Helper
	log      *util.Logger
	identity TokenSource
	aliases  func(context.Context) (map[string]AliasResource, error)

	mu           sync.Mutex
	vin, account string // forwarded as request headers once known
}

// NewAPI creates the api client using the authenticated identity
func NewAPI(log *util.Logger, identity TokenSource) *API {
	v := &API{
		Helper:   request.NewHelper(log),
		log:      log,
		identity: identity,
	}

	// decorate with vendor headers, then authenticate
	v.Client.Transport = &oauth2.Transport{
		Source: identity,
		Base:   v.Client.Transport,
	}
	v.Client.Transport = &transport.Decorator{
		Decorator: v.decorate,
		Base:      v.Client.Transport,
	}

	v.aliases = provider.CachedCtx(v.aliasMappings, aliasCache)

	return v
}

var deviceIdentifier = uuid.NewString()

func (v *API) decorate(req *http.Request) error {
	headers := map[string]string{
		"x-service-name":      "CAPP",
		"x-app-version":       "1.10.3",
		"x-device-platform":   "Integration",
		"x-device-os-version": "1.0",
		"x-device-locale":     "en-US",
		"x-device-identifier": deviceIdentifier,
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.vin != "" {
		req.Header.Set("x-vin-code", v.vin)
	}
	if v.account != "" {
		req.Header.Set("x-player-identifier", v.account)
	}

	return nil
}

// Reauth discards the cached access token and obtains a fresh one
func (v *API) Reauth() error {
	v.identity.Invalidate()
	_, err := v.identity.Token()
	return err
}

// Vehicles returns the accounts vehicles from the user-vehicle endpoint
func (v *API) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var res VehiclesResponse
	uri := fmt.Sprintf("%s/ccarusermgnt/api/v1/user-vehicle", ApiURI)

	err := v.doJSON(ctx, http.MethodGet, uri, nil, &res)
	if err == nil {
		err = res.Err()
	}

	if err == nil && len(res.Data) > 0 {
		v.mu.Lock()
		v.vin = res.Data[0].VinCode
		v.account = res.Data[0].UserID
		v.mu.Unlock()
	}

	return res.Data, err
}

// aliasMappings returns the alias to resource path mapping (cached)
func (v *API) aliasMappings(ctx context.Context) (map[string]AliasResource, error) {
	var res AliasResponse
	uri := fmt.Sprintf("%s/modelmgmt/api/v2/vehicle-model/mobile-app/vehicle/get-alias?version=%s", ApiURI, aliasVersion)

	err := v.doJSON(ctx, http.MethodGet, uri, nil, &res)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		return nil, err
	}

	mappings := make(map[string]AliasResource, len(res.Data.Resources))
	for _, r := range res.Data.Resources {
		if r.Alias != "" {
			mappings[r.Alias] = r
		}
	}

	v.log.DEBUG.Printf("loaded %d alias mappings", len(mappings))

	return mappings, nil
}

// resources returns the resource refs to request and the path to alias reverse mapping
func (v *API) resources(ctx context.Context) ([]ResourceRef, map[string]string) {
	mappings, err := v.aliases(ctx)
	if err != nil || len(mappings) == 0 {
		if err != nil {
			v.log.WARN.Printf("alias mappings unavailable, using static resources: %v", err)
		}

		refs := make([]ResourceRef, 0, len(fallbackAliases))
		pathToAlias := make(map[string]string, len(fallbackAliases))
		for path, alias := range fallbackAliases {
			parts := strings.Split(strings.Trim(path, "/"), "/")
			if len(parts) != 3 {
				continue
			}
			refs = append(refs, ResourceRef{ObjectID: parts[0], InstanceID: parts[1], ResourceID: parts[2]})
			pathToAlias[path] = alias
		}

		return refs, pathToAlias
	}

	refs := make([]ResourceRef, 0, len(telemetryAliases))
	pathToAlias := make(map[string]string, len(telemetryAliases))
	for _, alias := range telemetryAliases {
		if r, ok := mappings[alias]; ok {
			refs = append(refs, r.Ref())
			pathToAlias[r.Path()] = alias
		}
	}

	return refs, pathToAlias
}

// Telemetry returns the realtime vehicle state from the ping endpoint.
// The ping endpoint serves server-side cached values and responds even
// while the vehicle is asleep.
func (v *API) Telemetry(ctx context.Context, vin string) (api.Telemetry, error) {
	refs, pathToAlias := v.resources(ctx)
	if len(refs) == 0 {
		return api.Telemetry{}, errors.New("no telemetry resources available")
	}

	v.mu.Lock()
	if v.vin == "" {
		v.vin = vin
	}
	v.mu.Unlock()

	var res PingResponse
	uri := fmt.Sprintf("%s/ccaraccessmgmt/api/v1/telemetry/app/ping", ApiURI)

	err := v.doJSON(ctx, http.MethodPost, uri, func() io.Reader {
		return request.MarshalJSON(refs)
	}, &res)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		return api.Telemetry{}, err
	}

	v.log.DEBUG.Printf("telemetry: received %d values", len(res.Data))

	return decodeTelemetry(res.Data, pathToAlias), nil
}

// doJSON executes the request with bounded retry on transient errors.
// The body builder is invoked per attempt since request bodies are consumed.
func (v *API) doJSON(ctx context.Context, method, uri string, body func() io.Reader, res interface{}) error {
	return retry.Do(func() error {
		var rd io.Reader
		if body != nil {
			rd = body()
		}

		req, err := request.New(method, uri, rd, request.JSONEncoding)
		if err != nil {
			return err
		}

		if err := v.DoJSON(req.WithContext(ctx), res); err != nil {
			return classify(err)
		}

		return nil
	},
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// a dead cycle context makes every further attempt futile
			return errors.Is(err, api.ErrMustRetry) && ctx.Err() == nil
		}),
	)
}

// classify maps transport and status errors into the shared error taxonomy:
// auth failures are non-retryable and require re-login, server-side and
// network errors are transient, anything else (including malformed payload)
// is returned as-is and never retried.
func classify(err error) error {
	if err == nil || errors.Is(err, api.ErrAuthFail) {
		return err
	}

	var se request.StatusError
	if errors.As(err, &se) {
		switch {
		case se.HasStatus(http.StatusUnauthorized, http.StatusForbidden):
			return fmt.Errorf("%w: status %d", api.ErrAuthFail, se.StatusCode())
		case se.StatusCode() >= http.StatusInternalServerError:
			return fmt.Errorf("%w: status %d", api.ErrMustRetry, se.StatusCode())
		default:
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", api.ErrMustRetry, err)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", api.ErrMustRetry, err)
	}

	var oe *net.OpError
	if errors.As(err, &oe) {
		return fmt.Errorf("%w: %v", api.ErrMustRetry, err)
	}

	return err
}
