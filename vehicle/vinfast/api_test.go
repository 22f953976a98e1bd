package vinfast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/util/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type staticToken struct{}

func (staticToken) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "token"}, nil
}

func (staticToken) Invalidate() {}

func testAPI(t *testing.T) *API {
	t.Helper()
	return NewAPI(util.NewLogger("test"), staticToken{})
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"code":200000,"message":"ok"}`)
	}))
	defer srv.Close()

	v := testAPI(t)

	var res Response
	err := v.doJSON(context.Background(), http.MethodGet, srv.URL, nil, &res)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.NoError(t, res.Err())
}

func TestDoJSONAuthFailureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := testAPI(t)

	var res Response
	err := v.doJSON(context.Background(), http.MethodGet, srv.URL, nil, &res)

	assert.ErrorIs(t, err, api.ErrAuthFail)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoJSONClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	v := testAPI(t)

	var res Response
	err := v.doJSON(context.Background(), http.MethodGet, srv.URL, nil, &res)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, api.ErrAuthFail)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoJSONNoRetryAfterBudgetExpired(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v := testAPI(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	var res Response
	err := v.doJSON(ctx, http.MethodGet, srv.URL, nil, &res)

	assert.Error(t, err)
	// no fixed-delay retries once the cycle budget is dead
	assert.Less(t, time.Since(start), time.Second)
}

func TestVendorHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CAPP", r.Header.Get("x-service-name"))
		assert.NotEmpty(t, r.Header.Get("x-device-identifier"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"code":0}`)
	}))
	defer srv.Close()

	v := testAPI(t)

	var res Response
	err := v.doJSON(context.Background(), http.MethodGet, srv.URL, nil, &res)
	require.NoError(t, err)
}

func TestResourcesFallback(t *testing.T) {
	v := testAPI(t)
	v.aliases = func(context.Context) (map[string]AliasResource, error) {
		return nil, errors.New("get-alias unavailable")
	}

	refs, pathToAlias := v.resources(context.Background())

	assert.Len(t, refs, len(fallbackAliases))
	assert.Equal(t, aliasSoc, pathToAlias["/34196/0/0"])
	assert.Equal(t, aliasLockStatus, pathToAlias["/34201/0/0"])
}

func TestResourcesFromAliasMappings(t *testing.T) {
	v := testAPI(t)
	v.aliases = func(context.Context) (map[string]AliasResource, error) {
		return map[string]AliasResource{
			aliasSoc:      {Alias: aliasSoc, ObjectID: "34196", InstanceID: "0", ResourceID: "0"},
			aliasOdometer: {Alias: aliasOdometer, ObjectID: "34196", InstanceID: "0", ResourceID: "2"},
			"UNRELATED":   {Alias: "UNRELATED", ObjectID: "1", InstanceID: "0", ResourceID: "0"},
		}, nil
	}

	refs, pathToAlias := v.resources(context.Background())

	// only requested aliases are resolved
	assert.Len(t, refs, 2)
	assert.Equal(t, aliasSoc, pathToAlias["/34196/0/0"])
	assert.Equal(t, aliasOdometer, pathToAlias["/34196/0/2"])
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	res := &http.Response{StatusCode: http.StatusForbidden, Request: &http.Request{}}
	assert.ErrorIs(t, classify(request.NewStatusError(res)), api.ErrAuthFail)

	res = &http.Response{StatusCode: http.StatusServiceUnavailable, Request: &http.Request{}}
	assert.ErrorIs(t, classify(request.NewStatusError(res)), api.ErrMustRetry)

	res = &http.Response{StatusCode: http.StatusNotFound, Request: &http.Request{}}
	err := classify(request.NewStatusError(res))
	assert.NotErrorIs(t, err, api.ErrMustRetry)
	assert.NotErrorIs(t, err, api.ErrAuthFail)

	assert.ErrorIs(t, classify(context.DeadlineExceeded), api.ErrMustRetry)
}
