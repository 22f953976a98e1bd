package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/provider"
	"github.com/andig/vinfast/util"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVehicle struct {
	telemetry func(ctx context.Context) (api.Telemetry, error)
	info      func(ctx context.Context) (api.VehicleInfo, error)
	reauth    func() error

	reauths int
}

func (v *stubVehicle) Telemetry(ctx context.Context) (api.Telemetry, error) {
	return v.telemetry(ctx)
}

func (v *stubVehicle) Info(ctx context.Context) (api.VehicleInfo, error) {
	return v.info(ctx)
}

func (v *stubVehicle) Reauth() error {
	v.reauths++
	if v.reauth != nil {
		return v.reauth()
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func testTelemetry() api.Telemetry {
	return api.Telemetry{
		Soc:          ptr(80.0),
		Range:        ptr(200.0),
		Odometer:     ptr(1000.0),
		OutsideTemp:  ptr(20.0),
		ChargeStatus: ptr(api.ChargeNotCharging),
		Locked:       ptr(true),
	}
}

func testInfo() api.VehicleInfo {
	return api.VehicleInfo{
		VIN:      "VF1234567890",
		Name:     "My VF8",
		Model:    "VF 8",
		Year:     2023,
		Color:    "Jet Black",
		Odometer: ptr(990.0),
	}
}

func TestCycleSuccess(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			return testTelemetry(), nil
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})

	var updates []api.Update
	c.Subscribe(func(u api.Update) {
		updates = append(updates, u)
	})

	c.update(context.Background())

	s := c.Snapshot()
	require.NotNil(t, s)

	assert.Equal(t, "VF1234567890", s.VIN)
	assert.Equal(t, "VF 8", s.Model)

	require.NotNil(t, s.Range)
	assert.InDelta(t, 124.2742, *s.Range, 1e-4)

	require.NotNil(t, s.Odometer)
	assert.InDelta(t, 621.371, *s.Odometer, 1e-4)
	assert.Equal(t, api.OdometerFromTelemetry, s.OdometerSource)

	require.NotNil(t, s.OutsideTemp)
	assert.InDelta(t, 68.0, *s.OutsideTemp, 1e-9)

	assert.True(t, c.Available())
	assert.NoError(t, c.LastError())

	require.Len(t, updates, 1)
	assert.True(t, updates[0].Ok)
	assert.False(t, updates[0].Degraded)
}

func TestPartialTelemetryFailure(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			return api.Telemetry{}, errors.New("vehicle asleep")
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})

	var updates []api.Update
	c.Subscribe(func(u api.Update) {
		updates = append(updates, u)
	})

	c.update(context.Background())

	s := c.Snapshot()
	require.NotNil(t, s)

	// master data odometer fallback
	require.NotNil(t, s.Odometer)
	assert.InDelta(t, 615.15729, *s.Odometer, 1e-4)
	assert.Equal(t, api.OdometerFromVehicle, s.OdometerSource)

	// telemetry fields unknown
	assert.Nil(t, s.Soc)
	assert.Nil(t, s.Range)

	assert.True(t, c.Available())

	require.Len(t, updates, 1)
	assert.True(t, updates[0].Ok)
	assert.True(t, updates[0].Degraded)
}

func TestBothFailRetainsSnapshot(t *testing.T) {
	fail := false
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			if fail {
				return api.Telemetry{}, errors.New("telemetry down")
			}
			return testTelemetry(), nil
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			if fail {
				return api.VehicleInfo{}, errors.New("vehicle down")
			}
			return testInfo(), nil
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{FailureThreshold: 2})

	var updates []api.Update
	c.Subscribe(func(u api.Update) {
		updates = append(updates, u)
	})

	c.update(context.Background())
	published := c.Snapshot()
	require.NotNil(t, published)

	fail = true
	c.update(context.Background())

	// failed cycle increments the counter exactly once and keeps the snapshot
	assert.Same(t, published, c.Snapshot())
	assert.Error(t, c.LastError())
	assert.True(t, c.Available())

	require.Len(t, updates, 2)
	assert.False(t, updates[1].Ok)
	assert.Equal(t, 1, updates[1].Failures)
	assert.Same(t, published, updates[1].Snapshot)

	// second failure reaches the threshold
	c.update(context.Background())
	assert.False(t, c.Available())
	assert.Equal(t, 2, updates[2].Failures)

	// recovery resets the counter
	fail = false
	c.update(context.Background())
	assert.True(t, c.Available())
	assert.NoError(t, c.LastError())
}

func TestReauthRetriesCycleOnce(t *testing.T) {
	calls := 0
	vehicle := &stubVehicle{
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}
	vehicle.telemetry = func(context.Context) (api.Telemetry, error) {
		calls++
		if vehicle.reauths == 0 {
			return api.Telemetry{}, fmt.Errorf("%w: status 401", api.ErrAuthFail)
		}
		return testTelemetry(), nil
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})
	c.update(context.Background())

	assert.Equal(t, 1, vehicle.reauths)
	assert.Equal(t, 2, calls)
	assert.True(t, c.Available())
	assert.NoError(t, c.LastError())

	s := c.Snapshot()
	require.NotNil(t, s)
	assert.NotNil(t, s.Soc)
}

func TestReauthRefetchesCachedInfo(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			return testTelemetry(), nil
		},
	}

	// master data served through the provider cache, as in production
	infoCalls := 0
	info := provider.Cached(func() (api.VehicleInfo, error) {
		infoCalls++
		if vehicle.reauths == 0 {
			return api.VehicleInfo{}, fmt.Errorf("%w: status 401", api.ErrAuthFail)
		}
		return testInfo(), nil
	}, time.Hour)
	vehicle.info = func(context.Context) (api.VehicleInfo, error) {
		return info()
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})

	var updates []api.Update
	c.Subscribe(func(u api.Update) {
		updates = append(updates, u)
	})

	c.update(context.Background())

	// the retried cycle must re-query the endpoint, not the cached auth error
	assert.Equal(t, 1, vehicle.reauths)
	assert.Equal(t, 2, infoCalls)

	s := c.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, "VF1234567890", s.VIN)

	require.Len(t, updates, 1)
	assert.True(t, updates[0].Ok)
	assert.False(t, updates[0].Degraded)

	// the next cycle must not invalidate the token again
	c.update(context.Background())
	assert.Equal(t, 1, vehicle.reauths)
}

func TestReauthFailureFailsCycle(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			return api.Telemetry{}, fmt.Errorf("%w: status 401", api.ErrAuthFail)
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
		reauth: func() error {
			return errors.New("invalid credentials")
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})
	c.update(context.Background())

	assert.Equal(t, 1, vehicle.reauths)
	assert.Nil(t, c.Snapshot())
	assert.Error(t, c.LastError())
	assert.False(t, c.Available())
}

func TestCycleBudget(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(ctx context.Context) (api.Telemetry, error) {
			<-ctx.Done()
			return api.Telemetry{}, ctx.Err()
		},
		info: func(ctx context.Context) (api.VehicleInfo, error) {
			<-ctx.Done()
			return api.VehicleInfo{}, ctx.Err()
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{Budget: 10 * time.Millisecond})
	c.update(context.Background())

	assert.ErrorIs(t, c.LastError(), api.ErrTimeout)
	assert.Nil(t, c.Snapshot())
}

func TestChargingInterval(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			tel := testTelemetry()
			tel.ChargeStatus = ptr(api.ChargeCharging)
			return tel, nil
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{
		Interval:       5 * time.Minute,
		ChargeInterval: time.Minute,
	})

	assert.Equal(t, 5*time.Minute, c.interval())

	c.update(context.Background())
	assert.Equal(t, time.Minute, c.interval())
}

func TestRunSingleFlight(t *testing.T) {
	started := make(chan struct{}, 8)
	release := make(chan struct{})
	var inFlight int32

	vehicle := &stubVehicle{
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}
	vehicle.telemetry = func(context.Context) (api.Telemetry, error) {
		if n := atomic.AddInt32(&inFlight, 1); n > 1 {
			t.Errorf("concurrent fetch sequences: %d", n)
		}
		started <- struct{}{}
		<-release
		atomic.AddInt32(&inFlight, -1)
		return testTelemetry(), nil
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{
		Interval: time.Minute,
		Budget:   time.Hour,
	})
	mock := clock.NewMock()
	c.clock = mock

	published := make(chan struct{}, 8)
	c.Subscribe(func(api.Update) {
		published <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	// initial cycle
	<-started
	release <- struct{}{}
	<-published

	// second cycle via manual refresh
	require.Eventually(t, func() bool {
		c.Refresh()
		select {
		case <-started:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	// a tick and a refresh arriving mid-cycle start no concurrent fetch
	mock.Add(2 * time.Minute)
	c.Refresh()
	select {
	case <-started:
		t.Fatal("overlapping fetch cycle")
	case <-time.After(50 * time.Millisecond):
	}

	release <- struct{}{}
	<-published

	// both triggers were satisfied by the running cycle- none queued
	select {
	case <-started:
		t.Fatal("coalesced trigger started an extra cycle")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestRefreshCoalesces(t *testing.T) {
	c := NewCoordinator(util.NewLogger("test"), &stubVehicle{}, Config{})

	c.Refresh()
	c.Refresh()
	c.Refresh()

	<-c.refreshC
	select {
	case <-c.refreshC:
		t.Fatal("refresh requests not coalesced")
	default:
	}
}

func TestParamPipe(t *testing.T) {
	vehicle := &stubVehicle{
		telemetry: func(context.Context) (api.Telemetry, error) {
			return testTelemetry(), nil
		},
		info: func(context.Context) (api.VehicleInfo, error) {
			return testInfo(), nil
		},
	}

	c := NewCoordinator(util.NewLogger("test"), vehicle, Config{})

	out := make(chan util.Param, 64)
	c.Pipe(out)

	c.update(context.Background())
	close(out)

	params := make(map[string]interface{})
	for p := range out {
		params[p.Key] = p.Val
	}

	assert.Equal(t, "VF1234567890", params["vin"])
	assert.Equal(t, 80.0, params["soc"])
	assert.Equal(t, true, params["locked"])
	assert.Equal(t, "not charging", params["chargeStatus"])
}
