package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util"
	"github.com/benbjohnson/clock"
)

// Vehicle is the upstream data source polled by the coordinator
type Vehicle interface {
	Telemetry(ctx context.Context) (api.Telemetry, error)
	Info(ctx context.Context) (api.VehicleInfo, error)
	Reauth() error
}

// Config is the coordinator configuration
type Config struct {
	Interval         time.Duration // poll cadence
	ChargeInterval   time.Duration // faster cadence while charging, 0 to disable
	Budget           time.Duration // per-cycle wall clock budget
	FailureThreshold int           // consecutive failed cycles until unavailable
}

const (
	defaultInterval  = 5 * time.Minute
	defaultBudget    = 90 * time.Second
	defaultThreshold = 3
)

func (c *Config) setDefaults() {
	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
	if c.Budget == 0 {
		c.Budget = defaultBudget
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = defaultThreshold
	}
}

// Coordinator periodically polls the vehicle, merges both endpoint payloads
// into an immutable snapshot and distributes it to subscribers. Fetch cycles
// never overlap- timer ticks and manual refresh requests arriving while a
// cycle is running are satisfied by that cycle.
type Coordinator struct {
	log     *util.Logger
	clock   clock.Clock
	vehicle Vehicle
	conf    Config

	refreshC chan struct{}
	waiter   *util.Waiter
	paramC   chan<- util.Param

	mu          sync.RWMutex
	snapshot    *api.Snapshot
	updated     time.Time
	lastErr     error
	failures    int
	subscribers []func(api.Update)
}

// NewCoordinator creates the polling coordinator
func NewCoordinator(log *util.Logger, vehicle Vehicle, conf Config) *Coordinator {
	conf.setDefaults()

	return &Coordinator{
		log:      log,
		clock:    clock.New(),
		vehicle:  vehicle,
		conf:     conf,
		refreshC: make(chan struct{}, 1),
		waiter:   util.NewWaiter(conf.Budget+2*time.Second, 3*conf.Interval),
	}
}

// Subscribe registers a callback invoked after every completed cycle.
// Callbacks run on the coordinator goroutine and must not block.
func (c *Coordinator) Subscribe(fn func(api.Update)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Pipe attaches the channel receiving per-field updates after each successful cycle
func (c *Coordinator) Pipe(out chan<- util.Param) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paramC = out
}

// Refresh requests an immediate poll. If a cycle is already in flight the
// request is satisfied by it instead of starting a second one.
func (c *Coordinator) Refresh() {
	select {
	case c.refreshC <- struct{}{}:
	default: // refresh already pending
	}
}

// RunOnce executes a single fetch cycle and returns its error, if any
func (c *Coordinator) RunOnce(ctx context.Context) error {
	c.update(ctx)
	return c.LastError()
}

// Run polls until ctx is canceled. An initial cycle runs immediately.
func (c *Coordinator) Run(ctx context.Context) {
	c.update(ctx)

	timer := c.clock.Timer(c.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-c.refreshC:
		}

		c.update(ctx)

		// ticks and refresh requests received during the cycle were
		// satisfied by it- drained, not queued
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		select {
		case <-c.refreshC:
		default:
		}

		timer.Reset(c.interval())
	}
}

// interval returns the poll interval, honoring the faster cadence while charging
func (c *Coordinator) interval() time.Duration {
	if c.conf.ChargeInterval > 0 {
		c.mu.RLock()
		charging := c.snapshot != nil && c.snapshot.ChargeStatus != nil && *c.snapshot.ChargeStatus == api.ChargeCharging
		c.mu.RUnlock()

		if charging {
			return c.conf.ChargeInterval
		}
	}

	return c.conf.Interval
}

// update runs a single fetch cycle against the wall clock budget
func (c *Coordinator) update(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.conf.Budget)
	defer cancel()

	tel, info, telErr, infoErr := c.fetch(ctx)

	// a rejected token is renewed once, then the full cycle retried
	if errors.Is(telErr, api.ErrAuthFail) || errors.Is(infoErr, api.ErrAuthFail) {
		c.log.WARN.Println("token rejected, re-authenticating")

		if err := c.vehicle.Reauth(); err != nil {
			c.fail(fmt.Errorf("re-authentication failed: %w", err))
			return
		}

		tel, info, telErr, infoErr = c.fetch(ctx)
	}

	if telErr != nil && infoErr != nil {
		err := fmt.Errorf("telemetry: %v, vehicle: %v", telErr, infoErr)
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: cycle budget %v exceeded", api.ErrTimeout, c.conf.Budget)
		}
		c.fail(err)
		return
	}

	if telErr != nil {
		c.log.WARN.Printf("telemetry unavailable: %v", telErr)
	}
	if infoErr != nil {
		c.log.WARN.Printf("vehicle info unavailable: %v", infoErr)
	}

	snapshot := merge(c.clock.Now(), tel, telErr == nil, info, infoErr == nil)
	c.publish(snapshot, telErr != nil || infoErr != nil)
}

// fetch issues both upstream calls concurrently
func (c *Coordinator) fetch(ctx context.Context) (api.Telemetry, api.VehicleInfo, error, error) {
	var (
		wg      sync.WaitGroup
		tel     api.Telemetry
		info    api.VehicleInfo
		telErr  error
		infoErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tel, telErr = c.vehicle.Telemetry(ctx)
	}()
	go func() {
		defer wg.Done()
		info, infoErr = c.vehicle.Info(ctx)
	}()
	wg.Wait()

	return tel, info, telErr, infoErr
}

// publish swaps the current snapshot and notifies subscribers
func (c *Coordinator) publish(snapshot *api.Snapshot, degraded bool) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.updated = c.clock.Now()
	c.lastErr = nil
	c.failures = 0
	subs := append([]func(api.Update){}, c.subscribers...)
	paramC := c.paramC
	c.mu.Unlock()

	c.waiter.Update()

	update := api.Update{Snapshot: snapshot, Ok: true, Degraded: degraded}
	for _, fn := range subs {
		fn(update)
	}

	if paramC != nil {
		publishParams(paramC, snapshot)
	}
}

// fail records a failed cycle. The previous snapshot is retained.
func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.failures++
	c.lastErr = err
	failures := c.failures
	snapshot := c.snapshot
	subs := append([]func(api.Update){}, c.subscribers...)
	c.mu.Unlock()

	c.log.ERROR.Printf("cycle failed (%d consecutive): %v", failures, err)
	if failures == c.conf.FailureThreshold {
		c.log.ERROR.Printf("vehicle unavailable after %d failed cycles", failures)
	}

	update := api.Update{Snapshot: snapshot, Failures: failures}
	for _, fn := range subs {
		fn(update)
	}
}

// publishParams emits the known snapshot fields as keyed parameters
func publishParams(out chan<- util.Param, s *api.Snapshot) {
	push := func(key string, val interface{}) {
		out <- util.Param{Key: key, Val: val}
	}

	push("time", s.Time)
	push("odometerSource", string(s.OdometerSource))

	if s.VIN != "" {
		push("vin", s.VIN)
	}

	floats := map[string]*float64{
		"soc":            s.Soc,
		"range":          s.Range,
		"odometer":       s.Odometer,
		"targetSoc":      s.TargetSoc,
		"speed":          s.Speed,
		"outsideTemp":    s.OutsideTemp,
		"insideTemp":     s.InsideTemp,
		"tirePressureFl": s.TirePressureFL,
		"tirePressureFr": s.TirePressureFR,
		"tirePressureRl": s.TirePressureRL,
		"tirePressureRr": s.TirePressureRR,
		"auxBattery":     s.AuxBattery,
		"latitude":       s.Latitude,
		"longitude":      s.Longitude,
		"heading":        s.Heading,
	}
	for key, val := range floats {
		if val != nil {
			push(key, *val)
		}
	}

	bools := map[string]*bool{
		"ignition":      s.Ignition,
		"handbrake":     s.Handbrake,
		"climateActive": s.ClimateActive,
		"doorFl":        s.DoorFL,
		"doorFr":        s.DoorFR,
		"doorRl":        s.DoorRL,
		"doorRr":        s.DoorRR,
		"trunkOpen":     s.TrunkOpen,
		"hoodOpen":      s.HoodOpen,
		"windowsOpen":   s.WindowsOpen,
		"locked":        s.Locked,
		"pluggedIn":     s.PluggedIn,
	}
	for key, val := range bools {
		if val != nil {
			push(key, *val)
		}
	}

	if s.ChargeStatus != nil {
		push("chargeStatus", s.ChargeStatus.String())
	}
	if s.Gear != nil {
		push("gear", s.Gear.String())
	}
	if s.TimeToFull != nil {
		push("timeToFull", *s.TimeToFull)
	}
}

// Snapshot returns the latest published snapshot, nil before the first successful cycle
func (c *Coordinator) Snapshot() *api.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// LastUpdate returns the time of the last successful cycle
func (c *Coordinator) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// LastError returns the error of the most recent failed cycle, nil after success
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Available reports whether consumers should treat the snapshot as live data
func (c *Coordinator) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil && c.failures < c.conf.FailureThreshold
}

// Healthy blocks until the initial snapshot is published and reports staleness afterwards
func (c *Coordinator) Healthy() error {
	c.waiter.Lock()
	defer c.waiter.Unlock()
	return c.waiter.Overdue()
}
