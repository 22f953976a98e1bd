package server

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/andig/vinfast/util"
)

// Influx writes vehicle state to InfluxDB
type Influx struct {
	log    *util.Logger
	client influxdb2.Client
	org    string
	bucket string
	vin    string
}

// InfluxConfig is the writer configuration
type InfluxConfig struct {
	URL      string
	Token    string
	Org      string
	Bucket   string
	User     string // v1 compatibility
	Password string // v1 compatibility
}

// NewInfluxClient creates the InfluxDB writer
func NewInfluxClient(conf InfluxConfig, vin string) *Influx {
	log := util.NewLogger("influx")

	// InfluxDB v1 compatibility
	if conf.Token == "" && conf.User != "" {
		conf.Token = conf.User + ":" + conf.Password
	}

	options := influxdb2.DefaultOptions().SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(conf.URL, conf.Token, options)

	return &Influx{
		log:    log,
		client: client,
		org:    conf.Org,
		bucket: conf.Bucket,
		vin:    vin,
	}
}

// supportedType excludes non-numeric parameters from the time series
func (m *Influx) supportedType(p util.Param) bool {
	switch p.Val.(type) {
	case float64, int64, bool:
		return true
	default:
		return false
	}
}

// Run starts writing received parameters as data points
func (m *Influx) Run(in <-chan util.Param) {
	writer := m.client.WriteAPI(m.org, m.bucket)

	// log errors
	go func() {
		for err := range writer.Errors() {
			m.log.ERROR.Println(err)
		}
	}()

	for p := range in {
		if !m.supportedType(p) {
			continue
		}

		point := influxdb2.NewPoint(p.Key,
			map[string]string{"vin": m.vin},
			map[string]interface{}{"value": p.Val},
			time.Now(),
		)
		writer.WritePoint(point)
	}

	m.client.Close()
}
