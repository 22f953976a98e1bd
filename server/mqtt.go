package server

import (
	"fmt"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/andig/vinfast/util"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 2 * time.Second
)

// MQTT publishes vehicle state to an MQTT broker
type MQTT struct {
	log     *util.Logger
	Handler paho.Client
	root    string
}

// MQTTConfig is the publisher configuration
type MQTTConfig struct {
	Broker   string
	User     string
	Password string
	ClientID string
	Topic    string // root topic
}

// NewMQTT creates the MQTT publisher and connects to the broker
func NewMQTT(conf MQTTConfig) (*MQTT, error) {
	log := util.NewLogger("mqtt")

	if conf.Topic == "" {
		conf.Topic = "vinfast"
	}
	if conf.ClientID == "" {
		conf.ClientID = fmt.Sprintf("vinfast-%d", rand.Int31())
	}

	options := paho.NewClientOptions()
	options.AddBroker(conf.Broker)
	options.SetUsername(conf.User)
	options.SetPassword(conf.Password)
	options.SetClientID(conf.ClientID)
	options.SetAutoReconnect(true)
	options.SetOnConnectHandler(func(paho.Client) {
		log.INFO.Printf("connected to %s", conf.Broker)
	})
	options.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.ERROR.Printf("connection lost: %v", err)
	})

	client := paho.NewClient(options)

	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect timeout: %s", conf.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &MQTT{
		log:     log,
		Handler: client,
		root:    conf.Topic,
	}, nil
}

// encode renders the parameter value as payload
func (m *MQTT) encode(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case time.Duration:
		return fmt.Sprintf("%d", int64(val.Seconds()))
	case float64:
		return fmt.Sprintf("%.5g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (m *MQTT) publish(topic string, retained bool, payload interface{}) {
	token := m.Handler.Publish(topic, 0, retained, m.encode(payload))
	go func() {
		if token.WaitTimeout(mqttPublishTimeout); token.Error() != nil {
			m.log.ERROR.Printf("publish %s: %v", topic, token.Error())
		}
	}()
}

// Run starts publishing received parameters as retained messages
func (m *MQTT) Run(in <-chan util.Param) {
	for p := range in {
		topic := fmt.Sprintf("%s/%s", m.root, p.Key)
		m.publish(topic, true, p.Val)
	}
}
