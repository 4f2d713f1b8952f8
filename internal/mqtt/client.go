package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Client wraps the paho client with topic helpers for one device.
type Client struct {
	client   mqtt.Client
	deviceID string
	logger   *logrus.Logger
}

// BrokerURL maps our URL schemes onto the ones paho dials:
// mqtt:// → tcp://, mqtts:// → ssl://, ws(s):// unchanged.
func BrokerURL(raw string) (broker string, secure bool, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	switch parsed.Scheme {
	case "ws":
		return raw, false, nil
	case "wss":
		return raw, true, nil
	case "mqtt":
		return strings.Replace(raw, "mqtt://", "tcp://", 1), false, nil
	case "mqtts":
		return strings.Replace(raw, "mqtts://", "ssl://", 1), true, nil
	default:
		return "", false, fmt.Errorf("unsupported protocol scheme: %s (supported: ws, wss, mqtt, mqtts)", parsed.Scheme)
	}
}

// NewClient connects to the broker at mqttURL. Credentials embedded in the
// URL are used for authentication.
func NewClient(mqttURL, deviceID string, logger *logrus.Logger) (*Client, error) {
	broker, secure, err := BrokerURL(mqttURL)
	if err != nil {
		return nil, err
	}
	parsedURL, _ := url.Parse(mqttURL)
	clientID := fmt.Sprintf("carinfo-%s", deviceID)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if secure {
		// self-signed brokers are common on home networks
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetWill(availabilityTopic(deviceID), "offline", 1, true)

	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		opts.SetUsername(parsedURL.User.Username())
		opts.SetPassword(password)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		logger.Debug("MQTT reconnecting...")
	})
	firstConnect := true
	opts.SetOnConnectHandler(func(mqtt.Client) {
		if firstConnect {
			firstConnect = false
			logger.Debug("MQTT connected")
			return
		}
		logger.Info("MQTT reconnected")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.WithFields(logrus.Fields{
		"broker":    cleanURL(mqttURL),
		"protocol":  parsedURL.Scheme,
		"client_id": clientID,
	}).Info("MQTT client connected")

	return &Client{client: client, deviceID: deviceID, logger: logger}, nil
}

// Publish publishes payload at QoS 1, waiting at most five seconds.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	token := c.client.Publish(topic, 1, retained, payload)

	const pubTimeout = 5 * time.Second
	if !token.WaitTimeout(pubTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, pubTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"size":     len(payload),
		"retained": retained,
	}).Debug("Published MQTT message")
	return nil
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool { return c.client.IsConnected() }

// Disconnect marks the device offline and closes the connection.
func (c *Client) Disconnect(quiesce uint) {
	if err := c.Publish(availabilityTopic(c.deviceID), []byte("offline"), true); err != nil {
		c.logger.WithError(err).Debug("Failed to publish offline availability")
	}
	c.client.Disconnect(quiesce)
	c.logger.Debug("MQTT client disconnected")
}

// BaseTopic is the root of all state topics for a device.
func BaseTopic(deviceID string) string { return fmt.Sprintf("carinfo/%s", deviceID) }

func availabilityTopic(deviceID string) string { return BaseTopic(deviceID) + "/availability" }

// cleanURL removes credentials from URL for logging.
func cleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}
