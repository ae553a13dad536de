package mcl

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PoseUpdate is the telemetry payload for the simulated robot pose.
type PoseUpdate struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Ang       float64 `json:"ang"`
	Step      int     `json:"step"`
	Converged bool    `json:"converged"`
	Timestamp int64   `json:"timestamp"`
}

// CloudUpdate is the telemetry payload summarizing the particle cloud.
type CloudUpdate struct {
	Count     int     `json:"count"`
	CentroidX float64 `json:"centroidX"`
	CentroidY float64 `json:"centroidY"`
	Spread    float64 `json:"spread"`
	Injection float64 `json:"injection"`
	Timestamp int64   `json:"timestamp"`
}

// PublishClient is the slice of mqtt.Client the publisher needs.
type PublishClient interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher pushes filter state to MQTT after each step. With a nil or
// disconnected client publishing is disabled and PublishStep returns an
// error.
type Publisher struct {
	client        PublishClient
	publishPrefix string
	qos           byte
	retain        bool
}

// NewPublisher creates a telemetry publisher. The publish prefix comes from
// MQTT_PUBLISH_PREFIX when set.
func NewPublisher(client PublishClient) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "mcl"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // fire and forget for per-step updates
		retain:        true, // retain the latest state
	}
}

// Enabled reports whether a connected client is attached.
func (p *Publisher) Enabled() bool {
	return p.client != nil && p.client.IsConnected()
}

// PublishStep publishes the pose and cloud summary for one completed step.
func (p *Publisher) PublishStep(step int, f *ParticleFilter, converged bool) error {
	if !p.Enabled() {
		return fmt.Errorf("MQTT client not connected")
	}

	now := time.Now().Unix()
	pose := f.Pose()
	centroid, spread := CloudCentroid(f.particles)

	poseUpdate := PoseUpdate{
		X:         pose.Coor.X,
		Y:         pose.Coor.Y,
		Ang:       pose.Ang,
		Step:      step,
		Converged: converged,
		Timestamp: now,
	}
	if err := p.publish(p.publishPrefix+"/pose", poseUpdate); err != nil {
		log.Printf("Error publishing pose update: %v", err)
		return err
	}

	cloudUpdate := CloudUpdate{
		Count:     len(f.particles),
		CentroidX: centroid.X,
		CentroidY: centroid.Y,
		Spread:    spread,
		Injection: f.InjectionFraction(),
		Timestamp: now,
	}
	if err := p.publish(p.publishPrefix+"/cloud", cloudUpdate); err != nil {
		log.Printf("Error publishing cloud update: %v", err)
		return err
	}

	return nil
}

func (p *Publisher) publish(topic string, update interface{}) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling update: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// ConnectMQTT builds and connects an MQTT client from the configuration.
// Environment variables override the file settings; an empty broker
// disables telemetry and returns a nil client.
func ConnectMQTT(cfg MQTTConfig) (mqtt.Client, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = cfg.Broker
	}
	if broker == "" {
		log.Println("MQTT disabled: no broker configured")
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = cfg.ClientID
	}
	if clientID == "" {
		clientID = "mcl"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" {
		username = cfg.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" {
			password = cfg.Password
		}
		opts.SetPassword(password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("timeout connecting to MQTT broker %s", broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}

	log.Printf("Connected to MQTT broker %s as %s", broker, clientID)
	return client, nil
}
