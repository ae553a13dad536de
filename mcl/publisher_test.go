package mcl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func publisherFixture(t *testing.T) (*ParticleFilter, *MockPublishClient, *Publisher) {
	t.Helper()
	m := colorPatchMap(t)
	f, err := NewFilter(m, 25, 12, SensorColor)
	assert.NoError(t, err)
	f.Put(0, Point{5, 5})
	f.Step(Control{Ang: 0.1, Dist: 0.3}, false)

	client := NewMockPublishClient()
	return f, client, NewPublisher(client)
}

func TestNewPublisherDefaults(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	p := NewPublisher(nil)

	assert.Equal(t, "mcl", p.publishPrefix)
	assert.Equal(t, byte(0), p.qos)
	assert.True(t, p.retain)
	assert.False(t, p.Enabled())
}

func TestNewPublisherPrefixOverride(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "lab/sim")
	p := NewPublisher(NewMockPublishClient())
	assert.Equal(t, "lab/sim", p.publishPrefix)
}

func TestPublishStep(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	f, client, p := publisherFixture(t)

	assert.NoError(t, p.PublishStep(1, f, false))

	messages := client.PublishedMessages()
	assert.Len(t, messages, 2)
	assert.Equal(t, "mcl/pose", messages[0].Topic)
	assert.Equal(t, "mcl/cloud", messages[1].Topic)
	assert.True(t, messages[0].Retain)

	var pose PoseUpdate
	assert.NoError(t, json.Unmarshal(messages[0].Payload, &pose))
	assert.Equal(t, f.Pose().Coor.X, pose.X)
	assert.Equal(t, f.Pose().Coor.Y, pose.Y)
	assert.Equal(t, 1, pose.Step)

	var cloud CloudUpdate
	assert.NoError(t, json.Unmarshal(messages[1].Payload, &cloud))
	assert.Equal(t, 25, cloud.Count)
	assert.GreaterOrEqual(t, cloud.Spread, 0.0)
}

func TestPublishStepDisconnected(t *testing.T) {
	f, client, p := publisherFixture(t)
	client.SetConnected(false)

	err := p.PublishStep(1, f, false)
	assert.Error(t, err)
	assert.Empty(t, client.PublishedMessages())
}
