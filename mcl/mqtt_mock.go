package mcl

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MockToken implements mqtt.Token for testing.
type MockToken struct {
	err error
}

// NewMockToken creates a completed token carrying err.
func NewMockToken(err error) *MockToken {
	return &MockToken{err: err}
}

func (t *MockToken) Wait() bool {
	return true
}

func (t *MockToken) WaitTimeout(time.Duration) bool {
	return true
}

func (t *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *MockToken) Error() error {
	return t.err
}

// MockMessage is a published message captured by the mock client.
type MockMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// MockPublishClient implements PublishClient using testify/mock and records
// every published message for later inspection.
type MockPublishClient struct {
	mock.Mock
	mu        sync.RWMutex
	connected bool
}

// NewMockPublishClient creates a mock client with permissive default stubs.
func NewMockPublishClient() *MockPublishClient {
	m := &MockPublishClient{connected: true}
	m.On("IsConnected").Return(true).Maybe()
	m.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(NewMockToken(nil)).Maybe()
	return m
}

func (m *MockPublishClient) IsConnected() bool {
	m.mu.RLock()
	connected := m.connected
	m.mu.RUnlock()
	if !connected {
		return false
	}
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPublishClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	if t, ok := args.Get(0).(mqtt.Token); ok {
		return t
	}
	return NewMockToken(nil)
}

// SetConnected sets the connection state directly.
func (m *MockPublishClient) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

// PublishedMessages extracts the recorded Publish calls.
func (m *MockPublishClient) PublishedMessages() []MockMessage {
	var messages []MockMessage
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}

		payload := call.Arguments.Get(3)
		var payloadBytes []byte
		switch v := payload.(type) {
		case []byte:
			payloadBytes = v
		case string:
			payloadBytes = []byte(v)
		}

		messages = append(messages, MockMessage{
			Topic:   call.Arguments.String(0),
			Payload: payloadBytes,
			QoS:     call.Arguments.Get(1).(byte),
			Retain:  call.Arguments.Bool(2),
		})
	}
	return messages
}
