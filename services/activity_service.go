package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Shopify/sarama"

	"github.com/gabbymorgan/drivefair.api/config"
)

// RequestInfo is the request context attached to sink records
type RequestInfo struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Hostname  string `json:"hostname"`
	ActorID   uint   `json:"actor_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`
}

// ActivitySink is the fire-and-forget error/activity side channel. Calls
// never block or fail the operation being recorded.
type ActivitySink interface {
	Record(err error, info RequestInfo, functionName string)
	RecordActivity(info RequestInfo)
}

var activitySinkInstance ActivitySink

// InitActivitySink initializes the Kafka-backed sink, falling back to plain
// logging when no broker is reachable
func InitActivitySink() ActivitySink {
	cfg := config.GetConfig()
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, kafkaConfig)
	if err != nil {
		log.Printf("Kafka unavailable, falling back to log sink: %v", err)
		activitySinkInstance = &LogActivitySink{}
		return activitySinkInstance
	}
	activitySinkInstance = &KafkaActivitySink{producer: producer, topic: cfg.KafkaTopic}
	return activitySinkInstance
}

// GetActivitySink returns the sink instance
func GetActivitySink() ActivitySink {
	return activitySinkInstance
}

// SetActivitySink sets the sink instance (primarily for testing)
func SetActivitySink(sink ActivitySink) {
	activitySinkInstance = sink
}

// KafkaActivitySink publishes records to a Kafka topic
type KafkaActivitySink struct {
	producer sarama.SyncProducer
	topic    string
}

func (s *KafkaActivitySink) publish(event map[string]interface{}) {
	event["timestamp"] = time.Now().Unix()
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal sink event: %v", err)
		return
	}
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		log.Printf("Failed to publish sink event: %v", err)
	}
}

// Record publishes an error record
func (s *KafkaActivitySink) Record(err error, info RequestInfo, functionName string) {
	s.publish(map[string]interface{}{
		"event":         "error",
		"error":         err.Error(),
		"function_name": functionName,
		"request":       info,
	})
}

// RecordActivity publishes a request activity record
func (s *KafkaActivitySink) RecordActivity(info RequestInfo) {
	s.publish(map[string]interface{}{
		"event":   "activity",
		"request": info,
	})
}

// LogActivitySink writes records to the process log
type LogActivitySink struct{}

// Record logs an error record
func (s *LogActivitySink) Record(err error, info RequestInfo, functionName string) {
	log.Printf("error in %s (%s %s): %v", functionName, info.Method, info.Path, err)
}

// RecordActivity logs a request activity record
func (s *LogActivitySink) RecordActivity(info RequestInfo) {
	log.Printf("activity: %s %s", info.Method, info.Path)
}

// RecordedError is one error captured by the mock sink
type RecordedError struct {
	Err          error
	Info         RequestInfo
	FunctionName string
}

// MockActivitySink records sink calls for testing
type MockActivitySink struct {
	mu         sync.Mutex
	Errors     []RecordedError
	Activities []RequestInfo
}

// NewMockActivitySink creates a new mock sink
func NewMockActivitySink() *MockActivitySink {
	return &MockActivitySink{}
}

// SetAsMockForTesting sets this mock as the global sink
func (m *MockActivitySink) SetAsMockForTesting() {
	SetActivitySink(m)
}

// Record captures an error record
func (m *MockActivitySink) Record(err error, info RequestInfo, functionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, RecordedError{Err: err, Info: info, FunctionName: functionName})
}

// RecordActivity captures an activity record
func (m *MockActivitySink) RecordActivity(info RequestInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities = append(m.Activities, info)
}
