package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gabbymorgan/drivefair.api/config"
)

// DriverLocation is a driver's last reported position
type DriverLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UpdatedAt int64   `json:"updated_at"`
}

// LocationCache holds driver live locations for delivery tracking. The
// driver row keeps the last durable position; the cache is the hot path
// polled by tracking clients.
type LocationCache interface {
	Set(ctx context.Context, driverID uint, latitude, longitude float64) error
	Get(ctx context.Context, driverID uint) (*DriverLocation, error)
}

var locationCacheInstance LocationCache

// InitLocationCache initializes the redis-backed location cache
func InitLocationCache() LocationCache {
	cfg := config.GetConfig()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	locationCacheInstance = &RedisLocationCache{client: client}
	return locationCacheInstance
}

// GetLocationCache returns the location cache instance
func GetLocationCache() LocationCache {
	return locationCacheInstance
}

// SetLocationCache sets the location cache instance (primarily for testing)
func SetLocationCache(cache LocationCache) {
	locationCacheInstance = cache
}

// RedisLocationCache stores one hash per driver under driver:<id>
type RedisLocationCache struct {
	client *redis.Client
}

func driverKey(driverID uint) string {
	return "driver:" + strconv.FormatUint(uint64(driverID), 10)
}

// Set writes the driver's position
func (c *RedisLocationCache) Set(ctx context.Context, driverID uint, latitude, longitude float64) error {
	return c.client.HSet(ctx, driverKey(driverID), map[string]interface{}{
		"latitude":   latitude,
		"longitude":  longitude,
		"updated_at": time.Now().Unix(),
	}).Err()
}

// Get reads the driver's position; nil when the driver has never reported
func (c *RedisLocationCache) Get(ctx context.Context, driverID uint) (*DriverLocation, error) {
	fields, err := c.client.HGetAll(ctx, driverKey(driverID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	latitude, _ := strconv.ParseFloat(fields["latitude"], 64)
	longitude, _ := strconv.ParseFloat(fields["longitude"], 64)
	updatedAt, _ := strconv.ParseInt(fields["updated_at"], 10, 64)
	return &DriverLocation{Latitude: latitude, Longitude: longitude, UpdatedAt: updatedAt}, nil
}

// MockLocationCache is an in-memory LocationCache for testing
type MockLocationCache struct {
	mu        sync.RWMutex
	locations map[uint]*DriverLocation
}

// NewMockLocationCache creates a new mock cache
func NewMockLocationCache() *MockLocationCache {
	return &MockLocationCache{locations: make(map[uint]*DriverLocation)}
}

// SetAsMockForTesting sets this mock as the global location cache
func (m *MockLocationCache) SetAsMockForTesting() {
	SetLocationCache(m)
}

// Set stores the driver's position
func (m *MockLocationCache) Set(ctx context.Context, driverID uint, latitude, longitude float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = &DriverLocation{
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now().Unix(),
	}
	return nil
}

// Get returns the driver's position
func (m *MockLocationCache) Get(ctx context.Context, driverID uint) (*DriverLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locations[driverID], nil
}
