package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "sticker:task:"
	// TTL bounds how long a finished task remains queryable.
	TTL = 24 * time.Hour
)

// ErrNotFound is returned when a task ID is unknown or has expired.
var ErrNotFound = errors.New("task not found")

// State is the lifecycle of an async generation task.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Task records the progress and outcome of one async sticker job.
type Task struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Error        string    `json:"error,omitempty"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	ArtifactKey  string    `json:"artifact_key,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	ByteSize     int64     `json:"byte_size,omitempty"`
	OverBudget   bool      `json:"over_budget,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists async task state across the HTTP handlers that create jobs
// and the workers that complete them.
type Store interface {
	Put(ctx context.Context, task Task) error
	Get(ctx context.Context, id string) (Task, error)
}

// NewTask returns a freshly queued task with a generated ID.
func NewTask() Task {
	now := time.Now().UTC()
	return Task{
		ID:        uuid.NewString(),
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDefaultStore returns a Redis-backed store when REDIS_ADDR is set and
// reachable, and an in-process store otherwise. The fallback keeps the async
// endpoints working in single-instance deployments without Redis.
func NewDefaultStore() Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to connect to Redis at %s: %v. Using in-memory task store.", addr, err)
		return NewMemoryStore()
	}

	return &RedisStore{client: rdb}
}

// RedisStore keeps tasks as JSON values under a shared TTL.
type RedisStore struct {
	client *redis.Client
}

func (s *RedisStore) Put(ctx context.Context, task Task) error {
	task.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+task.ID, data, TTL).Err(); err != nil {
		return fmt.Errorf("failed to store task %s: %w", task.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Task, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("failed to load task %s: %w", id, err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return Task{}, fmt.Errorf("failed to decode task %s: %w", id, err)
	}
	return task, nil
}

// MemoryStore is the in-process fallback used when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]Task)}
}

func (s *MemoryStore) Put(_ context.Context, task Task) error {
	task.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}
