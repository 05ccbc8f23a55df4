package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/sacola-ideias/internal/migrations"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

const pgPort = nat.Port("5432/tcp")

// setupTestDatabase поднимает PostgreSQL с pgvector в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, pgPort)
	require.NoError(t, err, "failed to get port")

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(ctx, dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() {
		_ = storage.Close()
	})

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, migrationsPath)
	require.NoError(t, err)

	return storage
}

// TestDataFactory создает тестовые данные напрямую в БД.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает пользователя с пробной подпиской и возвращает его.
func (f *TestDataFactory) CreateUser(t *testing.T, email string) *models.User {
	t.Helper()
	exp := time.Now().Add(72 * time.Hour)
	u, err := f.storage.CreateUserWithTrial(context.Background(),
		models.User{Email: email, PasswordHash: "hash", AuthMethod: models.AuthMethodEmail, Role: models.RoleUser},
		models.Subscription{Plan: models.PlanFree, Status: models.StatusTrial, SearchLimit: 10, EmbeddingLimit: 10, TrialExpiresAt: &exp})
	require.NoError(t, err)
	return u
}

// CreateIdea создает идею пользователя с необязательным эмбеддингом.
func (f *TestDataFactory) CreateIdea(t *testing.T, ownerID int, title, body string, embedding []float32) *models.Idea {
	t.Helper()
	idea, err := f.storage.CreateIdea(context.Background(), models.Idea{
		Title: title, Body: body, OwnerID: ownerID, Embedding: embedding,
	})
	require.NoError(t, err)
	return idea
}

// CountRows возвращает число строк таблицы, удовлетворяющих условию.
func (f *TestDataFactory) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var count int
	err := f.storage.DB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&count)
	require.NoError(t, err)
	return count
}

// unitVector возвращает вектор размерности 1536 с единицей в позиции i.
func unitVector(i int) []float32 {
	v := make([]float32, 1536)
	v[i] = 1
	return v
}
