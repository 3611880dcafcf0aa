package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
)

const adminsCollection = "admins"

// Admin store errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with this email already exists")
)

// UserStore holds admin accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateUser(ctx context.Context, email string, updates map[string]interface{}) error
}

// FirestoreClient wraps Firestore operations
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient creates a new Firestore client
func NewFirestoreClient(ctx context.Context, cfg *config.Config) (*FirestoreClient, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreClient{client: client}, nil
}

// Close closes the Firestore client
func (f *FirestoreClient) Close() error {
	return f.client.Close()
}

// CreateUser creates a new admin, keyed by lower-cased email
func (f *FirestoreClient) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	docRef := f.client.Collection(adminsCollection).Doc(user.Email)

	// Create fails with AlreadyExists when the document is present
	_, err := docRef.Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = user.Email
	return nil
}

// GetUserByEmail retrieves an admin by email
func (f *FirestoreClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := f.client.Collection(adminsCollection).Doc(strings.ToLower(email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}

	user.ID = doc.Ref.ID
	return &user, nil
}

// GetUserByGoogleID retrieves an admin by Google ID
func (f *FirestoreClient) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	iter := f.client.Collection(adminsCollection).Where("googleId", "==", googleID).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}

	user.ID = doc.Ref.ID
	return &user, nil
}

// UpdateUser merges updates into an admin document
func (f *FirestoreClient) UpdateUser(ctx context.Context, email string, updates map[string]interface{}) error {
	updates["updatedAt"] = time.Now()

	docRef := f.client.Collection(adminsCollection).Doc(strings.ToLower(email))
	if _, err := docRef.Set(ctx, updates, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// MemoryUserStore is a UserStore for tests and local runs without Firestore
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

// NewMemoryUserStore creates an empty MemoryUserStore
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

// CreateUser stores user unless the email is taken
func (m *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	if _, ok := m.users[user.Email]; ok {
		return ErrUserExists
	}
	user.ID = user.Email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.Email] = *user
	return nil
}

// GetUserByEmail returns a copy of the stored admin
func (m *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetUserByGoogleID scans for a linked Google account
func (m *MemoryUserStore) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateUser applies the firestore field names the handlers use
func (m *MemoryUserStore) UpdateUser(ctx context.Context, email string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return ErrUserNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			u.Name, _ = v.(string)
		case "googleId":
			u.GoogleID, _ = v.(string)
		case "provider":
			u.Provider, _ = v.(string)
		case "password":
			u.Password, _ = v.(string)
		case "lastLogin":
			u.LastLogin, _ = v.(time.Time)
		}
	}
	u.UpdatedAt = time.Now()
	m.users[u.Email] = u
	return nil
}
