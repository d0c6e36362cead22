package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dtroode/accounts-server/internal/model"
)

const usersCollection = "users"

var _ model.UserStore = (*UserRepository)(nil)

type userDocument struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"fullName"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	IsActive     bool      `bson:"isActive"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toDocument(user model.User) userDocument {
	return userDocument{
		ID:           user.ID.String(),
		FullName:     user.FullName,
		Email:        model.NormalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func (d userDocument) toModel() (model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return model.User{
		ID:           id,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         model.Role(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func nonAdminFilter() bson.M {
	return bson.M{"role": bson.M{"$ne": string(model.RoleAdmin)}}
}

type UserRepository struct {
	users *mongodriver.Collection
	now   func() time.Time
}

func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{
		users: conn.database.Collection(usersCollection),
		now:   time.Now,
	}
}

// EnsureIndexes creates the unique email index and the listing index.
// It is idempotent.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("users_role_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	doc := toDocument(user)
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return model.User{}, model.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return doc.toModel()
}

// Save overwrites the mutable fields of an existing user and bumps updatedAt.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	doc := toDocument(user)
	update := bson.M{"$set": bson.M{
		"fullName":     doc.FullName,
		"email":        doc.Email,
		"passwordHash": doc.PasswordHash,
		"role":         doc.Role,
		"isActive":     doc.IsActive,
		"updatedAt":    r.now().UTC(),
	}}

	var saved userDocument
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.User{}, model.ErrNotFound
		}
		if mongodriver.IsDuplicateKeyError(err) {
			return model.User{}, model.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return saved.toModel()
}

func (r *UserRepository) ListNonAdmin(ctx context.Context, offset, limit int) ([]model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.users.Find(ctx, nonAdminFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		user, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepository) CountNonAdmin(ctx context.Context) (int, error) {
	count, err := r.users.CountDocuments(ctx, nonAdminFilter())
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel()
}
