package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

const userCollection = "users"

// MongoUserRepository persists user records. Soft-deleted documents keep
// their data but are excluded from every lookup by the deleted_at filter.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

type mongoUser struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Name                 string             `bson:"name"`
	Email                string             `bson:"email"`
	PasswordHash         string             `bson:"password_hash"`
	Role                 string             `bson:"role"`
	Verified             bool               `bson:"verified"`
	VerificationToken    string             `bson:"verification_token,omitempty"`
	ResetPasswordToken   string             `bson:"reset_password_token,omitempty"`
	ResetPasswordExpires *time.Time         `bson:"reset_password_expires,omitempty"`
	RefreshToken         string             `bson:"refresh_token,omitempty"`
	ProfileImage         string             `bson:"profile_image,omitempty"`
	CreatedAt            time.Time          `bson:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at"`
	DeletedAt            *time.Time         `bson:"deleted_at,omitempty"`
}

// EnsureIndexes creates the unique email index that arbitrates concurrent
// registrations for the same address.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Verified:     user.Verified,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByVerification(ctx context.Context, email, token string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "verification_token": token})
}

func (r *MongoUserRepository) FindByResetToken(ctx context.Context, email, token string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"email":                  email,
		"reset_password_token":   token,
		"reset_password_expires": bson.M{"$gt": now},
	})
}

func (r *MongoUserRepository) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.Verified != nil {
		set["verified"] = *upd.Verified
	}
	if upd.ProfileImage != nil {
		set["profile_image"] = *upd.ProfileImage
	}

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx,
		notDeleted(bson.M{"_id": oid}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) SetVerificationToken(ctx context.Context, id, token string) error {
	return r.setFields(ctx, id, bson.M{"verification_token": token})
}

func (r *MongoUserRepository) SetVerified(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"verified": true, "verification_token": nil})
}

func (r *MongoUserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.setFields(ctx, id, bson.M{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	})
}

func (r *MongoUserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{
		"password_hash":          passwordHash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	})
}

func (r *MongoUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{"password_hash": passwordHash})
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.setFields(ctx, id, bson.M{"refresh_token": token})
}

// SoftDelete stamps deleted_at; the document is never removed.
func (r *MongoUserRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		notDeleted(bson.M{"_id": oid}),
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	filter := notDeleted(bson.M{})

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, notDeleted(filter)).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) setFields(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, notDeleted(bson.M{"_id": oid}), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func notDeleted(filter bson.M) bson.M {
	filter["deleted_at"] = nil
	return filter
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                   mu.ID.Hex(),
		Name:                 mu.Name,
		Email:                mu.Email,
		PasswordHash:         mu.PasswordHash,
		Role:                 mu.Role,
		Verified:             mu.Verified,
		VerificationToken:    mu.VerificationToken,
		ResetPasswordToken:   mu.ResetPasswordToken,
		ResetPasswordExpires: mu.ResetPasswordExpires,
		RefreshToken:         mu.RefreshToken,
		ProfileImage:         mu.ProfileImage,
		CreatedAt:            mu.CreatedAt,
		UpdatedAt:            mu.UpdatedAt,
	}
}
