package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

const profileCollection = "profiles"

// ProfileRepository implements ports.ProfileStore using MongoDB. The
// collection carries a unique index on auth_user_id; a duplicate-key insert
// is how a lost bootstrap race shows up.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profileCollection)}
}

// EnsureIndexes creates the unique auth_user_id index. Idempotent.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "auth_user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure profile indexes: %w", err)
	}
	return nil
}

type mongoProfile struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	AuthUserID          string             `bson:"auth_user_id"`
	Email               string             `bson:"email"`
	FullName            string             `bson:"full_name"`
	Role                string             `bson:"role"`
	IsActive            bool               `bson:"is_active"`
	IsPublic            bool               `bson:"is_public"`
	OnboardingCompleted bool               `bson:"onboarding_completed"`
	CreatedAt           int64              `bson:"created_at"`
	UpdatedAt           int64              `bson:"updated_at"`
}

func (r *ProfileRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error) {
	var mp mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"auth_user_id": authUserID}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProfileRepository) Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	doc := mongoProfile{
		AuthUserID:          profile.AuthUserID,
		Email:               profile.Email,
		FullName:            profile.FullName,
		Role:                profile.Role,
		IsActive:            profile.IsActive,
		IsPublic:            profile.IsPublic,
		OnboardingCompleted: profile.OnboardingCompleted,
		CreatedAt:           profile.CreatedAt.Unix(),
		UpdatedAt:           profile.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProfileExists
		}
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	created := *profile
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	update := bson.M{"$set": bson.M{
		"full_name":            profile.FullName,
		"is_public":            profile.IsPublic,
		"onboarding_completed": profile.OnboardingCompleted,
		"updated_at":           time.Now().UTC().Unix(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"auth_user_id": profile.AuthUserID}, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrProfileNotFound
	}

	return r.GetByAuthUserID(ctx, profile.AuthUserID)
}

func (mp *mongoProfile) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:                  mp.ID.Hex(),
		AuthUserID:          mp.AuthUserID,
		Email:               mp.Email,
		FullName:            mp.FullName,
		Role:                mp.Role,
		IsActive:            mp.IsActive,
		IsPublic:            mp.IsPublic,
		OnboardingCompleted: mp.OnboardingCompleted,
		CreatedAt:           unixToTime(mp.CreatedAt),
		UpdatedAt:           unixToTime(mp.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
