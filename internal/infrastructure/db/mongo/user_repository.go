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

	"github.com/taskflow/todo-api/internal/core/domain"
)

// usersCollection and the password/resetToken field names match the
// collection written by the previous service, so existing accounts load
// unchanged. Emails from that service were not always lowercased.
const usersCollection = "users"

// emailCollation makes email matching case-insensitive, so documents stored
// with mixed-case addresses are still found by the lowercased input and
// cannot be duplicated under another casing.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// UserRepository implements ports.CredentialStore. Email uniqueness comes from
// the unique index created by EnsureIndexes.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password"` // bcrypt hash, empty for federated accounts
	Provider   string             `bson:"provider,omitempty"`
	ResetToken string             `bson:"resetToken,omitempty"`
	CreatedAt  int64              `bson:"created_at,omitempty"`
	UpdatedAt  int64              `bson:"updated_at,omitempty"`
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, emailIndexModel())
	return err
}

// emailIndexModel is the unique email index. Queries must use the same
// collation for the index to serve them.
func emailIndexModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("email_unique_ci").
			SetCollation(emailCollation),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NilObjectID

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return toDomainUser(doc), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}
	doc.ID = oid

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return toDomainUser(doc), nil
}

// FindOrCreate upserts on email with $setOnInsert, so concurrent first-time
// sign-ins converge on one document. A duplicate-key error means another
// upsert won the race; the winner is read back.
func (r *UserRepository) FindOrCreate(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, false, err
	}

	onInsert := bson.M{
		"name":       doc.Name,
		"password":   doc.Password,
		"created_at": doc.CreatedAt,
		"updated_at": doc.UpdatedAt,
	}
	if doc.Provider != "" {
		onInsert["provider"] = doc.Provider
	}

	upsertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	res, err := r.coll.UpdateOne(upsertCtx,
		bson.M{"email": doc.Email},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true).SetCollation(emailCollation),
	)
	cancel()

	created := false
	switch {
	case err == nil:
		created = res.UpsertedCount == 1
	case mongo.IsDuplicateKeyError(err):
	default:
		return nil, false, fmt.Errorf("upsert user: %w", err)
	}

	found, err := r.FindByEmail(ctx, doc.Email)
	if err != nil {
		return nil, false, err
	}
	return found, created, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(mu), nil
}

func toMongoUser(u *domain.User) (mongoUser, error) {
	doc := mongoUser{
		Name:       u.Name,
		Email:      u.Email,
		ResetToken: u.ResetToken,
		CreatedAt:  timeToUnix(u.CreatedAt),
		UpdatedAt:  timeToUnix(u.UpdatedAt),
	}
	if u.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			doc.ID = oid
		}
	}
	switch c := u.Credential.(type) {
	case domain.PasswordCredential:
		if c.Hash == "" {
			return mongoUser{}, errors.New("user credential: empty password hash")
		}
		doc.Password = c.Hash
	case domain.ExternalCredential:
		doc.Provider = c.Provider
	default:
		return mongoUser{}, fmt.Errorf("user credential: unsupported type %T", u.Credential)
	}
	return doc, nil
}

// toDomainUser maps a stored document. Documents without a password are
// federated accounts; older documents predate the provider field and were all
// created by Google sign-in.
func toDomainUser(mu mongoUser) *domain.User {
	var cred domain.Credential
	if mu.Password != "" {
		cred = domain.PasswordCredential{Hash: mu.Password}
	} else {
		provider := mu.Provider
		if provider == "" {
			provider = domain.ProviderGoogle
		}
		cred = domain.ExternalCredential{Provider: provider}
	}
	return &domain.User{
		ID:         mu.ID.Hex(),
		Name:       mu.Name,
		Email:      mu.Email,
		Credential: cred,
		ResetToken: mu.ResetToken,
		CreatedAt:  unixToTime(mu.CreatedAt),
		UpdatedAt:  unixToTime(mu.UpdatedAt),
	}
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
