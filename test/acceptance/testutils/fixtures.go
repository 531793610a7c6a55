package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/gomega"
)

// Fixtures writes rows straight into a test database so specs can control
// creation times.
type Fixtures struct {
	pool *pgxpool.Pool
}

func NewFixtures(ctx context.Context, connString string) (fixtures *Fixtures, err error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		err = fmt.Errorf("failed to connect to test database: %w", err)
		return
	}
	fixtures = &Fixtures{pool: pool}
	return
}

func (fixtures *Fixtures) Close() {
	fixtures.pool.Close()
}

// Reset removes every row written by a test. Seeded categories are kept.
func (fixtures *Fixtures) Reset(ctx context.Context) error {
	_, err := fixtures.pool.Exec(ctx, `TRUNCATE profiles, products, notifications, analytics_events CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate test data: %w", err)
	}
	return nil
}

type ProfileFixture struct {
	ID          uuid.UUID
	Handle      string
	DisplayName string
}

// Profile inserts a profile. An empty DisplayName leaves the profile
// incomplete.
func (fixtures *Fixtures) Profile(ctx context.Context, handle string, displayName string) ProfileFixture {
	profile := ProfileFixture{ID: GenerateRandomUUID(), Handle: handle, DisplayName: displayName}
	var nullableName *string
	if displayName != "" {
		nullableName = &displayName
	}
	_, err := fixtures.pool.Exec(ctx,
		`INSERT INTO profiles (id, handle, display_name) VALUES (@id, @handle, @display_name)`,
		pgx.NamedArgs{"id": profile.ID, "handle": handle, "display_name": nullableName},
	)
	Expect(err).NotTo(HaveOccurred(), "failed to insert profile %s", handle)
	return profile
}

func (fixtures *Fixtures) Follow(ctx context.Context, follower uuid.UUID, following uuid.UUID, createdAt time.Time) {
	_, err := fixtures.pool.Exec(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (@follower, @following, @created_at)`,
		pgx.NamedArgs{"follower": follower, "following": following, "created_at": createdAt},
	)
	Expect(err).NotTo(HaveOccurred(), "failed to insert follow")
}

type LoadoutFixture struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
}

func (fixtures *Fixtures) Loadout(ctx context.Context, owner uuid.UUID, title string, createdAt time.Time, isPublic bool) LoadoutFixture {
	loadout := LoadoutFixture{ID: GenerateRandomUUID(), Title: title, CreatedAt: createdAt}
	_, err := fixtures.pool.Exec(ctx,
		`INSERT INTO collections (id, slug, kind, owner_id, category_id, title, is_public, created_at, updated_at)
		 SELECT @id, @slug, 'loadout', @owner, c.id, @title, @is_public, @created_at, @created_at
		 FROM categories c WHERE c.slug = 'cat-001'`,
		pgx.NamedArgs{
			"id":         loadout.ID,
			"slug":       fmt.Sprintf("loadout-%s", loadout.ID),
			"owner":      owner,
			"title":      title,
			"is_public":  isPublic,
			"created_at": createdAt,
		},
	)
	Expect(err).NotTo(HaveOccurred(), "failed to insert loadout %s", title)
	return loadout
}

func (fixtures *Fixtures) Notification(ctx context.Context, recipient uuid.UUID, actor uuid.UUID, entityID uuid.UUID, createdAt time.Time) uuid.UUID {
	id := GenerateRandomUUID()
	_, err := fixtures.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient_id, actor_id, type, entity_type, entity_id, created_at)
		 VALUES (@id, @recipient, @actor, 'like', 'collection', @entity_id, @created_at)`,
		pgx.NamedArgs{"id": id, "recipient": recipient, "actor": actor, "entity_id": entityID, "created_at": createdAt},
	)
	Expect(err).NotTo(HaveOccurred(), "failed to insert notification")
	return id
}

func (fixtures *Fixtures) UnreadNotifications(ctx context.Context, recipient uuid.UUID) (count int64) {
	err := fixtures.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = @recipient AND NOT is_read`,
		pgx.NamedArgs{"recipient": recipient},
	).Scan(&count)
	Expect(err).NotTo(HaveOccurred())
	return
}

func GenerateRandomUUID() uuid.UUID {
	id, err := uuid.NewRandom()
	Expect(err).NotTo(HaveOccurred())
	return id
}
